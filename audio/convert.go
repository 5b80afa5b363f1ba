// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// ReadAll drains src and returns every sample it produced.
//
// The read buffer holds bufferSize samples rounded down to whole frames;
// a bufferSize below one frame falls back to src.BufSize().
func ReadAll(src Source, bufferSize int) ([]float32, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}
	if bufferSize < channels {
		bufferSize = max(src.BufSize(), channels)
	}
	bufferSize -= bufferSize % channels

	buf := make([]float32, bufferSize)
	out := make([]float32, 0, bufferSize)

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("read all: %w", err)
		}
	}
}

// Convert time-stretches mono samples recorded at srcRate so they play
// back at dstRate with the same pitch and duration. The result holds
// roughly len(samples)*dstRate/srcRate samples.
//
// Example:
//
//	// 1 second captured at 48 kHz, played at 44.1 kHz
//	out, err := audio.Convert(recorded, 48000, 44100)
//	// len(out) ≈ 44100
func Convert(samples []float32, srcRate, dstRate int) ([]float32, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	resampler, err := NewResampler(NewSliceSource(samples, srcRate, 1), dstRate)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}

	estimated := int(float64(len(samples))/resampler.Ratio()) + 1
	out, err := ReadAll(resampler, min(estimated, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("convert %d Hz -> %d Hz: %w", srcRate, dstRate, err)
	}

	return out, nil
}
