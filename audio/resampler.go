// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/granulator/utils"
)

// Resampler streams from src to a target sample rate using cubic
// interpolation. Works on interleaved samples and preserves channel count.
// A one-pole low-pass runs on the input when downsampling.
type Resampler struct {
	src      Source
	srcRate  float64
	dstRate  float64
	ratio    float64 // source samples per output sample
	channels int

	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4][]float32
	hasFrame [4]bool

	// fractional position between frames[1] and frames[2]
	pos float64

	srcBuf []float32
	eof    bool

	filterState []float32
	useFilter   bool
	filterAlpha float32
}

// NewResampler wraps src so that it is read back at dstRate.
func NewResampler(src Source, dstRate int) (*Resampler, error) {
	if src.SampleRate() <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("resample %d Hz -> %d Hz: %w", src.SampleRate(), dstRate, ErrInvalidSampleRate)
	}
	channels := src.Channels()
	if channels <= 0 {
		return nil, fmt.Errorf("resample: %w", ErrInvalidChannels)
	}

	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		srcRate:     float64(src.SampleRate()),
		dstRate:     float64(dstRate),
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		useFilter:   ratio > 1.0,
		filterState: make([]float32, channels),
	}
	if r.useFilter {
		r.filterAlpha = 0.5
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r, nil
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

// Ratio reports how many source frames are consumed per output frame.
func (r *Resampler) Ratio() float64 { return r.ratio }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("close resampler source: %w", err)
	}
	return nil
}

// lowPass filters frame in place when downsampling.
func (r *Resampler) lowPass(frame []float32) {
	if !r.useFilter {
		return
	}
	for c := range r.channels {
		frame[c] = r.filterAlpha*frame[c] + (1-r.filterAlpha)*r.filterState[c]
		r.filterState[c] = frame[c]
	}
}

// readFrame reads one frame into dst and reports whether a frame arrived.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	n, err := r.src.ReadSamples(r.srcBuf)
	got := n > 0
	if got {
		copy(dst, r.srcBuf[:n])
	}
	if err == io.EOF {
		r.eof = true
		return got, nil
	}
	if err != nil {
		return got, fmt.Errorf("read source frame: %w", err)
	}
	return got, nil
}

// prime fills the four-frame window before the first output sample.
func (r *Resampler) prime() error {
	for i := range r.frames {
		got, err := r.readFrame(r.frames[i])
		if err != nil {
			return err
		}
		if got {
			r.hasFrame[i] = true
			if i == 0 && r.useFilter {
				copy(r.filterState, r.frames[0])
			}
			r.lowPass(r.frames[i])
		}
		if !r.eof {
			continue
		}
		if !r.hasFrame[0] {
			return io.EOF
		}
		// repeat the last valid frame into the remaining slots
		last := i
		if !got {
			last = i - 1
		}
		for j := last + 1; j < len(r.frames); j++ {
			copy(r.frames[j], r.frames[last])
			r.hasFrame[j] = true
		}
		break
	}
	return nil
}

// advance shifts the window by one frame.
func (r *Resampler) advance() error {
	if r.eof {
		return io.EOF
	}

	copy(r.frames[0], r.frames[1])
	copy(r.frames[1], r.frames[2])
	copy(r.frames[2], r.frames[3])
	r.hasFrame[0] = r.hasFrame[1]
	r.hasFrame[1] = r.hasFrame[2]
	r.hasFrame[2] = r.hasFrame[3]

	got, err := r.readFrame(r.frames[3])
	if err != nil {
		return err
	}
	r.hasFrame[3] = got
	if got {
		r.lowPass(r.frames[3])
	}
	if r.eof && !got {
		return io.EOF
	}

	return nil
}

// ReadSamples produces dst samples at the target rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.hasFrame[1] {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.hasFrame[1] || !r.hasFrame[2] {
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		for c := range r.channels {
			y0 := r.frames[1][c]
			if r.hasFrame[0] {
				y0 = r.frames[0][c]
			}
			y3 := r.frames[2][c]
			if r.hasFrame[3] {
				y3 = r.frames[3][c]
			}

			dst[written*r.channels+c] = utils.CubicInterpolate(y0, r.frames[1][c], r.frames[2][c], y3, alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
