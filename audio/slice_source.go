// SPDX-License-Identifier: EPL-2.0

package audio

import "io"

// SliceSource exposes an in-memory interleaved buffer as a Source.
type SliceSource struct {
	samples    []float32
	sampleRate int
	channels   int
	offset     int
}

// NewSliceSource reads samples back at sampleRate with the given channel
// count. The slice is not copied.
func NewSliceSource(samples []float32, sampleRate, channels int) *SliceSource {
	return &SliceSource{
		samples:    samples,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

func (s *SliceSource) SampleRate() int { return s.sampleRate }
func (s *SliceSource) Channels() int   { return s.channels }
func (s *SliceSource) BufSize() int    { return 4096 }
func (s *SliceSource) Close() error    { return nil }

// Len returns the number of samples not read yet.
func (s *SliceSource) Len() int { return len(s.samples) - s.offset }

func (s *SliceSource) ReadSamples(dst []float32) (int, error) {
	if s.channels <= 0 || len(dst)%s.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if s.offset >= len(s.samples) {
		return 0, io.EOF
	}

	n := copy(dst, s.samples[s.offset:])
	s.offset += n
	if s.offset >= len(s.samples) {
		return n, io.EOF
	}

	return n, nil
}
