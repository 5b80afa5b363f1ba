// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts go-audio integer PCM decoders to audio.Source.
package pcm

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/granulator/audio"
)

// ErrUnsupportedBitDepth is returned by NewSource for depths other than
// 8, 16, 24 and 32 bits.
var ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")

// Reader is the part of the go-audio wav and aiff decoders a Source needs.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source streams normalized float samples out of a Reader.
type Source struct {
	dec      Reader
	format   *goaudio.Format
	bitDepth int
	scale    float32
	offset   float32
	intBuf   *goaudio.IntBuffer
}

var _ audio.Source = (*Source)(nil)

// NewSource wraps dec. unsigned8 marks 8-bit data stored as unsigned
// bytes, as WAV does.
func NewSource(dec Reader, bitDepth int, unsigned8 bool) (*Source, error) {
	format := dec.Format()
	if format == nil || format.NumChannels <= 0 {
		return nil, audio.ErrInvalidChannels
	}
	if format.SampleRate <= 0 {
		return nil, audio.ErrInvalidSampleRate
	}

	s := &Source{dec: dec, format: format, bitDepth: bitDepth}
	switch bitDepth {
	case 8:
		s.scale = 1 << 7
		if unsigned8 {
			s.offset = 1 << 7
		}
	case 16:
		s.scale = 1 << 15
	case 24:
		s.scale = 1 << 23
	case 32:
		s.scale = 1 << 31
	default:
		return nil, fmt.Errorf("%d bits: %w", bitDepth, ErrUnsupportedBitDepth)
	}

	return s, nil
}

func (s *Source) SampleRate() int { return s.format.SampleRate }
func (s *Source) Channels() int   { return s.format.NumChannels }
func (s *Source) Close() error    { return nil }
func (s *Source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

// ReadSamples fills dst with samples in [-1, 1]. A short read is returned
// together with io.EOF.
func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, len(dst)),
			Format:         s.format,
			SourceBitDepth: s.bitDepth,
		}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("pcm read: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = (float32(v) - s.offset) / s.scale
	}

	if n < len(dst) || err != nil {
		return n, io.EOF
	}
	return n, nil
}
