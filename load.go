// SPDX-License-Identifier: EPL-2.0

package granulator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/granulator/audio"
	"github.com/ik5/granulator/formats/aiff"
	"github.com/ik5/granulator/formats/mp3"
	"github.com/ik5/granulator/formats/vorbis"
	"github.com/ik5/granulator/formats/wav"
)

// ErrUnsupportedFormat is returned by LoadFile for extensions without a
// registered decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// DefaultRegistry returns a registry with every bundled decoder.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(wav.Decoder{}, "wav", "wave")
	r.Register(mp3.Decoder{}, "mp3")
	r.Register(vorbis.Decoder{}, "ogg", "oga")
	r.Register(aiff.Decoder{}, "aiff", "aif")
	return r
}

// LoadFile decodes the file at path with DefaultRegistry, mixes it down to
// mono and returns the samples with their sample rate.
func LoadFile(path string) ([]float32, int, error) {
	return LoadFileWith(DefaultRegistry(), path)
}

// LoadFileWith is LoadFile with a custom registry.
func LoadFileWith(reg *audio.Registry, path string) ([]float32, int, error) {
	ext := filepath.Ext(path)
	dec, ok := reg.Get(ext)
	if !ok {
		return nil, 0, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	defer src.Close()

	samples, err := audio.ReadAll(audio.NewMonoMixer(src), 0)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	if len(samples) == 0 {
		return nil, 0, fmt.Errorf("read %s: %w", path, audio.ErrEmptyInput)
	}

	return samples, src.SampleRate(), nil
}
