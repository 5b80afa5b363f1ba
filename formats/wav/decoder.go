// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/ik5/granulator/audio"
	"github.com/ik5/granulator/formats/internal/pcm"
)

// fmt chunk format tags carrying integer PCM.
const (
	formatPCM        = 0x0001
	formatExtensible = 0xFFFE
)

type Decoder struct{}

// Decode reads an integer PCM WAV stream. Readers that cannot seek are
// buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
		}
		return nil, ErrNotWavFile
	}

	if tag := dec.WavAudioFormat; tag != formatPCM && tag != formatExtensible {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}

	src, err := pcm.NewSource(dec, int(dec.BitDepth), true)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	return src, nil
}
