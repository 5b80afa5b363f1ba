// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	// ErrNotWavFile is returned for input without a RIFF/WAVE header.
	ErrNotWavFile = errors.New("not a WAV file")
	// ErrUnsupportedEncoding is returned for WAV files that are not integer
	// PCM, such as IEEE float or compressed data.
	ErrUnsupportedEncoding = errors.New("unsupported WAV encoding")
)
