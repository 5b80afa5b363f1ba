// SPDX-License-Identifier: EPL-2.0

// Package wav decodes WAV files into audio.Source values.
//
// Decoding is done by github.com/go-audio/wav, so any chunk layout it
// understands is accepted. Integer PCM at 8, 16, 24 and 32 bits is
// supported, including WAVE_FORMAT_EXTENSIBLE headers. 8-bit data is
// unsigned in WAV and is recentred on decode.
//
// # Decoding
//
//	f, _ := os.Open("take.wav")
//	src, err := wav.Decoder{}.Decode(f)
//	if err != nil {
//	    // errors.Is(err, wav.ErrNotWavFile) for non RIFF input
//	}
//
//	mono, _ := audio.ReadAll(audio.NewMonoMixer(src), 0)
//
// Samples come out interleaved and normalized to [-1, 1]. go-audio needs an
// io.ReadSeeker; other readers are read into memory first.
//
// # Errors
//
//   - ErrNotWavFile: the input has no valid RIFF/WAVE header
//   - ErrUnsupportedEncoding: the data is float or compressed
//   - pcm.ErrUnsupportedBitDepth (wrapped): unusual sample widths
package wav
