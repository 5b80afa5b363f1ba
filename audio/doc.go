// SPDX-License-Identifier: EPL-2.0

// Package audio provides the pull based PCM plumbing shared by the
// decoders, the rate converter and the offline renderer.
//
// # Source Interface
//
// Every producer of samples implements Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoders in formats/..., the Resampler, the MonoMixer and the granular
// playback.Player all satisfy it, so they chain freely.
//
// # Rate Conversion
//
// Captured audio is recorded at the input device rate and played at the
// output device rate. Convert bridges the two:
//
//	out, err := audio.Convert(recorded, 48000, 44100)
//
// It wraps the slice in a SliceSource, streams it through the cubic
// Resampler and collects the result with ReadAll. Convert is CPU bound;
// callers keep it off real-time threads.
//
// # Channel Mixing
//
// MonoMixer averages interleaved channels down to mono, used when a
// stereo file is loaded as a play buffer:
//
//	mono := audio.NewMonoMixer(src)
//
// # Format Registry
//
// Registry maps case-insensitive format keys to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register(wav.Decoder{}, "wav", "wave")
//	decoder, ok := registry.Get("WAV")
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0]; 0.0 is silence.
//
// # Error Handling
//
// ReadSamples returns io.EOF once a stream is exhausted, possibly together
// with the final samples:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    consume(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
