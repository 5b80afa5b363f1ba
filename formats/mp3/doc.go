// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 Layer 3 files with
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so the returned source reports two
// channels even for mono files. Wrap it in audio.NewMonoMixer to get a
// buffer the granulator can play:
//
//	src, err := mp3.Decoder{}.Decode(f)
//	if err != nil {
//	    return err
//	}
//	samples, err := audio.ReadAll(audio.NewMonoMixer(src), 0)
//
// Reads return whole stereo frames only. The last, short read comes with
// io.EOF.
package mp3
