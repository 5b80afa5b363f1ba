// SPDX-License-Identifier: EPL-2.0

// Package granulator is a real-time granular re-synthesizer.
//
// Audio recorded from the default input device is converted to the output
// rate and becomes the play buffer. The player scatters short, enveloped and
// panned grains around a cursor that sweeps a loop range of that buffer, and
// mixes them into the stereo output stream.
//
// # Layout
//
//   - grain: grain envelope, pan law and the spawning engine
//   - playback: the player behind the output callback
//   - capture: the sink behind the input callback
//   - coordinator: command queue, rate conversion and state snapshots
//   - device: PortAudio streams
//   - audio: sources, decoders registry and the cubic resampler
//   - formats/...: WAV, AIFF, MP3 and Ogg Vorbis decoders
//   - config: defaults, .env files and GRANULATOR_* variables
//
// # Quick Start
//
//	cfg, err := config.Load(".env")
//	if err != nil {
//	    return err
//	}
//
//	s, err := granulator.Open(cfg, log.GetLogger())
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	go s.Run(ctx)
//
//	c := s.Coordinator()
//	c.StartRecord()
//	time.Sleep(2 * time.Second)
//	c.StopRecord()
//
//	lo, hi := 1000, 40000
//	c.SetSettings(coordinator.PlaySettings{
//	    Grain:      grain.Settings{NumGrains: 8, LengthMin: 800, LengthMax: 4000, StereoWidth: 0.6},
//	    RangeStart: &lo,
//	    RangeEnd:   &hi,
//	})
//
// Files can stand in for a recording:
//
//	samples, rate, err := granulator.LoadFile("loop.ogg")
//	c.LoadBuffer(samples, rate)
//
// NewHeadless builds the same session without devices, for offline renders
// and tests.
package granulator
