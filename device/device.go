// SPDX-License-Identifier: EPL-2.0

// Package device opens the PortAudio streams the granulator runs on: a mono
// input stream feeding the capture callback and a stereo output stream
// pulling from the render callback. Both run at the default sample rate of
// their device.
package device

import (
	"context"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
)

const (
	// InputChannels is the layout of the capture stream.
	InputChannels = 1
	// OutputChannels is the layout of the render stream.
	OutputChannels = 2
)

// Config tunes the streams.
type Config struct {
	// FramesPerBuffer is the callback block size; 0 lets the host choose.
	FramesPerBuffer int
}

// CaptureFunc receives every mono input block. It runs on the audio thread.
type CaptureFunc func(in []float32)

// RenderFunc fills every interleaved stereo output block. It runs on the
// audio thread.
type RenderFunc func(out []float32)

// Streams owns the running input and output streams.
type Streams struct {
	in, out *portaudio.Stream

	inRate, outRate int

	xruns xrunCounters
	log   logrus.FieldLogger
}

// Open initializes PortAudio and opens both default devices without
// starting them. On error everything opened so far is released.
func Open(cfg Config, capture CaptureFunc, render RenderFunc, logger logrus.FieldLogger) (*Streams, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio initialize: %w", err)
	}

	s := &Streams{log: logger.WithField("component", "device")}
	if err := s.open(cfg, capture, render); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func (s *Streams) open(cfg Config, capture CaptureFunc, render RenderFunc) error {
	inDev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoInputDevice, err)
	}
	outDev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoOutputDevice, err)
	}
	if err := validate(inDev, outDev); err != nil {
		return err
	}

	s.inRate = int(inDev.DefaultSampleRate)
	s.outRate = int(outDev.DefaultSampleRate)

	inParams := portaudio.LowLatencyParameters(inDev, nil)
	inParams.Input.Channels = InputChannels
	inParams.SampleRate = inDev.DefaultSampleRate
	inParams.FramesPerBuffer = cfg.FramesPerBuffer

	s.in, err = portaudio.OpenStream(inParams,
		func(in []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			s.xruns.observe(flags)
			capture(in)
		})
	if err != nil {
		return fmt.Errorf("open input %q: %w", inDev.Name, err)
	}

	outParams := portaudio.LowLatencyParameters(nil, outDev)
	outParams.Output.Channels = OutputChannels
	outParams.SampleRate = outDev.DefaultSampleRate
	outParams.FramesPerBuffer = cfg.FramesPerBuffer

	s.out, err = portaudio.OpenStream(outParams,
		func(out []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			s.xruns.observe(flags)
			render(out)
		})
	if err != nil {
		return fmt.Errorf("open output %q: %w", outDev.Name, err)
	}

	s.log.WithFields(logrus.Fields{
		"input":       inDev.Name,
		"input_rate":  s.inRate,
		"output":      outDev.Name,
		"output_rate": s.outRate,
		"frames":      cfg.FramesPerBuffer,
	}).Info("audio streams opened")

	return nil
}

// Start runs both streams. The callbacks fire from here on, so everything
// they touch must be ready.
func (s *Streams) Start() error {
	if err := s.in.Start(); err != nil {
		return fmt.Errorf("start input: %w", err)
	}
	if err := s.out.Start(); err != nil {
		return fmt.Errorf("start output: %w", err)
	}
	return nil
}

// validate checks that the default devices can carry the stream layouts.
func validate(in, out *portaudio.DeviceInfo) error {
	switch {
	case in == nil:
		return ErrNoInputDevice
	case out == nil:
		return ErrNoOutputDevice
	case in.MaxInputChannels < InputChannels || in.DefaultSampleRate <= 0:
		return fmt.Errorf("%w: %q has %d input channels at %v Hz",
			ErrUnsupportedInput, in.Name, in.MaxInputChannels, in.DefaultSampleRate)
	case out.MaxOutputChannels < OutputChannels || out.DefaultSampleRate <= 0:
		return fmt.Errorf("%w: %q has %d output channels at %v Hz",
			ErrUnsupportedOutput, out.Name, out.MaxOutputChannels, out.DefaultSampleRate)
	}
	return nil
}

// InputRate is the capture sample rate in Hz.
func (s *Streams) InputRate() int { return s.inRate }

// OutputRate is the render sample rate in Hz.
func (s *Streams) OutputRate() int { return s.outRate }

// Watch reports stream xruns every interval until ctx is done.
func (s *Streams) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.report()
			return nil
		case <-ticker.C:
			s.report()
		}
	}
}

func (s *Streams) report() {
	x := s.xruns.drain()
	if x.total() == 0 {
		return
	}

	s.log.WithFields(logrus.Fields{
		"input_overflow":   x.inputOverflow,
		"input_underflow":  x.inputUnderflow,
		"output_overflow":  x.outputOverflow,
		"output_underflow": x.outputUnderflow,
	}).Warn("audio stream xruns")
}

// Close stops both streams and terminates PortAudio. It returns the first
// error met.
func (s *Streams) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	for _, st := range []*portaudio.Stream{s.in, s.out} {
		if st == nil {
			continue
		}
		// Stop fails on a stream that never started; Close still applies.
		_ = st.Stop()
		keep(st.Close())
	}
	s.in, s.out = nil, nil

	keep(portaudio.Terminate())
	if first != nil {
		return fmt.Errorf("close audio streams: %w", first)
	}
	return nil
}
