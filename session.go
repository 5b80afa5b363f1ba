// SPDX-License-Identifier: EPL-2.0

package granulator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/granulator/capture"
	"github.com/ik5/granulator/config"
	"github.com/ik5/granulator/coordinator"
	"github.com/ik5/granulator/device"
	"github.com/ik5/granulator/grain"
	"github.com/ik5/granulator/internal/log"
	"github.com/ik5/granulator/playback"
)

// Session is a running granulator: capture sink, player and coordinator,
// optionally attached to the audio devices.
type Session struct {
	cfg config.Config
	log logrus.FieldLogger

	sink    *capture.Sink
	player  *playback.Player
	coord   *coordinator.Coordinator
	streams *device.Streams

	inRate, outRate int
}

// Open attaches a session to the default input and output devices and
// starts the streams. Call Run to process commands and Close when done.
func Open(cfg config.Config, logger logrus.FieldLogger) (*Session, error) {
	if logger == nil {
		logger = log.GetLogger()
	}
	s := &Session{}

	streams, err := device.Open(device.Config{FramesPerBuffer: cfg.FramesPerBuffer},
		func(in []float32) { s.sink.Write(in) },
		func(out []float32) { s.player.Render(out) },
		logger)
	if err != nil {
		return nil, fmt.Errorf("open devices: %w", err)
	}

	if err := s.init(cfg, streams.InputRate(), streams.OutputRate(), logger); err != nil {
		streams.Close()
		return nil, err
	}
	s.streams = streams

	if err := streams.Start(); err != nil {
		streams.Close()
		return nil, err
	}

	return s, nil
}

// NewHeadless builds a session without audio devices. Input is fed through
// Sink and output pulled from Player, which is how tests and offline
// renders drive it.
func NewHeadless(cfg config.Config, inputRate, outputRate int, logger logrus.FieldLogger) (*Session, error) {
	if logger == nil {
		logger = log.GetLogger()
	}
	s := &Session{}
	if err := s.init(cfg, inputRate, outputRate, logger); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) init(cfg config.Config, inRate, outRate int, logger logrus.FieldLogger) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	if cfg.XrunInterval <= 0 {
		cfg.XrunInterval = config.Default().XrunInterval
	}

	s.cfg = cfg
	s.log = logger
	s.inRate, s.outRate = inRate, outRate
	s.sink = capture.NewSink(inRate)
	s.player = playback.NewPlayer(outRate, grain.NewEngine(cfg.Grain, seed))

	coord, err := coordinator.New(coordinator.Config{
		Recorder:     s.sink,
		Playback:     s.player,
		InputRate:    inRate,
		OutputRate:   outRate,
		QueueSize:    cfg.QueueSize,
		TickInterval: cfg.TickInterval,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("coordinator: %w", err)
	}
	s.coord = coord

	logger.WithFields(logrus.Fields{
		"input_rate":  inRate,
		"output_rate": outRate,
		"seed":        seed,
		"grains":      cfg.Grain.NumGrains,
	}).Debug("session ready")

	return nil
}

// Run drives the coordinator, and the xrun monitor when devices are
// attached, until ctx is done or one of them fails.
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.coord.Run(ctx)
	})

	if s.streams != nil {
		g.Go(func() error {
			return s.streams.Watch(ctx, s.cfg.XrunInterval)
		})
	}

	return g.Wait()
}

// Close releases the audio devices. It does not stop Run; cancel its
// context for that.
func (s *Session) Close() error {
	if s.streams == nil {
		return nil
	}
	err := s.streams.Close()
	s.streams = nil
	return err
}

// Load decodes the file at path and queues it as the new play buffer.
func (s *Session) Load(path string) error {
	samples, rate, err := LoadFile(path)
	if err != nil {
		return err
	}
	return s.coord.LoadBuffer(samples, rate)
}

// Coordinator is the command and observation surface.
func (s *Session) Coordinator() *coordinator.Coordinator { return s.coord }

// Sink is the capture side; devices write into it.
func (s *Session) Sink() *capture.Sink { return s.sink }

// Player is the render side; it also reads as an audio.Source.
func (s *Session) Player() *playback.Player { return s.player }

func (s *Session) InputRate() int  { return s.inRate }
func (s *Session) OutputRate() int { return s.outRate }
