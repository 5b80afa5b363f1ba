// SPDX-License-Identifier: EPL-2.0

// Package coordinator is the control plane of the granulator. It turns
// operator commands into mutations of the capture sink and the player on a
// single goroutine, runs rate conversion off that goroutine, and keeps a
// snapshot of the playback state fresh for observers.
package coordinator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ik5/granulator/audio"
	"github.com/ik5/granulator/grain"
	"github.com/ik5/granulator/internal/log"
)

const (
	DefaultQueueSize    = 16
	DefaultTickInterval = 16 * time.Millisecond
)

// Recorder is the capture side, implemented by capture.Sink.
type Recorder interface {
	Begin()
	End() ([]float32, bool)
}

// Playback is the render side, implemented by playback.Player.
type Playback interface {
	SetBuffer(buf []float32)
	ClearBuffer()
	SetRange(start, end *int)
	SetGrainSettings(s grain.Settings)
	Cursor() int
}

// ConvertFunc time-stretches mono samples from srcRate to dstRate.
type ConvertFunc func(samples []float32, srcRate, dstRate int) ([]float32, error)

// Config wires a Coordinator.
type Config struct {
	Recorder Recorder
	Playback Playback

	// InputRate and OutputRate are the device sample rates in Hz.
	InputRate  int
	OutputRate int

	// Convert defaults to audio.Convert.
	Convert ConvertFunc
	// QueueSize defaults to DefaultQueueSize.
	QueueSize int
	// TickInterval defaults to DefaultTickInterval.
	TickInterval time.Duration

	Logger logrus.FieldLogger
}

// Coordinator serializes commands onto one control loop.
type Coordinator struct {
	cfg  Config
	log  logrus.FieldLogger
	cmds chan command
	snap snapshotStore

	running atomic.Bool
	done    chan struct{}
}

type conversion struct {
	origin  commandKind
	srcRate int
	inLen   int
	samples []float32
	err     error
}

// New validates cfg and returns an idle coordinator; call Run to start it.
func New(cfg Config) (*Coordinator, error) {
	switch {
	case cfg.Recorder == nil:
		return nil, fmt.Errorf("recorder missing: %w", ErrInvalidConfig)
	case cfg.Playback == nil:
		return nil, fmt.Errorf("playback missing: %w", ErrInvalidConfig)
	case cfg.InputRate <= 0 || cfg.OutputRate <= 0:
		return nil, fmt.Errorf("sample rates %d/%d: %w", cfg.InputRate, cfg.OutputRate, ErrInvalidConfig)
	}

	if cfg.Convert == nil {
		cfg.Convert = audio.Convert
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = log.GetLogger()
	}

	return &Coordinator{
		cfg:  cfg,
		log:  cfg.Logger.WithField("component", "coordinator"),
		cmds: make(chan command, cfg.QueueSize),
		done: make(chan struct{}),
	}, nil
}

// StartRecord begins capturing input.
func (c *Coordinator) StartRecord() error {
	return c.submit(command{kind: cmdStartRecord})
}

// StopRecord ends capturing; the recording replaces the play buffer once
// converted to the output rate.
func (c *Coordinator) StopRecord() error {
	return c.submit(command{kind: cmdStopRecord})
}

// ClearPlayBuffer empties the play buffer.
func (c *Coordinator) ClearPlayBuffer() error {
	return c.submit(command{kind: cmdClearPlayBuffer})
}

// SetSettings applies loop range and grain settings; the last call wins.
func (c *Coordinator) SetSettings(s PlaySettings) error {
	return c.submit(command{kind: cmdSetSettings, settings: s})
}

// LoadBuffer installs mono samples recorded at sampleRate as the play
// buffer, converting them like a finished recording.
func (c *Coordinator) LoadBuffer(samples []float32, sampleRate int) error {
	return c.submit(command{kind: cmdLoadBuffer, samples: samples, sampleRate: sampleRate})
}

// Snapshot returns the latest published state.
func (c *Coordinator) Snapshot() Snapshot {
	return c.snap.load()
}

// Done is closed when Run returns.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

func (c *Coordinator) submit(cmd command) error {
	select {
	case <-c.done:
		return fmt.Errorf("%s: %w", cmd.kind, ErrClosed)
	default:
	}

	select {
	case c.cmds <- cmd:
		return nil
	default:
		return fmt.Errorf("%s: %w", cmd.kind, ErrQueueFull)
	}
}

// Run processes commands in submission order and republishes the cursor
// every tick until ctx is done. While a conversion is in flight no further
// command is taken, but ticks keep going. Ticks missed under load are
// dropped, not queued.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer close(c.done)

	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	c.log.WithFields(logrus.Fields{
		"input_rate":  c.cfg.InputRate,
		"output_rate": c.cfg.OutputRate,
	}).Debug("control loop started")

	var pending <-chan conversion
	for {
		cmds := c.cmds
		if pending != nil {
			cmds = nil
		}

		select {
		case <-ctx.Done():
			if pending != nil {
				c.install(<-pending)
			}
			c.log.Debug("control loop stopped")
			return nil

		case cmd := <-cmds:
			pending = c.handle(cmd)

		case res := <-pending:
			c.install(res)
			pending = nil

		case <-ticker.C:
			cursor := c.cfg.Playback.Cursor()
			c.snap.update(func(s *Snapshot) { s.Cursor = cursor })
		}
	}
}

// handle applies cmd and returns a channel when it started a conversion.
func (c *Coordinator) handle(cmd command) <-chan conversion {
	c.log.WithField("command", cmd.kind.String()).Debug("command received")

	switch cmd.kind {
	case cmdStartRecord:
		c.cfg.Recorder.Begin()
		c.snap.update(func(s *Snapshot) { s.IsRecording = true })

	case cmdStopRecord:
		samples, ok := c.cfg.Recorder.End()
		if !ok {
			c.snap.update(func(s *Snapshot) { s.IsRecording = false })
			return nil
		}
		return c.convert(cmd.kind, samples, c.cfg.InputRate)

	case cmdClearPlayBuffer:
		c.cfg.Playback.ClearBuffer()
		c.snap.update(func(s *Snapshot) {
			s.Buffer = nil
			s.Cursor = 0
			s.Generation++
		})

	case cmdSetSettings:
		c.cfg.Playback.SetRange(cmd.settings.RangeStart, cmd.settings.RangeEnd)
		c.cfg.Playback.SetGrainSettings(cmd.settings.Grain)

	case cmdLoadBuffer:
		return c.convert(cmd.kind, cmd.samples, cmd.sampleRate)
	}

	return nil
}

func (c *Coordinator) convert(origin commandKind, samples []float32, srcRate int) <-chan conversion {
	out := make(chan conversion, 1)

	go func() {
		res := conversion{origin: origin, srcRate: srcRate, inLen: len(samples)}
		defer func() {
			if r := recover(); r != nil {
				res.samples, res.err = nil, fmt.Errorf("%w: %v", ErrConversionPanic, r)
			}
			out <- res
		}()

		res.samples, res.err = c.cfg.Convert(samples, srcRate, c.cfg.OutputRate)
	}()

	return out
}

func (c *Coordinator) install(res conversion) {
	logger := c.log.WithFields(logrus.Fields{
		"command":  res.origin.String(),
		"src_rate": res.srcRate,
		"dst_rate": c.cfg.OutputRate,
		"samples":  res.inLen,
	})

	if res.err != nil {
		logger.WithError(res.err).Error("rate conversion failed, keeping current play buffer")
		c.snap.update(func(s *Snapshot) {
			s.Err = fmt.Errorf("%s: %w", res.origin, res.err)
			if res.origin == cmdStopRecord {
				s.IsRecording = false
			}
		})
		return
	}

	c.cfg.Playback.SetBuffer(res.samples)
	c.snap.update(func(s *Snapshot) {
		s.Buffer = res.samples
		s.Cursor = 0
		s.Generation++
		s.Err = nil
		if res.origin == cmdStopRecord {
			s.IsRecording = false
		}
	})

	logger.WithField("converted", len(res.samples)).Info("play buffer installed")
}
