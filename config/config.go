// SPDX-License-Identifier: EPL-2.0

// Package config gathers the granulator settings from defaults, optional
// .env files and GRANULATOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ik5/granulator/coordinator"
	"github.com/ik5/granulator/grain"
	"github.com/ik5/granulator/internal/log"
)

// ErrInvalidValue is returned for environment values that do not parse.
var ErrInvalidValue = errors.New("invalid config value")

const (
	EnvFramesPerBuffer = "GRANULATOR_FRAMES_PER_BUFFER"
	EnvTickInterval    = "GRANULATOR_TICK_INTERVAL"
	EnvQueueSize       = "GRANULATOR_QUEUE_SIZE"
	EnvNumGrains       = "GRANULATOR_NUM_GRAINS"
	EnvGrainMin        = "GRANULATOR_GRAIN_MIN"
	EnvGrainMax        = "GRANULATOR_GRAIN_MAX"
	EnvJitter          = "GRANULATOR_JITTER"
	EnvStereoWidth     = "GRANULATOR_STEREO_WIDTH"
	EnvSeed            = "GRANULATOR_SEED"
	EnvXrunInterval    = "GRANULATOR_XRUN_INTERVAL"
	EnvDebug           = log.DebugEnv
)

// Config is everything a session needs to start.
type Config struct {
	// FramesPerBuffer is the device callback size; 0 lets the host choose.
	FramesPerBuffer int
	TickInterval    time.Duration
	QueueSize       int

	// Grain holds the initial grain settings.
	Grain grain.Settings
	// Seed feeds the grain engine; 0 picks a time based seed.
	Seed uint64

	// XrunInterval is how often stream xruns are reported.
	XrunInterval time.Duration
	Debug        bool
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		TickInterval: coordinator.DefaultTickInterval,
		QueueSize:    coordinator.DefaultQueueSize,
		Grain:        grain.DefaultSettings(),
		XrunInterval: 5 * time.Second,
	}
}

// Load reads the given .env files into the environment, skipping missing
// ones, and returns FromEnv. Variables already set win over file values.
func Load(files ...string) (Config, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		existing = append(existing, f)
	}

	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Config{}, fmt.Errorf("load env files: %w", err)
		}
	}

	return FromEnv()
}

// FromEnv overlays the GRANULATOR_* variables on Default. Grain settings
// are clamped to the operator bounds.
func FromEnv() (Config, error) {
	cfg := Default()
	p := parser{}

	p.int(EnvFramesPerBuffer, &cfg.FramesPerBuffer)
	p.duration(EnvTickInterval, &cfg.TickInterval)
	p.int(EnvQueueSize, &cfg.QueueSize)
	p.int(EnvNumGrains, &cfg.Grain.NumGrains)
	p.int(EnvGrainMin, &cfg.Grain.LengthMin)
	p.int(EnvGrainMax, &cfg.Grain.LengthMax)
	p.int(EnvJitter, &cfg.Grain.SpawnJitter)
	p.float32(EnvStereoWidth, &cfg.Grain.StereoWidth)
	p.uint64(EnvSeed, &cfg.Seed)
	p.duration(EnvXrunInterval, &cfg.XrunInterval)
	p.bool(EnvDebug, &cfg.Debug)

	if p.err != nil {
		return Config{}, p.err
	}

	switch {
	case cfg.FramesPerBuffer < 0:
		return Config{}, fmt.Errorf("%s=%d: %w", EnvFramesPerBuffer, cfg.FramesPerBuffer, ErrInvalidValue)
	case cfg.TickInterval <= 0:
		return Config{}, fmt.Errorf("%s=%v: %w", EnvTickInterval, cfg.TickInterval, ErrInvalidValue)
	case cfg.QueueSize <= 0:
		return Config{}, fmt.Errorf("%s=%d: %w", EnvQueueSize, cfg.QueueSize, ErrInvalidValue)
	case cfg.XrunInterval <= 0:
		return Config{}, fmt.Errorf("%s=%v: %w", EnvXrunInterval, cfg.XrunInterval, ErrInvalidValue)
	}

	cfg.Grain = cfg.Grain.Clamp()
	return cfg, nil
}

// parser keeps the first error and skips everything after it.
type parser struct {
	err error
}

func (p *parser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := os.LookupEnv(key)
	return v, ok && v != ""
}

func (p *parser) fail(key, value string, err error) {
	p.err = fmt.Errorf("%s=%q: %w: %w", key, value, ErrInvalidValue, err)
}

func (p *parser) int(key string, dst *int) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = n
}

func (p *parser) uint64(key string, dst *uint64) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = n
}

func (p *parser) float32(key string, dst *float32) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = float32(f)
}

func (p *parser) duration(key string, dst *time.Duration) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = d
}

func (p *parser) bool(key string, dst *bool) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = b
}
