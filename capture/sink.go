// SPDX-License-Identifier: EPL-2.0

// Package capture records the mono input stream into a growable buffer
// between Begin and End.
package capture

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ik5/granulator/audio"
)

// ErrNotMono is returned by ReadFrom for sources with more than one channel.
var ErrNotMono = errors.New("capture source must be mono")

// Sink collects input samples while a recording is active.
type Sink struct {
	mu     sync.Mutex
	record []float32
	active bool

	initialCapacity int
}

// NewSink returns an idle sink. Each recording starts with room for
// initialCapacity samples, usually one second at the input rate.
func NewSink(initialCapacity int) *Sink {
	return &Sink{initialCapacity: max(initialCapacity, 0)}
}

// Begin starts a new recording, discarding any unfinished one.
func (s *Sink) Begin() {
	buf := make([]float32, 0, s.initialCapacity)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = buf
	s.active = true
}

// End stops recording and hands over the captured samples. ok is false
// when no recording was active.
func (s *Sink) End() (samples []float32, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil, false
	}

	samples = s.record
	s.record = nil
	s.active = false

	return samples, true
}

// Recording reports whether a recording is active.
func (s *Sink) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// Write is the input callback: it appends in to the active recording and
// does nothing otherwise.
func (s *Sink) Write(in []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		s.record = append(s.record, in...)
	}
}

// ReadFrom feeds a mono source through Write until it is exhausted and
// returns the number of samples read.
func (s *Sink) ReadFrom(src audio.Source) (int64, error) {
	if src.Channels() != 1 {
		return 0, fmt.Errorf("%d channels: %w", src.Channels(), ErrNotMono)
	}

	buf := make([]float32, max(src.BufSize(), 1))
	var total int64
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			s.Write(buf[:n])
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("capture read: %w", err)
		}
	}
}
