// SPDX-License-Identifier: EPL-2.0

package coordinator

import "errors"

var (
	// ErrQueueFull is returned when a command is submitted faster than the
	// control loop drains the queue.
	ErrQueueFull = errors.New("command queue full")
	// ErrClosed is returned for commands submitted after Run returned.
	ErrClosed = errors.New("coordinator closed")
	// ErrRunning is returned by a second call to Run.
	ErrRunning = errors.New("coordinator already running")
	// ErrInvalidConfig is returned by New for missing collaborators or
	// non-positive sample rates.
	ErrInvalidConfig = errors.New("invalid coordinator config")
	// ErrConversionPanic wraps a panic raised by the converter.
	ErrConversionPanic = errors.New("rate conversion panicked")
)
