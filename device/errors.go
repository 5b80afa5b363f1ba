// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	// ErrNoInputDevice is returned when the host has no default input.
	ErrNoInputDevice = errors.New("no default input device")
	// ErrNoOutputDevice is returned when the host has no default output.
	ErrNoOutputDevice = errors.New("no default output device")
	// ErrUnsupportedInput is returned when the default input cannot open a
	// mono float32 stream.
	ErrUnsupportedInput = errors.New("unsupported input device")
	// ErrUnsupportedOutput is returned when the default output cannot open a
	// stereo float32 stream.
	ErrUnsupportedOutput = errors.New("unsupported output device")
)
