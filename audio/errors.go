// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrInvalidSampleRate is returned when a source or target rate is not positive.
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	// ErrInvalidChannels is returned for sources reporting less than one channel.
	ErrInvalidChannels = errors.New("channel count must be positive")
	// ErrEmptyInput is returned when there is nothing to convert.
	ErrEmptyInput = errors.New("no samples to convert")
)
