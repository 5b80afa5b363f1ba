// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// The decoder already produces float samples, so ReadSamples decodes
// straight into the caller's buffer without conversion. Any channel count
// the stream carries is passed through interleaved.
package vorbis
