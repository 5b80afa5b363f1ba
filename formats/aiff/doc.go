// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is supported. Samples are
// interleaved and normalized to [-1, 1].
//
//	f, _ := os.Open("loop.aiff")
//	src, err := aiff.Decoder{}.Decode(f)
//
// Readers that cannot seek are buffered in memory, which go-audio requires.
package aiff
