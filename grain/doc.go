// SPDX-License-Identifier: EPL-2.0

// Package grain implements the granular synthesis core: short windowed
// reads of a source buffer, each with its own position and pan, summed
// into an interleaved stereo output.
//
// An Engine is driven once per output buffer:
//
//	engine.Retire()
//	engine.SpawnIfNeeded(cursor, lo, hi, len(source))
//	engine.Mix(out, source)
//
// Every grain uses a fixed linear pan law (gain 0.3 split by pan) and a
// trapezoid envelope with 400 sample fades. Mixing is additive with no
// normalization, so many overlapping grains can exceed [-1, 1].
package grain
