// SPDX-License-Identifier: EPL-2.0

package playback

// WrapCursor advances cursor by frames inside the loop range [lo, hi),
// first lifting it to lo by whole widths when it is below the range.
// Callers must make sure hi > lo.
func WrapCursor(cursor, lo, hi, frames int) int {
	width := hi - lo
	if cursor < lo {
		cursor += ((lo - cursor + width - 1) / width) * width
	}

	return (cursor-lo+frames)%width + lo
}

// resolveRange returns the effective loop range for a buffer of n samples
// and whether it is playable.
func resolveRange(r *loopRange, n int) (lo, hi int, ok bool) {
	lo, hi = 0, n
	if r != nil {
		lo, hi = r.lo, r.hi
	}

	return lo, hi, lo >= 0 && lo < hi && hi <= n
}
