// SPDX-License-Identifier: EPL-2.0

package utils

// Fold moves x into [lo, hi] by adding or subtracting whole multiples of
// the width hi-lo. Values below lo land in [lo, hi), values above hi land
// in (lo, hi]. A non-positive width returns lo.
func Fold(x, lo, hi int) int {
	w := hi - lo
	if w <= 0 {
		return lo
	}

	if x < lo {
		x += ((lo - x + w - 1) / w) * w
	}
	if x > hi {
		x -= ((x - hi + w - 1) / w) * w
	}

	return x
}
