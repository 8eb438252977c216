// precision.go - time precision / epsilon calculation for mtime/ctime
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package indexer

import "math"

// timeDigits returns the number of subsecond decimal digits that fit
// in a 53-bit float mantissa given the current epoch magnitude:
// digits = floor((53 - log2(floor(now))) / log2(10)).
func timeDigits(now float64) int {
	whole := math.Floor(now)
	if whole < 1 {
		whole = 1
	}
	digits := math.Floor((53 - math.Log2(whole)) / math.Log2(10))
	if digits < 0 {
		digits = 0
	}
	return int(digits)
}

// epsilonFor is the fuzzy-equality tolerance derived from digits:
// 2 * 10^(-digits).
func epsilonFor(digits int) float64 {
	return 2 * math.Pow(10, -float64(digits))
}
