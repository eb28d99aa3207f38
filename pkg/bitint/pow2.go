// SPDX-License-Identifier: MIT

/*
Package bitint provides the power-of-two helpers used to size sample
windows and ring buffers.

Both functions are allocation free and constant time, so they are safe
to call from audio callbacks.

Usage:

	// Round a ring up so index wrapping can use a mask
	capacity := bitint.NextPowerOfTwo(1000) // 1024

	// Check a configured frame size
	ok := bitint.IsPowerOfTwo(dataPoints)
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Sizes <= 0
// yield 1.
//
// size-1 is taken before finding the highest set bit so that exact
// powers of two map to themselves:
//
//	Input  Output
//	4      4
//	5      8
//	0      1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
