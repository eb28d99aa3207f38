// SPDX-License-Identifier: MIT
package bitint

import (
	"fmt"
	"testing"
)

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{-10, 1},       // Negative number
		{0, 1},         // Zero
		{1, 1},         // Smallest power
		{8, 8},         // Already power of two
		{10, 16},       // Not power of two
		{1000, 1024},   // Window for the default frame
		{2048, 2048},   // Ring for the default frame
		{32769, 65536}, // Above the largest frame
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d→%d", tt.n, tt.expected), func(t *testing.T) {
			result := NextPowerOfTwo(tt.n)
			if result != tt.expected {
				t.Errorf("NextPowerOfTwo(%d) = %d, expected %d", tt.n, result, tt.expected)
			}
		})
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		n        int
		expected bool
	}{
		{-8, false},
		{0, false},
		{1, true},
		{7, false},
		{32, true},
		{1000, false},
		{1024, true},
		{32768, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.n), func(t *testing.T) {
			if got := IsPowerOfTwo(tt.n); got != tt.expected {
				t.Errorf("IsPowerOfTwo(%d) = %v, expected %v", tt.n, got, tt.expected)
			}
		})
	}
}

// The capacity picked for a window must always hold the mask invariant.
func TestNextPowerOfTwoIsPowerOfTwo(t *testing.T) {
	for n := 1; n <= 5000; n++ {
		p := NextPowerOfTwo(n)
		if !IsPowerOfTwo(p) || p < n || (p > 1 && p/2 >= n) {
			t.Fatalf("NextPowerOfTwo(%d) = %d", n, p)
		}
	}
}

func BenchmarkNextPowerOfTwo(b *testing.B) {
	b.ReportAllocs()
	n := 0
	for b.Loop() {
		n = NextPowerOfTwo(n&0xFFFF + 1)
	}
	_ = n
}
