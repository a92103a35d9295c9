package buf

import (
	"fmt"
	"math"
	"math/bits"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies a and b, returning ok = false when the result would overflow int.
// Only non-negative operands are accepted; record counts and sizes are never negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

// AlignUp rounds n up to the next multiple of align, which must be a power of two.
//
//	AlignUp(1, 4096)    == 4096
//	AlignUp(4096, 4096) == 4096
//	AlignUp(4097, 4096) == 8192
func AlignUp(n, align int) (int, error) {
	if !IsPow2(align) {
		return 0, fmt.Errorf("alignment %d is not a power of two", align)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative size: %d", n)
	}
	if n&(align-1) == 0 {
		return n, nil
	}
	up, ok := AddOverflowSafe(n&^(align-1), align)
	if !ok {
		return 0, fmt.Errorf("overflow: %d aligned to %d", n, align)
	}
	return up, nil
}

// IsAligned reports whether addr is a multiple of align, which must be a power of two.
func IsAligned(addr uintptr, align int) bool {
	return align > 0 && addr&uintptr(align-1) == 0
}
