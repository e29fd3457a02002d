package numutil

import (
	"strconv"
	"time"
)

// IntWithCommas returns a string representation of an integer with commas.
//
// Example:
//
//	12345 -> "12,345"
func IntWithCommas[T ~int | ~int32 | ~int64](i T) string {
	n := int64(i)
	if n < 0 {
		return "-" + uintWithCommas(uint64(-n))
	}
	return uintWithCommas(uint64(n))
}

func uintWithCommas(u uint64) string {
	digits := strconv.FormatUint(u, 10)
	if len(digits) <= 3 {
		return digits
	}

	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	out := digits[:head]
	for i := head; i < len(digits); i += 3 {
		out += "," + digits[i:i+3]
	}
	return out
}

// PerSecond returns how many operations per second count operations in d
// amount to, zero when d is not positive.
func PerSecond(count int, d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(float64(count) / d.Seconds())
}
