package emath

import "math"

// Some functions that only operate on basic types, that are useful

func GammaExpand_F64(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055 * math.Pow(f, 1.0/2.4) - 0.055
}

// Reflect101 maps an out-of-range index back into [0,n), mirroring about
// the edge pixels without repeating them: for n=5, -2 -> 2, -1 -> 1,
// 5 -> 3, 6 -> 2. This is the border policy for every sampler in this
// module (it matches OpenCV's BORDER_REFLECT_101).
func Reflect101(i, n int) int {
	if n <= 1 {
		return 0
	}
	period := 2*(n-1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}
