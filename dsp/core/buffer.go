package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
// The contents of a reused slice are left untouched.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// ToFloat32 converts src into dst, hard-clipping each sample to [-1, 1].
// It returns the number of converted samples.
func ToFloat32(dst []float32, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float32(Clamp(src[i], -1, 1))
	}
	return n
}
