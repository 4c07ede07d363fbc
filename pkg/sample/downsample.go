package sample

// Downsample decimates src to at most maxPoints elements for display.
// dst is reused when it has enough capacity, otherwise a new slice is
// allocated. When src already fits, it is copied as is.
func Downsample[T any](dst, src []T, maxPoints int) []T {
	n := len(src)
	if maxPoints <= 0 || n <= maxPoints {
		if cap(dst) < n {
			dst = make([]T, n)
		}
		dst = dst[:n]
		copy(dst, src)
		return dst
	}

	if cap(dst) < maxPoints {
		dst = make([]T, 0, maxPoints)
	}
	dst = dst[:0]

	step := float64(n) / float64(maxPoints)
	for i := range maxPoints {
		idx := int(float64(i) * step)
		if idx < n {
			dst = append(dst, src[idx])
		}
	}
	return dst
}

// DownsampleSamples is Downsample specialised for Samples.
func DownsampleSamples(dst, samples []Sample, maxPoints int) []Sample {
	return Downsample(dst, samples, maxPoints)
}
