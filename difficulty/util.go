package difficulty

import "math"

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance is the population variance.
func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

// lastN returns the trailing n elements without copying.
func lastN[T any](xs []T, n int) []T {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

// pushCapped appends and keeps only the most recent limit elements.
func pushCapped[T any](buf []T, limit int, items ...T) []T {
	buf = append(buf, items...)
	if len(buf) > limit {
		trimmed := make([]T, limit)
		copy(trimmed, buf[len(buf)-limit:])
		buf = trimmed
	}
	return buf
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
