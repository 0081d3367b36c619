package planner

// Timestamps returns n sample positions evenly distributed over
// [margin*duration, (1-margin)*duration], first and last on the endpoints.
// A single sample lands on the midpoint. The result is strictly increasing
// and strictly inside (0, duration) for duration > 0 and 0 < margin < 0.5;
// it is nil for n <= 0 or a non-positive duration.
func Timestamps(duration float64, n int, margin float64) []float64 {
	if n <= 0 || !(duration > 0) {
		return nil
	}
	margin = clampFloat(margin, minMargin, maxMargin)

	ts := make([]float64, n)
	if n == 1 {
		ts[0] = duration / 2
		return ts
	}

	start := margin * duration
	end := (1 - margin) * duration
	step := (end - start) / float64(n-1)
	for i := range ts {
		ts[i] = start + float64(i)*step
	}
	// Pin the last sample to the endpoint so accumulated rounding cannot
	// push it past (1-margin)*duration.
	ts[n-1] = end
	return ts
}

// Margin bounds. A zero margin would put the first sample on 0 and the last
// on the final instant, which often has no decodable frame.
const (
	minMargin = 0.001
	maxMargin = 0.49
)

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
