package core

// -----------------------------------------------------------------------------

// MovingAverage computes the trailing simple average over `window` values
// inclusive of the current position, aligned to the input. Positions before
// the window has filled are nil (missing), never zero.
func MovingAverage(values []float64, window int) []*float64 {
	out := make([]*float64, len(values))
	if window <= 0 || window > len(values) {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			avg := sum / float64(window)
			out[i] = &avg
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// ChangePercent calculates percentage change.
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous
}
