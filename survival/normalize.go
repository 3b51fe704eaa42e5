package survival

// Post-processing of raw per-cause scores into valid cumulative incidence
// curves. The inner learner fits each cause independently, so nothing
// guarantees monotonicity in time or that the causes' incidences leave room
// for a non-negative survival probability. These transforms restore both
// invariants and are kept free of estimator state so they can be tested in
// isolation.

// clip01 clamps every value into [0, 1] in place.
func clip01(curve []float64) {
	for i, v := range curve {
		if v < 0 {
			curve[i] = 0
		} else if v > 1 {
			curve[i] = 1
		}
	}
}

// cumMax replaces the curve with its running maximum, making it non-decreasing
// while never lowering any value.
func cumMax(curve []float64) {
	maxSoFar := 0.0
	for i, v := range curve {
		if v > maxSoFar {
			maxSoFar = v
		}
		curve[i] = maxSoFar
	}
}

// repairIncidenceCurves post-processes one sample's raw per-cause curves
// (perCause[k][j] = raw score for cause k at grid point j) into valid CIFs:
//
//  1. clip each curve into [0, 1] and repair monotonicity via running maximum;
//  2. rescale all causes by the single factor max(1, Σ_k CIF_k(t_last)) so
//     the incidences sum to at most 1 at every grid point.
//
// A shared constant factor is what keeps both invariants at once: per-time
// rescaling could reintroduce dips, while a constant scale preserves each
// curve's monotone shape. After repair, the cause sums are non-decreasing, so
// their maximum is attained at the last grid point; dividing by that maximum
// bounds the sum everywhere and leaves survival = 1 − Σ_k CIF_k in [0, 1].
func repairIncidenceCurves(perCause [][]float64) {
	if len(perCause) == 0 {
		return
	}
	for _, curve := range perCause {
		clip01(curve)
		cumMax(curve)
	}

	last := len(perCause[0]) - 1
	total := 0.0
	for _, curve := range perCause {
		total += curve[last]
	}
	if total <= 1 {
		return
	}
	for _, curve := range perCause {
		for j := range curve {
			curve[j] /= total
		}
	}
}
