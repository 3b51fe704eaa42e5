package survival

import (
	"sort"

	"github.com/ArturoAmorQ/hazardous/core/model"
	hazerrors "github.com/ArturoAmorQ/hazardous/pkg/errors"
)

// TargetRole selects which observations the product-limit estimator treats as
// the event of interest. The same fitting routine serves both the primary
// any-event survival curve and the censoring distribution needed for IPCW;
// the role flag performs the reversal instead of duplicating the estimator.
type TargetRole int

const (
	// RoleEvent treats any event label > 0 as the event of interest; censored
	// observations (label 0) censor the curve.
	RoleEvent TargetRole = iota
	// RoleCensoring treats censoring (label 0) as the event of interest; any
	// observed event censors the curve. This is the IPCW role reversal.
	RoleCensoring
)

// SurvivalFunctionEstimator is a product-limit (Kaplan-Meier) estimator of a
// right-continuous step survival function.
//
// After Fit, Predict evaluates S(t) and PredictBefore evaluates the left limit
// S(t⁻). The curve is monotone non-increasing and takes values in [0, 1].
type SurvivalFunctionEstimator struct {
	model.BaseEstimator

	// Role selects event-of-interest vs censoring-as-event fitting.
	Role TargetRole

	// Step representation: surv[j] is the curve value on [times[j], times[j+1]).
	// Before times[0] the curve is 1.
	times []float64
	surv  []float64
}

// NewSurvivalFunctionEstimator creates an estimator for the given target role.
func NewSurvivalFunctionEstimator(role TargetRole) *SurvivalFunctionEstimator {
	return &SurvivalFunctionEstimator{Role: role}
}

func (s *SurvivalFunctionEstimator) isTargetEvent(event float64) bool {
	if s.Role == RoleCensoring {
		return event == 0
	}
	return event > 0
}

// Fit estimates the survival curve from observed durations and event labels
// (0 = censored, k > 0 = cause k).
func (s *SurvivalFunctionEstimator) Fit(durations, events []float64) error {
	s.BeginFit()
	if len(durations) == 0 {
		s.Reset()
		return hazerrors.Wrap(hazerrors.ErrEmptyData, "SurvivalFunctionEstimator.Fit")
	}
	if len(durations) != len(events) {
		s.Reset()
		return hazerrors.NewShapeMismatchError("SurvivalFunctionEstimator.Fit",
			len(durations), len(events), 0)
	}
	for _, d := range durations {
		if d < 0 {
			s.Reset()
			return hazerrors.NewValueError("SurvivalFunctionEstimator.Fit",
				"durations must be non-negative")
		}
	}

	n := len(durations)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return durations[order[a]] < durations[order[b]]
	})

	s.times = s.times[:0]
	s.surv = s.surv[:0]

	// Walk distinct observed times in ascending order. At each time t the
	// at-risk set is every sample with duration >= t, so it shrinks only as
	// the walk passes samples.
	prob := 1.0
	atRisk := n
	i := 0
	for i < n {
		t := durations[order[i]]
		deaths := 0
		ties := 0
		for i < n && durations[order[i]] == t {
			if s.isTargetEvent(events[order[i]]) {
				deaths++
			}
			ties++
			i++
		}
		if deaths > 0 {
			prob *= 1 - float64(deaths)/float64(atRisk)
			s.times = append(s.times, t)
			s.surv = append(s.surv, prob)
		}
		atRisk -= ties
	}

	s.SetFitted()
	return nil
}

// Predict returns S(t) for each query time. The curve is right-continuous: at
// an observed drop time the post-drop value is returned.
func (s *SurvivalFunctionEstimator) Predict(times []float64) ([]float64, error) {
	if !s.IsFitted() {
		return nil, hazerrors.NewNotFittedError("SurvivalFunctionEstimator", "Predict")
	}
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = s.at(t, false)
	}
	return out, nil
}

// PredictBefore returns the left limit S(t⁻) for each query time. IPCW
// evaluates the censoring curve just before t so that information revealed at
// the exact censoring instant is never used.
func (s *SurvivalFunctionEstimator) PredictBefore(times []float64) ([]float64, error) {
	if !s.IsFitted() {
		return nil, hazerrors.NewNotFittedError("SurvivalFunctionEstimator", "PredictBefore")
	}
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = s.at(t, true)
	}
	return out, nil
}

// at evaluates the step curve at t. With leftLimit, drops at exactly t are
// excluded.
func (s *SurvivalFunctionEstimator) at(t float64, leftLimit bool) float64 {
	// Index of the first drop time > t (or >= t for the left limit).
	var idx int
	if leftLimit {
		idx = sort.SearchFloat64s(s.times, t)
	} else {
		idx = sort.Search(len(s.times), func(j int) bool { return s.times[j] > t })
	}
	if idx == 0 {
		return 1.0
	}
	return s.surv[idx-1]
}
