package survival

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ArturoAmorQ/hazardous/core/model"
	hazerrors "github.com/ArturoAmorQ/hazardous/pkg/errors"
)

// DefaultMinSurvivalProb is the floor applied to the estimated censoring
// survival probability G(t) before inversion. Tail weights scale as 1/G(t), so
// the floor bounds them at 1/DefaultMinSurvivalProb; raise it when late-time
// weights dominate a metric.
const DefaultMinSurvivalProb = 1e-8

// IpcwEstimator estimates Inverse Probability of Censoring Weights.
//
// It fits a product-limit model of the censoring distribution G(t) by role
// reversal (censoring is the event of interest, observed events censor) and
// exposes weights 1/G(t⁻). The estimator owns no mutable state after Fit and
// is safe for concurrent read access.
type IpcwEstimator struct {
	model.BaseEstimator

	// MinSurvivalProb clips G(t) away from zero before inversion.
	MinSurvivalProb float64

	censoring   *SurvivalFunctionEstimator
	numCensored int
}

// NewIpcwEstimator creates an IpcwEstimator with default parameters.
func NewIpcwEstimator() *IpcwEstimator {
	return &IpcwEstimator{MinSurvivalProb: DefaultMinSurvivalProb}
}

// WithMinSurvivalProb sets the clip floor for G(t).
func (e *IpcwEstimator) WithMinSurvivalProb(p float64) *IpcwEstimator {
	e.MinSurvivalProb = p
	return e
}

// Fit estimates the censoring survival curve from durations and event labels
// (0 = censored, k > 0 = cause k).
//
// When no censoring is observed, G is identically 1 and every weight is 1.
// This is a statistically valid degenerate case: it is flagged through the
// warning handler as a DegenerateCensoringWarning, not raised as an error.
func (e *IpcwEstimator) Fit(durations, events []float64) error {
	e.BeginFit()
	if len(durations) != len(events) {
		e.Reset()
		return hazerrors.NewShapeMismatchError("IpcwEstimator.Fit",
			len(durations), len(events), 0)
	}
	if e.MinSurvivalProb <= 0 || e.MinSurvivalProb >= 1 {
		e.Reset()
		return hazerrors.NewValueError("IpcwEstimator.Fit",
			"MinSurvivalProb must be in (0, 1)")
	}

	e.numCensored = 0
	for _, ev := range events {
		if ev == 0 {
			e.numCensored++
		}
	}
	if e.numCensored == 0 {
		hazerrors.Warn(hazerrors.NewDegenerateCensoringWarning(len(events)))
	}

	e.censoring = NewSurvivalFunctionEstimator(RoleCensoring)
	if err := e.censoring.Fit(durations, events); err != nil {
		e.Reset()
		return hazerrors.Wrap(err, "IpcwEstimator.Fit")
	}

	e.SetFitted()
	return nil
}

// NumCensored returns the number of censored observations seen at fit time.
func (e *IpcwEstimator) NumCensored() int {
	return e.numCensored
}

// Predict returns the weight 1/G(t⁻) for each query time, with G clipped at
// MinSurvivalProb.
func (e *IpcwEstimator) Predict(times []float64) ([]float64, error) {
	if !e.IsFitted() {
		return nil, hazerrors.NewNotFittedError("IpcwEstimator", "Predict")
	}
	g, err := e.censoring.PredictBefore(times)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(g))
	for i, v := range g {
		if v < e.MinSurvivalProb {
			v = e.MinSurvivalProb
		}
		out[i] = 1 / v
	}
	return out, nil
}

// ComputeWeights returns the n_samples × n_times weight matrix used for
// censoring-adjusted losses. For sample i with duration T_i, label E_i and
// query time t:
//
//   - t < T_i (still under observation): weight 1/G(t⁻)
//   - T_i <= t and E_i > 0 (event observed by t): weight 1/G(T_i⁻)
//   - T_i <= t and E_i = 0 (censored by t): weight 0. The sample's true
//     status at t is unknown and is excluded, never imputed.
//
// All weights are >= 0.
func (e *IpcwEstimator) ComputeWeights(queryTimes, durations, events []float64) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, hazerrors.NewNotFittedError("IpcwEstimator", "ComputeWeights")
	}
	if len(durations) != len(events) {
		return nil, hazerrors.NewShapeMismatchError("IpcwEstimator.ComputeWeights",
			len(durations), len(events), 0)
	}
	if len(queryTimes) == 0 {
		return nil, hazerrors.Wrap(hazerrors.ErrEmptyData, "IpcwEstimator.ComputeWeights")
	}

	atTimes, err := e.Predict(queryTimes)
	if err != nil {
		return nil, err
	}
	atDurations, err := e.Predict(durations)
	if err != nil {
		return nil, err
	}

	weights := mat.NewDense(len(durations), len(queryTimes), nil)
	for i, d := range durations {
		for j, t := range queryTimes {
			switch {
			case t < d:
				weights.Set(i, j, atTimes[j])
			case events[i] > 0:
				weights.Set(i, j, atDurations[i])
			default:
				weights.Set(i, j, 0)
			}
		}
	}
	return weights, nil
}
