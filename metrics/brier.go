// Package metrics provides censoring-adjusted evaluation metrics for
// time-to-event predictions: the time-dependent Brier score for survival and
// cumulative incidence estimates, its integrated summary, and a bootstrap
// sampler for confidence bands. All scores use the Inverse Probability of
// Censoring Weighting (IPCW) scheme so that censored observations are
// excluded, never imputed.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"

	hazerrors "github.com/ArturoAmorQ/hazardous/pkg/errors"
	"github.com/ArturoAmorQ/hazardous/survival"
)

// AnyEvent collapses all competing causes into a single event indicator when
// passed as the event of interest.
const AnyEvent = 0

// BrierScoreComputer computes time-dependent Brier scores adjusted for
// censoring.
//
// The censoring distribution is estimated once, from the training targets
// passed at construction, and reused across score calls; the computer holds no
// other state and is safe for concurrent use after construction.
type BrierScoreComputer struct {
	eventOfInterest int
	multipleEvents  bool
	ipcw            *survival.IpcwEstimator
}

// NewBrierScoreComputer fits the IPCW model on the training targets.
// eventOfInterest selects the competing cause to score; AnyEvent collapses all
// causes into a single event indicator.
func NewBrierScoreComputer(durationsTrain, eventsTrain []float64, eventOfInterest int) (*BrierScoreComputer, error) {
	if len(durationsTrain) != len(eventsTrain) {
		return nil, hazerrors.NewShapeMismatchError("NewBrierScoreComputer",
			len(durationsTrain), len(eventsTrain), 0)
	}
	if len(durationsTrain) == 0 {
		return nil, hazerrors.Wrap(hazerrors.ErrEmptyData, "NewBrierScoreComputer")
	}
	if eventOfInterest < 0 {
		return nil, hazerrors.NewValueError("NewBrierScoreComputer",
			"event of interest must be AnyEvent or a positive cause label")
	}

	seen := map[float64]bool{}
	for _, ev := range eventsTrain {
		if ev > 0 {
			seen[ev] = true
		}
	}

	ipcw := survival.NewIpcwEstimator()
	if err := ipcw.Fit(durationsTrain, eventsTrain); err != nil {
		return nil, err
	}

	return &BrierScoreComputer{
		eventOfInterest: eventOfInterest,
		multipleEvents:  len(seen) > 1,
		ipcw:            ipcw,
	}, nil
}

// BrierScoreSurvival scores a survival function estimate against the partially
// observed ground truth, returning one score per query time (averaged over
// samples). yPred holds survival probabilities, one row per sample and one
// column per time.
//
// With multiple competing causes this only makes sense when all causes are
// collapsed (AnyEvent); a specific event of interest is flagged through the
// warning handler.
func (c *BrierScoreComputer) BrierScoreSurvival(durations, events []float64, yPred mat.Matrix, times []float64) ([]float64, error) {
	if c.multipleEvents && c.eventOfInterest != AnyEvent {
		hazerrors.Warn(hazerrors.NewUndefinedMetricWarning("brier_score_survival",
			"data has multiple competing events but a single event of interest was requested; "+
				"use AnyEvent to collapse causes"))
	}

	rows, cols := yPred.Dims()
	incidence := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			incidence.Set(i, j, 1-yPred.At(i, j))
		}
	}
	return c.BrierScoreIncidence(durations, events, incidence, times)
}

// BrierScoreIncidence scores a cause-specific cumulative incidence estimate,
// returning one score per query time. yPred holds incidence probabilities for
// the event of interest, one row per sample and one column per time.
//
// For sample i with duration T_i and label E_i, the target at horizon t is
// 1 when the event of interest occurred by t and 0 otherwise, weighted by:
//
//   - 1/G(t⁻) while the sample is still under observation (t < T_i),
//   - 1/G(T_i⁻) after an observed event (E_i > 0, T_i <= t),
//   - 0 after censoring (E_i = 0, T_i <= t): the status at t is unknown.
func (c *BrierScoreComputer) BrierScoreIncidence(durations, events []float64, yPred mat.Matrix, times []float64) ([]float64, error) {
	if len(durations) != len(events) {
		return nil, hazerrors.NewShapeMismatchError("BrierScoreIncidence",
			len(durations), len(events), 0)
	}
	rows, cols := yPred.Dims()
	if rows != len(durations) {
		return nil, hazerrors.NewShapeMismatchError("BrierScoreIncidence",
			len(durations), rows, 0)
	}
	if cols != len(times) {
		return nil, hazerrors.NewShapeMismatchError("BrierScoreIncidence",
			len(times), cols, 1)
	}

	weights, err := c.ipcw.ComputeWeights(times, durations, events)
	if err != nil {
		return nil, err
	}

	n := float64(len(durations))
	scores := make([]float64, len(times))
	for j, t := range times {
		var total float64
		for i := range durations {
			target := 0.0
			if c.matchesInterest(events[i]) && durations[i] <= t {
				target = 1
			}
			diff := target - yPred.At(i, j)
			total += weights.At(i, j) * diff * diff
		}
		scores[j] = total / n
	}
	return scores, nil
}

func (c *BrierScoreComputer) matchesInterest(event float64) bool {
	if c.eventOfInterest == AnyEvent {
		return event > 0
	}
	return event == float64(c.eventOfInterest)
}

// BrierScoreSurvival computes the IPCW-adjusted time-dependent Brier score of
// a survival function estimate. The training targets fit the censoring model;
// the test targets are the ground truth being scored.
func BrierScoreSurvival(durationsTrain, eventsTrain, durations, events []float64, yPred mat.Matrix, times []float64) ([]float64, error) {
	computer, err := NewBrierScoreComputer(durationsTrain, eventsTrain, AnyEvent)
	if err != nil {
		return nil, err
	}
	return computer.BrierScoreSurvival(durations, events, yPred, times)
}

// BrierScoreIncidence computes the IPCW-adjusted time-dependent Brier score of
// a cause-specific cumulative incidence estimate.
func BrierScoreIncidence(durationsTrain, eventsTrain, durations, events []float64, yPred mat.Matrix, times []float64, eventOfInterest int) ([]float64, error) {
	computer, err := NewBrierScoreComputer(durationsTrain, eventsTrain, eventOfInterest)
	if err != nil {
		return nil, err
	}
	return computer.BrierScoreIncidence(durations, events, yPred, times)
}

// IntegratedBrierScoreSurvival integrates the time-dependent survival Brier
// score over the query times (trapezoidal rule), normalized by the time span.
func IntegratedBrierScoreSurvival(durationsTrain, eventsTrain, durations, events []float64, yPred mat.Matrix, times []float64) (float64, error) {
	scores, err := BrierScoreSurvival(durationsTrain, eventsTrain, durations, events, yPred, times)
	if err != nil {
		return 0, err
	}
	return integrateScores(times, scores)
}

// IntegratedBrierScoreIncidence integrates the time-dependent incidence Brier
// score over the query times (trapezoidal rule), normalized by the time span.
func IntegratedBrierScoreIncidence(durationsTrain, eventsTrain, durations, events []float64, yPred mat.Matrix, times []float64, eventOfInterest int) (float64, error) {
	scores, err := BrierScoreIncidence(durationsTrain, eventsTrain, durations, events, yPred, times, eventOfInterest)
	if err != nil {
		return 0, err
	}
	return integrateScores(times, scores)
}

// integrateScores applies the trapezoidal rule over ascending times and
// normalizes by the span. Times are sorted (with their scores) before
// integration so the result is invariant to traversal direction.
func integrateScores(times, scores []float64) (float64, error) {
	if len(times) < 2 {
		return 0, hazerrors.NewInsufficientGridError("IntegratedBrierScore", len(times))
	}
	if len(times) != len(scores) {
		return 0, hazerrors.NewShapeMismatchError("IntegratedBrierScore",
			len(times), len(scores), 1)
	}

	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return times[order[a]] < times[order[b]] })

	sortedTimes := make([]float64, len(times))
	sortedScores := make([]float64, len(scores))
	for i, k := range order {
		sortedTimes[i] = times[k]
		sortedScores[i] = scores[k]
	}

	span := sortedTimes[len(sortedTimes)-1] - sortedTimes[0]
	if span <= 0 {
		return 0, hazerrors.NewInvalidGridError("IntegratedBrierScore",
			"integration span is zero: all query times coincide", len(times))
	}
	return integrate.Trapezoidal(sortedTimes, sortedScores) / span, nil
}
