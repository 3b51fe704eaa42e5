package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	hazerrors "github.com/ArturoAmorQ/hazardous/pkg/errors"
)

// silenceWarnings swallows statistical warnings for the duration of a test and
// returns the captured slice for assertions.
func silenceWarnings(t *testing.T) *[]error {
	t.Helper()
	var warnings []error
	hazerrors.SetZerologWarnFunc(nil)
	hazerrors.SetWarningHandler(func(w error) {
		warnings = append(warnings, w)
	})
	t.Cleanup(func() {
		hazerrors.SetWarningHandler(func(error) {})
	})
	return &warnings
}

func TestBrierScoreIncidenceKnownValue(t *testing.T) {
	durations := []float64{1, 2, 3, 4}
	events := []float64{1, 0, 2, 0}

	// Constant incidence prediction of 0.5 at t=2. The censoring curve drops
	// to 2/3 at t=2, so G(2⁻)=1 and the weights at t=2 are [1, 0, 1, 1]:
	// the sample censored at 2 is excluded. Targets (any event by t=2) are
	// [1, -, 0, 0], so the score is (0.25 + 0.25 + 0.25) / 4.
	yPred := mat.NewDense(4, 1, []float64{0.5, 0.5, 0.5, 0.5})
	scores, err := BrierScoreIncidence(durations, events, durations, events, yPred, []float64{2}, AnyEvent)
	if err != nil {
		t.Fatalf("BrierScoreIncidence failed: %v", err)
	}
	if math.Abs(scores[0]-0.1875) > 1e-12 {
		t.Errorf("score = %v, want 0.1875", scores[0])
	}
}

func TestBrierScoreAtTimeZero(t *testing.T) {
	// At t=0 every sample is at risk; a calibrated model predicting zero
	// incidence at the origin scores exactly 0.
	durations := []float64{1, 2, 3, 4, 5}
	events := []float64{1, 0, 2, 1, 0}

	yPred := mat.NewDense(5, 1, nil)
	scores, err := BrierScoreIncidence(durations, events, durations, events, yPred, []float64{0}, AnyEvent)
	if err != nil {
		t.Fatalf("BrierScoreIncidence failed: %v", err)
	}
	if scores[0] != 0 {
		t.Errorf("Brier score at t=0 = %v, want 0", scores[0])
	}
}

func TestIntegratedBrierScoreEmpiricalBeatsConstant(t *testing.T) {
	silenceWarnings(t)

	// Uncensored data: the empirical any-event incidence is the best constant
	// curve, so predicting it must not lose to a flat 0.5 prediction.
	durations := []float64{1, 2, 3, 4, 5, 6}
	events := []float64{1, 1, 1, 1, 1, 1}
	times := []float64{1, 2, 3, 4, 5, 6}

	empirical := mat.NewDense(6, 6, nil)
	constant := mat.NewDense(6, 6, nil)
	for j, tq := range times {
		count := 0
		for _, d := range durations {
			if d <= tq {
				count++
			}
		}
		incidence := float64(count) / 6
		for i := 0; i < 6; i++ {
			empirical.Set(i, j, incidence)
			constant.Set(i, j, 0.5)
		}
	}

	ibsEmpirical, err := IntegratedBrierScoreIncidence(durations, events, durations, events, empirical, times, AnyEvent)
	if err != nil {
		t.Fatalf("IBS(empirical) failed: %v", err)
	}
	ibsConstant, err := IntegratedBrierScoreIncidence(durations, events, durations, events, constant, times, AnyEvent)
	if err != nil {
		t.Fatalf("IBS(constant) failed: %v", err)
	}
	if ibsEmpirical > ibsConstant {
		t.Errorf("IBS(empirical) = %v should not exceed IBS(constant 0.5) = %v", ibsEmpirical, ibsConstant)
	}
}

func TestIntegratedBrierScoreDirectionInvariance(t *testing.T) {
	durations := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	events := []float64{1, 0, 2, 1, 0, 1, 2, 0}
	times := []float64{1, 3, 5, 7}

	yPred := mat.NewDense(8, 4, nil)
	for i := 0; i < 8; i++ {
		for j := 0; j < 4; j++ {
			yPred.Set(i, j, float64(j+1)/10+float64(i)/100)
		}
	}

	forward, err := IntegratedBrierScoreIncidence(durations, events, durations, events, yPred, times, AnyEvent)
	if err != nil {
		t.Fatalf("forward IBS failed: %v", err)
	}

	reversedTimes := []float64{7, 5, 3, 1}
	reversedPred := mat.NewDense(8, 4, nil)
	for i := 0; i < 8; i++ {
		for j := 0; j < 4; j++ {
			reversedPred.Set(i, j, yPred.At(i, 3-j))
		}
	}
	backward, err := IntegratedBrierScoreIncidence(durations, events, durations, events, reversedPred, reversedTimes, AnyEvent)
	if err != nil {
		t.Fatalf("backward IBS failed: %v", err)
	}

	if math.Abs(forward-backward) > 1e-12 {
		t.Errorf("IBS depends on traversal direction: %v vs %v", forward, backward)
	}
}

func TestBrierScoreSurvivalMatchesIncidence(t *testing.T) {
	durations := []float64{1, 2, 3, 4}
	events := []float64{1, 0, 1, 0}
	times := []float64{1, 2, 3}

	surv := mat.NewDense(4, 3, []float64{
		0.9, 0.7, 0.5,
		0.8, 0.6, 0.4,
		0.95, 0.9, 0.2,
		0.99, 0.8, 0.7,
	})
	incidence := mat.NewDense(4, 3, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			incidence.Set(i, j, 1-surv.At(i, j))
		}
	}

	fromSurv, err := BrierScoreSurvival(durations, events, durations, events, surv, times)
	if err != nil {
		t.Fatalf("BrierScoreSurvival failed: %v", err)
	}
	fromInc, err := BrierScoreIncidence(durations, events, durations, events, incidence, times, AnyEvent)
	if err != nil {
		t.Fatalf("BrierScoreIncidence failed: %v", err)
	}
	for j := range fromSurv {
		if math.Abs(fromSurv[j]-fromInc[j]) > 1e-12 {
			t.Errorf("time %d: survival and incidence scores differ: %v vs %v", j, fromSurv[j], fromInc[j])
		}
	}
}

func TestBrierScoreSurvivalWarnsOnCompetingEvents(t *testing.T) {
	warnings := silenceWarnings(t)

	durations := []float64{1, 2, 3, 4}
	events := []float64{1, 2, 0, 1}

	computer, err := NewBrierScoreComputer(durations, events, 1)
	if err != nil {
		t.Fatalf("NewBrierScoreComputer failed: %v", err)
	}
	yPred := mat.NewDense(4, 1, []float64{0.5, 0.5, 0.5, 0.5})
	if _, err := computer.BrierScoreSurvival(durations, events, yPred, []float64{2}); err != nil {
		t.Fatalf("BrierScoreSurvival failed: %v", err)
	}

	var undefined *hazerrors.UndefinedMetricWarning
	found := false
	for _, w := range *warnings {
		if hazerrors.As(w, &undefined) {
			found = true
		}
	}
	if !found {
		t.Error("expected UndefinedMetricWarning for competing events with a single event of interest")
	}
}

func TestBrierScoreShapeErrors(t *testing.T) {
	durations := []float64{1, 2, 3}
	events := []float64{1, 0, 1}

	var shapeErr *hazerrors.ShapeMismatchError

	// Prediction columns must match the query times.
	yPred := mat.NewDense(3, 2, nil)
	_, err := BrierScoreIncidence(durations, events, durations, events, yPred, []float64{1}, AnyEvent)
	if !hazerrors.As(err, &shapeErr) {
		t.Errorf("expected ShapeMismatchError for times, got %v", err)
	}

	// Prediction rows must match the samples.
	yPred = mat.NewDense(2, 1, nil)
	_, err = BrierScoreIncidence(durations, events, durations, events, yPred, []float64{1}, AnyEvent)
	if !hazerrors.As(err, &shapeErr) {
		t.Errorf("expected ShapeMismatchError for samples, got %v", err)
	}

	if _, err := NewBrierScoreComputer(durations, []float64{1}, AnyEvent); err == nil {
		t.Error("expected shape mismatch for training targets")
	}
	if _, err := NewBrierScoreComputer(nil, nil, AnyEvent); err == nil {
		t.Error("expected error for empty training targets")
	}
	if _, err := NewBrierScoreComputer(durations, events, -1); err == nil {
		t.Error("expected error for negative event of interest")
	}
}

func TestIntegratedBrierScoreInsufficientGrid(t *testing.T) {
	durations := []float64{1, 2, 3}
	events := []float64{1, 0, 1}
	yPred := mat.NewDense(3, 1, nil)

	_, err := IntegratedBrierScoreIncidence(durations, events, durations, events, yPred, []float64{2}, AnyEvent)
	var gridErr *hazerrors.InsufficientGridError
	if !hazerrors.As(err, &gridErr) {
		t.Fatalf("expected InsufficientGridError, got %v", err)
	}
	if gridErr.NumPoints != 1 {
		t.Errorf("NumPoints = %d, want 1", gridErr.NumPoints)
	}
}
