// Package hazardous provides competing-risks time-to-event estimation and
// censoring-adjusted evaluation for Go, with a scikit-learn-like API.
//
// Given covariates, an observed duration and an event label (0 for censoring,
// k > 0 for competing cause k), the library estimates calibrated cumulative
// incidence functions per cause and calibrated survival probabilities, and it
// scores such probabilistic forecasts against partially observed ground truth.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/ArturoAmorQ/hazardous/survival"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{0.1, 0.4, 0.7, 0.9})
//	    durations := []float64{1, 2, 3, 4}
//	    events := []float64{1, 0, 2, 0} // causes 1 and 2, two censored
//
//	    est := survival.NewGradientBoostingIncidence().
//	        WithTimeGridSize(4).
//	        WithNumIterations(20)
//	    if err := est.Fit(X, durations, events); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    cif, err := est.PredictCumulativeIncidence(X, est.Grid())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(cif))
//	}
//
// # Packages
//
//   - survival: GradientBoostingIncidence, IpcwEstimator, TimeGridBuilder and
//     the product-limit survival function estimator
//   - metrics: IPCW-adjusted Brier scores, integrated Brier scores and the
//     bootstrap BrierScoreSampler
//   - pkg/errors: structured error taxonomy and the statistical warning system
//   - pkg/log: structured logging facade backed by zerolog
//
// The inner gradient-boosting engine is consumed from
// github.com/YuminosukeSato/scigo as a black-box weighted classifier; this
// module owns the survival-specific machinery around it.
package hazardous
