// Package survival implements time-to-event estimation under competing risks
// and right-censoring.
//
// The central estimator is GradientBoostingIncidence, which learns
// cause-specific cumulative incidence functions (CIFs) on a shared discretized
// time grid by training one gradient-boosted classifier per competing cause on
// IPCW-weighted binary targets. The inner tree ensemble is consumed as a
// black-box learner from github.com/YuminosukeSato/scigo; this package owns the
// survival-specific machinery around it:
//
//   - TimeGridBuilder derives the shared evaluation grid from observed
//     durations.
//   - SurvivalFunctionEstimator is a product-limit (Kaplan-Meier)
//     estimator whose TargetRole flag selects whether events or censoring are
//     treated as the event of interest.
//   - IpcwEstimator fits the censoring distribution through role reversal and
//     exposes the inverse-probability-of-censoring weights used both for
//     target encoding and for censoring-adjusted evaluation in the metrics
//     package.
//
// All estimators follow the Fit/Predict convention and report their state via
// IsFitted; calling a Predict method before a successful Fit returns a
// NotFittedError.
package survival
