package survival

import (
	"sort"

	"github.com/YuminosukeSato/scigo/sklearn/lightgbm"
	"gonum.org/v1/gonum/mat"

	"github.com/ArturoAmorQ/hazardous/core/model"
	hazerrors "github.com/ArturoAmorQ/hazardous/pkg/errors"
	"github.com/ArturoAmorQ/hazardous/pkg/log"
)

// GradientBoostingIncidence estimates cause-specific cumulative incidence
// functions under competing risks and right-censoring.
//
// Fit builds a shared time grid, estimates IPCW weights from the censoring
// distribution, encodes (duration, event) pairs into weighted binary targets
// over the grid, and trains one gradient-boosted classifier per competing
// cause on the time-augmented design matrix. The inner learner is the scigo
// LightGBM classifier, consumed as a black box.
//
// At predict time the raw per-cause scores are post-processed into monotone
// CIF curves whose sum never exceeds 1, so the implied survival probability
// 1 − Σ_k CIF_k(t) stays in [0, 1]. Predictions at arbitrary query times use
// previous-grid-point step interpolation; times beyond the training horizon
// are clamped to the last grid value and flagged with an ExtrapolationWarning.
type GradientBoostingIncidence struct {
	model.BaseEstimator

	// NumCauses fixes the competing cause labels to 1..NumCauses. When 0, the
	// causes are detected from the distinct positive event labels at fit time.
	NumCauses int
	// NumIterations is the boosting round count of each per-cause ensemble.
	NumIterations int
	// LearningRate is the inner learner's shrinkage.
	LearningRate float64
	// NumLeaves bounds the leaf count of each tree.
	NumLeaves int
	// TimeGridSize is the requested grid size when TimeGrid is not supplied.
	TimeGridSize int
	// TimeGrid overrides the fitted grid with explicit, strictly increasing
	// time points.
	TimeGrid []float64
	// RandomState seeds the inner learner.
	RandomState int
	// MinSurvivalProb is the IPCW clip floor, see IpcwEstimator.
	MinSurvivalProb float64
	// ShowProgress enables Info-level fit logging.
	ShowProgress bool

	grid     []float64
	causes   []int
	ipcw     *IpcwEstimator
	learners []*lightgbm.LGBMClassifier
	nFeat    int
}

// NewGradientBoostingIncidence creates an estimator with default parameters.
func NewGradientBoostingIncidence() *GradientBoostingIncidence {
	return &GradientBoostingIncidence{
		NumIterations:   100,
		LearningRate:    0.05,
		NumLeaves:       31,
		TimeGridSize:    DefaultTimeGridSize,
		RandomState:     42,
		MinSurvivalProb: DefaultMinSurvivalProb,
	}
}

// WithNumCauses fixes the competing cause labels to 1..n.
func (gbi *GradientBoostingIncidence) WithNumCauses(n int) *GradientBoostingIncidence {
	gbi.NumCauses = n
	return gbi
}

// WithNumIterations sets the boosting round count.
func (gbi *GradientBoostingIncidence) WithNumIterations(n int) *GradientBoostingIncidence {
	gbi.NumIterations = n
	return gbi
}

// WithLearningRate sets the inner learner's shrinkage.
func (gbi *GradientBoostingIncidence) WithLearningRate(lr float64) *GradientBoostingIncidence {
	gbi.LearningRate = lr
	return gbi
}

// WithNumLeaves sets the leaf bound of each tree.
func (gbi *GradientBoostingIncidence) WithNumLeaves(n int) *GradientBoostingIncidence {
	gbi.NumLeaves = n
	return gbi
}

// WithTimeGridSize sets the requested quantile grid size.
func (gbi *GradientBoostingIncidence) WithTimeGridSize(m int) *GradientBoostingIncidence {
	gbi.TimeGridSize = m
	return gbi
}

// WithTimeGrid supplies an explicit time grid instead of the quantile grid.
func (gbi *GradientBoostingIncidence) WithTimeGrid(grid []float64) *GradientBoostingIncidence {
	gbi.TimeGrid = grid
	return gbi
}

// WithRandomState sets the random seed.
func (gbi *GradientBoostingIncidence) WithRandomState(seed int) *GradientBoostingIncidence {
	gbi.RandomState = seed
	return gbi
}

// Fit trains one boosted ensemble per competing cause.
//
// X holds one covariate row per observation; durations[i] is the observed
// event or censoring time and events[i] its label (0 = censored, k > 0 =
// cause k). A failed Fit leaves the estimator in the not-fitted state.
func (gbi *GradientBoostingIncidence) Fit(X mat.Matrix, durations, events []float64) (err error) {
	defer hazerrors.Recover(&err, "GradientBoostingIncidence.Fit")

	gbi.BeginFit()
	defer func() {
		if err != nil {
			gbi.Reset()
		}
	}()

	rows, cols := X.Dims()
	if rows != len(durations) {
		return hazerrors.NewShapeMismatchError("GradientBoostingIncidence.Fit",
			rows, len(durations), 0)
	}
	if len(durations) != len(events) {
		return hazerrors.NewShapeMismatchError("GradientBoostingIncidence.Fit",
			len(durations), len(events), 0)
	}

	causes, err := gbi.resolveCauses(events)
	if err != nil {
		return err
	}

	grid, err := gbi.resolveGrid(durations)
	if err != nil {
		return err
	}

	ipcw := NewIpcwEstimator().WithMinSurvivalProb(gbi.MinSurvivalProb)
	if err := ipcw.Fit(durations, events); err != nil {
		return err
	}

	logger := log.GetLoggerWithName("survival.gradient_boosting_incidence")
	if gbi.ShowProgress {
		logger.Info("Training GradientBoostingIncidence",
			"samples", rows,
			"features", cols,
			"causes", len(causes),
			"grid_size", len(grid),
			"iterations", gbi.NumIterations)
	}

	enc := &incidenceEncoder{grid: grid, ipcw: ipcw}
	stacked := enc.stackedDesign(X)

	learners := make([]*lightgbm.LGBMClassifier, len(causes))
	for c, cause := range causes {
		y, w, err := enc.encodeCause(durations, events, cause)
		if err != nil {
			return err
		}

		clf := lightgbm.NewLGBMClassifier().
			WithNumIterations(gbi.NumIterations).
			WithNumLeaves(gbi.NumLeaves).
			WithLearningRate(gbi.LearningRate).
			WithRandomState(gbi.RandomState)
		if err := clf.FitWeighted(stacked, y, w); err != nil {
			return hazerrors.Wrapf(err, "GradientBoostingIncidence.Fit: cause %d", cause)
		}
		learners[c] = clf
	}

	gbi.grid = grid
	gbi.causes = causes
	gbi.ipcw = ipcw
	gbi.learners = learners
	gbi.nFeat = cols
	gbi.SetFitted()

	if gbi.ShowProgress {
		logger.Info("Training completed successfully")
	}
	return nil
}

func (gbi *GradientBoostingIncidence) resolveCauses(events []float64) ([]int, error) {
	if gbi.NumCauses > 0 {
		causes := make([]int, gbi.NumCauses)
		for k := range causes {
			causes[k] = k + 1
		}
		return causes, nil
	}

	seen := map[int]bool{}
	for _, ev := range events {
		if ev < 0 {
			return nil, hazerrors.NewValueError("GradientBoostingIncidence.Fit",
				"event labels must be non-negative")
		}
		if ev > 0 {
			seen[int(ev)] = true
		}
	}
	if len(seen) == 0 {
		return nil, hazerrors.NewValueError("GradientBoostingIncidence.Fit",
			"no events observed: every sample is censored")
	}
	causes := make([]int, 0, len(seen))
	for k := range seen {
		causes = append(causes, k)
	}
	sort.Ints(causes)
	return causes, nil
}

func (gbi *GradientBoostingIncidence) resolveGrid(durations []float64) ([]float64, error) {
	if gbi.TimeGrid != nil {
		if len(gbi.TimeGrid) < 2 {
			return nil, hazerrors.NewInvalidGridError("GradientBoostingIncidence.Fit",
				"supplied grid must contain at least 2 points", len(gbi.TimeGrid))
		}
		for j := 1; j < len(gbi.TimeGrid); j++ {
			if gbi.TimeGrid[j] <= gbi.TimeGrid[j-1] {
				return nil, hazerrors.NewInvalidGridError("GradientBoostingIncidence.Fit",
					"supplied grid must be strictly increasing", len(gbi.TimeGrid))
			}
		}
		grid := make([]float64, len(gbi.TimeGrid))
		copy(grid, gbi.TimeGrid)
		return grid, nil
	}
	return NewTimeGridBuilder().WithNumPoints(gbi.TimeGridSize).Build(durations)
}

// Grid returns a copy of the fitted time grid, or nil before Fit.
func (gbi *GradientBoostingIncidence) Grid() []float64 {
	if !gbi.IsFitted() {
		return nil
	}
	grid := make([]float64, len(gbi.grid))
	copy(grid, gbi.grid)
	return grid
}

// Causes returns the competing cause labels the model was fitted on.
func (gbi *GradientBoostingIncidence) Causes() []int {
	if !gbi.IsFitted() {
		return nil
	}
	causes := make([]int, len(gbi.causes))
	copy(causes, gbi.causes)
	return causes
}

// predictGridCurves evaluates the repaired per-cause CIF curves at the grid
// points. curves[i][c][j] is sample i's incidence of cause causes[c] at
// grid[j].
func (gbi *GradientBoostingIncidence) predictGridCurves(X mat.Matrix) ([][][]float64, error) {
	n, _ := X.Dims()
	m := len(gbi.grid)

	enc := &incidenceEncoder{grid: gbi.grid, ipcw: gbi.ipcw}
	stacked := enc.stackedDesign(X)

	curves := make([][][]float64, n)
	for i := range curves {
		curves[i] = make([][]float64, len(gbi.causes))
		for c := range curves[i] {
			curves[i][c] = make([]float64, m)
		}
	}

	for c, clf := range gbi.learners {
		proba, err := clf.PredictProba(stacked)
		if err != nil {
			return nil, hazerrors.Wrapf(err, "GradientBoostingIncidence: cause %d", gbi.causes[c])
		}
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				curves[i][c][j] = proba.At(i*m+j, 1)
			}
		}
	}

	for i := range curves {
		repairIncidenceCurves(curves[i])
	}
	return curves, nil
}

// gridIndexes maps query times to grid indexes for previous-point step
// interpolation. An index of -1 means the query time precedes the grid start,
// where every CIF is 0. Times beyond the training horizon clamp to the last
// grid point and raise an ExtrapolationWarning.
func (gbi *GradientBoostingIncidence) gridIndexes(times []float64) []int {
	horizon := gbi.grid[len(gbi.grid)-1]
	idx := make([]int, len(times))
	warned := false
	for j, t := range times {
		if t > horizon && !warned {
			hazerrors.Warn(hazerrors.NewExtrapolationWarning(t, horizon))
			warned = true
		}
		k := sort.Search(len(gbi.grid), func(g int) bool { return gbi.grid[g] > t })
		idx[j] = k - 1
	}
	return idx
}

// PredictCumulativeIncidence returns the CIF of every competing cause at the
// given query times.
//
// The result has one row per (cause, sample) pair in cause-major order: rows
// [c*n, (c+1)*n) hold the curves of cause Causes()[c] for the n input samples,
// and column j corresponds to times[j]. Use CauseBlock to slice out one
// cause's curves. Every row is non-decreasing and, per sample and time, the
// causes' incidences sum to at most 1.
func (gbi *GradientBoostingIncidence) PredictCumulativeIncidence(X mat.Matrix, times []float64) (*mat.Dense, error) {
	if !gbi.IsFitted() {
		return nil, hazerrors.NewNotFittedError("GradientBoostingIncidence", "PredictCumulativeIncidence")
	}
	n, cols := X.Dims()
	if cols != gbi.nFeat {
		return nil, hazerrors.NewShapeMismatchError("GradientBoostingIncidence.PredictCumulativeIncidence",
			gbi.nFeat, cols, 1)
	}
	if len(times) == 0 {
		return nil, hazerrors.Wrap(hazerrors.ErrEmptyData, "GradientBoostingIncidence.PredictCumulativeIncidence")
	}

	curves, err := gbi.predictGridCurves(X)
	if err != nil {
		return nil, err
	}
	idx := gbi.gridIndexes(times)

	out := mat.NewDense(len(gbi.causes)*n, len(times), nil)
	for c := range gbi.causes {
		for i := 0; i < n; i++ {
			row := c*n + i
			for j, k := range idx {
				if k < 0 {
					continue // before the grid start the incidence is 0
				}
				out.Set(row, j, curves[i][c][k])
			}
		}
	}
	return out, nil
}

// CauseBlock slices the rows of a PredictCumulativeIncidence result that hold
// the curves for the given cause label.
func (gbi *GradientBoostingIncidence) CauseBlock(pred *mat.Dense, cause int) (mat.Matrix, error) {
	if !gbi.IsFitted() {
		return nil, hazerrors.NewNotFittedError("GradientBoostingIncidence", "CauseBlock")
	}
	rows, cols := pred.Dims()
	if rows%len(gbi.causes) != 0 {
		return nil, hazerrors.NewShapeMismatchError("GradientBoostingIncidence.CauseBlock",
			len(gbi.causes), rows, 0)
	}
	for c, label := range gbi.causes {
		if label == cause {
			n := rows / len(gbi.causes)
			return pred.Slice(c*n, (c+1)*n, 0, cols), nil
		}
	}
	return nil, hazerrors.NewValueError("GradientBoostingIncidence.CauseBlock",
		"unknown cause label")
}

// PredictSurvivalFunction returns the overall survival probability
// S(t) = 1 − Σ_k CIF_k(t) for each sample (rows) and query time (columns).
// The normalization step in the CIF post-processing guarantees the result
// stays within [0, 1].
func (gbi *GradientBoostingIncidence) PredictSurvivalFunction(X mat.Matrix, times []float64) (*mat.Dense, error) {
	if !gbi.IsFitted() {
		return nil, hazerrors.NewNotFittedError("GradientBoostingIncidence", "PredictSurvivalFunction")
	}
	n, cols := X.Dims()
	if cols != gbi.nFeat {
		return nil, hazerrors.NewShapeMismatchError("GradientBoostingIncidence.PredictSurvivalFunction",
			gbi.nFeat, cols, 1)
	}
	if len(times) == 0 {
		return nil, hazerrors.Wrap(hazerrors.ErrEmptyData, "GradientBoostingIncidence.PredictSurvivalFunction")
	}

	curves, err := gbi.predictGridCurves(X)
	if err != nil {
		return nil, err
	}
	idx := gbi.gridIndexes(times)

	out := mat.NewDense(n, len(times), nil)
	for i := 0; i < n; i++ {
		for j, k := range idx {
			if k < 0 {
				out.Set(i, j, 1)
				continue
			}
			total := 0.0
			for c := range gbi.causes {
				total += curves[i][c][k]
			}
			out.Set(i, j, 1-total)
		}
	}
	return out, nil
}
