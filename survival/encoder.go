package survival

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ArturoAmorQ/hazardous/core/parallel"
	hazerrors "github.com/ArturoAmorQ/hazardous/pkg/errors"
)

// incidenceEncoder turns (duration, event) pairs and the shared time grid into
// the per-(sample, time-bin) training targets consumed by the inner learner.
//
// The incidence problem is reframed as weighted binary classification: each
// grid point t_j contributes one row per sample with target 1 when the cause
// of interest occurred at or before t_j, and an IPCW sample weight that zeroes
// out contributions whose true status at t_j is unknown. The grid time is
// appended to the covariates as one extra feature so a single ensemble per
// cause learns all time bins jointly through the shared representation.
type incidenceEncoder struct {
	grid []float64
	ipcw *IpcwEstimator
}

// stackedDesign replicates each row of X once per grid point and appends the
// grid time as the last feature column. Row order is sample-major:
// row i*len(grid)+j holds (X_i, t_j).
func (enc *incidenceEncoder) stackedDesign(X mat.Matrix) *mat.Dense {
	n, p := X.Dims()
	m := len(enc.grid)
	stacked := mat.NewDense(n*m, p+1, nil)
	parallel.ParallelizeWithThreshold(n, 256, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < m; j++ {
				row := i*m + j
				for c := 0; c < p; c++ {
					stacked.Set(row, c, X.At(i, c))
				}
				stacked.Set(row, p, enc.grid[j])
			}
		}
	})
	return stacked
}

// encodeCause returns the stacked binary target column and IPCW sample weights
// for one cause, aligned with stackedDesign's row order.
//
// A sample censored before the first grid point simply carries zero weight in
// every bin; its rows are kept so shapes stay aligned, and the learner treats
// zero-weight rows as absent.
func (enc *incidenceEncoder) encodeCause(durations, events []float64, cause int) (*mat.Dense, []float64, error) {
	if cause <= 0 {
		return nil, nil, hazerrors.NewValueError("incidenceEncoder.encodeCause",
			"cause label must be positive")
	}
	n := len(durations)
	m := len(enc.grid)

	weightMat, err := enc.ipcw.ComputeWeights(enc.grid, durations, events)
	if err != nil {
		return nil, nil, err
	}

	y := mat.NewDense(n*m, 1, nil)
	w := make([]float64, n*m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			row := i*m + j
			if events[i] == float64(cause) && durations[i] <= enc.grid[j] {
				y.Set(row, 0, 1)
			}
			w[row] = weightMat.At(i, j)
		}
	}
	return y, w, nil
}
