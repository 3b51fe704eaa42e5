package metrics

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ArturoAmorQ/hazardous/core/parallel"
	hazerrors "github.com/ArturoAmorQ/hazardous/pkg/errors"
)

// SamplerConfig is the immutable configuration of a BrierScoreSampler. All
// randomness derives from Seed, so two samplers with identical configuration
// and inputs produce identical score distributions.
type SamplerConfig struct {
	// Seed drives every bootstrap draw. Resample r uses its own PCG stream
	// keyed by (Seed, r), which keeps results independent of how iterations
	// are scheduled across workers.
	Seed uint64
	// NumResamples is the bootstrap iteration count (default 200).
	NumResamples int
	// RefitIPCW selects whether the censoring model is re-estimated on each
	// bootstrap draw of the evaluation set (more faithful to the bootstrap,
	// slower) or frozen from the training targets (faster, slightly biased).
	RefitIPCW bool
	// EventOfInterest selects the scored cause; AnyEvent collapses all causes.
	EventOfInterest int
}

// BrierScoreSampler produces a bootstrap distribution of time-dependent Brier
// score curves for confidence-interval estimation.
//
// Iterations are independent and run in parallel: each one resamples the
// evaluation set with replacement and scores it against its own read-only
// computer, so no mutable state is shared across workers.
type BrierScoreSampler struct {
	cfg SamplerConfig

	durationsTrain []float64
	eventsTrain    []float64
	frozen         *BrierScoreComputer
}

// NewBrierScoreSampler fits the frozen IPCW model on the training targets and
// captures the configuration.
func NewBrierScoreSampler(cfg SamplerConfig, durationsTrain, eventsTrain []float64) (*BrierScoreSampler, error) {
	if cfg.NumResamples == 0 {
		cfg.NumResamples = 200
	}
	if cfg.NumResamples < 1 {
		return nil, hazerrors.NewValueError("NewBrierScoreSampler",
			"NumResamples must be positive")
	}

	frozen, err := NewBrierScoreComputer(durationsTrain, eventsTrain, cfg.EventOfInterest)
	if err != nil {
		return nil, err
	}

	dur := make([]float64, len(durationsTrain))
	ev := make([]float64, len(eventsTrain))
	copy(dur, durationsTrain)
	copy(ev, eventsTrain)

	return &BrierScoreSampler{
		cfg:            cfg,
		durationsTrain: dur,
		eventsTrain:    ev,
		frozen:         frozen,
	}, nil
}

// Config returns the sampler's configuration.
func (s *BrierScoreSampler) Config() SamplerConfig {
	return s.cfg
}

// Sample bootstraps the evaluation set and scores each resample, producing the
// distribution of incidence Brier score curves at the given times.
func (s *BrierScoreSampler) Sample(durations, events []float64, yPred mat.Matrix, times []float64) (*SamplerResult, error) {
	if len(durations) != len(events) {
		return nil, hazerrors.NewShapeMismatchError("BrierScoreSampler.Sample",
			len(durations), len(events), 0)
	}
	rows, cols := yPred.Dims()
	if rows != len(durations) {
		return nil, hazerrors.NewShapeMismatchError("BrierScoreSampler.Sample",
			len(durations), rows, 0)
	}
	if cols != len(times) {
		return nil, hazerrors.NewShapeMismatchError("BrierScoreSampler.Sample",
			len(times), cols, 1)
	}
	if rows == 0 {
		return nil, hazerrors.Wrap(hazerrors.ErrEmptyData, "BrierScoreSampler.Sample")
	}

	n := len(durations)
	scores := mat.NewDense(s.cfg.NumResamples, len(times), nil)
	errs := make([]error, s.cfg.NumResamples)

	parallel.ParallelizeIndexed(s.cfg.NumResamples, func(r int) {
		rng := rand.New(rand.NewPCG(s.cfg.Seed, uint64(r)))

		resDur := make([]float64, n)
		resEv := make([]float64, n)
		resPred := mat.NewDense(n, len(times), nil)
		for i := 0; i < n; i++ {
			k := rng.IntN(n)
			resDur[i] = durations[k]
			resEv[i] = events[k]
			for j := 0; j < len(times); j++ {
				resPred.Set(i, j, yPred.At(k, j))
			}
		}

		computer := s.frozen
		if s.cfg.RefitIPCW {
			var err error
			computer, err = NewBrierScoreComputer(resDur, resEv, s.cfg.EventOfInterest)
			if err != nil {
				errs[r] = err
				return
			}
		}

		curve, err := computer.BrierScoreIncidence(resDur, resEv, resPred, times)
		if err != nil {
			errs[r] = err
			return
		}
		scores.SetRow(r, curve)
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	resultTimes := make([]float64, len(times))
	copy(resultTimes, times)
	return &SamplerResult{Scores: scores, Times: resultTimes}, nil
}

// SamplerResult holds the bootstrap distribution of Brier score curves.
type SamplerResult struct {
	// Scores has one row per resample and one column per query time.
	Scores *mat.Dense
	// Times are the query times the columns correspond to.
	Times []float64
}

// Mean returns the pointwise mean score curve.
func (r *SamplerResult) Mean() []float64 {
	rows, cols := r.Scores.Dims()
	out := make([]float64, cols)
	for j := 0; j < cols; j++ {
		var total float64
		for i := 0; i < rows; i++ {
			total += r.Scores.At(i, j)
		}
		out[j] = total / float64(rows)
	}
	return out
}

// Quantile returns the pointwise empirical p-quantile of the score curves.
func (r *SamplerResult) Quantile(p float64) []float64 {
	rows, cols := r.Scores.Dims()
	out := make([]float64, cols)
	column := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(column, j, r.Scores)
		sort.Float64s(column)
		out[j] = stat.Quantile(p, stat.Empirical, column, nil)
	}
	return out
}

// ConfidenceBand returns the pointwise (1−alpha) band as lower and upper
// quantile curves, e.g. alpha=0.05 for a 95% band.
func (r *SamplerResult) ConfidenceBand(alpha float64) (lower, upper []float64) {
	return r.Quantile(alpha / 2), r.Quantile(1 - alpha/2)
}
