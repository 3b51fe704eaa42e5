package survival

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	hazerrors "github.com/ArturoAmorQ/hazardous/pkg/errors"
)

// DefaultTimeGridSize is the number of quantile points requested from
// TimeGridBuilder when the caller does not override it.
const DefaultTimeGridSize = 100

// TimeGridBuilder derives a shared, ordered set of evaluation time points from
// observed durations. The grid is built from empirical quantiles so that time
// bins carry comparable numbers of observations, deduplicated, and always
// includes the minimum and maximum observed duration as boundaries.
//
// The grid is deterministic given the same durations and NumPoints.
type TimeGridBuilder struct {
	// NumPoints is the requested grid size. The returned grid may be shorter
	// when duplicate quantiles collapse (heavily tied durations).
	NumPoints int
}

// NewTimeGridBuilder creates a TimeGridBuilder with default parameters.
func NewTimeGridBuilder() *TimeGridBuilder {
	return &TimeGridBuilder{NumPoints: DefaultTimeGridSize}
}

// WithNumPoints sets the requested grid size.
func (b *TimeGridBuilder) WithNumPoints(n int) *TimeGridBuilder {
	b.NumPoints = n
	return b
}

// Build returns the evaluation time grid for the given observed durations
// (event and censoring times together).
//
// Returns an InvalidGridError when NumPoints < 2 or when fewer than 2 distinct
// durations exist.
func (b *TimeGridBuilder) Build(durations []float64) ([]float64, error) {
	if b.NumPoints < 2 {
		return nil, hazerrors.NewInvalidGridError("TimeGridBuilder.Build",
			"requested grid size must be at least 2", b.NumPoints)
	}
	if len(durations) == 0 {
		return nil, hazerrors.Wrap(hazerrors.ErrEmptyData, "TimeGridBuilder.Build")
	}

	sorted := make([]float64, len(durations))
	copy(sorted, durations)
	sort.Float64s(sorted)

	distinct := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			distinct++
		}
	}
	if distinct < 2 {
		return nil, hazerrors.NewInvalidGridError("TimeGridBuilder.Build",
			"fewer than 2 distinct durations observed", distinct)
	}

	grid := make([]float64, 0, b.NumPoints)
	for i := 0; i < b.NumPoints; i++ {
		p := float64(i) / float64(b.NumPoints-1)
		q := stat.Quantile(p, stat.Empirical, sorted, nil)
		if len(grid) == 0 || q > grid[len(grid)-1] {
			grid = append(grid, q)
		}
	}

	// Quantiles at p=0 and p=1 are the min and max observed durations, so the
	// boundaries are always present after deduplication.
	return grid, nil
}
