package discretize

import (
	"math"

	gberrors "github.com/ezoic/gbtreecore/pkg/errors"
	"github.com/ezoic/gbtreecore/internal/state"
	"github.com/ezoic/gbtreecore/paralleldataset"
)

// ColumnRole selects which family of aggregator a column is fit with:
// numeric columns go to QuantileNumAgg/IntervalNumAgg depending on
// FitParams.NumericalKind, while categorical/rank columns always use
// CatAgg/RankAgg regardless of that setting.
type ColumnRole int

const (
	// RoleNumeric fits the column with a numeric (quantile or interval) aggregator.
	RoleNumeric ColumnRole = iota
	// RoleCategorical fits the column with a CatAgg.
	RoleCategorical
	// RoleRank fits the column with a RankAgg.
	RoleRank
)

// FitParams configures the Dataset Discretizer's fit orchestration
// (SPEC_FULL.md §4.2).
type FitParams struct {
	NumCols          int
	CatCols          []int
	RankCols         []int
	MaxBins          int
	NumericalKind    NumericalBinKind
	AggregationDepth int // tree_aggregate combine depth; see paralleldataset.TreeAggregate
}

// minFitMaxBins is the dataset fit path's stricter floor (SPEC_FULL.md
// §4.1): room for bin 0 plus at least one meaningful split.
const minFitMaxBins = 4

// Discretizer is an immutable, ordered sequence of per-column
// ColDiscretizers, fit once per training run (SPEC_FULL.md §3).
type Discretizer struct {
	guard *state.Guard
	cols  []ColDiscretizer
	roles []ColumnRole
}

// newDiscretizer returns an unfitted Discretizer; callers build one via Fit
// or FitSlice rather than populating this directly.
func newDiscretizer() *Discretizer {
	return &Discretizer{guard: state.NewGuard("Discretizer")}
}

// NumCols returns the number of columns this Discretizer was fit over.
func (d *Discretizer) NumCols() int {
	return len(d.cols)
}

// ColumnDiscretizer returns the fitted ColDiscretizer for column i.
func (d *Discretizer) ColumnDiscretizer(i int) ColDiscretizer {
	return d.cols[i]
}

// NumBinsIncludingMissing returns col[i].NumBins()+1, the bin-count callers
// should size per-feature histograms to (bin 0 reserved for missing).
func (d *Discretizer) NumBinsIncludingMissing(i int) int {
	return d.cols[i].NumBins() + 1
}

// columnAgg is a fold accumulator for one column: exactly one of numeric/
// intAgg is populated, selected by role, since NumericColAgg and IntColAgg
// are not a common interface (float64 vs int64 update signatures).
type columnAgg struct {
	role    ColumnRole
	numeric NumericColAgg
	intAgg  IntColAgg
}

func (c *columnAgg) update(v float64) error {
	if c.role == RoleNumeric {
		c.numeric.Update(v)
		return nil
	}
	return c.intAgg.Update(int64(math.Round(v)))
}

func (c *columnAgg) merge(o *columnAgg) error {
	if c.role == RoleNumeric {
		c.numeric.Merge(o.numeric)
		return nil
	}
	return c.intAgg.Merge(o.intAgg)
}

func (c *columnAgg) toDiscretizer() ColDiscretizer {
	if c.role == RoleNumeric {
		return c.numeric.ToDiscretizer()
	}
	return c.intAgg.ToDiscretizer()
}

type foldState struct {
	cols []*columnAgg
	err  error
}

func newFoldState(roles []ColumnRole, maxBins int, numericalKind NumericalBinKind) (*foldState, error) {
	cols := make([]*columnAgg, len(roles))
	for i, role := range roles {
		ca := &columnAgg{role: role}
		var err error
		switch role {
		case RoleCategorical:
			ca.intAgg, err = NewCatAgg(maxBins)
		case RoleRank:
			ca.intAgg, err = NewRankAgg(maxBins)
		default:
			if numericalKind == Width {
				ca.numeric, err = NewIntervalNumAgg(maxBins)
			} else {
				ca.numeric, err = NewQuantileNumAgg(maxBins)
			}
		}
		if err != nil {
			return nil, err
		}
		cols[i] = ca
	}
	return &foldState{cols: cols}, nil
}

func foldRow(fs *foldState, row []float64) *foldState {
	if fs.err != nil {
		return fs
	}
	for i, v := range row {
		if i >= len(fs.cols) {
			break
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if err := fs.cols[i].update(v); err != nil {
			fs.err = wrapColumnError(i, err)
			return fs
		}
	}
	return fs
}

func combineFolds(a, b *foldState) *foldState {
	if a.err != nil {
		return a
	}
	if b.err != nil {
		return b
	}
	for i, ca := range a.cols {
		if err := ca.merge(b.cols[i]); err != nil {
			a.err = wrapColumnError(i, err)
			return a
		}
	}
	return a
}

func wrapColumnError(col int, err error) error {
	switch e := err.(type) {
	case *gberrors.CardinalityError:
		e.Column = col
		return e
	case *gberrors.UnknownCategoryError:
		e.Column = col
		return e
	default:
		return err
	}
}

func roleFor(col int, params FitParams) ColumnRole {
	for _, c := range params.CatCols {
		if c == col {
			return RoleCategorical
		}
	}
	for _, r := range params.RankCols {
		if r == col {
			return RoleRank
		}
	}
	return RoleNumeric
}

// Fit builds one aggregator per column (chosen by FitParams' cat/rank
// column membership, falling back to numeric per NumericalKind), folds the
// dataset via a tree-aggregate, and finalizes each aggregator into its
// ColDiscretizer (SPEC_FULL.md §4.2).
func Fit(data *paralleldataset.Dataset[[]float64], params FitParams) (*Discretizer, error) {
	if params.MaxBins < minFitMaxBins {
		return nil, gberrors.NewConfigError("max_bins", params.MaxBins, "dataset fit requires max_bins >= 4")
	}
	if params.NumCols <= 0 {
		return nil, gberrors.NewConfigError("num_cols", params.NumCols, "must be positive")
	}
	depth := params.AggregationDepth
	if depth < 1 {
		depth = 2
	}

	roles := make([]ColumnRole, params.NumCols)
	for i := range roles {
		roles[i] = roleFor(i, params)
	}

	result := paralleldataset.TreeAggregate(
		data,
		func() *foldState {
			fs, err := newFoldState(roles, params.MaxBins, params.NumericalKind)
			if err != nil {
				return &foldState{err: err}
			}
			return fs
		},
		foldRow,
		combineFolds,
		depth,
	)
	if result.err != nil {
		return nil, result.err
	}

	d := newDiscretizer()
	d.roles = roles
	d.cols = make([]ColDiscretizer, len(result.cols))
	for i, ca := range result.cols {
		d.cols[i] = ca.toDiscretizer()
	}
	d.guard.MarkFitted()
	return d, nil
}

// FitSlice is a convenience wrapper for callers that don't need explicit
// dataset partitioning: it wraps vectors in a single-partition dataset and
// delegates to Fit.
func FitSlice(vectors [][]float64, params FitParams) (*Discretizer, error) {
	return Fit(paralleldataset.FromSlice(vectors, 1), params)
}

// Transform converts one raw feature vector to a bin vector: NaN/±Inf
// columns map to bin 0 (missing); everything else delegates to the
// column's fitted ColDiscretizer.
func (d *Discretizer) Transform(vec []float64) ([]BinId, error) {
	if !d.guard.IsFitted() {
		return nil, gberrors.NewNotFittedError(d.guard.Name(), "Transform")
	}

	bins := make([]BinId, len(d.cols))
	for i, v := range vec {
		if i >= len(d.cols) {
			break
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bins[i] = MissingBin
			continue
		}

		switch cd := d.cols[i].(type) {
		case NumericColDiscretizer:
			bins[i] = cd.Transform(v)
		case IntColDiscretizer:
			b, err := cd.TransformInt(int64(math.Round(v)))
			if err != nil {
				return nil, wrapColumnError(i, err)
			}
			bins[i] = b
		}
	}
	return bins, nil
}

// TransformDataset maps Transform over every row of a parallel dataset. A
// row whose Transform fails (e.g. an unknown category) aborts the whole call
// and returns that error — SPEC_FULL.md §7's "fail fast; categorical
// discretizers do not silently bin unseen values" draws no exception for the
// bulk path, and a dropped-or-nil row would otherwise reach histogram/split
// code indexing Bins[featureIndex] downstream.
func (d *Discretizer) TransformDataset(data *paralleldataset.Dataset[[]float64]) (*paralleldataset.Dataset[[]BinId], error) {
	return paralleldataset.MapErr(data, d.Transform)
}

// TransformRow is an alias for Transform, named for symmetry with
// TransformDataset at call sites that process one row at a time outside a
// parallel dataset.
func (d *Discretizer) TransformRow(vec []float64) ([]BinId, error) {
	return d.Transform(vec)
}
