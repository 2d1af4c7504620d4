package discretize

import (
	"math"
	"sort"

	gberrors "github.com/ezoic/gbtreecore/pkg/errors"
)

// minAggBins is the floor SPEC_FULL.md §4.1 imposes on every aggregator
// constructor, independent of the dataset-level fit path's stricter
// MaxBin >= 4 requirement (checked separately in discretizer.go).
const minAggBins = 2

// NumericColAgg summarizes a numeric column's non-missing values into a
// ColDiscretizer. Implementations never receive NaN/±Inf; the dataset layer
// filters those before calling Update.
type NumericColAgg interface {
	Update(v float64)
	Merge(other NumericColAgg)
	ToDiscretizer() ColDiscretizer
}

// QuantileNumAgg summarizes a column with an approximate quantile sketch,
// emitting a QuantileDiscretizer at fit time (SPEC_FULL.md §4.1).
type QuantileNumAgg struct {
	maxBins int
	summary *quantileSummary
}

// NewQuantileNumAgg constructs a QuantileNumAgg targeting maxBins bins.
func NewQuantileNumAgg(maxBins int) (*QuantileNumAgg, error) {
	if maxBins < minAggBins {
		return nil, gberrors.NewConfigError("max_bins", maxBins, "must be >= 2")
	}
	return &QuantileNumAgg{maxBins: maxBins, summary: newQuantileSummary(defaultQuantileEps)}, nil
}

// Update inserts v into the quantile sketch.
func (a *QuantileNumAgg) Update(v float64) {
	a.summary.Update(v)
}

// Merge combines other into a, compressing both sketches first.
func (a *QuantileNumAgg) Merge(other NumericColAgg) {
	o, ok := other.(*QuantileNumAgg)
	if !ok {
		return
	}
	a.summary.Compress()
	o.summary.Compress()
	a.summary.Merge(o.summary)
}

// ToDiscretizer queries quantiles at q_i=(i+0.5)/maxBins for i in
// [0, maxBins-2], deduplicating and sorting the resulting thresholds.
func (a *QuantileNumAgg) ToDiscretizer() ColDiscretizer {
	if a.summary.Count() == 0 {
		return &QuantileDiscretizer{Splits: nil}
	}

	splits := make([]float64, 0, a.maxBins-1)
	for i := 0; i <= a.maxBins-2; i++ {
		q := (float64(i) + 0.5) / float64(a.maxBins)
		splits = append(splits, a.summary.Quantile(q))
	}
	sort.Float64s(splits)
	splits = dedupeSorted(splits)
	return &QuantileDiscretizer{Splits: splits}
}

func dedupeSorted(xs []float64) []float64 {
	if len(xs) == 0 {
		return xs
	}
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// IntervalNumAgg summarizes a column by its running min/max, emitting an
// equal-width IntervalDiscretizer at fit time (SPEC_FULL.md §4.1).
type IntervalNumAgg struct {
	maxBins int
	min     float64
	max     float64
	seen    bool
}

// NewIntervalNumAgg constructs an IntervalNumAgg targeting maxBins bins.
func NewIntervalNumAgg(maxBins int) (*IntervalNumAgg, error) {
	if maxBins < minAggBins {
		return nil, gberrors.NewConfigError("max_bins", maxBins, "must be >= 2")
	}
	// Per SPEC_FULL.md §9: min/max sentinels are +Inf/-Inf so that an
	// all-missing column fails the max > min check in ToDiscretizer, which
	// also checks the seen flag.
	return &IntervalNumAgg{maxBins: maxBins, min: math.Inf(1), max: math.Inf(-1)}, nil
}

// Update folds v into the running min/max.
func (a *IntervalNumAgg) Update(v float64) {
	a.seen = true
	if v < a.min {
		a.min = v
	}
	if v > a.max {
		a.max = v
	}
}

// Merge combines other's min/max into a.
func (a *IntervalNumAgg) Merge(other NumericColAgg) {
	o, ok := other.(*IntervalNumAgg)
	if !ok || !o.seen {
		return
	}
	a.seen = true
	if o.min < a.min {
		a.min = o.min
	}
	if o.max > a.max {
		a.max = o.max
	}
}

// ToDiscretizer emits an IntervalDiscretizer when max > min, otherwise a
// degenerate single-bin discretizer (all-missing or constant column).
func (a *IntervalNumAgg) ToDiscretizer() ColDiscretizer {
	if !a.seen || !(a.max > a.min) {
		return &IntervalDiscretizer{Start: 0, Step: 0, BinsNum: 1}
	}
	step := (a.max - a.min) / float64(a.maxBins-1)
	start := a.min + step/2
	return &IntervalDiscretizer{Start: start, Step: step, BinsNum: a.maxBins}
}

// IntColAgg summarizes a categorical or rank column from its integer-coded
// values.
type IntColAgg interface {
	Update(v int64) error
	Merge(other IntColAgg) error
	ToDiscretizer() ColDiscretizer
}

// CatAgg counts distinct integer values, capping cardinality at maxBins and
// emitting a CategoricalDiscretizer ranked by descending frequency
// (SPEC_FULL.md §4.1).
type CatAgg struct {
	maxBins int
	counts  map[int64]int64
	order   []int64 // insertion order, for stable tie-breaking
}

// NewCatAgg constructs a CatAgg capping cardinality at maxBins.
func NewCatAgg(maxBins int) (*CatAgg, error) {
	if maxBins < minAggBins {
		return nil, gberrors.NewConfigError("max_bins", maxBins, "must be >= 2")
	}
	return &CatAgg{maxBins: maxBins, counts: make(map[int64]int64)}, nil
}

// Update records an observation of v, failing fast once cardinality would
// exceed maxBins (SPEC_FULL.md §7 cardinality overflow).
func (a *CatAgg) Update(v int64) error {
	if _, ok := a.counts[v]; !ok {
		if len(a.counts) >= a.maxBins {
			return gberrors.NewCardinalityError(-1, a.maxBins, len(a.counts)+1)
		}
		a.order = append(a.order, v)
	}
	a.counts[v]++
	return nil
}

// Merge combines other's counts into a, failing if the merged cardinality
// would exceed maxBins.
func (a *CatAgg) Merge(other IntColAgg) error {
	o, ok := other.(*CatAgg)
	if !ok {
		return nil
	}
	for _, v := range o.order {
		if _, exists := a.counts[v]; !exists {
			if len(a.counts) >= a.maxBins {
				return gberrors.NewCardinalityError(-1, a.maxBins, len(a.counts)+1)
			}
			a.order = append(a.order, v)
		}
		a.counts[v] += o.counts[v]
	}
	return nil
}

// ToDiscretizer assigns bins 1..N to observed categories in
// frequency-descending order, breaking ties by first-seen (insertion)
// order via a stable sort.
func (a *CatAgg) ToDiscretizer() ColDiscretizer {
	cats := append([]int64(nil), a.order...)
	rank := make(map[int64]int, len(cats))
	for i, v := range cats {
		rank[v] = i
	}

	sort.SliceStable(cats, func(i, j int) bool {
		ci, cj := cats[i], cats[j]
		if a.counts[ci] != a.counts[cj] {
			return a.counts[ci] > a.counts[cj]
		}
		return rank[ci] < rank[cj]
	})

	toBin := make(map[int64]BinId, len(cats))
	for i, v := range cats {
		toBin[v] = BinId(i + 1)
	}
	return &CategoricalDiscretizer{ToBin: toBin, Categories: cats}
}

// RankAgg maintains the set of observed integer values, capping cardinality
// at maxBins and emitting a RankDiscretizer over the sorted ascending array
// (SPEC_FULL.md §4.1).
type RankAgg struct {
	maxBins int
	set     map[int64]struct{}
}

// NewRankAgg constructs a RankAgg capping cardinality at maxBins.
func NewRankAgg(maxBins int) (*RankAgg, error) {
	if maxBins < minAggBins {
		return nil, gberrors.NewConfigError("max_bins", maxBins, "must be >= 2")
	}
	return &RankAgg{maxBins: maxBins, set: make(map[int64]struct{})}, nil
}

// Update records an observation of v, failing fast on cardinality overflow.
func (a *RankAgg) Update(v int64) error {
	if _, ok := a.set[v]; ok {
		return nil
	}
	if len(a.set) >= a.maxBins {
		return gberrors.NewCardinalityError(-1, a.maxBins, len(a.set)+1)
	}
	a.set[v] = struct{}{}
	return nil
}

// Merge combines other's observed set into a, failing on cardinality
// overflow.
func (a *RankAgg) Merge(other IntColAgg) error {
	o, ok := other.(*RankAgg)
	if !ok {
		return nil
	}
	for v := range o.set {
		if err := a.Update(v); err != nil {
			return err
		}
	}
	return nil
}

// ToDiscretizer emits a RankDiscretizer over the ascending-sorted observed
// values.
func (a *RankAgg) ToDiscretizer() ColDiscretizer {
	values := make([]int64, 0, len(a.set))
	for v := range a.set {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return &RankDiscretizer{Values: values}
}
