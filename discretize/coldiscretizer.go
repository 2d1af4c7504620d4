package discretize

import (
	"math"
	"sort"

	gberrors "github.com/ezoic/gbtreecore/pkg/errors"
)

// ColDiscretizerKind tags the four closed variants a ColDiscretizer can be.
// Dispatch is via a type switch on the concrete implementation rather than
// open interface inheritance, matching the "closed tagged variant" design
// called for in SPEC_FULL.md §9.
type ColDiscretizerKind int

const (
	// KindQuantile discretizes by quantile-derived thresholds.
	KindQuantile ColDiscretizerKind = iota
	// KindInterval discretizes by equal-width buckets.
	KindInterval
	// KindCategorical discretizes by a fixed value-to-bin map.
	KindCategorical
	// KindRank discretizes by position in a sorted value array.
	KindRank
)

// ColDiscretizer maps a single column's raw value to a bin id in
// [1, NumBins()]. Bin 0 (missing) is never returned by a ColDiscretizer;
// the dataset-level Discretizer wrapper assigns it for NaN/±Inf inputs
// before ever calling into a column's discretizer.
type ColDiscretizer interface {
	Kind() ColDiscretizerKind
	NumBins() int
}

// NumericColDiscretizer transforms a float64 column value.
type NumericColDiscretizer interface {
	ColDiscretizer
	Transform(v float64) BinId
}

// IntColDiscretizer transforms an integer-valued column (categorical or
// rank); it can fail on values unseen at fit time.
type IntColDiscretizer interface {
	ColDiscretizer
	TransformInt(v int64) (BinId, error)
}

// QuantileDiscretizer buckets by sorted threshold crossing:
// transform(v) = 1 + count(s in splits : v > s), clamped to [1, len(splits)+1].
type QuantileDiscretizer struct {
	Splits []float64
}

func (q *QuantileDiscretizer) Kind() ColDiscretizerKind { return KindQuantile }
func (q *QuantileDiscretizer) NumBins() int             { return len(q.Splits) + 1 }

// Transform implements QuantileDiscretizer's monotonic threshold rule.
func (q *QuantileDiscretizer) Transform(v float64) BinId {
	count := 0
	for _, s := range q.Splits {
		if v > s {
			count++
		}
	}
	bin := BinId(count + 1)
	return clampBin(bin, 1, BinId(q.NumBins()))
}

// IntervalDiscretizer buckets by equal-width interval:
// transform(v) = clamp(floor((v-start)/step)+2, 1, num_bins); step=0 always bin 1.
type IntervalDiscretizer struct {
	Start   float64
	Step    float64
	BinsNum int
}

func (iv *IntervalDiscretizer) Kind() ColDiscretizerKind { return KindInterval }
func (iv *IntervalDiscretizer) NumBins() int             { return iv.BinsNum }

// Transform implements IntervalDiscretizer's equal-width rule.
func (iv *IntervalDiscretizer) Transform(v float64) BinId {
	if iv.Step == 0 {
		return 1
	}
	bin := BinId(math.Floor((v-iv.Start)/iv.Step)) + 2
	return clampBin(bin, 1, BinId(iv.BinsNum))
}

// CategoricalDiscretizer maps an observed integer category to the bin id it
// was assigned at fit time (frequency-descending rank). Unseen categories
// are a hard transform-time error (SPEC_FULL.md §7): categorical
// discretizers never silently bin unseen values.
type CategoricalDiscretizer struct {
	// ToBin maps an observed category value to its assigned bin id.
	ToBin map[int64]BinId
	// Categories lists categories in bin order (bin 1 first), used for
	// round-tripping the persisted layout (SPEC_FULL.md §6).
	Categories []int64
}

func (c *CategoricalDiscretizer) Kind() ColDiscretizerKind { return KindCategorical }
func (c *CategoricalDiscretizer) NumBins() int             { return len(c.Categories) }

// TransformInt implements CategoricalDiscretizer's map lookup, failing on
// unseen categories.
func (c *CategoricalDiscretizer) TransformInt(v int64) (BinId, error) {
	bin, ok := c.ToBin[v]
	if !ok {
		return 0, gberrors.NewUnknownCategoryError(-1, int(v))
	}
	return bin, nil
}

// RankDiscretizer maps an observed integer to 1 + its index in a sorted
// ascending array; values not present at fit time fail at transform time.
type RankDiscretizer struct {
	Values []int64
}

func (r *RankDiscretizer) Kind() ColDiscretizerKind { return KindRank }
func (r *RankDiscretizer) NumBins() int             { return len(r.Values) }

// TransformInt implements RankDiscretizer's binary-search rule.
func (r *RankDiscretizer) TransformInt(v int64) (BinId, error) {
	idx := sort.Search(len(r.Values), func(i int) bool { return r.Values[i] >= v })
	if idx >= len(r.Values) || r.Values[idx] != v {
		return 0, gberrors.NewUnknownCategoryError(-1, int(v))
	}
	return BinId(idx + 1), nil
}

func clampBin(v, lo, hi BinId) BinId {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
