// Package discretize implements the per-column aggregators and
// discretizers that turn raw feature vectors into small-integer bin
// vectors (SPEC_FULL.md §4.1-§4.2): bin 0 is always "missing", and each
// column's own discretizer emits bins in [1, num_bins].
package discretize

// BinId is a small integer bin index. Bin 0 is reserved for missing values
// everywhere in this package; column discretizers themselves only ever
// produce bins in [1, NumBins()].
type BinId = int32

// MissingBin is the sentinel bin id the Discretizer assigns to NaN/±Inf
// values, never produced by a ColDiscretizer itself.
const MissingBin BinId = 0

// NumericalBinKind selects the binning strategy QuantileNumAgg ("Depth", one
// of roughly equal-count buckets) vs IntervalNumAgg ("Width", equal-width
// buckets) applies to numeric, non-categorical, non-rank columns.
type NumericalBinKind int

const (
	// Depth bins numeric columns by approximate quantile (equal-count buckets).
	Depth NumericalBinKind = iota
	// Width bins numeric columns by equal-width interval.
	Width
)
