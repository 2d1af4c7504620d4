package discretize

import (
	gberrors "github.com/ezoic/gbtreecore/pkg/errors"
)

// Row is the persisted layout of a single column's fitted ColDiscretizer
// (SPEC_FULL.md §6): a feature index, a type tag, and two untyped payload
// slices whose interpretation depends on Type. This mirrors the flat
// row-oriented layout used elsewhere in this stack for persisting fitted
// per-column state, generalized here to four discretizer kinds instead of
// one.
type Row struct {
	FeatureIndex int
	Type         ColDiscretizerKind
	Doubles      []float64
	Ints         []int64
}

// ToRows serializes every column of d into its persisted Row form, in
// column order. from_df(to_df(d)) reconstructs a Discretizer with the same
// per-column Transform behavior as d (round-trip invariant, SPEC_FULL.md §8).
func (d *Discretizer) ToRows() []Row {
	rows := make([]Row, len(d.cols))
	for i, col := range d.cols {
		rows[i] = toRow(i, col)
	}
	return rows
}

func toRow(featureIndex int, col ColDiscretizer) Row {
	switch c := col.(type) {
	case *QuantileDiscretizer:
		return Row{FeatureIndex: featureIndex, Type: KindQuantile, Doubles: append([]float64(nil), c.Splits...)}
	case *IntervalDiscretizer:
		return Row{
			FeatureIndex: featureIndex,
			Type:         KindInterval,
			Doubles:      []float64{c.Start, c.Step},
			Ints:         []int64{int64(c.BinsNum)},
		}
	case *CategoricalDiscretizer:
		return Row{FeatureIndex: featureIndex, Type: KindCategorical, Ints: append([]int64(nil), c.Categories...)}
	case *RankDiscretizer:
		return Row{FeatureIndex: featureIndex, Type: KindRank, Ints: append([]int64(nil), c.Values...)}
	default:
		return Row{FeatureIndex: featureIndex, Type: KindQuantile}
	}
}

// FromRows reconstructs a fitted Discretizer from its persisted Row form.
// Rows may come in any order but their FeatureIndex values must cover the
// contiguous range [0, len(rows)) with no duplicates (SPEC_FULL.md §6 load
// invariant);
// violating either is a ValueError since it indicates a corrupt or
// hand-edited persisted layout rather than a recoverable runtime condition.
func FromRows(rows []Row) (*Discretizer, error) {
	cols := make([]ColDiscretizer, len(rows))
	seen := make([]bool, len(rows))

	for _, r := range rows {
		if r.FeatureIndex < 0 || r.FeatureIndex >= len(rows) {
			return nil, gberrors.NewValueError("FromRows", "feature_index out of contiguous range")
		}
		if seen[r.FeatureIndex] {
			return nil, gberrors.NewValueError("FromRows", "duplicate feature_index")
		}
		seen[r.FeatureIndex] = true

		col, err := fromRow(r)
		if err != nil {
			return nil, err
		}
		cols[r.FeatureIndex] = col
	}

	d := newDiscretizer()
	d.cols = cols
	d.guard.MarkFitted()
	return d, nil
}

func fromRow(r Row) (ColDiscretizer, error) {
	switch r.Type {
	case KindQuantile:
		return &QuantileDiscretizer{Splits: append([]float64(nil), r.Doubles...)}, nil
	case KindInterval:
		if len(r.Doubles) != 2 || len(r.Ints) != 1 {
			return nil, gberrors.NewValueError("FromRows", "malformed interval discretizer row")
		}
		return &IntervalDiscretizer{Start: r.Doubles[0], Step: r.Doubles[1], BinsNum: int(r.Ints[0])}, nil
	case KindCategorical:
		cats := append([]int64(nil), r.Ints...)
		toBin := make(map[int64]BinId, len(cats))
		for i, v := range cats {
			toBin[v] = BinId(i + 1)
		}
		return &CategoricalDiscretizer{ToBin: toBin, Categories: cats}, nil
	case KindRank:
		return &RankDiscretizer{Values: append([]int64(nil), r.Ints...)}, nil
	default:
		return nil, gberrors.NewValueError("FromRows", "unknown discretizer type tag")
	}
}
