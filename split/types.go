package split

import "github.com/ezoic/gbtreecore/discretize"

// Kind tags which of the two Split variants a value holds.
type Kind int

const (
	// SeqKind is a sequential (threshold) split.
	SeqKind Kind = iota
	// SetKind is a categorical-subset split.
	SetKind
)

// Stats is [leftWeight, leftGrad, leftHess, rightWeight, rightGrad, rightHess].
type Stats [6]float64

// Split is a tagged variant over a sequential threshold split and a
// categorical subset split (SPEC_FULL.md §3). Exactly one of the two
// variant-specific fields is meaningful, selected by Kind.
type Split struct {
	Kind Kind

	FeatureID     int
	MissingGoLeft bool
	Gain          float64
	Stats         Stats

	// Seq variant.
	Threshold discretize.BinId

	// Set variant.
	LeftSet []discretize.BinId // sorted
}

// GoLeft reports whether an instance with the given bin routes left under
// this split, applying the missing-value rule for bin 0.
func (s *Split) GoLeft(bin discretize.BinId) bool {
	if bin == discretize.MissingBin {
		return s.MissingGoLeft
	}
	switch s.Kind {
	case SeqKind:
		return bin <= s.Threshold
	case SetKind:
		for _, b := range s.LeftSet {
			if b == bin {
				return true
			}
		}
		return false
	default:
		return false
	}
}
