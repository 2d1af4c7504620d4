package discretize

import "sort"

// quantileSummary is a Greenwald-Khanna-style rank-bounded summary: each
// retained sample tuple (value, g, delta) bounds the true rank of value to
// within g+delta of its position in the summary. Merge compresses both
// operands first, mirroring the mergeable-sketch discipline used elsewhere
// in this stack's quantile tooling (the pack's QuantileSketch.Merge/.Clone),
// adapted here from value-bucketing to rank-bounded tuples since a GK
// summary needs exact order statistics rather than logarithmic buckets.
type quantileSummary struct {
	eps     float64
	count   int64
	samples []gkTuple
}

type gkTuple struct {
	value float64
	g     int64 // number of values between this tuple and the previous one, inclusive
	delta int64 // max error in the rank bound
}

const defaultQuantileEps = 0.001

func newQuantileSummary(eps float64) *quantileSummary {
	if eps <= 0 {
		eps = defaultQuantileEps
	}
	return &quantileSummary{eps: eps}
}

// Update inserts a single value into the summary.
func (s *quantileSummary) Update(v float64) {
	idx := sort.Search(len(s.samples), func(i int) bool { return s.samples[i].value >= v })

	var delta int64
	if idx == 0 || idx == len(s.samples) {
		delta = 0
	} else {
		delta = int64(2*s.eps*float64(s.count)) - 1
		if delta < 0 {
			delta = 0
		}
	}

	t := gkTuple{value: v, g: 1, delta: delta}
	s.samples = append(s.samples, gkTuple{})
	copy(s.samples[idx+1:], s.samples[idx:])
	s.samples[idx] = t
	s.count++

	if s.count%int64(1/(2*s.eps)+1) == 0 {
		s.Compress()
	}
}

// Compress merges adjacent tuples whose combined band still satisfies the
// eps error bound, bounding the summary's memory to O(1/eps · log(eps·N)).
func (s *quantileSummary) Compress() {
	if len(s.samples) < 2 {
		return
	}
	threshold := int64(2 * s.eps * float64(s.count))

	merged := make([]gkTuple, 0, len(s.samples))
	merged = append(merged, s.samples[0])
	for i := 1; i < len(s.samples)-1; i++ {
		cur := s.samples[i]
		last := &merged[len(merged)-1]
		if last.g+cur.g+cur.delta <= threshold {
			last.g += cur.g
		} else {
			merged = append(merged, cur)
		}
	}
	if len(s.samples) > 1 {
		merged = append(merged, s.samples[len(s.samples)-1])
	}
	s.samples = merged
}

// Merge absorbs other into s, compressing both first per the GK merge
// algorithm (summing delta bands conservatively rather than recomputing
// exact ranks).
func (s *quantileSummary) Merge(other *quantileSummary) {
	if other == nil || other.count == 0 {
		return
	}
	if s.count == 0 {
		s.samples = append([]gkTuple(nil), other.samples...)
		s.count = other.count
		return
	}

	s.Compress()
	other.Compress()

	combined := make([]gkTuple, 0, len(s.samples)+len(other.samples))
	i, j := 0, 0
	for i < len(s.samples) || j < len(other.samples) {
		switch {
		case j >= len(other.samples) || (i < len(s.samples) && s.samples[i].value <= other.samples[j].value):
			t := s.samples[i]
			t.delta += other.rankErrorAt(t.value)
			combined = append(combined, t)
			i++
		default:
			t := other.samples[j]
			t.delta += s.rankErrorAt(t.value)
			combined = append(combined, t)
			j++
		}
	}

	s.samples = combined
	s.count += other.count
	s.Compress()
}

// rankErrorAt returns the g+delta-1 band of the tuple immediately preceding
// v in the summary, used by Merge to conservatively widen error bounds.
func (s *quantileSummary) rankErrorAt(v float64) int64 {
	idx := sort.Search(len(s.samples), func(i int) bool { return s.samples[i].value >= v })
	if idx == 0 || idx > len(s.samples) {
		return 0
	}
	t := s.samples[idx-1]
	return t.g + t.delta - 1
}

// Quantile returns an approximate value at rank quantile q in [0,1].
func (s *quantileSummary) Quantile(q float64) float64 {
	if len(s.samples) == 0 {
		return 0
	}
	if q <= 0 {
		return s.samples[0].value
	}
	if q >= 1 {
		return s.samples[len(s.samples)-1].value
	}

	targetRank := int64(q * float64(s.count))
	var rank int64
	for _, t := range s.samples {
		rank += t.g
		if rank+t.delta > targetRank {
			return t.value
		}
	}
	return s.samples[len(s.samples)-1].value
}

// Count reports the number of values absorbed by this summary.
func (s *quantileSummary) Count() int64 {
	return s.count
}
