// Package histogram builds and subtracts per-(node, feature) gradient/
// hessian histograms over a discretized dataset (SPEC_FULL.md §4.3). A
// Histogram is a dense [g0,h0,g1,h1,...] vector, grown on demand as higher
// bin indices are touched.
package histogram

import (
	"github.com/ezoic/gbtreecore/discretize"
	"github.com/ezoic/gbtreecore/gbtype"
	"github.com/ezoic/gbtreecore/paralleldataset"
)

// Instance is one discretized training example carrying its current
// position in the tree (NodeID) alongside its gradient/hessian and bin
// vector — the "((grad,hess,bins), node_id)" element the histogram engine
// consumes.
type Instance[H gbtype.Numeric] struct {
	Grad   H
	Hess   H
	Bins   []discretize.BinId
	NodeID uint64
}

// NodeFeature keys a histogram by the (node, feature) pair it summarizes.
type NodeFeature struct {
	NodeID    uint64
	FeatureID int
}

// Histogram is a dense [g0,h0,g1,h1,...] vector indexed by bin. Bins beyond
// the observed range are implicitly zero; Add grows the slice as needed.
type Histogram[H gbtype.Numeric] []H

// NumBins reports how many bins this histogram currently has capacity for.
func (h Histogram[H]) NumBins() int {
	return len(h) / 2
}

// Grad returns the accumulated gradient for bin.
func (h Histogram[H]) Grad(bin int) H {
	if 2*bin >= len(h) {
		return 0
	}
	return h[2*bin]
}

// Hess returns the accumulated hessian for bin.
func (h Histogram[H]) Hess(bin int) H {
	if 2*bin+1 >= len(h) {
		return 0
	}
	return h[2*bin+1]
}

// Add folds one (grad, hess) observation into bin, growing the histogram if
// bin hasn't been touched yet.
func (h Histogram[H]) Add(bin int, grad, hess H) Histogram[H] {
	needed := 2 * (bin + 1)
	if needed > len(h) {
		grown := make(Histogram[H], needed)
		copy(grown, h)
		h = grown
	}
	h[2*bin] += grad
	h[2*bin+1] += hess
	return h
}

// Merge elementwise-adds other into h, growing h if other observed more
// bins. Merge is associative and commutative, as required of histogram
// aggregation (SPEC_FULL.md §4.3).
func (h Histogram[H]) Merge(other Histogram[H]) Histogram[H] {
	if len(other) > len(h) {
		grown := make(Histogram[H], len(other))
		copy(grown, h)
		h = grown
	}
	for i, v := range other {
		h[i] += v
	}
	return h
}

// binObservation is the per-feature fold unit FlatMap emits: one instance's
// contribution to exactly one (node, feature) group.
type binObservation[H gbtype.Numeric] struct {
	bin  discretize.BinId
	grad H
	hess H
}

func zeroHistogram[H gbtype.Numeric]() Histogram[H] {
	return nil
}

func seqOp[H gbtype.Numeric](h Histogram[H], obs binObservation[H]) Histogram[H] {
	return h.Add(int(obs.bin), obs.grad, obs.hess)
}

func combOp[H gbtype.Numeric](a, b Histogram[H]) Histogram[H] {
	return a.Merge(b)
}

// ComputeHists groups data by (node_id, feature_id) and accumulates
// per-bin (grad, hess) pairs, producing a dataset of
// KV[NodeFeature, Histogram[H]]. Callers filter data down to the set of
// node ids that should actually be computed (root, or left children only)
// before calling this — ComputeHists itself has no opinion about which
// nodes are "left" vs "right" (SPEC_FULL.md §4.3 step 1).
func ComputeHists[H gbtype.Numeric](data *paralleldataset.Dataset[Instance[H]], parallelism int) *paralleldataset.Dataset[paralleldataset.KV[NodeFeature, Histogram[H]]] {
	obs := paralleldataset.FlatMap(data, func(inst Instance[H]) []paralleldataset.KV[NodeFeature, binObservation[H]] {
		out := make([]paralleldataset.KV[NodeFeature, binObservation[H]], len(inst.Bins))
		for i, b := range inst.Bins {
			out[i] = paralleldataset.KV[NodeFeature, binObservation[H]]{
				Key: NodeFeature{NodeID: inst.NodeID, FeatureID: i},
				Val: binObservation[H]{bin: b, grad: inst.Grad, hess: inst.Hess},
			}
		}
		return out
	})
	return paralleldataset.AggregateByKey(obs, zeroHistogram[H], seqOp[H], combOp[H], parallelism)
}
