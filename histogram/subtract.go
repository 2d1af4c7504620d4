package histogram

import (
	"github.com/ezoic/gbtreecore/gbtype"
	"github.com/ezoic/gbtreecore/paralleldataset"
)

// SubtractHists re-keys left-child histograms to their parent's node id,
// joins with parentHists on (node_id, feature_id), and for each match
// derives the right child's histogram by elementwise subtraction. Both the
// left and the derived right histogram are emitted, re-keyed to their own
// child node ids, pruned by minNodeHess (SPEC_FULL.md §4.3).
func SubtractHists[H gbtype.Numeric](
	parentHists *paralleldataset.Dataset[paralleldataset.KV[NodeFeature, Histogram[H]]],
	leftHists *paralleldataset.Dataset[paralleldataset.KV[NodeFeature, Histogram[H]]],
	minNodeHess float64,
	parallelism int,
) *paralleldataset.Dataset[paralleldataset.KV[NodeFeature, Histogram[H]]] {
	leftByParent := paralleldataset.Map(leftHists, func(kv paralleldataset.KV[NodeFeature, Histogram[H]]) paralleldataset.KV[NodeFeature, Histogram[H]] {
		return paralleldataset.KV[NodeFeature, Histogram[H]]{
			Key: NodeFeature{NodeID: kv.Key.NodeID >> 1, FeatureID: kv.Key.FeatureID},
			Val: kv.Val,
		}
	})

	joined := paralleldataset.Join(parentHists, leftByParent, parallelism)

	return paralleldataset.FlatMap(joined, func(kv paralleldataset.KV[NodeFeature, paralleldataset.Pair[Histogram[H], Histogram[H]]]) []paralleldataset.KV[NodeFeature, Histogram[H]] {
		parentHist := kv.Val.First
		leftHist := kv.Val.Second

		leftChildID := kv.Key.NodeID << 1
		rightChildID := leftChildID | 1

		rightHist := subtract(parentHist, leftHist)

		var out []paralleldataset.KV[NodeFeature, Histogram[H]]
		if prunable(leftHist, minNodeHess) {
			out = append(out, paralleldataset.KV[NodeFeature, Histogram[H]]{
				Key: NodeFeature{NodeID: leftChildID, FeatureID: kv.Key.FeatureID},
				Val: leftHist,
			})
		}
		if prunable(rightHist, minNodeHess) {
			out = append(out, paralleldataset.KV[NodeFeature, Histogram[H]]{
				Key: NodeFeature{NodeID: rightChildID, FeatureID: kv.Key.FeatureID},
				Val: rightHist,
			})
		}
		return out
	})
}

// subtract computes parent-left elementwise. len(left) must be <= len(parent);
// trailing parent positions beyond len(left) carry over unchanged.
func subtract[H gbtype.Numeric](parent, left Histogram[H]) Histogram[H] {
	out := make(Histogram[H], len(parent))
	copy(out, parent)
	for i := 0; i < len(left) && i < len(parent); i++ {
		out[i] -= left[i]
	}
	return out
}

// prunable reports whether a derived histogram still carries enough mass to
// be worth keeping: at least 2 nonzero bins and a hessian sum of at least
// 2*minNodeHess (SPEC_FULL.md §4.3 pruning rule).
func prunable[H gbtype.Numeric](h Histogram[H], minNodeHess float64) bool {
	nnz := 0
	var hessSum float64
	for b := 0; b < h.NumBins(); b++ {
		g, he := h.Grad(b), h.Hess(b)
		if g != 0 || he != 0 {
			nnz++
		}
		hessSum += float64(he)
	}
	return nnz >= 2 && hessSum >= 2*minNodeHess
}
