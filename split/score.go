// Package split searches per-(node, feature) histograms for the
// best-scoring split — sequential threshold or categorical subset — under a
// regularized second-order objective (SPEC_FULL.md §4.4).
package split

import (
	"math"

	"github.com/ezoic/gbtreecore/gbtype"
)

// scored is the (weight, loss, score) triple derived from a (G, H) pair
// under the regularized objective.
type scored struct {
	weight float64
	loss   float64
	score  float64
}

// score computes the optimal leaf weight and score for accumulated
// gradient/hessian sums G, H under L1 penalty alpha and L2 penalty lambda
// (SPEC_FULL.md §4.4). alpha=0 takes the closed-form path; alpha>0 uses
// soft-thresholding.
func score[H gbtype.Numeric](g, h H, alpha, lambda float64) scored {
	G, H64 := float64(g), float64(h)
	denom := H64 + lambda

	var w float64
	if alpha == 0 {
		w = -G / denom
	} else {
		sign := 1.0
		if G < 0 {
			sign = -1.0
		}
		mag := math.Abs(G) - alpha
		if mag < 0 {
			mag = 0
		}
		w = -sign * mag / denom
	}

	loss := denom*w*w/2 + G*w + alpha*math.Abs(w)
	return scored{weight: w, loss: loss, score: -loss}
}

// LeafWeight computes the regularized-optimal leaf weight for accumulated
// gradient/hessian sums g, h — used by the tree builder to give a leaf that
// never received a split (including a degenerate single-leaf tree) a
// sensible constant prediction.
func LeafWeight(g, h, alpha, lambda float64) float64 {
	return score[float64](g, h, alpha, lambda).weight
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
