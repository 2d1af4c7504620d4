package split

import (
	"sort"

	"github.com/ezoic/gbtreecore/discretize"
)

// nonzeroBins returns the bin indices with nonzero grad or hess, in
// ascending order.
func nonzeroBins(grad, hess []float64) []int {
	var out []int
	for i := range grad {
		if grad[i] != 0 || hess[i] != 0 {
			out = append(out, i)
		}
	}
	return out
}

// splitSetBrute enumerates all non-empty proper subsets of the nonzero-bin
// index list, fixing the first nonzero bin out of set1 to avoid enumerating
// mirror-duplicate subsets, and retains the best admissible set
// (SPEC_FULL.md §4.4).
func splitSetBrute(featureID int, grad, hess []float64, cfg Config) (Split, bool) {
	nz := nonzeroBins(grad, hess)
	if len(nz) < 2 {
		return Split{}, false
	}

	// nz[0] is always excluded from set1 (fixed outside), so only the
	// remaining len(nz)-1 bins vary across subset masks.
	rest := nz[1:]
	n := len(rest)

	var bestGain float64
	var bestMask uint64
	found := false

	var g, h float64
	for i := range grad {
		g += grad[i]
		h += hess[i]
	}
	base := score[float64](g, h, cfg.RegAlpha, cfg.RegLambda)

	for mask := uint64(1); mask < (uint64(1) << uint(n)); mask++ {
		var gl, hl float64
		for i := 0; i < n; i++ {
			if mask&(1<<uint(i)) != 0 {
				gl += grad[rest[i]]
				hl += hess[rest[i]]
			}
		}
		gr, hr := g-gl, h-hl

		if hl < cfg.MinNodeHess || hr < cfg.MinNodeHess {
			continue
		}
		leftScore := score[float64](gl, hl, cfg.RegAlpha, cfg.RegLambda)
		rightScore := score[float64](gr, hr, cfg.RegAlpha, cfg.RegLambda)
		if !finite(leftScore.score, rightScore.score, leftScore.weight, rightScore.weight) {
			continue
		}

		gain := leftScore.score + rightScore.score - base.score
		if !finite(gain) {
			continue
		}
		if !found || gain > bestGain {
			found = true
			bestGain = gain
			bestMask = mask
		}
	}

	if !found || bestGain < cfg.MinGain {
		return Split{}, false
	}

	set1 := make(map[int]bool)
	for i := 0; i < n; i++ {
		if bestMask&(1<<uint(i)) != 0 {
			set1[rest[i]] = true
		}
	}
	return createSetSplit(featureID, grad, hess, nz, set1, cfg)
}

// splitSetHeuristic sorts nonzero bins by grad/(hess + lambda/B) ascending
// and reduces the problem to a prefix-cut scan via seqSearch — the same
// sort-then-scan shape as a gradient-boosted-tree categorical-split finder
// that ranks bins by grad/(hess+CatSmooth) before scanning prefixes,
// generalized here to the reusable seqSearch primitive (SPEC_FULL.md §4.4).
func splitSetHeuristic(featureID int, grad, hess []float64, cfg Config) (Split, bool) {
	nz := nonzeroBins(grad, hess)
	if len(nz) < 2 {
		return Split{}, false
	}

	b := len(grad)
	ranked := append([]int(nil), nz...)
	sort.Slice(ranked, func(i, j int) bool {
		ri := grad[ranked[i]] / (hess[ranked[i]] + cfg.RegLambda/float64(b))
		rj := grad[ranked[j]] / (hess[ranked[j]] + cfg.RegLambda/float64(b))
		return ri < rj
	})

	orderedGrad := make([]float64, len(ranked))
	orderedHess := make([]float64, len(ranked))
	for i, bin := range ranked {
		orderedGrad[i] = grad[bin]
		orderedHess[i] = hess[bin]
	}

	best := seqSearch(orderedGrad, orderedHess, cfg)
	if !best.found || best.gain < cfg.MinGain {
		return Split{}, false
	}

	set1 := make(map[int]bool, best.cutIndex+1)
	for i := 0; i <= best.cutIndex; i++ {
		set1[ranked[i]] = true
	}
	return createSetSplit(featureID, grad, hess, nz, set1, cfg)
}

// createSetSplit finalizes a chosen subset I1 into a Split: computes the
// two complementary nonzero-bin sets, extracts bin 0 (if present) to learn
// which side missing values fall on, then picks the smaller set as
// LeftSet (swapping the stats halves, and the missing side, if doing so
// swapped which side is "left"), per SPEC_FULL.md §4.4.
func createSetSplit(featureID int, grad, hess []float64, nz []int, set1 map[int]bool, cfg Config) (Split, bool) {
	var set2 []discretize.BinId
	var set1Bins []discretize.BinId
	missingInSet1 := false
	missingPresent := false
	for _, b := range nz {
		if b == 0 {
			missingPresent = true
			missingInSet1 = set1[b]
		}
		if set1[b] {
			set1Bins = append(set1Bins, discretize.BinId(b))
		} else {
			set2 = append(set2, discretize.BinId(b))
		}
	}

	sumStats := func(bins []discretize.BinId) (float64, float64) {
		var g, h float64
		for _, b := range bins {
			g += grad[int(b)]
			h += hess[int(b)]
		}
		return g, h
	}

	g1, h1 := sumStats(set1Bins)
	g2, h2 := sumStats(set2)

	var g, h float64
	for i := range grad {
		g += grad[i]
		h += hess[i]
	}
	base := score[float64](g, h, cfg.RegAlpha, cfg.RegLambda)
	score1 := score[float64](g1, h1, cfg.RegAlpha, cfg.RegLambda)
	score2 := score[float64](g2, h2, cfg.RegAlpha, cfg.RegLambda)
	gain := score1.score + score2.score - base.score
	if !finite(gain) || gain < cfg.MinGain {
		return Split{}, false
	}

	leftBins, rightBins := set1Bins, set2
	leftG, leftH, leftW := g1, h1, score1.weight
	rightG, rightH, rightW := g2, h2, score2.weight
	missingGoLeft := missingInSet1
	if len(rightBins) < len(leftBins) {
		leftBins, rightBins = rightBins, leftBins
		leftG, leftH, leftW, rightG, rightH, rightW = rightG, rightH, rightW, leftG, leftH, leftW
		missingGoLeft = !missingGoLeft
	}
	if !missingPresent {
		missingGoLeft = true
	}

	sort.Slice(leftBins, func(i, j int) bool { return leftBins[i] < leftBins[j] })

	return Split{
		Kind:          SetKind,
		FeatureID:     featureID,
		MissingGoLeft: missingGoLeft,
		Gain:          gain,
		LeftSet:       leftBins,
		Stats:         Stats{leftW, leftG, leftH, rightW, rightG, rightH},
	}, true
}
