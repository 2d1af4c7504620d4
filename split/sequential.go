package split

import (
	"math"

	"github.com/ezoic/gbtreecore/discretize"
)

// Config carries the regularization and search-strategy parameters the
// split finder needs (a projection of BoostConfig/TreeConfig onto just
// what this package consumes, SPEC_FULL.md §4.4/§6).
type Config struct {
	RegAlpha        float64
	RegLambda       float64
	MinGain         float64
	MinNodeHess     float64
	MaxBruteBins    int
	ColSampleByLevel float64
}

// seqResult is the internal best-candidate accumulator for a single
// ascending scan.
type seqResult struct {
	found     bool
	cutIndex  int
	gain      float64
	leftG     float64
	leftH     float64
	rightG    float64
	rightH    float64
}

// seqSearch scans cut positions i in [0, B-2], accumulating a left prefix
// and testing admissibility, tracking the best-scoring admissible cut
// (SPEC_FULL.md §4.4). grad/hess are parallel arrays of length B.
func seqSearch(grad, hess []float64, cfg Config) seqResult {
	b := len(grad)
	if b <= 1 {
		return seqResult{}
	}

	var g, h float64
	for i := 0; i < b; i++ {
		g += grad[i]
		h += hess[i]
	}
	base := score[float64](g, h, cfg.RegAlpha, cfg.RegLambda)

	best := seqResult{}
	var gl, hl float64
	for i := 0; i < b-1; i++ {
		gl += grad[i]
		hl += hess[i]
		gr := g - gl
		hr := h - hl

		if hl < cfg.MinNodeHess || hr < cfg.MinNodeHess {
			continue
		}

		leftScore := score[float64](gl, hl, cfg.RegAlpha, cfg.RegLambda)
		rightScore := score[float64](gr, hr, cfg.RegAlpha, cfg.RegLambda)
		if !finite(leftScore.weight, leftScore.score, rightScore.weight, rightScore.score) {
			continue
		}

		total := leftScore.score + rightScore.score
		gain := total - base.score
		if !finite(gain) {
			continue
		}
		if !best.found || gain > best.gain {
			best = seqResult{found: true, cutIndex: i, gain: gain, leftG: gl, leftH: hl, rightG: gr, rightH: hr}
		}
	}
	return best
}

// missingMassMeaningful reports whether bin 0 carries enough mass to be
// worth testing a "missing goes right" rotation for, per the 1e-3 relative
// threshold in SPEC_FULL.md §4.4.
func missingMassMeaningful(grad, hess []float64) bool {
	if len(grad) == 0 {
		return false
	}
	var sumAbsG, sumAbsH float64
	for i := range grad {
		sumAbsG += math.Abs(grad[i])
		sumAbsH += math.Abs(hess[i])
	}
	g0, h0 := math.Abs(grad[0]), math.Abs(hess[0])
	return g0 >= 1e-3*sumAbsG || h0 >= 1e-3*sumAbsH
}

// splitSeq produces the best SeqSplit for one feature's histogram, trying
// both a missing-goes-left scan and, when bin 0 carries meaningful mass, a
// missing-goes-right rotation — returning the higher-gain of the two, ties
// favoring missing-left (SPEC_FULL.md §4.4).
func splitSeq(featureID int, grad, hess []float64, cfg Config) (Split, bool) {
	left := seqSearch(grad, hess, cfg)

	var rotatedWinner seqResult
	haveRotated := false
	if missingMassMeaningful(grad, hess) && len(grad) > 1 {
		rGrad := append(append([]float64(nil), grad[1:]...), grad[0])
		rHess := append(append([]float64(nil), hess[1:]...), hess[0])
		rotatedWinner = seqSearch(rGrad, rHess, cfg)
		haveRotated = rotatedWinner.found
	}

	useRotated := haveRotated && (!left.found || rotatedWinner.gain > left.gain)

	var chosen seqResult
	missingGoLeft := true
	thresholdOffset := 0
	if useRotated {
		chosen = rotatedWinner
		missingGoLeft = false
		thresholdOffset = 1
	} else {
		chosen = left
	}

	if !chosen.found || chosen.gain < cfg.MinGain {
		return Split{}, false
	}

	leftScore := score[float64](chosen.leftG, chosen.leftH, cfg.RegAlpha, cfg.RegLambda)
	rightScore := score[float64](chosen.rightG, chosen.rightH, cfg.RegAlpha, cfg.RegLambda)

	return Split{
		Kind:          SeqKind,
		FeatureID:     featureID,
		MissingGoLeft: missingGoLeft,
		Gain:          chosen.gain,
		Threshold:     discretize.BinId(chosen.cutIndex + thresholdOffset),
		Stats: Stats{
			leftScore.weight, chosen.leftG, chosen.leftH,
			rightScore.weight, chosen.rightG, chosen.rightH,
		},
	}, true
}
