package boost

import (
	"github.com/ezoic/gbtreecore/discretize"
	"github.com/ezoic/gbtreecore/tree"
)

// Ensemble is an additive model: a constant InitScore plus a sequence of
// trees, each contributing LearningRate · tree.Predict(bins) (SPEC_FULL.md
// §4.6 step 3.d).
type Ensemble struct {
	Trees        []*tree.Model
	LearningRate float64
	InitScore    float64
}

// Predict walks every tree and sums its scaled contribution onto
// InitScore. Like tree.Model.Predict, this is the unoptimized tree-walk
// predictor: no batch vectorization.
func (e *Ensemble) Predict(bins []discretize.BinId) float64 {
	pred := e.InitScore
	for _, t := range e.Trees {
		pred += e.LearningRate * t.Predict(bins)
	}
	return pred
}

// NumTrees reports how many boosting iterations have completed.
func (e *Ensemble) NumTrees() int {
	return len(e.Trees)
}
