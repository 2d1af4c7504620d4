package boost

import (
	"fmt"
	"path/filepath"

	"github.com/ezoic/gbtreecore/discretize"
	"github.com/ezoic/gbtreecore/paralleldataset"
	"github.com/ezoic/gbtreecore/pkg/log"
	"github.com/ezoic/gbtreecore/split"
	"github.com/ezoic/gbtreecore/tree"
)

// Example is one raw training instance: undiscretized feature values paired
// with its regression target.
type Example struct {
	Features []float64
	Target   float64
}

// Callbacks is the minimal training-loop boundary: three optional closures,
// not a full early-stopping framework. Callers wanting early stopping
// supply a ShouldStop closure over their own state (SPEC_FULL.md §4.6).
type Callbacks struct {
	BeforeIteration func(iteration int, ensemble *Ensemble) error
	AfterIteration  func(iteration int, ensemble *Ensemble, loss float64) error
	ShouldStop      func() bool
}

func (c Callbacks) before(iteration int, ensemble *Ensemble) error {
	if c.BeforeIteration == nil {
		return nil
	}
	return c.BeforeIteration(iteration, ensemble)
}

func (c Callbacks) after(iteration int, ensemble *Ensemble, loss float64) error {
	if c.AfterIteration == nil {
		return nil
	}
	return c.AfterIteration(iteration, ensemble, loss)
}

func (c Callbacks) shouldStop() bool {
	return c.ShouldStop != nil && c.ShouldStop()
}

var trainLogger = log.GetLoggerWithName("boost.train")

// Train runs the outer boosting loop over data: discretize once, then grow
// one tree per iteration against gradients/hessians derived from
// objective's current residual (SPEC_FULL.md §4.6).
func Train(data *paralleldataset.Dataset[Example], cfg Config, objective Objective, numIterations int, callbacks Callbacks) (*Ensemble, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	featureDS := paralleldataset.Map(data, func(e Example) []float64 { return e.Features })
	fitParams := discretize.FitParams{
		NumCols:          cfg.NumCols,
		CatCols:          cfg.CatCols,
		RankCols:         cfg.RankCols,
		MaxBins:          cfg.MaxBin,
		NumericalKind:    cfg.NumericalKind,
		AggregationDepth: cfg.AggregationDepth,
	}
	disc, err := discretize.Fit(featureDS, fitParams)
	if err != nil {
		return nil, err
	}
	binsDS, err := disc.TransformDataset(featureDS)
	if err != nil {
		return nil, err
	}

	examples := data.Collect()
	targets := make([]float64, len(examples))
	for i, e := range examples {
		targets[i] = e.Target
	}
	targetDS := paralleldataset.Map(data, func(e Example) float64 { return e.Target })

	ensemble := &Ensemble{LearningRate: cfg.LearningRate, InitScore: objective.InitScore(targets)}
	predictions := paralleldataset.Map(data, func(Example) float64 { return ensemble.InitScore })

	treeCfg := split.TreeConfig{IsSeq: isSeqColumns(cfg.NumCols, cfg.CatCols)}
	splitCfg := split.Config{
		RegAlpha:         cfg.RegAlpha,
		RegLambda:        cfg.RegLambda,
		MinGain:          cfg.MinGain,
		MinNodeHess:      cfg.MinNodeHess,
		MaxBruteBins:     cfg.MaxBruteBins,
		ColSampleByLevel: cfg.ColSampleByLevel,
	}

	for iteration := 0; iteration < numIterations; iteration++ {
		if err := callbacks.before(iteration, ensemble); err != nil {
			return ensemble, err
		}
		if callbacks.shouldStop() {
			break
		}

		rows := paralleldataset.Map(
			paralleldataset.Zip(paralleldataset.Zip(predictions, targetDS), binsDS),
			func(p paralleldataset.Pair[paralleldataset.Pair[float64, float64], []discretize.BinId]) tree.Row[float64] {
				grad, hess := objective.GradHess(p.First.First, p.First.Second)
				return tree.Row[float64]{Grad: grad, Hess: hess, Bins: p.Second}
			},
		)

		buildParams := tree.BuildParams{
			MaxDepth:         cfg.MaxDepth,
			MaxLeaves:        cfg.MaxLeaves,
			SplitCfg:         splitCfg,
			TreeCfg:          treeCfg,
			AggregationDepth: cfg.AggregationDepth,
			Seed:             cfg.Seed + int64(iteration),
			TreeIndex:        iteration,
		}
		if cfg.CheckpointInterval > 0 && cfg.CheckpointDir != "" {
			dir := filepath.Join(cfg.CheckpointDir, fmt.Sprintf("tree-%d", iteration))
			buildParams.Checkpointer = paralleldataset.NewCheckpointer(cfg.CheckpointInterval, cfg.StorageLevel, dir)
		}

		model, err := tree.Grow[float64](rows, buildParams)
		if err != nil {
			return ensemble, err
		}
		ensemble.Trees = append(ensemble.Trees, model)

		predictions = paralleldataset.Map(
			paralleldataset.Zip(predictions, binsDS),
			func(p paralleldataset.Pair[float64, []discretize.BinId]) float64 {
				return p.First + cfg.LearningRate*model.Predict(p.Second)
			},
		)

		loss := meanLoss(predictions, targetDS, objective, cfg.AggregationDepth)
		trainLogger.Info("iteration complete", "iteration", iteration, "num_leaves", model.NumLeaves(), "loss", loss)

		if err := callbacks.after(iteration, ensemble, loss); err != nil {
			return ensemble, err
		}
		if callbacks.shouldStop() {
			break
		}
	}

	return ensemble, nil
}

// isSeqColumns builds the selected-column is_seq mask: every column is
// sequential (threshold) search except those listed in catCols, which
// search as categorical subsets.
func isSeqColumns(numCols int, catCols []int) []bool {
	isSeq := make([]bool, numCols)
	for i := range isSeq {
		isSeq[i] = true
	}
	for _, c := range catCols {
		if c >= 0 && c < numCols {
			isSeq[c] = false
		}
	}
	return isSeq
}

// meanLoss averages objective.Loss over every (prediction, target) pair via
// a two-stage tree aggregation (SPEC_FULL.md §4.6 step 3.e).
func meanLoss(predictions, targets *paralleldataset.Dataset[float64], objective Objective, depth int) float64 {
	sum := paralleldataset.TreeAggregate(
		paralleldataset.Zip(predictions, targets),
		func() [2]float64 { return [2]float64{} },
		func(acc [2]float64, p paralleldataset.Pair[float64, float64]) [2]float64 {
			return [2]float64{acc[0] + objective.Loss(p.First, p.Second), acc[1] + 1}
		},
		func(a, b [2]float64) [2]float64 { return [2]float64{a[0] + b[0], a[1] + b[1]} },
		depth,
	)
	if sum[1] == 0 {
		return 0
	}
	return sum[0] / sum[1]
}
