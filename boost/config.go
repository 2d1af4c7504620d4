// Package boost drives the outer training loop: discretize once, then
// repeatedly compute gradients/hessians from the current ensemble
// predictions and grow one tree at a time (SPEC_FULL.md §4.6), generalized
// from the pack's LightGBM trainer's Fit loop down to the plain-GBDT case
// this module's scope retains.
package boost

import (
	"github.com/ezoic/gbtreecore/discretize"
	"github.com/ezoic/gbtreecore/paralleldataset"
	gberrors "github.com/ezoic/gbtreecore/pkg/errors"
)

// Config carries every recognized training option (SPEC_FULL.md §6),
// spanning the tree-growth regularization knobs the split finder consumes
// and the booster-level knobs (learning rate, bin budget, checkpointing)
// layered on top.
type Config struct {
	MaxDepth         int
	MaxLeaves        int64
	MinGain          float64
	MinNodeHess      float64
	RegAlpha         float64
	RegLambda        float64
	ColSampleByLevel float64
	MaxBruteBins     int
	AggregationDepth int

	CheckpointInterval int
	CheckpointDir      string
	StorageLevel       paralleldataset.StorageLevel

	Seed int64

	LearningRate float64
	MaxBin       int

	NumericalKind discretize.NumericalBinKind
	CatCols       []int
	RankCols      []int
	NumCols       int
}

// Validate checks every field against the bounds enumerated in
// SPEC_FULL.md §6/§7, failing fast with a *errors.ConfigError naming the
// offending field.
func (c Config) Validate() error {
	switch {
	case c.MaxDepth < 1:
		return gberrors.NewConfigError("max_depth", c.MaxDepth, "must be >= 1")
	case c.MaxLeaves < 2:
		return gberrors.NewConfigError("max_leaves", c.MaxLeaves, "must be >= 2")
	case c.MinGain < 0:
		return gberrors.NewConfigError("min_gain", c.MinGain, "must be >= 0")
	case c.MinNodeHess < 0:
		return gberrors.NewConfigError("min_node_hess", c.MinNodeHess, "must be >= 0")
	case c.RegAlpha < 0:
		return gberrors.NewConfigError("reg_alpha", c.RegAlpha, "must be >= 0")
	case c.RegLambda < 0:
		return gberrors.NewConfigError("reg_lambda", c.RegLambda, "must be >= 0")
	case c.ColSampleByLevel <= 0 || c.ColSampleByLevel > 1:
		return gberrors.NewConfigError("col_sample_by_level", c.ColSampleByLevel, "must be in (0, 1]")
	case c.MaxBruteBins < 2:
		return gberrors.NewConfigError("max_brute_bins", c.MaxBruteBins, "must be >= 2")
	case c.AggregationDepth < 2:
		return gberrors.NewConfigError("aggregation_depth", c.AggregationDepth, "must be >= 2")
	case c.LearningRate <= 0:
		return gberrors.NewConfigError("learning_rate", c.LearningRate, "must be > 0")
	case c.MaxBin < 4:
		return gberrors.NewConfigError("max_bin", c.MaxBin, "must be >= 4")
	case c.NumCols <= 0:
		return gberrors.NewConfigError("num_cols", c.NumCols, "must be positive")
	case c.NumericalKind != discretize.Depth && c.NumericalKind != discretize.Width:
		return gberrors.NewConfigError("numerical_kind", c.NumericalKind, "must be Depth or Width")
	}
	return nil
}
