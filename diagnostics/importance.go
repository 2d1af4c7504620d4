// Package diagnostics renders a feature-importance bar chart from a
// trained ensemble, following examples/iris_regression/main.go's
// gonum.org/v1/plot conventions. This is off the training hot path: a
// reporting aid, not something the booster or tree builder ever calls.
package diagnostics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	gberrors "github.com/ezoic/gbtreecore/pkg/errors"
)

// TreeModel is the subset of *tree.Model this package needs: per-tree total
// split gain by original column id. *tree.Model satisfies it without this
// package importing tree directly; *boost.Ensemble has no FeatureGains
// method, so callers pass its Trees one by one.
type TreeModel interface {
	FeatureGains() map[int]float64
}

// FeatureImportance pairs a feature id (and optional name) with its total
// split gain summed across every tree in an ensemble.
type FeatureImportance struct {
	FeatureID int
	Name      string
	Gain      float64
}

// Compute sums FeatureGains across every model in trees and sorts the
// result by descending gain, breaking ties by ascending feature id for a
// deterministic order. names maps feature id to a display label; a feature
// id absent from names falls back to "feature_<id>".
func Compute(trees []TreeModel, names map[int]string) []FeatureImportance {
	totals := make(map[int]float64)
	for _, m := range trees {
		for col, gain := range m.FeatureGains() {
			totals[col] += gain
		}
	}

	out := make([]FeatureImportance, 0, len(totals))
	for col, gain := range totals {
		name, ok := names[col]
		if !ok {
			name = fmt.Sprintf("feature_%d", col)
		}
		out = append(out, FeatureImportance{FeatureID: col, Name: name, Gain: gain})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Gain != out[j].Gain {
			return out[i].Gain > out[j].Gain
		}
		return out[i].FeatureID < out[j].FeatureID
	})
	return out
}

// TotalGain sums Gain across importances, the normalizing denominator a
// caller would use to report each feature's share of total split gain.
func TotalGain(importances []FeatureImportance) float64 {
	gains := make([]float64, len(importances))
	for i, imp := range importances {
		gains[i] = imp.Gain
	}
	return floats.Sum(gains)
}

// validateNonEmpty guards SaveBarChart against plotting an empty report,
// the one failure mode worth surfacing as a typed error rather than a
// panic from the plotting library.
func validateNonEmpty(importances []FeatureImportance) error {
	if len(importances) == 0 {
		return gberrors.NewValueError("diagnostics.SaveBarChart", "no feature importances to plot")
	}
	return nil
}
