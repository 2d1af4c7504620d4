package boost

import "gonum.org/v1/gonum/stat"

// Objective supplies the loss function driving boosting: an initial
// constant score, per-instance gradient/hessian given the current
// prediction, and a scalar loss value for monitoring (SPEC_FULL.md §4.6).
// Generalized from the pack's per-task ObjectiveFunction implementations
// down to the three methods the tree-growth loop actually consumes.
type Objective interface {
	// InitScore computes the ensemble's starting constant prediction from
	// the full target vector (e.g. the mean for squared error).
	InitScore(targets []float64) float64
	// GradHess returns the first and second derivative of the loss with
	// respect to pred, evaluated at (pred, target).
	GradHess(pred, target float64) (grad, hess float64)
	// Loss returns the per-instance loss value at (pred, target).
	Loss(pred, target float64) float64
}

// SquaredError is the ℓ2 regression objective: L = (pred - target)² / 2,
// grad = pred - target, hess = 1.
type SquaredError struct{}

// InitScore returns the mean target, the minimizer of total squared error
// under a constant prediction.
func (SquaredError) InitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	return stat.Mean(targets, nil)
}

// GradHess returns (pred-target, 1).
func (SquaredError) GradHess(pred, target float64) (float64, float64) {
	return pred - target, 1
}

// Loss returns the per-instance squared error, halved to match GradHess's
// derivative.
func (SquaredError) Loss(pred, target float64) float64 {
	d := pred - target
	return 0.5 * d * d
}
