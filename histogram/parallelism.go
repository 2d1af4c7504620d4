package histogram

import "math"

// Parallelism implements the histogram engine's worker-sizing heuristic
// (SPEC_FULL.md §4.3): parallelism = clamp(ceil(approxHistCount/(E-1)), 1, 128) * (E-1),
// where E is the dataset's reported partition count and approxHistCount
// estimates the number of (node, feature) groups this level will produce.
// Grounded on the pack's fixed-worker-count histogram builder
// (histogram_optimization.go's numWorkers), generalized here to the spec's
// formula instead of a fixed constant.
func Parallelism(workerCount int, numLeaves, numCols int, colSampleByLevel float64) int {
	if workerCount <= 1 {
		return 1
	}

	approxHistCount := float64(numLeaves) * float64(numCols) * colSampleByLevel
	denom := float64(workerCount - 1)

	factor := math.Ceil(approxHistCount / denom)
	if factor < 1 {
		factor = 1
	}
	if factor > 128 {
		factor = 128
	}

	return int(factor) * (workerCount - 1)
}
