package boost

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/gbtreecore/paralleldataset"
	gberrors "github.com/ezoic/gbtreecore/pkg/errors"
)

// FromMatrix builds a training dataset from a dense feature matrix and
// target vector, generalizing the pack's mat.Matrix-based Fit(X, y)
// entry point (sklearn/lightgbm/trainer.go's Trainer.Fit) down to this
// module's parallel-dataset boundary.
func FromMatrix(x mat.Matrix, y []float64, numPartitions int) (*paralleldataset.Dataset[Example], error) {
	rows, cols := x.Dims()
	if rows != len(y) {
		return nil, gberrors.NewDimensionError("boost.FromMatrix", rows, len(y), 0)
	}

	examples := make([]Example, rows)
	for i := 0; i < rows; i++ {
		features := make([]float64, cols)
		for j := 0; j < cols; j++ {
			features[j] = x.At(i, j)
		}
		examples[i] = Example{Features: features, Target: y[i]}
	}
	return paralleldataset.FromSlice(examples, numPartitions), nil
}
