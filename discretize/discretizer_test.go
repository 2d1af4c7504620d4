package discretize

import (
	"errors"
	"math"
	"testing"

	gberrors "github.com/ezoic/gbtreecore/pkg/errors"
	"github.com/ezoic/gbtreecore/paralleldataset"
)

func sampleVectors() [][]float64 {
	// column 0: numeric, column 1: categorical, column 2: rank
	vecs := make([][]float64, 0, 100)
	for i := 0; i < 100; i++ {
		vecs = append(vecs, []float64{
			float64(i % 17),
			float64(i % 4), // 4 distinct categories
			float64(i % 9), // 9 distinct rank values
		})
	}
	return vecs
}

func baseFitParams() FitParams {
	return FitParams{
		NumCols:  3,
		CatCols:  []int{1},
		RankCols: []int{2},
		MaxBins:  16,
	}
}

func TestFitSliceRejectsSmallMaxBins(t *testing.T) {
	_, err := FitSlice(sampleVectors(), FitParams{NumCols: 3, MaxBins: 3})
	if err == nil {
		t.Fatal("expected ConfigError for max_bins < 4")
	}
	var ce *gberrors.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
}

func TestFitSliceAndTransformRoundTrip(t *testing.T) {
	d, err := FitSlice(sampleVectors(), baseFitParams())
	if err != nil {
		t.Fatalf("FitSlice: %v", err)
	}
	if d.NumCols() != 3 {
		t.Fatalf("NumCols() = %d, want 3", d.NumCols())
	}

	bins, err := d.Transform([]float64{5, 1, 3})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(bins) != 3 {
		t.Fatalf("Transform returned %d bins, want 3", len(bins))
	}
	for i, b := range bins {
		if b < 1 || int(b) > d.NumBinsIncludingMissing(i)-1 {
			t.Fatalf("column %d bin %d out of range", i, b)
		}
	}
}

func TestTransformMapsNaNAndInfToMissingBin(t *testing.T) {
	d, err := FitSlice(sampleVectors(), baseFitParams())
	if err != nil {
		t.Fatalf("FitSlice: %v", err)
	}
	bins, err := d.Transform([]float64{math.NaN(), math.Inf(1), math.Inf(-1)})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for i, b := range bins {
		if b != MissingBin {
			t.Fatalf("column %d = %d, want MissingBin", i, b)
		}
	}
}

func TestTransformBeforeFitFails(t *testing.T) {
	d := newDiscretizer()
	_, err := d.Transform([]float64{1, 2, 3})
	if err == nil {
		t.Fatal("expected NotFittedError")
	}
	var nfe *gberrors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected *NotFittedError, got %T", err)
	}
}

func TestTransformUnknownCategoryFails(t *testing.T) {
	d, err := FitSlice(sampleVectors(), baseFitParams())
	if err != nil {
		t.Fatalf("FitSlice: %v", err)
	}
	_, err = d.Transform([]float64{0, 999, 0})
	if err == nil {
		t.Fatal("expected UnknownCategoryError for unseen category")
	}
}

func TestTransformDatasetPropagatesUnknownCategoryError(t *testing.T) {
	d, err := FitSlice(sampleVectors(), baseFitParams())
	if err != nil {
		t.Fatalf("FitSlice: %v", err)
	}
	rows := append(append([][]float64(nil), sampleVectors()...), []float64{0, 999, 0})
	_, err = d.TransformDataset(paralleldataset.FromSlice(rows, 4))
	if err == nil {
		t.Fatal("expected TransformDataset to propagate the UnknownCategoryError instead of returning a dataset with a nil-bins row")
	}
	var uce *gberrors.UnknownCategoryError
	if !errors.As(err, &uce) {
		t.Fatalf("expected UnknownCategoryError, got %T: %v", err, err)
	}
}

func TestFitMatchesAcrossPartitionCounts(t *testing.T) {
	vecs := sampleVectors()
	params := baseFitParams()

	single := paralleldataset.FromSlice(vecs, 1)
	multi := paralleldataset.FromSlice(vecs, 8)

	dSingle, err := Fit(single, params)
	if err != nil {
		t.Fatalf("Fit(single): %v", err)
	}
	dMulti, err := Fit(multi, params)
	if err != nil {
		t.Fatalf("Fit(multi): %v", err)
	}

	probe := []float64{5, 1, 3}
	b1, err := dSingle.Transform(probe)
	if err != nil {
		t.Fatalf("Transform(single): %v", err)
	}
	b2, err := dMulti.Transform(probe)
	if err != nil {
		t.Fatalf("Transform(multi): %v", err)
	}
	for i := range b1 {
		if b1[i] != b2[i] {
			t.Fatalf("partition-count-sensitive result at column %d: %d vs %d", i, b1[i], b2[i])
		}
	}
}

func TestFitCardinalityOverflowFailsFast(t *testing.T) {
	vecs := [][]float64{{1}, {2}, {3}, {4}, {5}}
	_, err := FitSlice(vecs, FitParams{NumCols: 1, CatCols: []int{0}, MaxBins: 4})
	if err == nil {
		t.Fatal("expected CardinalityError: 5 distinct categories over max_bins=4")
	}
	var ce *gberrors.CardinalityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CardinalityError, got %T", err)
	}
	if ce.Column != 0 {
		t.Fatalf("CardinalityError.Column = %d, want 0", ce.Column)
	}
}
