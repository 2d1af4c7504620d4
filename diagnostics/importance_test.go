package diagnostics

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/plot/vg"
)

type fakeModel struct {
	gains map[int]float64
}

func (f fakeModel) FeatureGains() map[int]float64 { return f.gains }

func TestComputeSumsAcrossTreesAndSortsDescending(t *testing.T) {
	trees := []TreeModel{
		fakeModel{gains: map[int]float64{0: 1.0, 1: 5.0}},
		fakeModel{gains: map[int]float64{0: 2.0, 2: 0.5}},
	}
	names := map[int]string{0: "age", 1: "income"}

	result := Compute(trees, names)
	if len(result) != 3 {
		t.Fatalf("expected 3 features, got %d", len(result))
	}
	if result[0].FeatureID != 1 || result[0].Gain != 5.0 {
		t.Fatalf("expected feature 1 (gain 5.0) first, got %+v", result[0])
	}
	if result[0].Name != "income" {
		t.Fatalf("expected name lookup to apply, got %q", result[0].Name)
	}
	if result[2].Name != "feature_2" {
		t.Fatalf("expected fallback name for unmapped feature, got %q", result[2].Name)
	}
}

func TestComputeBreaksTiesByFeatureIDAscending(t *testing.T) {
	trees := []TreeModel{fakeModel{gains: map[int]float64{3: 1.0, 1: 1.0}}}
	result := Compute(trees, nil)
	if result[0].FeatureID != 1 || result[1].FeatureID != 3 {
		t.Fatalf("expected ascending feature id tiebreak, got %+v", result)
	}
}

func TestSaveBarChartRejectsEmptyImportances(t *testing.T) {
	if err := SaveBarChart(nil, filepath.Join(t.TempDir(), "out.png"), 8*vg.Inch, 6*vg.Inch); err == nil {
		t.Fatal("expected error for empty importances")
	}
}

func TestSaveBarChartWritesFile(t *testing.T) {
	importances := []FeatureImportance{
		{FeatureID: 0, Name: "age", Gain: 3.0},
		{FeatureID: 1, Name: "income", Gain: 1.5},
	}
	path := filepath.Join(t.TempDir(), "importance.png")
	if err := SaveBarChart(importances, path, 8*vg.Inch, 6*vg.Inch); err != nil {
		t.Fatalf("SaveBarChart: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected output file, stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty PNG output")
	}
}
