package histogram

import (
	"testing"

	"github.com/ezoic/gbtreecore/discretize"
	"github.com/ezoic/gbtreecore/paralleldataset"
)

func instanceRows() []Instance[float64] {
	return []Instance[float64]{
		{Grad: 1, Hess: 1, Bins: []discretize.BinId{1, 2}, NodeID: 1},
		{Grad: -1, Hess: 1, Bins: []discretize.BinId{2, 1}, NodeID: 1},
		{Grad: 2, Hess: 2, Bins: []discretize.BinId{1, 1}, NodeID: 1},
		{Grad: 0.5, Hess: 1, Bins: []discretize.BinId{3, 2}, NodeID: 1},
	}
}

func totalGradHess(rows []Instance[float64]) (float64, float64) {
	var g, h float64
	for _, r := range rows {
		g += r.Grad
		h += r.Hess
	}
	return g, h
}

func collectHists(d *paralleldataset.Dataset[paralleldataset.KV[NodeFeature, Histogram[float64]]]) map[NodeFeature]Histogram[float64] {
	out := make(map[NodeFeature]Histogram[float64])
	for _, kv := range d.Collect() {
		out[kv.Key] = kv.Val
	}
	return out
}

func TestComputeHistsConservesGradAndHessPerFeature(t *testing.T) {
	rows := instanceRows()
	ds := paralleldataset.FromSlice(rows, 2)
	hists := collectHists(ComputeHists(ds, 2))

	wantG, wantH := totalGradHess(rows)

	for feature := 0; feature < 2; feature++ {
		var g, h float64
		for node, hist := range hists {
			if node.FeatureID != feature {
				continue
			}
			for b := 0; b < hist.NumBins(); b++ {
				g += hist.Grad(b)
				h += hist.Hess(b)
			}
		}
		if g != wantG || h != wantH {
			t.Fatalf("feature %d: sum (g,h) = (%v,%v), want (%v,%v)", feature, g, h, wantG, wantH)
		}
	}
}

func TestComputeHistsIsPartitionCountInsensitive(t *testing.T) {
	rows := instanceRows()
	h1 := collectHists(ComputeHists(paralleldataset.FromSlice(rows, 1), 1))
	h4 := collectHists(ComputeHists(paralleldataset.FromSlice(rows, 4), 1))

	if len(h1) != len(h4) {
		t.Fatalf("group count differs by partitioning: %d vs %d", len(h1), len(h4))
	}
	for key, hist1 := range h1 {
		hist4, ok := h4[key]
		if !ok {
			t.Fatalf("key %+v missing from 4-partition result", key)
		}
		for b := 0; b < hist1.NumBins(); b++ {
			if hist1.Grad(b) != hist4.Grad(b) || hist1.Hess(b) != hist4.Hess(b) {
				t.Fatalf("key %+v bin %d differs by partitioning", key, b)
			}
		}
	}
}

func TestSubtractHistsRecoversRightChild(t *testing.T) {
	parent := Histogram[float64]{1, 1, 2, 2, 3, 3} // bins 0,1,2
	left := Histogram[float64]{1, 1, 1, 1}         // bins 0,1 only

	parentDS := paralleldataset.FromSlice([]paralleldataset.KV[NodeFeature, Histogram[float64]]{
		{Key: NodeFeature{NodeID: 1, FeatureID: 0}, Val: parent},
	}, 1)
	leftDS := paralleldataset.FromSlice([]paralleldataset.KV[NodeFeature, Histogram[float64]]{
		{Key: NodeFeature{NodeID: 2, FeatureID: 0}, Val: left}, // left child of node 1
	}, 1)

	result := collectHists(SubtractHists(parentDS, leftDS, 0, 1))

	rightHist, ok := result[NodeFeature{NodeID: 3, FeatureID: 0}]
	if !ok {
		t.Fatal("right child (node 3) histogram missing from result")
	}
	want := Histogram[float64]{0, 0, 1, 1, 3, 3}
	for i := range want {
		if rightHist[i] != want[i] {
			t.Fatalf("right histogram = %v, want %v", rightHist, want)
		}
	}

	leftOut, ok := result[NodeFeature{NodeID: 2, FeatureID: 0}]
	if !ok {
		t.Fatal("left child (node 2) histogram missing from result")
	}
	for i := range left {
		if leftOut[i] != left[i] {
			t.Fatalf("left histogram changed: got %v, want %v", leftOut, left)
		}
	}
}

func TestSubtractHistsPrunesLowMassChildren(t *testing.T) {
	// Single nonzero bin on each side: both children should be pruned
	// (nnz < 2) regardless of minNodeHess.
	parent := Histogram[float64]{5, 5}
	left := Histogram[float64]{2, 2}

	parentDS := paralleldataset.FromSlice([]paralleldataset.KV[NodeFeature, Histogram[float64]]{
		{Key: NodeFeature{NodeID: 1, FeatureID: 0}, Val: parent},
	}, 1)
	leftDS := paralleldataset.FromSlice([]paralleldataset.KV[NodeFeature, Histogram[float64]]{
		{Key: NodeFeature{NodeID: 2, FeatureID: 0}, Val: left},
	}, 1)

	result := collectHists(SubtractHists(parentDS, leftDS, 0, 1))
	if len(result) != 0 {
		t.Fatalf("expected both single-bin children pruned, got %d entries", len(result))
	}
}

func TestHistogramAddGrowsOnDemand(t *testing.T) {
	var h Histogram[float64]
	h = h.Add(3, 1, 2)
	if h.NumBins() != 4 {
		t.Fatalf("NumBins() = %d, want 4", h.NumBins())
	}
	if h.Grad(3) != 1 || h.Hess(3) != 2 {
		t.Fatalf("Grad/Hess(3) = (%v,%v), want (1,2)", h.Grad(3), h.Hess(3))
	}
	if h.Grad(0) != 0 || h.Hess(1) != 0 {
		t.Fatalf("untouched bins should read zero")
	}
}

func TestParallelismClampsAndHandlesSingleWorker(t *testing.T) {
	if got := Parallelism(1, 100, 50, 1.0); got != 1 {
		t.Fatalf("Parallelism(E=1) = %d, want 1", got)
	}
	if got := Parallelism(5, 1, 1, 1.0); got < 4 {
		t.Fatalf("Parallelism small workload should still be a multiple of (E-1)=4, got %d", got)
	}
	got := Parallelism(5, 1_000_000, 1000, 1.0)
	maxExpected := 128 * 4
	if got != maxExpected {
		t.Fatalf("Parallelism huge workload = %d, want clamp to %d", got, maxExpected)
	}
}
