package tree

import (
	"testing"

	"github.com/ezoic/gbtreecore/discretize"
	"github.com/ezoic/gbtreecore/paralleldataset"
	"github.com/ezoic/gbtreecore/split"
)

// fourWayRows builds instances over two sequential features, each taking
// bins {1,2}, with a distinct gradient per (f0,f1) combination so a
// depth-2 tree should separate all four combinations into their own leaf:
// (1,1)->-10, (1,2)->-2, (2,1)->2, (2,2)->10, hess=1 throughout.
func fourWayRows() []Row[float64] {
	combos := []struct {
		f0, f1 discretize.BinId
		grad   float64
	}{
		{1, 1, -10},
		{1, 2, -2},
		{2, 1, 2},
		{2, 2, 10},
	}
	var rows []Row[float64]
	for _, c := range combos {
		for i := 0; i < 4; i++ {
			rows = append(rows, Row[float64]{Grad: c.grad, Hess: 1, Bins: []discretize.BinId{c.f0, c.f1}})
		}
	}
	return rows
}

func baseSplitCfg() split.Config {
	return split.Config{
		RegAlpha:         0,
		RegLambda:        1,
		MinGain:          1e-6,
		MinNodeHess:      0,
		MaxBruteBins:     2,
		ColSampleByLevel: 1,
	}
}

func baseTreeCfg() split.TreeConfig {
	return split.TreeConfig{IsSeq: []bool{true, true}}
}

func TestGrowSeparatesAllFourCombinationsAtDepthTwo(t *testing.T) {
	rows := fourWayRows()
	data := paralleldataset.FromSlice(rows, 2)

	params := BuildParams{
		MaxDepth:         2,
		MaxLeaves:        10,
		SplitCfg:         baseSplitCfg(),
		TreeCfg:          baseTreeCfg(),
		AggregationDepth: 2,
		Seed:             7,
	}

	model, err := Grow[float64](data, params)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if model.NumLeaves() != 4 {
		t.Fatalf("expected 4 leaves, got %d", model.NumLeaves())
	}

	p11 := model.Predict([]discretize.BinId{1, 1})
	p12 := model.Predict([]discretize.BinId{1, 2})
	p21 := model.Predict([]discretize.BinId{2, 1})
	p22 := model.Predict([]discretize.BinId{2, 2})

	// Leaf weight is -G/(H+lambda), so predictions fall as the gradient rises.
	if !(p11 > p12 && p12 > p21 && p21 > p22) {
		t.Fatalf("expected monotonically decreasing predictions, got %v %v %v %v", p11, p12, p21, p22)
	}
}

func TestGrowRespectsMaxDepth(t *testing.T) {
	rows := fourWayRows()
	data := paralleldataset.FromSlice(rows, 2)

	params := BuildParams{
		MaxDepth:         1,
		MaxLeaves:        100,
		SplitCfg:         baseSplitCfg(),
		TreeCfg:          baseTreeCfg(),
		AggregationDepth: 2,
		Seed:             7,
	}

	model, err := Grow[float64](data, params)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if model.NumLeaves() != 2 {
		t.Fatalf("expected exactly one level of splitting (2 leaves) when max_depth=1, got %d", model.NumLeaves())
	}
}

func TestGrowRespectsMaxLeavesByFinishingWithoutApplying(t *testing.T) {
	rows := fourWayRows()
	data := paralleldataset.FromSlice(rows, 2)

	params := BuildParams{
		MaxDepth:         3,
		MaxLeaves:        1,
		SplitCfg:         baseSplitCfg(),
		TreeCfg:          baseTreeCfg(),
		AggregationDepth: 2,
		Seed:             7,
	}

	model, err := Grow[float64](data, params)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if model.NumLeaves() != 1 {
		t.Fatalf("expected a single-leaf tree when max_leaves=1, got %d", model.NumLeaves())
	}

	// A single-leaf tree's prediction is constant regardless of input.
	p1 := model.Predict([]discretize.BinId{1, 1})
	p2 := model.Predict([]discretize.BinId{2, 2})
	if p1 != p2 {
		t.Fatalf("expected constant prediction for single-leaf tree, got %v vs %v", p1, p2)
	}
}

func TestGrowStopsWhenNoSplitAdmissible(t *testing.T) {
	// A single repeated row carries no signal to split on at all.
	rows := []Row[float64]{
		{Grad: 1, Hess: 1, Bins: []discretize.BinId{1, 1}},
		{Grad: 1, Hess: 1, Bins: []discretize.BinId{1, 1}},
		{Grad: 1, Hess: 1, Bins: []discretize.BinId{1, 1}},
	}
	data := paralleldataset.FromSlice(rows, 1)

	params := BuildParams{
		MaxDepth:         5,
		MaxLeaves:        100,
		SplitCfg:         baseSplitCfg(),
		TreeCfg:          baseTreeCfg(),
		AggregationDepth: 2,
		Seed:             1,
	}

	model, err := Grow[float64](data, params)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if model.NumLeaves() != 1 {
		t.Fatalf("expected a degenerate single-leaf tree, got %d leaves", model.NumLeaves())
	}

	want := split.LeafWeight(3, 3, params.SplitCfg.RegAlpha, params.SplitCfg.RegLambda)
	got := model.Predict([]discretize.BinId{1, 1})
	if got != want {
		t.Fatalf("expected fallback leaf weight %v, got %v", want, got)
	}
}

func TestGrowRoutingConsistentForIdenticalBins(t *testing.T) {
	rows := fourWayRows()
	data := paralleldataset.FromSlice(rows, 3)

	params := BuildParams{
		MaxDepth:         2,
		MaxLeaves:        10,
		SplitCfg:         baseSplitCfg(),
		TreeCfg:          baseTreeCfg(),
		AggregationDepth: 2,
		Seed:             42,
	}

	model, err := Grow[float64](data, params)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}

	// Every row with the same bins must land in the same leaf.
	leafOf := map[[2]discretize.BinId]int{}
	for _, r := range rows {
		key := [2]discretize.BinId{r.Bins[0], r.Bins[1]}
		idx := model.LeafIndex(r.Bins)
		if prev, ok := leafOf[key]; ok && prev != idx {
			t.Fatalf("bins %v routed to differing leaves %d and %d", key, prev, idx)
		}
		leafOf[key] = idx
	}
	if len(leafOf) != 4 {
		t.Fatalf("expected 4 distinct training bin combinations to map to leaves, got %d", len(leafOf))
	}
}
