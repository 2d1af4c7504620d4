package tree

import (
	"testing"

	"github.com/ezoic/gbtreecore/discretize"
	"github.com/ezoic/gbtreecore/split"
)

func TestNodeIDArithmetic(t *testing.T) {
	if LeftChildID(1) != 2 || RightChildID(1) != 3 {
		t.Fatalf("root children: got (%d,%d), want (2,3)", LeftChildID(1), RightChildID(1))
	}
	if ParentID(6) != 3 {
		t.Fatalf("ParentID(6) = %d, want 3", ParentID(6))
	}
	if Depth(1) != 1 || Depth(2) != 2 || Depth(7) != 3 {
		t.Fatalf("unexpected depths: %d %d %d", Depth(1), Depth(2), Depth(7))
	}
}

// hand-built tree: root(1) splits on feature 0 threshold 1 into leaf 2
// (left) and an internal node 3 that splits on feature 1 into leaves 6, 7.
func handBuiltTree() *LearningNode {
	leaf2 := &LearningNode{NodeID: 2, IsLeaf: true, Prediction: -1}
	leaf6 := &LearningNode{NodeID: 6, IsLeaf: true, Prediction: 1}
	leaf7 := &LearningNode{NodeID: 7, IsLeaf: true, Prediction: 2}
	node3 := &LearningNode{
		NodeID: 3,
		Split:  &split.Split{Kind: split.SeqKind, FeatureID: 1, Threshold: 1, Gain: 0.5},
		Left:   leaf6,
		Right:  leaf7,
	}
	root := &LearningNode{
		NodeID: 1,
		Split:  &split.Split{Kind: split.SeqKind, FeatureID: 0, Threshold: 1, Gain: 1.0},
		Left:   leaf2,
		Right:  node3,
	}
	return root
}

func TestMaterializeAssignsDenseLeafIndexAscendingByID(t *testing.T) {
	m := Materialize(handBuiltTree(), nil)
	if m.NumLeaves() != 3 {
		t.Fatalf("expected 3 leaves, got %d", m.NumLeaves())
	}
	// leaf ids 2, 6, 7 sorted ascending -> indices 0, 1, 2.
	if idx := m.LeafIndex([]discretize.BinId{1, 1}); idx != 0 {
		t.Fatalf("expected leaf 2 -> index 0, got %d", idx)
	}
	if idx := m.LeafIndex([]discretize.BinId{2, 1}); idx != 1 {
		t.Fatalf("expected leaf 6 -> index 1, got %d", idx)
	}
	if idx := m.LeafIndex([]discretize.BinId{2, 2}); idx != 2 {
		t.Fatalf("expected leaf 7 -> index 2, got %d", idx)
	}
}

func TestModelPredictWalksToCorrectLeaf(t *testing.T) {
	m := Materialize(handBuiltTree(), nil)
	if got := m.Predict([]discretize.BinId{1, 1}); got != -1 {
		t.Fatalf("expected -1, got %v", got)
	}
	if got := m.Predict([]discretize.BinId{2, 1}); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	if got := m.Predict([]discretize.BinId{2, 2}); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestFeatureGainsSumsPerOriginalColumn(t *testing.T) {
	m := Materialize(handBuiltTree(), []int{5, 9}) // selected 0->col 5, selected 1->col 9
	gains := m.FeatureGains()
	if gains[5] != 1.0 {
		t.Fatalf("expected column 5 gain 1.0, got %v", gains[5])
	}
	if gains[9] != 0.5 {
		t.Fatalf("expected column 9 gain 0.5, got %v", gains[9])
	}
}
