// Package tree grows a single regression tree from discretized instances by
// repeatedly computing histograms and invoking the split finder over an
// expanding frontier of leaves (SPEC_FULL.md §4.5), then collapses the
// result into an immutable, predictable Model.
package tree

import (
	"math/bits"

	"github.com/ezoic/gbtreecore/split"
)

// LearningNode is one node of a tree under active growth. Node ids follow
// the binary-heap convention: root=1, left child=id<<1, right child=
// id<<1|1 — so parent=id>>1 and depth=bit-length(id) (SPEC_FULL.md §3).
// Leaves always have Split=nil and Left=Right=nil.
type LearningNode struct {
	NodeID     uint64
	IsLeaf     bool
	Prediction float64
	Split      *split.Split
	Left       *LearningNode
	Right      *LearningNode
}

// NewRoot returns a fresh root node (id 1), initially a leaf.
func NewRoot() *LearningNode {
	return &LearningNode{NodeID: 1, IsLeaf: true}
}

// LeftChildID returns id's left child id.
func LeftChildID(id uint64) uint64 { return id << 1 }

// RightChildID returns id's right child id.
func RightChildID(id uint64) uint64 { return id<<1 | 1 }

// ParentID returns id's parent id.
func ParentID(id uint64) uint64 { return id >> 1 }

// Depth returns the node depth of id (root id=1 has depth 1).
func Depth(id uint64) int {
	return bits.Len64(id)
}
