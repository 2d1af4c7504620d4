package tree

import (
	"github.com/ezoic/gbtreecore/discretize"
	"github.com/ezoic/gbtreecore/gbtype"
	"github.com/ezoic/gbtreecore/histogram"
	"github.com/ezoic/gbtreecore/paralleldataset"
	"github.com/ezoic/gbtreecore/split"
)

// Row is one discretized training instance's fixed (grad, hess, bins)
// triple — fixed for the whole tree-growth run; only its current node id
// changes level to level, tracked in a separate aligned dataset.
type Row[H gbtype.Numeric] struct {
	Grad H
	Hess H
	Bins []discretize.BinId
}

// BuildParams configures one call to Grow (SPEC_FULL.md §4.5/§6).
type BuildParams struct {
	MaxDepth         int
	MaxLeaves        int64
	SplitCfg         split.Config
	TreeCfg          split.TreeConfig
	AggregationDepth int
	// Seed is the base seed for this tree; each level's split search uses
	// Seed + depth (SPEC_FULL.md §4.5 step 4: base_seed + tree_index + depth,
	// with tree_index already folded into Seed by the caller).
	Seed int64
	// Checkpointer persists node-id lineage every few levels. May be nil to
	// disable checkpointing entirely.
	Checkpointer *paralleldataset.Checkpointer
	TreeIndex    int
}

// Grow builds one tree over data via the frontier-growth loop: compute
// histograms, find splits, expand the frontier, repeat until max_depth,
// max_leaves, or an empty split set stops it (SPEC_FULL.md §4.5).
func Grow[H gbtype.Numeric](data *paralleldataset.Dataset[Row[H]], params BuildParams) (*Model, error) {
	root := NewRoot()
	frontier := map[uint64]*LearningNode{1: root}

	nodeIDs := paralleldataset.Map(data, func(Row[H]) uint64 { return 1 })

	var parentHists *paralleldataset.Dataset[paralleldataset.KV[histogram.NodeFeature, histogram.Histogram[H]]]
	lastSplits := map[uint64]split.Split{}
	minNodeID := uint64(1)
	numLeaves := 1
	numCols := len(params.TreeCfg.IsSeq)

	maxDepth := params.MaxDepth
	if maxDepth < 1 {
		maxDepth = 1
	}

	for depth := 0; depth < maxDepth; depth++ {
		parallelism := histogram.Parallelism(data.NumPartitions(), numLeaves, numCols, params.SplitCfg.ColSampleByLevel)

		if depth > 0 {
			nodeIDs = recomputeNodeIDs(data, nodeIDs, lastSplits, params.TreeCfg.Columns)
		}
		if params.Checkpointer != nil {
			params.Checkpointer.Update(nodeIDs)
		}

		instances := paralleldataset.Map(
			paralleldataset.Zip(data, nodeIDs),
			func(p paralleldataset.Pair[Row[H], uint64]) histogram.Instance[H] {
				return histogram.Instance[H]{Grad: p.First.Grad, Hess: p.First.Hess, Bins: p.First.Bins, NodeID: p.Second}
			},
		)

		var levelHists *paralleldataset.Dataset[paralleldataset.KV[histogram.NodeFeature, histogram.Histogram[H]]]
		if depth == 0 {
			levelHists = histogram.ComputeHists(instances, parallelism)
		} else {
			leftOnly := paralleldataset.Filter(instances, func(inst histogram.Instance[H]) bool {
				return inst.NodeID%2 == 0 && inst.NodeID >= minNodeID
			})
			leftHists := histogram.ComputeHists(leftOnly, parallelism)
			levelHists = histogram.SubtractHists(parentHists, leftHists, params.SplitCfg.MinNodeHess, parallelism)
		}
		if params.Checkpointer != nil {
			params.Checkpointer.Update(levelHists)
		}

		seed := params.Seed + int64(depth)
		result := split.FindSplits[H](levelHists, params.TreeCfg, params.SplitCfg, seed, params.AggregationDepth)

		if len(result) == 0 {
			finalizeRootIfUntouched(root, data, params.SplitCfg)
			break
		}
		if int64(numLeaves+len(result)) > params.MaxLeaves {
			finalizeRootIfUntouched(root, data, params.SplitCfg)
			break
		}

		for nodeID, s := range result {
			n, ok := frontier[nodeID]
			if !ok || !n.IsLeaf {
				continue
			}
			sCopy := s
			n.IsLeaf = false
			n.Split = &sCopy

			left := &LearningNode{NodeID: LeftChildID(nodeID), IsLeaf: true, Prediction: s.Stats[0]}
			right := &LearningNode{NodeID: RightChildID(nodeID), IsLeaf: true, Prediction: s.Stats[3]}
			n.Left, n.Right = left, right

			delete(frontier, nodeID)
			frontier[left.NodeID] = left
			frontier[right.NodeID] = right
		}
		numLeaves += len(result)
		lastSplits = result
		minNodeID <<= 1
		parentHists = levelHists

		if depth+1 >= maxDepth || int64(numLeaves) >= params.MaxLeaves {
			break
		}
	}

	if params.Checkpointer != nil {
		params.Checkpointer.UnpersistAll()
		params.Checkpointer.DeleteAllCheckpoints()
	}

	return Materialize(root, params.TreeCfg.Columns), nil
}

// recomputeNodeIDs routes each instance from its current node to the
// appropriate child if that node received a split last level, otherwise
// leaves it in place (SPEC_FULL.md §4.5 step 2).
func recomputeNodeIDs[H gbtype.Numeric](
	data *paralleldataset.Dataset[Row[H]],
	nodeIDs *paralleldataset.Dataset[uint64],
	lastSplits map[uint64]split.Split,
	columns []int,
) *paralleldataset.Dataset[uint64] {
	return paralleldataset.Map(
		paralleldataset.Zip(data, nodeIDs),
		func(p paralleldataset.Pair[Row[H], uint64]) uint64 {
			id := p.Second
			s, ok := lastSplits[id]
			if !ok {
				return id
			}
			col := s.FeatureID
			if columns != nil && col < len(columns) {
				col = columns[col]
			}
			bin := discretize.MissingBin
			if col >= 0 && col < len(p.First.Bins) {
				bin = p.First.Bins[col]
			}
			if s.GoLeft(bin) {
				return LeftChildID(id)
			}
			return RightChildID(id)
		},
	)
}

// finalizeRootIfUntouched gives the root a sensible constant prediction
// when the tree never applied any split (a degenerate single-leaf tree):
// the regularized-optimal weight over the whole dataset's gradient/hessian
// sum.
func finalizeRootIfUntouched[H gbtype.Numeric](root *LearningNode, data *paralleldataset.Dataset[Row[H]], cfg split.Config) {
	if !root.IsLeaf {
		return
	}
	sum := paralleldataset.TreeAggregate(
		data,
		func() [2]float64 { return [2]float64{} },
		func(acc [2]float64, r Row[H]) [2]float64 {
			return [2]float64{acc[0] + float64(r.Grad), acc[1] + float64(r.Hess)}
		},
		func(a, b [2]float64) [2]float64 { return [2]float64{a[0] + b[0], a[1] + b[1]} },
		2,
	)
	root.Prediction = split.LeafWeight(sum[0], sum[1], cfg.RegAlpha, cfg.RegLambda)
}
