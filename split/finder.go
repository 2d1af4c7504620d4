package split

import (
	"math/rand/v2"

	"github.com/ezoic/gbtreecore/gbtype"
	"github.com/ezoic/gbtreecore/histogram"
	"github.com/ezoic/gbtreecore/paralleldataset"
)

// TreeConfig carries the per-tree column selection the split finder needs:
// which original columns were selected for this tree, and which of those
// selected columns search sequentially vs as a categorical set
// (SPEC_FULL.md §6).
type TreeConfig struct {
	Columns []int // selected feature id -> original column id
	IsSeq   []bool // indexed by selected feature id
}

// mix64 deterministically combines a (node id, feature id, seed) triple
// into a single uint64, used to seed a per-key Bernoulli draw for column
// sampling, so the draw for a key depends only on (key, seed) and not on
// which partition or goroutine evaluates it.
func mix64(a, b uint64, seed int64) uint64 {
	x := a*0x9E3779B97F4A7C15 + b*0xBF58476D1CE4E5B9 + uint64(seed)
	x ^= x >> 33
	x *= 0xFF51AFD7ED558CCD
	x ^= x >> 33
	return x
}

func columnSampleKeep(nf histogram.NodeFeature, seed int64, rate float64) bool {
	if rate >= 1 {
		return true
	}
	s1 := mix64(nf.NodeID, uint64(nf.FeatureID), seed)
	s2 := mix64(uint64(nf.FeatureID), nf.NodeID, seed+1)
	rng := rand.New(rand.NewPCG(s1, s2))
	return rng.Float64() < rate
}

// searchOne dispatches one histogram's split search by strategy: sequential
// for is_seq columns, brute-force or heuristic set search otherwise,
// selected by nnz against MaxBruteBins (SPEC_FULL.md §4.4).
func searchOne[H gbtype.Numeric](featureID int, hist histogram.Histogram[H], isSeq bool, cfg Config) (Split, bool) {
	b := hist.NumBins()
	if b <= 1 {
		return Split{}, false
	}

	grad := make([]float64, b)
	hess := make([]float64, b)
	nnz := 0
	for i := 0; i < b; i++ {
		g, h := float64(hist.Grad(i)), float64(hist.Hess(i))
		grad[i], hess[i] = g, h
		if g != 0 || h != 0 {
			nnz++
		}
	}
	if nnz <= 1 {
		return Split{}, false
	}

	if isSeq {
		return splitSeq(featureID, grad, hess, cfg)
	}
	if nnz <= cfg.MaxBruteBins {
		return splitSetBrute(featureID, grad, hess, cfg)
	}
	return splitSetHeuristic(featureID, grad, hess, cfg)
}

// FindSplits searches every (node, feature) histogram in hists and selects,
// per node, the admissible split with the highest gain across features
// (SPEC_FULL.md §4.4). The per-node reduction runs as a two-stage process
// inside AggregateByKey: best-per-node within each partition, then a single
// merge of the per-partition results on the calling goroutine.
// aggregationDepth is passed to AggregateByKey as its output partition
// count; no depth-limited tree-reduce is applied across partitions.
func FindSplits[H gbtype.Numeric](
	hists *paralleldataset.Dataset[paralleldataset.KV[histogram.NodeFeature, histogram.Histogram[H]]],
	treeCfg TreeConfig,
	cfg Config,
	seed int64,
	aggregationDepth int,
) map[uint64]Split {
	sampled := hists
	if cfg.ColSampleByLevel < 1 {
		sampled = paralleldataset.Filter(hists, func(kv paralleldataset.KV[histogram.NodeFeature, histogram.Histogram[H]]) bool {
			return columnSampleKeep(kv.Key, seed, cfg.ColSampleByLevel)
		})
	}

	candidates := paralleldataset.FlatMap(sampled, func(kv paralleldataset.KV[histogram.NodeFeature, histogram.Histogram[H]]) []paralleldataset.KV[uint64, Split] {
		isSeq := kv.Key.FeatureID < len(treeCfg.IsSeq) && treeCfg.IsSeq[kv.Key.FeatureID]
		s, ok := searchOne(kv.Key.FeatureID, kv.Val, isSeq, cfg)
		if !ok {
			return nil
		}
		return []paralleldataset.KV[uint64, Split]{{Key: kv.Key.NodeID, Val: s}}
	})

	bestPerNode := paralleldataset.AggregateByKey(candidates, zeroBest, seqBest, combBest, aggregationDepth)

	out := make(map[uint64]Split)
	for _, kv := range bestPerNode.Collect() {
		if kv.Val.found {
			out[kv.Key] = kv.Val.split
		}
	}
	return out
}

// bestSplit is the per-node reduction accumulator: the highest-gain split
// seen so far for a node, or found=false if none yet.
type bestSplit struct {
	split Split
	found bool
}

func zeroBest() bestSplit {
	return bestSplit{}
}

func seqBest(acc bestSplit, v Split) bestSplit {
	if !acc.found || v.Gain > acc.split.Gain {
		return bestSplit{split: v, found: true}
	}
	return acc
}

func combBest(a, b bestSplit) bestSplit {
	if !a.found || (b.found && b.split.Gain > a.split.Gain) {
		return b
	}
	return a
}
