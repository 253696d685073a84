package tree

import (
	"github.com/YuminosukeSato/houseprice/core/parallel"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Params controls tree growth.
type Params struct {
	// NumLeaves は1本の木の最大葉数
	NumLeaves int
	// MaxDepth は木の最大深さ（0以下で無制限）
	MaxDepth int
	// MinSamplesLeaf は葉に必要な最小サンプル数
	MinSamplesLeaf int
	// Lambda はL2正則化係数
	Lambda float64
	// MinGain は分割に必要な最小ゲイン。これを超えるゲインのみ採用する
	MinGain float64
}

// Validate checks the growth parameters.
func (p Params) Validate() error {
	if p.NumLeaves < 2 {
		return errors.NewValidationError("num_leaves", "must be at least 2", p.NumLeaves)
	}
	if p.MinSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", p.MinSamplesLeaf)
	}
	if p.Lambda < 0 {
		return errors.NewValidationError("lambda", "must be non-negative", p.Lambda)
	}
	return nil
}

// Builder grows regression trees best-first: at every step the leaf with
// the largest split gain is split, until NumLeaves is reached or no leaf
// can be split. For a given input the tree is identical for any worker
// count.
type Builder struct {
	params  Params
	workers int
}

// NewBuilder creates a Builder. workers <= 0 uses every CPU core for the
// per-feature split search.
func NewBuilder(params Params, workers int) *Builder {
	return &Builder{params: params, workers: workers}
}

// splitInfo is the best split of one leaf.
type splitInfo struct {
	valid     bool
	feature   int
	bin       int
	gain      float64
	leftG     float64
	leftH     float64
	leftCount int
}

// leaf is a growing leaf owning rows[begin:end].
type leaf struct {
	node       int
	begin, end int
	depth      int
	sumG, sumH float64
	split      splitInfo
}

type binStat struct {
	g, h  float64
	count int
}

// Build grows a tree on the given rows of data. grad and hess are indexed
// by row. rows is not modified.
func (b *Builder) Build(data *BinnedData, grad, hess []float64, rows []int) (*RegressionTree, error) {
	if err := b.params.Validate(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.NewInsufficientDataError("tree.Build", 1, 0)
	}
	if len(grad) != data.NumRows() || len(hess) != data.NumRows() {
		return nil, errors.NewDimensionError("tree.Build", data.NumRows(), len(grad), 0)
	}

	part := append([]int(nil), rows...)
	scratch := make([]int, len(part))

	t := &RegressionTree{}
	var sumG, sumH float64
	for _, r := range part {
		sumG += grad[r]
		sumH += hess[r]
	}
	root := &leaf{
		node: t.addLeaf(b.leafValue(sumG, sumH), len(part)),
		end:  len(part),
		sumG: sumG,
		sumH: sumH,
	}
	if err := b.findSplit(data, grad, hess, part, root); err != nil {
		return nil, err
	}
	leaves := []*leaf{root}

	for len(leaves) < b.params.NumLeaves {
		best := -1
		for i, l := range leaves {
			if l.split.valid && (best < 0 || l.split.gain > leaves[best].split.gain) {
				best = i
			}
		}
		if best < 0 {
			break
		}

		left, right := b.apply(data, t, part, scratch, leaves[best])
		for _, child := range []*leaf{left, right} {
			if err := b.findSplit(data, grad, hess, part, child); err != nil {
				return nil, err
			}
		}
		leaves[best] = left
		leaves = append(leaves, right)
	}

	t.NumLeaves = len(leaves)
	for _, l := range leaves {
		if l.depth > t.Depth {
			t.Depth = l.depth
		}
	}
	return t, nil
}

// apply turns l into an internal node and returns its two children.
// The rows of l are partitioned stably so that left rows come first.
func (b *Builder) apply(data *BinnedData, t *RegressionTree, part, scratch []int, l *leaf) (*leaf, *leaf) {
	s := l.split
	bins := data.bins[s.feature]

	mid := l.begin
	nRight := 0
	for _, r := range part[l.begin:l.end] {
		if int(bins[r]) <= s.bin {
			part[mid] = r
			mid++
		} else {
			scratch[nRight] = r
			nRight++
		}
	}
	copy(part[mid:l.end], scratch[:nRight])

	rightG, rightH := l.sumG-s.leftG, l.sumH-s.leftH
	leftNode := t.addLeaf(b.leafValue(s.leftG, s.leftH), mid-l.begin)
	rightNode := t.addLeaf(b.leafValue(rightG, rightH), l.end-mid)

	n := &t.Nodes[l.node]
	n.Feature = s.feature
	n.Threshold = data.Threshold(s.feature, s.bin)
	n.Gain = s.gain
	n.Left = leftNode
	n.Right = rightNode

	left := &leaf{node: leftNode, begin: l.begin, end: mid, depth: l.depth + 1, sumG: s.leftG, sumH: s.leftH}
	right := &leaf{node: rightNode, begin: mid, end: l.end, depth: l.depth + 1, sumG: rightG, sumH: rightH}
	return left, right
}

// findSplit stores the best split of l, searching features in parallel.
// Per-feature results are reduced in feature order so ties resolve to the
// lowest feature index.
func (b *Builder) findSplit(data *BinnedData, grad, hess []float64, part []int, l *leaf) error {
	l.split = splitInfo{}
	count := l.end - l.begin
	if count < 2*b.params.MinSamplesLeaf {
		return nil
	}
	if b.params.MaxDepth > 0 && l.depth >= b.params.MaxDepth {
		return nil
	}

	rows := part[l.begin:l.end]
	results := make([]splitInfo, data.NumFeatures())
	err := parallel.ForEach(data.NumFeatures(), b.workers, func(f int) error {
		results[f] = b.bestFeatureSplit(data, grad, hess, rows, l, f)
		return nil
	})
	if err != nil {
		return err
	}

	for _, s := range results {
		if s.valid && (!l.split.valid || s.gain > l.split.gain) {
			l.split = s
		}
	}
	return nil
}

func (b *Builder) bestFeatureSplit(data *BinnedData, grad, hess []float64, rows []int, l *leaf, f int) splitInfo {
	nBins := data.NumBins(f)
	if nBins < 2 {
		return splitInfo{}
	}

	hist := make([]binStat, nBins)
	bins := data.bins[f]
	for _, r := range rows {
		s := &hist[bins[r]]
		s.g += grad[r]
		s.h += hess[r]
		s.count++
	}

	best := splitInfo{feature: f}
	parentScore := b.score(l.sumG, l.sumH)
	total := len(rows)
	var gl, hl float64
	cl := 0
	for bin := 0; bin < nBins-1; bin++ {
		gl += hist[bin].g
		hl += hist[bin].h
		cl += hist[bin].count
		if cl < b.params.MinSamplesLeaf {
			continue
		}
		if total-cl < b.params.MinSamplesLeaf {
			break
		}
		if hist[bin].count == 0 {
			continue
		}

		gain := 0.5 * (b.score(gl, hl) + b.score(l.sumG-gl, l.sumH-hl) - parentScore)
		if gain > b.params.MinGain && (!best.valid || gain > best.gain) {
			best = splitInfo{valid: true, feature: f, bin: bin, gain: gain, leftG: gl, leftH: hl, leftCount: cl}
		}
	}
	return best
}

// score is G²/(H+λ), the loss reduction of an optimal leaf.
func (b *Builder) score(g, h float64) float64 {
	d := h + b.params.Lambda
	if d <= 0 {
		return 0
	}
	return g * g / d
}

// leafValue is the Newton step -G/(H+λ).
func (b *Builder) leafValue(g, h float64) float64 {
	d := h + b.params.Lambda
	if d <= 0 {
		return 0
	}
	return -g / d
}
