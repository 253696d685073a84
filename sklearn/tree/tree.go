// Package tree implements histogram-based regression trees grown leaf-wise
// on gradient statistics, the base learner of the boosting ensemble.
package tree

// Node is a single node of a RegressionTree. Leaves have Left == Right == -1.
type Node struct {
	Feature   int     // 分割に使う特徴量のインデックス
	Threshold float64 // x <= Threshold なら左の子へ
	Left      int
	Right     int
	Gain      float64 // 分割による損失の減少量
	Value     float64 // ノードの出力値（葉の予測値）
	Count     int     // ノードに属する学習サンプル数
}

// IsLeaf returns true if the node is a leaf node
func (n *Node) IsLeaf() bool {
	return n.Left == -1 && n.Right == -1
}

// RegressionTree is a binary tree stored as a node array; node 0 is the root.
type RegressionTree struct {
	Nodes     []Node
	NumLeaves int
	Depth     int
}

// Predict returns the leaf value reached by x.
func (t *RegressionTree) Predict(x []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	i := 0
	for {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// AddGains adds the split gain of every internal node to dst[feature].
func (t *RegressionTree) AddGains(dst []float64) {
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if !n.IsLeaf() {
			dst[n.Feature] += n.Gain
		}
	}
}

func (t *RegressionTree) addLeaf(value float64, count int) int {
	t.Nodes = append(t.Nodes, Node{Left: -1, Right: -1, Value: value, Count: count})
	return len(t.Nodes) - 1
}
