package tree

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/metrics"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Option is a function that configures DecisionTreeRegressor
type Option func(*DecisionTreeRegressor)

// WithNumLeaves sets the maximum number of leaves
func WithNumLeaves(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.params.NumLeaves = n
	}
}

// WithMaxDepth sets the maximum depth (<= 0 for unlimited)
func WithMaxDepth(d int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.params.MaxDepth = d
	}
}

// WithMinSamplesLeaf sets the minimum number of samples in a leaf
func WithMinSamplesLeaf(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.params.MinSamplesLeaf = n
	}
}

// WithMaxBins sets the number of histogram bins per feature
func WithMaxBins(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.maxBins = n
	}
}

// DecisionTreeRegressor は二乗誤差を最小化する単一の回帰木
// 葉の値は葉に属するサンプルの目的変数の平均になる
type DecisionTreeRegressor struct {
	state   *model.StateManager
	params  Params
	maxBins int

	Tree *RegressionTree
}

// NewDecisionTreeRegressor creates a regression tree with the given options.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	dt := &DecisionTreeRegressor{
		state: model.NewStateManager(),
		params: Params{
			NumLeaves:      31,
			MinSamplesLeaf: 1,
		},
		maxBins: 255,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

// Fit grows the tree on X and the column vector y.
func (dt *DecisionTreeRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.Fit")

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewInsufficientDataError("DecisionTreeRegressor.Fit", 1, rows)
	}
	if rows != yRows {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", 1, yCols, 1)
	}

	data, err := NewBinnedData(X, dt.maxBins, 1)
	if err != nil {
		return err
	}

	grad := make([]float64, rows)
	hess := make([]float64, rows)
	idx := make([]int, rows)
	for i := range grad {
		grad[i] = -y.At(i, 0)
		hess[i] = 1
		idx[i] = i
	}

	params := dt.params
	params.Lambda = 0
	t, err := NewBuilder(params, 1).Build(data, grad, hess, idx)
	if err != nil {
		return err
	}

	dt.Tree = t
	dt.state.SetFitted(cols, rows)
	return nil
}

// Predict returns one prediction per row of X.
func (dt *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.state.RequireFitted("DecisionTreeRegressor", "Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if err := dt.state.RequireFeatures("DecisionTreeRegressor.Predict", cols); err != nil {
		return nil, err
	}

	out := mat.NewVecDense(rows, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		out.SetVec(i, dt.Tree.Predict(row))
	}
	return out, nil
}

// Score returns the coefficient of determination R^2 of the prediction
func (dt *DecisionTreeRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	rows, _ := y.Dims()
	return metrics.R2Score(mat.NewVecDense(rows, mat.Col(nil, 0, y)), pred.(*mat.VecDense))
}

// IsFitted returns whether the tree has been fitted.
func (dt *DecisionTreeRegressor) IsFitted() bool {
	return dt.state.IsFitted()
}
