package ensemble

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// friedman generates y = 10 sin(π x0 x1) + 20 (x2 - 0.5)² + 10 x3 + 5 x4 + noise.
func friedman(n int, seed uint64) (*mat.Dense, *mat.Dense) {
	src := rand.NewPCG(seed, seed+1)
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: 0.5, Src: src}

	X := mat.NewDense(n, 6, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < 6; j++ {
			X.Set(i, j, uniform.Rand())
		}
		v := 10*math.Sin(math.Pi*X.At(i, 0)*X.At(i, 1)) +
			20*math.Pow(X.At(i, 2)-0.5, 2) +
			10*X.At(i, 3) + 5*X.At(i, 4) + noise.Rand()
		y.Set(i, 0, v)
	}
	return X, y
}

func TestGradientBoostingRegressor_Fits(t *testing.T) {
	X, y := friedman(600, 1)
	XTest, yTest := friedman(200, 2)

	gb := NewGradientBoostingRegressor(WithNumTrees(60))
	require.NoError(t, gb.Fit(X, y))
	assert.True(t, gb.IsFitted())
	assert.Len(t, gb.Trees(), 60)

	train, err := gb.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, train, 0.9)

	test, err := gb.Score(XTest, yTest)
	require.NoError(t, err)
	assert.Greater(t, test, 0.7)

	importance, err := gb.FeatureImportance()
	require.NoError(t, err)
	require.Len(t, importance, 6)
	var sum float64
	for _, v := range importance {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	// x5 is pure noise
	assert.Less(t, importance[5], importance[3])
}

func TestGradientBoostingRegressor_InitScoreIsMean(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{100, 200, 300, 400})

	gb := NewGradientBoostingRegressor(WithNumTrees(1), WithMinSamplesLeaf(10))
	require.NoError(t, gb.Fit(X, y))
	assert.Equal(t, 250.0, gb.InitScore())

	// too few rows to split: the single tree is a zero-gradient leaf
	got, err := gb.PredictOne([]float64{1})
	require.NoError(t, err)
	assert.InDelta(t, 250.0, got, 1e-9)
}

func TestGradientBoostingRegressor_Deterministic(t *testing.T) {
	X, y := friedman(400, 3)

	fit := func(opts ...Option) []float64 {
		gb := NewGradientBoostingRegressor(append([]Option{WithNumTrees(20)}, opts...)...)
		require.NoError(t, gb.Fit(X, y))
		pred, err := gb.Predict(X)
		require.NoError(t, err)
		return mat.Col(nil, 0, pred)
	}

	want := fit(WithNJobs(1))
	assert.Equal(t, want, fit(WithNJobs(1)), "two fits")
	for _, jobs := range []int{2, 4, 0} {
		assert.Equal(t, want, fit(WithNJobs(jobs)), fmt.Sprintf("n_jobs=%d", jobs))
	}

	sub := fit(WithSubsample(0.5), WithSeed(9), WithNJobs(1))
	assert.Equal(t, sub, fit(WithSubsample(0.5), WithSeed(9), WithNJobs(4)))
	assert.NotEqual(t, sub, fit(WithSubsample(0.5), WithSeed(10), WithNJobs(1)))
	assert.NotEqual(t, want, sub)
}

func TestGradientBoostingRegressor_PredictMatchesPredictOne(t *testing.T) {
	X, y := friedman(300, 4)
	gb := NewGradientBoostingRegressor(WithNumTrees(10), WithMaxDepth(3), WithLambda(1))
	require.NoError(t, gb.Fit(X, y))

	pred, err := gb.Predict(X)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		one, err := gb.PredictOne(X.RawRowView(i))
		require.NoError(t, err)
		assert.Equal(t, pred.At(i, 0), one)
	}
	for _, tr := range gb.Trees() {
		assert.LessOrEqual(t, tr.Depth, 3)
	}
}

func TestGradientBoostingRegressor_Errors(t *testing.T) {
	gb := NewGradientBoostingRegressor()

	_, err := gb.Predict(mat.NewDense(1, 2, nil))
	var nfe *errors.NotFittedError
	assert.True(t, errors.As(err, &nfe))

	_, err = gb.PredictOne([]float64{1, 2})
	assert.True(t, errors.As(err, &nfe))

	_, err = gb.FeatureImportance()
	assert.True(t, errors.As(err, &nfe))

	err = gb.Fit(&mat.Dense{}, &mat.Dense{})
	var ide *errors.InsufficientDataError
	assert.True(t, errors.As(err, &ide))

	err = gb.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(2, 1, []float64{1, 2}))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))

	err = gb.Fit(mat.NewDense(2, 1, []float64{1, math.NaN()}), mat.NewDense(2, 1, []float64{1, 2}))
	var nie *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &nie))

	X, y := friedman(50, 5)
	require.NoError(t, gb.Fit(X, y))
	_, err = gb.PredictOne([]float64{1, 2})
	assert.True(t, errors.As(err, &de))
}

func TestGradientBoostingRegressor_InvalidParams(t *testing.T) {
	X, y := friedman(50, 6)

	tests := []struct {
		name  string
		opt   Option
		param string
	}{
		{"num trees", WithNumTrees(0), "num_trees"},
		{"learning rate", WithLearningRate(0), "learning_rate"},
		{"subsample", WithSubsample(1.5), "subsample"},
		{"max bins", WithMaxBins(1), "max_bins"},
		{"num leaves", WithNumLeaves(1), "num_leaves"},
		{"min samples leaf", WithMinSamplesLeaf(0), "min_samples_leaf"},
		{"lambda", WithLambda(-1), "lambda"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewGradientBoostingRegressor(tt.opt).Fit(X, y)
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}

func TestRowSampler(t *testing.T) {
	s := newRowSampler(100, 0.3, 1)
	a := s.next()
	b := s.next()
	assert.Len(t, a, 30)
	assert.IsIncreasing(t, a)
	assert.NotEqual(t, a, b)

	full := newRowSampler(10, 1, 1)
	assert.Len(t, full.next(), 10)
}

func BenchmarkGradientBoostingRegressor_Fit(b *testing.B) {
	X, y := friedman(2000, 7)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gb := NewGradientBoostingRegressor(WithNumTrees(20))
		_ = gb.Fit(X, y)
	}
}
