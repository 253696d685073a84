// Package ensemble implements gradient-boosted regression trees.
package ensemble

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/core/parallel"
	"github.com/YuminosukeSato/houseprice/metrics"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/YuminosukeSato/houseprice/sklearn/tree"
)

const (
	// seedMix decorrelates the two PCG state words derived from one seed.
	seedMix = 0x9e3779b97f4a7c15

	// predictThreshold は逐次予測に切り替える行数
	predictThreshold = 1000
)

var _ model.Regressor = (*GradientBoostingRegressor)(nil)

// GradientBoostingRegressor は二乗誤差の勾配ブースティング回帰木
//
// 初期スコアは目的変数の平均。各イテレーションで勾配 g = F - y、
// ヘッシアン 1 に対して葉ごと（best-first）に木を成長させ、
// F += learningRate * tree(x) で予測を更新する。
// 同じデータと設定からは並列度に関係なく同一のモデルが得られる。
type GradientBoostingRegressor struct {
	state *model.StateManager

	// Hyperparameters
	numTrees       int
	learningRate   float64
	numLeaves      int
	maxDepth       int
	minSamplesLeaf int
	maxBins        int
	subsample      float64
	lambda         float64
	seed           uint64
	nJobs          int

	// Fitted model
	initScore    float64
	trees        []*tree.RegressionTree
	featureGains []float64
}

// NewGradientBoostingRegressor creates a regressor with 100 trees of up
// to 20 leaves, learning rate 0.2, at least 10
// samples per leaf, 255 bins and no row subsampling.
//
// Example:
//
//	gb := ensemble.NewGradientBoostingRegressor(
//	    ensemble.WithNumTrees(200),
//	    ensemble.WithSeed(0),
//	)
//	err := gb.Fit(X, y)
func NewGradientBoostingRegressor(opts ...Option) *GradientBoostingRegressor {
	gb := &GradientBoostingRegressor{
		state:          model.NewStateManager(),
		numTrees:       100,
		learningRate:   0.2,
		numLeaves:      20,
		minSamplesLeaf: 10,
		maxBins:        255,
		subsample:      1.0,
	}
	for _, opt := range opts {
		opt(gb)
	}
	return gb
}

// Validate checks the hyperparameters.
func (gb *GradientBoostingRegressor) Validate() error {
	if gb.numTrees < 1 {
		return errors.NewValidationError("num_trees", "must be at least 1", gb.numTrees)
	}
	if !(gb.learningRate > 0) || math.IsInf(gb.learningRate, 0) {
		return errors.NewValidationError("learning_rate", "must be positive", gb.learningRate)
	}
	if !(gb.subsample > 0 && gb.subsample <= 1) {
		return errors.NewValidationError("subsample", "must be in (0, 1]", gb.subsample)
	}
	if gb.maxBins < 2 || gb.maxBins > tree.MaxBinsLimit {
		return errors.NewValidationError("max_bins", "must be between 2 and 65536", gb.maxBins)
	}
	return gb.treeParams().Validate()
}

func (gb *GradientBoostingRegressor) treeParams() tree.Params {
	return tree.Params{
		NumLeaves:      gb.numLeaves,
		MaxDepth:       gb.maxDepth,
		MinSamplesLeaf: gb.minSamplesLeaf,
		Lambda:         gb.lambda,
	}
}

// Fit はモデルを訓練データで学習させる
//
// パラメータ:
//   - X: 訓練データ (n_samples × n_features)
//   - y: 目的変数 (n_samples × 1)
//
// 戻り値:
//   - error: 空データなら InsufficientDataError、形状不一致なら DimensionError、
//     NaN/Inf を含む場合は NumericalInstabilityError
func (gb *GradientBoostingRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "GradientBoostingRegressor.Fit")

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewInsufficientDataError("GradientBoostingRegressor.Fit", 1, rows)
	}
	if rows != yRows {
		return errors.NewDimensionError("GradientBoostingRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("GradientBoostingRegressor.Fit", 1, yCols, 1)
	}
	if err := gb.Validate(); err != nil {
		return err
	}
	if err := errors.CheckMatrix("fit_input_X", X, 0); err != nil {
		return err
	}
	if err := errors.CheckMatrix("fit_input_y", y, 0); err != nil {
		return err
	}

	logger := log.GetLoggerWithName("ensemble").With(log.ModelNameKey, "GradientBoostingRegressor")
	logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.NumTreesKey, gb.numTrees,
		log.NumLeavesKey, gb.numLeaves,
		log.LearningRateKey, gb.learningRate,
		log.RandomSeedKey, gb.seed,
	)
	start := time.Now()

	gb.state.Reset()
	Xd := mat.DenseCopyOf(X)
	target := mat.Col(nil, 0, y)

	data, err := tree.NewBinnedData(Xd, gb.maxBins, gb.nJobs)
	if err != nil {
		return err
	}
	builder := tree.NewBuilder(gb.treeParams(), gb.nJobs)

	initScore := stat.Mean(target, nil)
	scores := make([]float64, rows)
	for i := range scores {
		scores[i] = initScore
	}
	grad := make([]float64, rows)
	hess := make([]float64, rows)
	for i := range hess {
		hess[i] = 1
	}

	sampler := newRowSampler(rows, gb.subsample, gb.seed)
	trees := make([]*tree.RegressionTree, 0, gb.numTrees)
	gains := make([]float64, cols)

	for iter := 0; iter < gb.numTrees; iter++ {
		for i := range grad {
			grad[i] = scores[i] - target[i]
		}

		t, err := builder.Build(data, grad, hess, sampler.next())
		if err != nil {
			return errors.Wrapf(err, "build tree %d", iter)
		}
		trees = append(trees, t)
		t.AddGains(gains)

		lr := gb.learningRate
		parallel.ParallelizeWithThreshold(rows, predictThreshold, gb.nJobs, func(begin, end int) {
			for i := begin; i < end; i++ {
				scores[i] += lr * t.Predict(Xd.RawRowView(i))
			}
		})

		loss := trainLoss(scores, target)
		if err := errors.CheckScalar("gradient_update", loss, iter); err != nil {
			return err
		}
		logger.Debug("Boosting iteration",
			log.IterationKey, iter,
			log.LossKey, loss,
			log.NumLeavesKey, t.NumLeaves,
		)
	}

	gb.initScore = initScore
	gb.trees = trees
	gb.featureGains = gains
	gb.state.SetFitted(cols, rows)

	logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.LossKey, trainLoss(scores, target),
	)
	return nil
}

// Predict は入力データに対する予測を行う
func (gb *GradientBoostingRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := gb.state.RequireFitted("GradientBoostingRegressor", "Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if err := gb.state.RequireFeatures("GradientBoostingRegressor.Predict", cols); err != nil {
		return nil, err
	}

	Xd := mat.DenseCopyOf(X)
	out := make([]float64, rows)
	parallel.ParallelizeWithThreshold(rows, predictThreshold, gb.nJobs, func(begin, end int) {
		for i := begin; i < end; i++ {
			out[i] = gb.predictRow(Xd.RawRowView(i))
		}
	})
	return mat.NewVecDense(rows, out), nil
}

// PredictOne predicts a single encoded feature vector.
func (gb *GradientBoostingRegressor) PredictOne(x []float64) (float64, error) {
	if err := gb.state.RequireFitted("GradientBoostingRegressor", "PredictOne"); err != nil {
		return 0, err
	}
	if err := gb.state.RequireFeatures("GradientBoostingRegressor.PredictOne", len(x)); err != nil {
		return 0, err
	}
	return gb.predictRow(x), nil
}

func (gb *GradientBoostingRegressor) predictRow(x []float64) float64 {
	score := gb.initScore
	for _, t := range gb.trees {
		score += gb.learningRate * t.Predict(x)
	}
	return score
}

// Score returns the coefficient of determination R^2 of the prediction
func (gb *GradientBoostingRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := gb.Predict(X)
	if err != nil {
		return 0, err
	}
	rows, yCols := y.Dims()
	if yCols != 1 {
		return 0, errors.NewDimensionError("GradientBoostingRegressor.Score", 1, yCols, 1)
	}
	return metrics.R2Score(mat.NewVecDense(rows, mat.Col(nil, 0, y)), pred.(*mat.VecDense))
}

// FeatureImportance returns the total split gain of each feature,
// normalised to sum to 1. It is all zeros when no tree split.
func (gb *GradientBoostingRegressor) FeatureImportance() ([]float64, error) {
	if err := gb.state.RequireFitted("GradientBoostingRegressor", "FeatureImportance"); err != nil {
		return nil, err
	}
	out := append([]float64(nil), gb.featureGains...)
	var total float64
	for _, g := range out {
		total += g
	}
	if total > 0 {
		for i := range out {
			out[i] /= total
		}
	}
	return out, nil
}

// Trees returns the fitted trees in boosting order.
func (gb *GradientBoostingRegressor) Trees() []*tree.RegressionTree {
	return append([]*tree.RegressionTree(nil), gb.trees...)
}

// InitScore returns the constant the boosting started from.
func (gb *GradientBoostingRegressor) InitScore() float64 {
	return gb.initScore
}

// IsFitted returns whether Fit has completed successfully.
func (gb *GradientBoostingRegressor) IsFitted() bool {
	return gb.state.IsFitted()
}

// GetParams returns the hyperparameters of the regressor
func (gb *GradientBoostingRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"num_trees":        gb.numTrees,
		"learning_rate":    gb.learningRate,
		"num_leaves":       gb.numLeaves,
		"max_depth":        gb.maxDepth,
		"min_samples_leaf": gb.minSamplesLeaf,
		"max_bins":         gb.maxBins,
		"subsample":        gb.subsample,
		"lambda":           gb.lambda,
		"seed":             gb.seed,
		"n_jobs":           gb.nJobs,
	}
}

// trainLoss is the mean squared error of the current scores.
func trainLoss(scores, target []float64) float64 {
	var sum float64
	for i, s := range scores {
		d := s - target[i]
		sum += d * d
	}
	return sum / float64(len(scores))
}

// rowSampler draws the rows each tree is grown on.
type rowSampler struct {
	all  []int
	k    int
	perm []int
	rng  *rand.Rand
}

func newRowSampler(n int, fraction float64, seed uint64) *rowSampler {
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	k := int(math.Floor(float64(n) * fraction))
	if k < 1 {
		k = 1
	}
	s := &rowSampler{all: all, k: k}
	if k < n {
		s.perm = append([]int(nil), all...)
		s.rng = rand.New(rand.NewPCG(seed, seed^seedMix))
	}
	return s
}

// next returns the sorted rows of the next tree. Without subsampling every
// row is used.
func (s *rowSampler) next() []int {
	if s.rng == nil {
		return s.all
	}
	// Partial Fisher-Yates over a persistent permutation
	n := len(s.perm)
	for i := 0; i < s.k; i++ {
		j := i + s.rng.IntN(n-i)
		s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
	}
	rows := append([]int(nil), s.perm[:s.k]...)
	sort.Ints(rows)
	return rows
}
