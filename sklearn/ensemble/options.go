package ensemble

// Option is a function that configures GradientBoostingRegressor
type Option func(*GradientBoostingRegressor)

// WithNumTrees sets the number of boosting iterations
func WithNumTrees(n int) Option {
	return func(gb *GradientBoostingRegressor) {
		gb.numTrees = n
	}
}

// WithLearningRate sets the shrinkage applied to every tree
func WithLearningRate(lr float64) Option {
	return func(gb *GradientBoostingRegressor) {
		gb.learningRate = lr
	}
}

// WithNumLeaves sets the maximum number of leaves per tree
func WithNumLeaves(n int) Option {
	return func(gb *GradientBoostingRegressor) {
		gb.numLeaves = n
	}
}

// WithMaxDepth sets the maximum tree depth (<= 0 for unlimited)
func WithMaxDepth(d int) Option {
	return func(gb *GradientBoostingRegressor) {
		gb.maxDepth = d
	}
}

// WithMinSamplesLeaf sets the minimum number of samples in a leaf
func WithMinSamplesLeaf(n int) Option {
	return func(gb *GradientBoostingRegressor) {
		gb.minSamplesLeaf = n
	}
}

// WithMaxBins sets the number of histogram bins per feature
func WithMaxBins(n int) Option {
	return func(gb *GradientBoostingRegressor) {
		gb.maxBins = n
	}
}

// WithSubsample sets the fraction of rows drawn without replacement for
// each tree
func WithSubsample(f float64) Option {
	return func(gb *GradientBoostingRegressor) {
		gb.subsample = f
	}
}

// WithLambda sets the L2 regularization of leaf values
func WithLambda(l float64) Option {
	return func(gb *GradientBoostingRegressor) {
		gb.lambda = l
	}
}

// WithSeed sets the random seed of row subsampling
func WithSeed(seed uint64) Option {
	return func(gb *GradientBoostingRegressor) {
		gb.seed = seed
	}
}

// WithNJobs sets the number of parallel jobs (<= 0 uses every CPU core)
func WithNJobs(n int) Option {
	return func(gb *GradientBoostingRegressor) {
		gb.nJobs = n
	}
}
