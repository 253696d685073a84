// Package log defines standard attribute keys for machine learning operations.
//
// The keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") so that pipeline logs can be filtered and aggregated.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of machine learning model.
	// Examples: "GradientBoostingRegressor", "FeatureEncoder"
	ModelNameKey = "model.name"

	// OperationKey specifies the machine learning operation being performed.
	// Standard values: "fit", "predict", "transform", "score", "load", "split"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the pipeline.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// TrainSamplesKey and TestSamplesKey describe the two halves of a split.
	TrainSamplesKey = "data.train_samples"
	TestSamplesKey  = "data.test_samples"

	// MissingValuesKey counts cells loaded as missing.
	MissingValuesKey = "data.missing_values"

	// PathKey records the file a dataset was read from.
	PathKey = "data.path"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records the training loss (mean squared error for regression).
	LossKey = "metrics.loss"

	// R2ScoreKey records R² coefficient of determination for regression.
	// Range [-∞, 1.0], with 1.0 being perfect prediction.
	R2ScoreKey = "metrics.r2_score"

	// RMSEKey records the root mean squared error for regression.
	RMSEKey = "metrics.rmse"

	// IterationKey records the current boosting iteration.
	IterationKey = "training.iteration"
)

// Error and Warning Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Populated automatically for errors carrying a cockroachdb stack.
	StacktraceKey = "error.stacktrace"

	// WarningKey carries a structured warning raised through errors.Warn.
	WarningKey = "warning"
)

// Hyperparameters and Configuration
const (
	// LearningRateKey records the shrinkage applied to each boosted tree.
	LearningRateKey = "hyperparams.learning_rate"

	// NumTreesKey records the number of boosting iterations.
	NumTreesKey = "hyperparams.num_trees"

	// NumLeavesKey records the maximum number of leaves per tree.
	NumLeavesKey = "hyperparams.num_leaves"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// TestFractionKey records the held-out fraction of the split.
	TestFractionKey = "config.test_fraction"
)

// Standard attribute value constants for common operations.
const (
	// Standard ML operations
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"
	OperationLoad      = "load"
	OperationSplit     = "split"

	// Standard ML phases
	PhaseTraining      = "training"
	PhaseTesting       = "testing"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"
)
