// Package pipeline wires the feature encoder and the boosted tree ensemble
// into a single trainable model over housing records.
package pipeline

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/metrics"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/YuminosukeSato/houseprice/preprocessing"
	"github.com/YuminosukeSato/houseprice/sklearn/ensemble"
)

// Options is the explicit configuration of a run.
type Options struct {
	// TestFraction is the share of records held out for evaluation.
	TestFraction float64
	// Seed drives both the split and the trainer.
	Seed uint64
	// Trainer options are applied after the seed.
	Trainer []ensemble.Option
}

// DefaultOptions returns the settings of the reference run.
func DefaultOptions() Options {
	return Options{TestFraction: 0.2, Seed: 0}
}

// Pipeline is a fitted encoder and regressor. It is immutable after Fit.
type Pipeline struct {
	Encoder *preprocessing.FeatureEncoder
	Model   *ensemble.GradientBoostingRegressor
}

// Fit fits the encoder and the regressor on the training records only.
func Fit(train *dataset.Dataset, opts Options) (p *Pipeline, err error) {
	defer errors.Recover(&err, "pipeline.Fit")

	if train.Len() == 0 {
		return nil, errors.NewInsufficientDataError("pipeline.Fit", 1, 0)
	}

	records := train.Records()
	enc := preprocessing.NewFeatureEncoder()
	if err := enc.Fit(records); err != nil {
		return nil, err
	}
	X, err := enc.Transform(records)
	if err != nil {
		return nil, err
	}
	y := mat.NewDense(train.Len(), 1, train.Targets())

	trainerOpts := append([]ensemble.Option{ensemble.WithSeed(opts.Seed)}, opts.Trainer...)
	gb := ensemble.NewGradientBoostingRegressor(trainerOpts...)
	if err := gb.Fit(X, y); err != nil {
		return nil, errors.Wrap(err, "fit regressor")
	}
	return &Pipeline{Encoder: enc, Model: gb}, nil
}

// Evaluate scores the pipeline on held-out records with the encoder as
// fitted on the training data.
func (p *Pipeline) Evaluate(test *dataset.Dataset) (metrics.RegressionMetrics, error) {
	if test.Len() == 0 {
		return metrics.RegressionMetrics{}, errors.NewInsufficientDataError("pipeline.Evaluate", 1, 0)
	}
	pred, err := p.PredictDataset(test)
	if err != nil {
		return metrics.RegressionMetrics{}, err
	}
	m, err := metrics.Evaluate(test.Targets(), pred)
	if err != nil {
		return metrics.RegressionMetrics{}, err
	}

	log.GetLoggerWithName("pipeline").Info("Model evaluated",
		log.OperationKey, log.OperationScore,
		log.PhaseKey, log.PhaseTesting,
		log.SamplesKey, m.N,
		log.R2ScoreKey, m.R2,
		log.RMSEKey, m.RMSE,
	)
	return m, nil
}

// PredictDataset predicts every record of ds in order.
func (p *Pipeline) PredictDataset(ds *dataset.Dataset) ([]float64, error) {
	X, err := p.Encoder.Transform(ds.Records())
	if err != nil {
		return nil, err
	}
	pred, err := p.Model.Predict(X)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, pred), nil
}

// Predict predicts the median house value of a raw row. The target column
// is not required.
func (p *Pipeline) Predict(row dataset.Row) (float64, error) {
	rec, err := dataset.ParseRow(row, false)
	if err != nil {
		return 0, err
	}
	return p.PredictRecord(rec)
}

// PredictRecord predicts the median house value of a record.
func (p *Pipeline) PredictRecord(rec dataset.Record) (float64, error) {
	x, err := p.Encoder.Encode(rec)
	if err != nil {
		return 0, err
	}
	return p.Model.PredictOne(x)
}

// Result is the outcome of Run.
type Result struct {
	Pipeline   *Pipeline
	Split      dataset.Split
	Metrics    metrics.RegressionMetrics
	Duration   time.Duration
	NumRecords int
}

// Run splits ds, fits on the train subset and evaluates on the test subset.
func Run(ds *dataset.Dataset, opts Options) (*Result, error) {
	start := time.Now()
	logger := log.GetLoggerWithName("pipeline")

	split, err := dataset.TrainTestSplit(ds, opts.TestFraction, opts.Seed)
	if err != nil {
		return nil, err
	}
	logger.Info("Dataset split",
		log.OperationKey, log.OperationSplit,
		log.TrainSamplesKey, split.Train.Len(),
		log.TestSamplesKey, split.Test.Len(),
		log.RandomSeedKey, opts.Seed,
	)

	p, err := Fit(split.Train, opts)
	if err != nil {
		return nil, err
	}
	m, err := p.Evaluate(split.Test)
	if err != nil {
		return nil, err
	}

	return &Result{
		Pipeline:   p,
		Split:      split,
		Metrics:    m,
		Duration:   time.Since(start),
		NumRecords: ds.Len(),
	}, nil
}
