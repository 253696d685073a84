// Package houseprice trains and evaluates a median house value model on the
// California housing dataset.
//
// The module is a small scikit-learn-style pipeline in Go:
//
//   - dataset: CSV loading into typed records and the seeded train/test split
//   - preprocessing: one-hot encoding of ocean_proximity and mean imputation
//   - sklearn/tree: histogram-based regression trees grown leaf-wise
//   - sklearn/ensemble: gradient-boosted trees (GradientBoostingRegressor)
//   - metrics: R², RMSE, MSE and MAE
//   - pipeline: encoder and regressor fitted together, Run for split, fit and evaluate
//   - config: TOML run settings
//   - report: result lines and a predicted-vs-actual plot
//   - core/model, core/parallel: estimator interfaces and bounded parallel loops
//   - pkg/errors, pkg/log: typed errors on cockroachdb/errors and zerolog logging
//
// # Quick Start
//
//	ds, err := dataset.Load("Data/housing.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := pipeline.Run(ds, pipeline.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("RSquared Score: %.2f\n", res.Metrics.R2)
//
// The housing command in cmd/housing does the same from the command line:
//
//	go run ./cmd/housing --data Data/housing.csv --plot predictions.png
//
// # Reproducibility
//
// The split and the trainer take their seed from pipeline.Options. The same
// seed and input produce the same split and bit-identical predictions for
// any number of worker goroutines.
package houseprice
