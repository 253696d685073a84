// Package metrics provides regression evaluation metrics.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// RegressionMetrics は回帰モデルの評価指標
type RegressionMetrics struct {
	// R2 は決定係数。R2Defined が false の場合は 0
	R2 float64
	// RMSE は平方根平均二乗誤差
	RMSE float64
	MSE  float64
	MAE  float64

	// R2Defined は目的変数に分散がありR²が定義できたかどうか
	R2Defined bool
	// N は評価に使ったサンプル数
	N int
}

// Evaluate はすべての回帰指標を計算する
//
// 目的変数の分散が0の場合、R2 を 0、R2Defined を false にして
// UndefinedMetricWarning を発生させる。
//
// 使用例:
//
//	m, err := metrics.Evaluate(yTest, predictions)
//	fmt.Printf("RSquared Score: %.2f\n", m.R2)
func Evaluate(yTrue, yPred []float64) (RegressionMetrics, error) {
	n := len(yTrue)
	if n == 0 {
		return RegressionMetrics{}, errors.NewInsufficientDataError("metrics.Evaluate", 1, 0)
	}
	if len(yPred) != n {
		return RegressionMetrics{}, errors.NewDimensionError("metrics.Evaluate", n, len(yPred), 0)
	}
	if err := errors.CheckNumericalStability("metrics.Evaluate", yPred, 0); err != nil {
		return RegressionMetrics{}, err
	}

	rss, absSum := residuals(yTrue, yPred)
	mse := rss / float64(n)
	m := RegressionMetrics{
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAE:  absSum / float64(n),
		N:    n,
	}

	tss := totalSumOfSquares(yTrue)
	if tss == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "zero variance in y_true", 0))
		return m, nil
	}
	m.R2 = 1 - rss/tss
	m.R2Defined = true
	return m, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := checkVectors("MSE", yTrue, yPred); err != nil {
		return 0, err
	}
	rss, _ := residuals(rawData(yTrue), rawData(yPred))
	return rss / float64(yTrue.Len()), nil
}

// MSEMatrix は行列形式の入力に対してMSEを計算する
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError("MSEMatrix", "empty matrix")
	}
	if rTrue != rPred || cTrue != cPred {
		return 0, errors.NewDimensionError("MSEMatrix", rTrue, rPred, 0)
	}
	if cTrue != 1 {
		return 0, errors.NewValueError("MSEMatrix", "must be a column vector (n×1 matrix)")
	}

	return MSE(mat.NewVecDense(rTrue, mat.Col(nil, 0, yTrue)), mat.NewVecDense(rPred, mat.Col(nil, 0, yPred)))
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := checkVectors("MAE", yTrue, yPred); err != nil {
		return 0, err
	}
	_, absSum := residuals(rawData(yTrue), rawData(yPred))
	return absSum / float64(yTrue.Len()), nil
}

// R2Score は決定係数（R²）を計算する
// yTrue の分散が0の場合はエラーを返す
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := checkVectors("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}

	y := rawData(yTrue)
	tss := totalSumOfSquares(y)
	if tss == 0 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	rss, _ := residuals(y, rawData(yPred))

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

func checkVectors(op string, yTrue, yPred *mat.VecDense) error {
	n := yTrue.Len()
	if n == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return nil
}

// rawData returns the elements of v, copying when v is strided.
func rawData(v *mat.VecDense) []float64 {
	raw := v.RawVector()
	if raw.Inc == 1 {
		return raw.Data[:v.Len()]
	}
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

// residuals returns Σ(yTrue-yPred)² and Σ|yTrue-yPred|.
func residuals(yTrue, yPred []float64) (rss, absSum float64) {
	diff := make([]float64, len(yTrue))
	floats.SubTo(diff, yTrue, yPred)
	for _, d := range diff {
		rss += d * d
		absSum += math.Abs(d)
	}
	return rss, absSum
}

// totalSumOfSquares returns Σ(y-mean)², exactly 0 for constant y.
func totalSumOfSquares(y []float64) float64 {
	constant := true
	for _, v := range y[1:] {
		if v != y[0] {
			constant = false
			break
		}
	}
	if constant {
		return 0
	}

	mean := stat.Mean(y, nil)
	var tss float64
	for _, v := range y {
		tss += (v - mean) * (v - mean)
	}
	return tss
}
