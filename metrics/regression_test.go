package metrics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect prediction",
			yTrue: mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			yPred: mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			want:  0.0,
		},
		{
			name:  "simple case",
			yTrue: mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0}),
			yPred: mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5}),
			want:  0.25,
		},
		{
			name:  "larger errors",
			yTrue: mat.NewVecDense(3, []float64{10.0, 20.0, 30.0}),
			yPred: mat.NewVecDense(3, []float64{12.0, 18.0, 33.0}),
			want:  17.0 / 3.0,
		},
		{
			name:    "dimension mismatch",
			yTrue:   mat.NewVecDense(3, []float64{1.0, 2.0, 3.0}),
			yPred:   mat.NewVecDense(2, []float64{1.0, 2.0}),
			wantErr: true,
		},
		{
			name:    "empty vectors",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)
		})
	}
}

func TestMSEMatrix(t *testing.T) {
	yTrue := mat.NewDense(3, 1, []float64{10, 20, 30})
	yPred := mat.NewDense(3, 1, []float64{12, 18, 33})

	got, err := MSEMatrix(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 17.0/3.0, got, 1e-10)

	_, err = MSEMatrix(mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil))
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))
}

func TestRMSEAndMAE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{2, 2, 3, 1})

	rmse, err := RMSE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(10.0/4.0), rmse, 1e-12)

	mae, err := MAE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mae, 1e-12)
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{name: "perfect", yTrue: []float64{1, 2, 3}, yPred: []float64{1, 2, 3}, want: 1},
		{name: "mean predictor", yTrue: []float64{1, 2, 3}, yPred: []float64{2, 2, 2}, want: 0},
		{name: "worse than mean", yTrue: []float64{1, 2, 3}, yPred: []float64{3, 2, 1}, want: -3},
		{name: "zero variance", yTrue: []float64{5, 5, 5}, yPred: []float64{4, 5, 6}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := R2Score(
				mat.NewVecDense(len(tt.yTrue), tt.yTrue),
				mat.NewVecDense(len(tt.yPred), tt.yPred),
			)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEvaluate_ConstantPredictor(t *testing.T) {
	yTrue := []float64{100, 200, 300, 400}
	yPred := []float64{250, 250, 250, 250}

	m, err := Evaluate(yTrue, yPred)
	require.NoError(t, err)

	// residuals are 150, 50, 50, 150
	assert.InDelta(t, 12500.0, m.MSE, 1e-9)
	assert.InDelta(t, 111.80, m.RMSE, 0.005)
	assert.InDelta(t, 100.0, m.MAE, 1e-9)
	assert.InDelta(t, 0.0, m.R2, 1e-12)
	assert.True(t, m.R2Defined)
	assert.Equal(t, 4, m.N)
}

func TestEvaluate_ZeroVarianceWarns(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })

	m, err := Evaluate([]float64{7, 7, 7}, []float64{6, 7, 8})
	require.NoError(t, err)

	assert.False(t, m.R2Defined)
	assert.Zero(t, m.R2)
	assert.InDelta(t, math.Sqrt(2.0/3.0), m.RMSE, 1e-12)

	require.Len(t, warnings, 1)
	var umw *errors.UndefinedMetricWarning
	require.True(t, errors.As(warnings[0], &umw))
	assert.Equal(t, "R2Score", umw.Metric)
}

func TestEvaluate_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 50; trial++ {
		n := 2 + rng.IntN(50)
		yTrue := make([]float64, n)
		yPred := make([]float64, n)
		for i := range yTrue {
			yTrue[i] = rng.NormFloat64() * 1000
			yPred[i] = rng.NormFloat64() * 1000
		}

		m, err := Evaluate(yTrue, yPred)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, m.RMSE, 0.0)
		assert.LessOrEqual(t, m.R2, 1.0)
		assert.InDelta(t, m.RMSE*m.RMSE, m.MSE, 1e-6*math.Max(1, m.MSE))
	}
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate(nil, nil)
	var ide *errors.InsufficientDataError
	assert.True(t, errors.As(err, &ide))

	_, err = Evaluate([]float64{1, 2}, []float64{1})
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))

	_, err = Evaluate([]float64{1, 2}, []float64{1, math.NaN()})
	var nie *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &nie))
}

func BenchmarkEvaluate(b *testing.B) {
	n := 4128
	yTrue := make([]float64, n)
	yPred := make([]float64, n)
	for i := range yTrue {
		yTrue[i] = float64(i)
		yPred[i] = float64(i) + 0.5
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Evaluate(yTrue, yPred)
	}
}
