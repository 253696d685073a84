package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

func TestOneHotEncoder_DiscoveryOrder(t *testing.T) {
	enc := NewOneHotEncoder()
	require.NoError(t, enc.Fit([]string{"NEAR BAY", "INLAND", "NEAR BAY", "NEAR OCEAN", "ISLAND", "INLAND"}))

	assert.Equal(t, []string{"NEAR BAY", "INLAND", "NEAR OCEAN", "ISLAND"}, enc.Categories())
	assert.Equal(t, 4, enc.NumCategories())

	tests := []struct {
		value string
		want  []float64
	}{
		{"NEAR BAY", []float64{1, 0, 0, 0}},
		{"INLAND", []float64{0, 1, 0, 0}},
		{"NEAR OCEAN", []float64{0, 0, 1, 0}},
		{"ISLAND", []float64{0, 0, 0, 1}},
		{"<1H OCEAN", []float64{0, 0, 0, 0}},
		{"", []float64{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := enc.Encode(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOneHotEncoder_CategoriesIsCopy(t *testing.T) {
	enc := NewOneHotEncoder()
	require.NoError(t, enc.Fit([]string{"A", "B"}))

	cats := enc.Categories()
	cats[0] = "changed"
	assert.Equal(t, []string{"A", "B"}, enc.Categories())
}

func TestOneHotEncoder_Errors(t *testing.T) {
	enc := NewOneHotEncoder()

	_, err := enc.Encode("NEAR BAY")
	var nfErr *errors.NotFittedError
	assert.True(t, errors.As(err, &nfErr))

	err = enc.Fit(nil)
	var idErr *errors.InsufficientDataError
	assert.True(t, errors.As(err, &idErr))
	assert.False(t, enc.IsFitted())

	require.NoError(t, enc.Fit([]string{"A"}))
	err = enc.EncodeInto(make([]float64, 3), "A")
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}
