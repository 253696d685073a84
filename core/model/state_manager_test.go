package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

func TestStateManager_Lifecycle(t *testing.T) {
	s := NewStateManager()

	assert.False(t, s.IsFitted())
	err := s.RequireFitted("GradientBoostingRegressor", "Predict")
	var nfErr *errors.NotFittedError
	require.True(t, errors.As(err, &nfErr))
	assert.Equal(t, "Predict", nfErr.Method)

	s.SetFitted(13, 16512)
	assert.True(t, s.IsFitted())
	assert.NoError(t, s.RequireFitted("GradientBoostingRegressor", "Predict"))

	nFeatures, nSamples := s.Dimensions()
	assert.Equal(t, 13, nFeatures)
	assert.Equal(t, 16512, nSamples)

	assert.NoError(t, s.RequireFeatures("Predict", 13))
	var dimErr *errors.DimensionError
	require.True(t, errors.As(s.RequireFeatures("Predict", 12), &dimErr))
	assert.Equal(t, 13, dimErr.Expected)
	assert.Equal(t, 12, dimErr.Got)

	s.Reset()
	assert.False(t, s.IsFitted())
	nFeatures, _ = s.Dimensions()
	assert.Zero(t, nFeatures)
}
