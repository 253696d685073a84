package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

func trainingRecords() []dataset.Record {
	return []dataset.Record{
		{Longitude: -122.23, Latitude: 37.88, HousingMedianAge: 41, TotalRooms: 880, TotalBedrooms: 129,
			Population: 322, Households: 126, MedianIncome: 8.3252, OceanProximity: "NEAR BAY", MedianHouseValue: 452600},
		{Longitude: -121.97, Latitude: 37.64, HousingMedianAge: 32, TotalRooms: 1283, TotalBedrooms: math.NaN(),
			Population: 1015, Households: 401, MedianIncome: 3.9583, OceanProximity: "INLAND", MedianHouseValue: 197000},
		{Longitude: -117.20, Latitude: 32.80, HousingMedianAge: 20, TotalRooms: 1000, TotalBedrooms: 271,
			Population: 500, Households: 200, MedianIncome: 4.5, OceanProximity: "NEAR OCEAN", MedianHouseValue: 250000},
		{Longitude: -118.32, Latitude: 33.35, HousingMedianAge: 27, TotalRooms: 1675, TotalBedrooms: 521,
			Population: 744, Households: 331, MedianIncome: 2.1579, OceanProximity: "ISLAND", MedianHouseValue: 450000},
	}
}

func TestFeatureEncoder_Encode(t *testing.T) {
	enc := NewFeatureEncoder()
	require.NoError(t, enc.Fit(trainingRecords()))

	assert.Equal(t, 12, enc.NumFeatures())
	assert.Equal(t, []string{"NEAR BAY", "INLAND", "NEAR OCEAN", "ISLAND"}, enc.Categories())

	sample := dataset.Record{
		Longitude: -122.25, Latitude: 37.84, HousingMedianAge: 52, TotalRooms: 3104, TotalBedrooms: 687,
		Population: 1157, Households: 647, MedianIncome: 3.12, OceanProximity: "NEAR BAY",
	}
	got, err := enc.Encode(sample)
	require.NoError(t, err)
	assert.Equal(t, []float64{-122.25, 37.84, 52, 3104, 687, 1157, 647, 3.12, 1, 0, 0, 0}, got)

	sample.OceanProximity = "<1H OCEAN"
	got, err = enc.Encode(sample)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, got[dataset.NumericFieldCount:])
}

func TestFeatureEncoder_ImputesTrainingMean(t *testing.T) {
	enc := NewFeatureEncoder()
	require.NoError(t, enc.Fit(trainingRecords()))

	wantBedrooms := (129.0 + 271.0 + 521.0) / 3
	assert.InDelta(t, wantBedrooms, enc.ImputationValues()[4], 1e-9)

	got, err := enc.Encode(trainingRecords()[1])
	require.NoError(t, err)
	assert.InDelta(t, wantBedrooms, got[4], 1e-9)
}

func TestFeatureEncoder_AllMissingColumnImputesZero(t *testing.T) {
	records := trainingRecords()
	for i := range records {
		records[i].Population = math.NaN()
	}
	enc := NewFeatureEncoder()
	require.NoError(t, enc.Fit(records))

	got, err := enc.Encode(records[0])
	require.NoError(t, err)
	assert.Equal(t, 0.0, got[5])
}

func TestFeatureEncoder_Deterministic(t *testing.T) {
	a := NewFeatureEncoder()
	b := NewFeatureEncoder()
	require.NoError(t, a.Fit(trainingRecords()))
	require.NoError(t, b.Fit(trainingRecords()))

	Xa, err := a.Transform(trainingRecords())
	require.NoError(t, err)
	Xb, err := b.Transform(trainingRecords())
	require.NoError(t, err)
	assert.Equal(t, Xa.RawMatrix().Data, Xb.RawMatrix().Data)

	rows, cols := Xa.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, a.NumFeatures(), cols)
	for i, rec := range trainingRecords() {
		v, err := a.Encode(rec)
		require.NoError(t, err)
		assert.Equal(t, v, Xa.RawRowView(i))
	}
}

func TestFeatureEncoder_FeatureNames(t *testing.T) {
	enc := NewFeatureEncoder()
	require.NoError(t, enc.Fit(trainingRecords()[:2]))

	assert.Equal(t, []string{
		"longitude", "latitude", "housing_median_age", "total_rooms", "total_bedrooms",
		"population", "households", "median_income",
		"ocean_proximity=NEAR BAY", "ocean_proximity=INLAND",
	}, enc.FeatureNames())
}

func TestFeatureEncoder_Errors(t *testing.T) {
	enc := NewFeatureEncoder()

	_, err := enc.Encode(trainingRecords()[0])
	var nfErr *errors.NotFittedError
	assert.True(t, errors.As(err, &nfErr))

	_, err = enc.Transform(trainingRecords())
	assert.True(t, errors.As(err, &nfErr))

	err = enc.Fit(nil)
	var idErr *errors.InsufficientDataError
	assert.True(t, errors.As(err, &idErr))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}
