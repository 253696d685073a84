package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// syntheticDataset builds n records whose target is the record index.
func syntheticDataset(n int) *Dataset {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			Longitude:        -122 + float64(i)/100,
			MedianIncome:     float64(i % 7),
			OceanProximity:   "INLAND",
			MedianHouseValue: float64(i),
		}
	}
	return New(records)
}

func TestTrainTestSplit_Sizes(t *testing.T) {
	tests := []struct {
		n, wantTest int
		fraction    float64
	}{
		{n: 10, fraction: 0.2, wantTest: 2},
		{n: 11, fraction: 0.2, wantTest: 2},
		{n: 14, fraction: 0.2, wantTest: 2},
		{n: 20640, fraction: 0.2, wantTest: 4128},
		{n: 3, fraction: 0.2, wantTest: 0},
		{n: 0, fraction: 0.5, wantTest: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			split, err := TrainTestSplit(syntheticDataset(tt.n), tt.fraction, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTest, split.Test.Len())
			assert.Equal(t, tt.n-tt.wantTest, split.Train.Len())
		})
	}
}

func TestTrainTestSplit_Reproducible(t *testing.T) {
	ds := syntheticDataset(500)

	a, err := TrainTestSplit(ds, 0.2, 42)
	require.NoError(t, err)
	b, err := TrainTestSplit(ds, 0.2, 42)
	require.NoError(t, err)

	assert.Equal(t, a.Train.Records(), b.Train.Records())
	assert.Equal(t, a.Test.Records(), b.Test.Records())

	c, err := TrainTestSplit(ds, 0.2, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a.Test.Targets(), c.Test.Targets())
}

func TestTrainTestSplit_DisjointUnionInOrder(t *testing.T) {
	const n = 257
	split, err := TrainTestSplit(syntheticDataset(n), 0.3, 7)
	require.NoError(t, err)

	seen := make(map[float64]int, n)
	for _, part := range []*Dataset{split.Train, split.Test} {
		prev := -1.0
		for _, y := range part.Targets() {
			seen[y]++
			assert.Greater(t, y, prev, "subset must keep dataset order")
			prev = y
		}
	}

	require.Len(t, seen, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, 1, seen[float64(i)], "record %d", i)
	}
}

func TestTrainTestSplit_InvalidFraction(t *testing.T) {
	for _, f := range []float64{0, 1, -0.1, 1.5} {
		_, err := TrainTestSplit(syntheticDataset(10), f, 0)
		var ve *errors.ValidationError
		assert.True(t, errors.As(err, &ve), "fraction %v", f)
	}
}
