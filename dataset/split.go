package dataset

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// seedMix decorrelates the two PCG state words derived from one seed.
const seedMix = 0x9e3779b97f4a7c15

// Split holds disjoint train and test subsets, each in original order.
type Split struct {
	Train *Dataset
	Test  *Dataset
}

// NewRand returns the PCG generator used for seeded sampling.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedMix))
}

// TrainTestSplit partitions ds into train and test subsets.
//
// The test subset receives floor(n * testFraction) records chosen by a
// seeded Fisher-Yates shuffle; the same seed and input always produce the
// same partition. testFraction must lie strictly between 0 and 1.
func TrainTestSplit(ds *Dataset, testFraction float64, seed uint64) (Split, error) {
	if math.IsNaN(testFraction) || testFraction <= 0 || testFraction >= 1 {
		return Split{}, errors.NewValidationError("test_fraction", "must be in the open interval (0, 1)", testFraction)
	}

	n := ds.Len()
	nTest := int(math.Floor(float64(n) * testFraction))

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	rng := NewRand(seed)
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	testIdx := append([]int(nil), perm[:nTest]...)
	trainIdx := append([]int(nil), perm[nTest:]...)
	sort.Ints(testIdx)
	sort.Ints(trainIdx)

	split := Split{Train: ds.subset(trainIdx), Test: ds.subset(testIdx)}

	log.GetLoggerWithName("dataset").Debug("Dataset split",
		log.OperationKey, log.OperationSplit,
		log.TrainSamplesKey, split.Train.Len(),
		log.TestSamplesKey, split.Test.Len(),
		log.TestFractionKey, testFraction,
		log.RandomSeedKey, seed,
	)
	return split, nil
}
