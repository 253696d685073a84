package tree

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/core/parallel"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// MaxBinsLimit is the largest bin count a feature may use.
const MaxBinsLimit = 1 << 16

// BinnedData は特徴量をヒストグラムのビン番号に量子化したデータ
//
// 特徴量 f の値 x のビン番号は Uppers(f)[b-1] < x <= Uppers(f)[b] を満たす b。
// ビン b で分割した左側ノードは x <= Uppers(f)[b] の行を受け取る。
type BinnedData struct {
	nRows  int
	uppers [][]float64
	bins   [][]uint16
}

// NewBinnedData quantizes every column of X into at most maxBins
// equal-frequency bins. Columns are processed with up to workers goroutines.
func NewBinnedData(X mat.Matrix, maxBins, workers int) (*BinnedData, error) {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewInsufficientDataError("tree.NewBinnedData", 1, rows)
	}
	if maxBins < 2 || maxBins > MaxBinsLimit {
		return nil, errors.NewValidationError("max_bins", "must be between 2 and 65536", maxBins)
	}

	d := &BinnedData{
		nRows:  rows,
		uppers: make([][]float64, cols),
		bins:   make([][]uint16, cols),
	}
	err := parallel.ForEach(cols, workers, func(j int) error {
		values := mat.Col(nil, j, X)
		uppers := binUppers(values, maxBins)
		bins := make([]uint16, rows)
		for i, v := range values {
			bins[i] = uint16(sort.SearchFloat64s(uppers, v))
		}
		d.uppers[j] = uppers
		d.bins[j] = bins
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// NumRows returns the number of binned samples.
func (d *BinnedData) NumRows() int { return d.nRows }

// NumFeatures returns the number of binned features.
func (d *BinnedData) NumFeatures() int { return len(d.uppers) }

// NumBins returns the number of bins of feature f.
func (d *BinnedData) NumBins(f int) int { return len(d.uppers[f]) + 1 }

// Threshold returns the upper bound of bin b of feature f.
func (d *BinnedData) Threshold(f, b int) float64 { return d.uppers[f][b] }

// Bin returns the bin of row i for feature f.
func (d *BinnedData) Bin(f, i int) int { return int(d.bins[f][i]) }

// binUppers computes the bin upper bounds of one feature. Each bound lies
// between two distinct observed values, so equal values share a bin.
func binUppers(values []float64, maxBins int) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var (
		distinct []float64
		counts   []int
	)
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			distinct = append(distinct, v)
			counts = append(counts, 0)
		}
		counts[len(counts)-1]++
	}
	if len(distinct) <= 1 {
		return nil
	}

	if len(distinct) <= maxBins {
		uppers := make([]float64, len(distinct)-1)
		for i := range uppers {
			uppers[i] = midpoint(distinct[i], distinct[i+1])
		}
		return uppers
	}

	// Equal-frequency cut points over the sorted sample
	n := float64(len(sorted))
	perBin := n / float64(maxBins)
	uppers := make([]float64, 0, maxBins-1)
	cum, next := 0, 1
	for i := 0; i < len(distinct)-1 && len(uppers) < maxBins-1; i++ {
		cum += counts[i]
		if float64(cum) < float64(next)*perBin {
			continue
		}
		uppers = append(uppers, midpoint(distinct[i], distinct[i+1]))
		for float64(cum) >= float64(next)*perBin {
			next++
		}
	}
	return uppers
}

// midpoint returns a value m with a <= m < b.
func midpoint(a, b float64) float64 {
	m := a + (b-a)/2
	if m >= b {
		return a
	}
	return m
}
