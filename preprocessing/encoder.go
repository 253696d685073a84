package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// FeatureEncoder は住宅レコードを固定長の特徴量ベクトルに変換する
//
// ベクトルは数値フィールド8個（dataset.NumericColumns の順）と
// ocean_proximity のone-hotセグメントを連結したもの。
// 欠損値(NaN)は学習データの列平均で補完する。
type FeatureEncoder struct {
	state  *model.StateManager
	onehot *OneHotEncoder

	// means は各数値列の学習データ平均（欠損の補完値）
	means [dataset.NumericFieldCount]float64
}

// NewFeatureEncoder は新しいFeatureEncoderを作成する
//
// 使用例:
//
//	enc := preprocessing.NewFeatureEncoder()
//	if err := enc.Fit(split.Train.Records()); err != nil {
//	    return err
//	}
//	X, err := enc.Transform(split.Test.Records())
func NewFeatureEncoder() *FeatureEncoder {
	return &FeatureEncoder{
		state:  model.NewStateManager(),
		onehot: NewOneHotEncoder(),
	}
}

// Fit は学習レコードから語彙と補完値を学習する
// テストデータで呼び出してはならない
func (f *FeatureEncoder) Fit(records []dataset.Record) error {
	if len(records) == 0 {
		return errors.NewInsufficientDataError("FeatureEncoder.Fit", 1, 0)
	}

	categories := make([]string, len(records))
	var (
		sums    [dataset.NumericFieldCount]float64
		counts  [dataset.NumericFieldCount]int
		missing int
	)
	for i, rec := range records {
		categories[i] = rec.OceanProximity
		for j, v := range rec.Numeric() {
			if math.IsNaN(v) {
				missing++
				continue
			}
			sums[j] += v
			counts[j]++
		}
	}

	if err := f.onehot.Fit(categories); err != nil {
		return err
	}
	for j := range f.means {
		if counts[j] > 0 {
			f.means[j] = sums[j] / float64(counts[j])
		} else {
			f.means[j] = 0
		}
	}
	f.state.SetFitted(f.NumFeatures(), len(records))

	log.GetLoggerWithName("preprocessing").Debug("Feature encoder fitted",
		log.ModelNameKey, "FeatureEncoder",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(records),
		log.FeaturesKey, f.NumFeatures(),
		log.MissingValuesKey, missing,
	)
	return nil
}

// Encode は1件のレコードを特徴量ベクトルに変換する
func (f *FeatureEncoder) Encode(rec dataset.Record) ([]float64, error) {
	if err := f.state.RequireFitted("FeatureEncoder", "Encode"); err != nil {
		return nil, err
	}
	out := make([]float64, f.NumFeatures())
	if err := f.encodeInto(out, rec); err != nil {
		return nil, err
	}
	return out, nil
}

// Transform は複数レコードを (n_samples × n_features) の行列に変換する
func (f *FeatureEncoder) Transform(records []dataset.Record) (*mat.Dense, error) {
	if err := f.state.RequireFitted("FeatureEncoder", "Transform"); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.NewInsufficientDataError("FeatureEncoder.Transform", 1, 0)
	}

	X := mat.NewDense(len(records), f.NumFeatures(), nil)
	for i, rec := range records {
		if err := f.encodeInto(X.RawRowView(i), rec); err != nil {
			return nil, err
		}
	}
	return X, nil
}

func (f *FeatureEncoder) encodeInto(dst []float64, rec dataset.Record) error {
	for j, v := range rec.Numeric() {
		if math.IsNaN(v) {
			v = f.means[j]
		}
		dst[j] = v
	}
	return f.onehot.EncodeInto(dst[dataset.NumericFieldCount:], rec.OceanProximity)
}

// FeatureNames は特徴量ベクトルの各要素の名前を返す
// one-hot要素は "ocean_proximity=<category>" の形式
func (f *FeatureEncoder) FeatureNames() []string {
	names := make([]string, 0, f.NumFeatures())
	names = append(names, dataset.NumericColumns[:]...)
	for _, c := range f.onehot.Categories() {
		names = append(names, dataset.ColOceanProximity+"="+c)
	}
	return names
}

// NumFeatures は特徴量ベクトルの長さを返す
func (f *FeatureEncoder) NumFeatures() int {
	return dataset.NumericFieldCount + f.onehot.NumCategories()
}

// Categories returns the learned ocean_proximity vocabulary.
func (f *FeatureEncoder) Categories() []string {
	return f.onehot.Categories()
}

// ImputationValues returns the fill value of each numeric column.
func (f *FeatureEncoder) ImputationValues() []float64 {
	return append([]float64(nil), f.means[:]...)
}

// IsFitted returns whether Fit has completed.
func (f *FeatureEncoder) IsFitted() bool {
	return f.state.IsFitted()
}
