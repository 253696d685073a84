// Package preprocessing turns housing records into numeric feature vectors.
package preprocessing

import (
	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// OneHotEncoder はカテゴリ値をone-hotベクトルに変換するエンコーダー
// 語彙は Fit で最初に出現した順に決まり、学習後は変化しない
type OneHotEncoder struct {
	state *model.StateManager

	categories []string
	index      map[string]int
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{state: model.NewStateManager()}
}

// Fit はカテゴリ値の語彙を出現順に学習する
//
// パラメータ:
//   - values: 学習用のカテゴリ値
//
// 戻り値:
//   - error: 値が空の場合 InsufficientDataError
func (e *OneHotEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewInsufficientDataError("OneHotEncoder.Fit", 1, 0)
	}

	index := make(map[string]int)
	var categories []string
	for _, v := range values {
		if _, ok := index[v]; !ok {
			index[v] = len(categories)
			categories = append(categories, v)
		}
	}

	e.categories = categories
	e.index = index
	e.state.SetFitted(len(categories), len(values))
	return nil
}

// Encode は値をone-hotベクトルに変換する
// 未知の値はエラーにせず全要素0のベクトルを返す
func (e *OneHotEncoder) Encode(value string) ([]float64, error) {
	out := make([]float64, len(e.categories))
	if err := e.EncodeInto(out, value); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeInto writes the one-hot segment of value into dst, which must have
// length NumCategories.
func (e *OneHotEncoder) EncodeInto(dst []float64, value string) error {
	if err := e.state.RequireFitted("OneHotEncoder", "Encode"); err != nil {
		return err
	}
	if len(dst) != len(e.categories) {
		return errors.NewDimensionError("OneHotEncoder.Encode", len(e.categories), len(dst), 1)
	}
	for i := range dst {
		dst[i] = 0
	}
	if i, ok := e.index[value]; ok {
		dst[i] = 1
	}
	return nil
}

// Categories は学習した語彙のコピーを返す
func (e *OneHotEncoder) Categories() []string {
	return append([]string(nil), e.categories...)
}

// NumCategories は語彙のサイズを返す
func (e *OneHotEncoder) NumCategories() int {
	return len(e.categories)
}

// IsFitted returns whether Fit has completed.
func (e *OneHotEncoder) IsFitted() bool {
	return e.state.IsFitted()
}
