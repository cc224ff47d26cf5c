package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/npdr/core/model"
	"github.com/YuminosukeSato/npdr/pkg/errors"
)

// StandardScaler は列ごとの標準化スケーラー
// データを平均0、標準偏差1に変換する。ペナルティ付き回帰ソルバーが
// 係数の縮小を列間で公平にするために内部で使用する
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各列の平均値
	Mean []float64

	// Scale は各列の標準偏差（分散ゼロの列は1）
	Scale []float64

	// NFeatures は列数
	NFeatures int

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は入力データから統計情報（平均、標準偏差）を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewValueError("StandardScaler.Fit", "empty matrix")
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		var sum float64
		for i := 0; i < r; i++ {
			sum += X.At(i, j)
		}
		mean := sum / float64(r)
		s.Mean[j] = mean

		var ss float64
		for i := 0; i < r; i++ {
			d := X.At(i, j) - mean
			ss += d * d
		}
		// 分散ゼロの列はスケール1のまま通す（除算エラーを避ける）
		sd := math.Sqrt(ss / float64(r))
		if sd < 1e-12 {
			sd = 1.0
		}
		s.Scale[j] = sd
	}

	s.SetFitted()
	return nil
}

// Transform は学習済みの統計情報でデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if s.WithMean {
				v -= s.Mean[j]
			}
			if s.WithStd {
				v /= s.Scale[j]
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// FitTransform はFitとTransformを連続して実行する
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
