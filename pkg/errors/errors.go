// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 入力検証エラー・属性単位の縮退エラー・近傍空警告など、スコアリング実行中に発生する
// 事象を構造化された型として表現します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("npdr-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// EmptyNeighborhoodWarningなどの非致命的な警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	// zerologが設定されている場合は優先的に使用
	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	// フォールバック: 従来のハンドラ
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// EmptyNeighborhoodWarning は近傍ポリシーの閾値内に隣接サンプルが一つも
// 存在しなかった場合に発生する警告です。該当サンプルはペア構築から除外され、
// 実行は有効サンプル数を縮小して継続します。
type EmptyNeighborhoodWarning struct {
	SampleIndex int
	Policy      string
	Threshold   float64
}

func (w *EmptyNeighborhoodWarning) Error() string {
	return fmt.Sprintf("sample %d has no neighbors under policy %s (threshold=%g); excluded from pair construction",
		w.SampleIndex, w.Policy, w.Threshold)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *EmptyNeighborhoodWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("sample_index", w.SampleIndex).
		Str("policy", w.Policy).
		Float64("threshold", w.Threshold).
		Str("type", "EmptyNeighborhoodWarning")
}

// NewEmptyNeighborhoodWarning は新しいEmptyNeighborhoodWarningを作成します。
func NewEmptyNeighborhoodWarning(sampleIndex int, policy string, threshold float64) *EmptyNeighborhoodWarning {
	return &EmptyNeighborhoodWarning{SampleIndex: sampleIndex, Policy: policy, Threshold: threshold}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はスコアラーが未実行の状態で結果取得メソッドを呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("npdr: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows/samples, 1 for columns/attributes
}

func (e *DimensionError) Error() string {
	axisName := "attributes"
	if e.Axis == 0 {
		axisName = "samples"
	}
	return fmt.Sprintf("npdr: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "attributes"
	if e.Axis == 0 {
		axisName = "samples"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は設定パラメータの検証に失敗した場合のエラーです。
// 非正のk・densityFraction、未対応の属性型とメトリックの組み合わせなどを示します。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("npdr: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("npdr: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// DegenerateAttributeError は単一属性の回帰が縮退した場合のエラーです。
// 分散ゼロの射影差ベクトルや、有効ペア数の不足などが原因です。
// 属性単位で隔離され、実行全体は継続します（結果表にはNAとして記録されます）。
type DegenerateAttributeError struct {
	Attribute string
	Reason    string
	NPairs    int
}

func (e *DegenerateAttributeError) Error() string {
	return fmt.Sprintf("npdr: attribute '%s' is degenerate: %s (pairs=%d)", e.Attribute, e.Reason, e.NPairs)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DegenerateAttributeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("attribute", e.Attribute).
		Str("reason", e.Reason).
		Int("pairs", e.NPairs).
		Str("type", "DegenerateAttributeError")
}

// NewDegenerateAttributeError は新しいDegenerateAttributeErrorを作成します。
// スタックトレースは付与しません（属性単位で多数発生し得るため）。
func NewDegenerateAttributeError(attribute, reason string, nPairs int) error {
	return &DegenerateAttributeError{Attribute: attribute, Reason: reason, NPairs: nPairs}
}

// ConvergenceError は反復ソルバーが収束しなかった場合のエラーです。
// ペナルティ付き回帰では実行全体の失敗として伝播されます。
type ConvergenceError struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (e *ConvergenceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", e.Algorithm, e.Iterations, e.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or adjusting parameters.", e.Algorithm, e.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConvergenceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("algorithm", e.Algorithm).
		Int("iterations", e.Iterations).
		Str("message", e.Message).
		Str("type", "ConvergenceError")
}

// NewConvergenceError は新しいConvergenceErrorを作成し、スタックトレースを付与します。
func NewConvergenceError(algorithm string, iterations int, message string) error {
	err := &ConvergenceError{Algorithm: algorithm, Iterations: iterations, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")

	// ErrNoPairs は近傍ペアが一つも構築できなかった場合のエラーです。
	ErrNoPairs = New("no neighbor pairs")

	// ErrDegenerate は回帰の当てはめが縮退した場合のエラーです。
	ErrDegenerate = New("degenerate fit")
)
