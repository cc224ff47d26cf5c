package model

// EstimatorState はスコアラーの実行状態を表す
type EstimatorState int

const (
	// NotFitted はスコアラーが未実行の状態
	NotFitted EstimatorState = iota
	// Fitted はスコアラーが実行済みの状態
	Fitted
)

// BaseEstimator は全てのスコアラーの基底となる構造体
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted はスコアラーが実行済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はスコアラーを実行済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset はスコアラーを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
