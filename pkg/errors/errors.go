// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 生存時間解析に特有のエラー分類（未学習・時間グリッド不正・形状不一致など）と、
// 統計的に正当な縮退ケースを表す警告（打ち切りゼロ・学習区間外クエリ）を区別します。
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
		log.Printf("hazardous-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// DegenerateCensoringWarningなどの統計的警告の処理方法を制御できます。
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

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	統計的縮退ケースの警告型
//
// ===========================================================================

// DegenerateCensoringWarning は学習データに打ち切り（event == 0）が一件も
// 存在しない場合に発生する警告です。このとき打ち切り生存関数 G(t) は恒等的に 1 となり、
// IPCW重みはすべて 1 になります。これはエラーではなく統計的に正当な縮退ケースです。
type DegenerateCensoringWarning struct {
	NumSamples int
}

func (w *DegenerateCensoringWarning) Error() string {
	return fmt.Sprintf("no censored observations among %d samples: censoring survival G(t) is identically 1 and all IPCW weights are uniform", w.NumSamples)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DegenerateCensoringWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("n_samples", w.NumSamples).
		Str("type", "DegenerateCensoringWarning")
}

// NewDegenerateCensoringWarning は新しいDegenerateCensoringWarningを作成します。
func NewDegenerateCensoringWarning(numSamples int) *DegenerateCensoringWarning {
	return &DegenerateCensoringWarning{NumSamples: numSamples}
}

// ExtrapolationWarning は学習時の最大観測時刻を超える時刻で予測が要求された場合に
// 発生する警告です。予測値は最後のグリッド点の値にクランプされます。
type ExtrapolationWarning struct {
	QueryTime float64
	Horizon   float64
}

func (w *ExtrapolationWarning) Error() string {
	return fmt.Sprintf("query time %g exceeds the training horizon %g: prediction clamped to the last grid value", w.QueryTime, w.Horizon)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ExtrapolationWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("query_time", w.QueryTime).
		Float64("horizon", w.Horizon).
		Str("type", "ExtrapolationWarning")
}

// NewExtrapolationWarning は新しいExtrapolationWarningを作成します。
func NewExtrapolationWarning(queryTime, horizon float64) *ExtrapolationWarning {
	return &ExtrapolationWarning{QueryTime: queryTime, Horizon: horizon}
}

// UndefinedMetricWarning は評価指標の前提が満たされない場合に発生する警告です。
// 例えば、競合イベントが複数あるデータに対して単一イベント前提の生存Brierスコアを
// 計算しようとした場合など。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined: %s", w.Metric, w.Condition)
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` 系メソッドを呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("hazardous: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
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

// InvalidGridError は時間グリッドが構築できない、または不正な場合のエラーです。
// 観測時刻の種類が2未満、要求グリッドサイズが2未満、グリッドが単調増加でない場合など。
type InvalidGridError struct {
	Op        string
	Reason    string
	NumPoints int
}

func (e *InvalidGridError) Error() string {
	return fmt.Sprintf("hazardous: %s: invalid time grid (%d points): %s", e.Op, e.NumPoints, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidGridError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Int("n_points", e.NumPoints).
		Str("type", "InvalidGridError")
}

// NewInvalidGridError は新しいInvalidGridErrorを作成し、スタックトレースを付与します。
func NewInvalidGridError(op, reason string, numPoints int) error {
	err := &InvalidGridError{Op: op, Reason: reason, NumPoints: numPoints}
	return errors.WithStack(err)
}

// InsufficientGridError は数値積分に必要なグリッド点数（2点以上）を満たさない場合のエラーです。
type InsufficientGridError struct {
	Op        string
	NumPoints int
}

func (e *InsufficientGridError) Error() string {
	return fmt.Sprintf("hazardous: %s: integration requires at least 2 time points, got %d", e.Op, e.NumPoints)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InsufficientGridError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("n_points", e.NumPoints).
		Str("type", "InsufficientGridError")
}

// NewInsufficientGridError は新しいInsufficientGridErrorを作成し、スタックトレースを付与します。
func NewInsufficientGridError(op string, numPoints int) error {
	err := &InsufficientGridError{Op: op, NumPoints: numPoints}
	return errors.WithStack(err)
}

// ShapeMismatchError は予測行列・時刻ベクトル・観測ベクトルの間で次元が一致しない場合のエラーです。
type ShapeMismatchError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows/samples, 1 for columns/times
}

func (e *ShapeMismatchError) Error() string {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("hazardous: %s: shape mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ShapeMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "ShapeMismatchError")
}

// NewShapeMismatchError は新しいShapeMismatchErrorを作成し、スタックトレースを付与します。
func NewShapeMismatchError(op string, expected, got, axis int) error {
	err := &ShapeMismatchError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("hazardous: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
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
)
