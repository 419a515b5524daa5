// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, factor, dashboard, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeFactorNotFound    = "FACTOR_NOT_FOUND"
	ErrCodeDuplicateFactor   = "DUPLICATE_FACTOR"
	ErrCodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	ErrCodeInvalidVehicle    = "INVALID_VEHICLE_TYPE"
	ErrCodeInvalidWindow     = "INVALID_WINDOW"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
)

// NewInvalidInputError は負値など範囲外の数値入力に対するエラーを生成する。
func NewInvalidInputError(field string, value float64) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  fmt.Sprintf("入力値が不正です: %s = %g", field, value),
		Category: "validation",
		Action:   "0以上の数値を指定してください。",
	}
}

// NewFactorNotFoundError はフォールバック解決後も排出係数が見つからない場合のエラーを生成する。
func NewFactorNotFoundError(category, subcategory, region string) *APIError {
	key := category
	if subcategory != "" {
		key += "/" + subcategory
	}
	if region != "" {
		key += "@" + region
	}
	return &APIError{
		Code:     ErrCodeFactorNotFound,
		Message:  fmt.Sprintf("該当する排出係数が見つかりません: %s", key),
		Category: "factor",
		Action:   "カテゴリ名を確認するか、排出係数テーブル（GET /api/factors）を参照してください。",
	}
}

// NewDuplicateFactorError は同一キーの排出係数を置換指定なしで再登録した場合のエラーを生成する。
func NewDuplicateFactorError(category, subcategory, region string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateFactor,
		Message:  fmt.Sprintf("排出係数が既に登録されています: (%s, %s, %s)", category, subcategory, region),
		Category: "factor",
		Action:   "置き換える場合はreplaceを明示的に指定してください。",
	}
}

// NewSourceUnavailableError はレコードストアに到達できない場合のエラーを生成する。
// 集計は部分的な結果を返さず、このエラーで中断する。
func NewSourceUnavailableError(err error) *APIError {
	return &APIError{
		Code:     ErrCodeSourceUnavailable,
		Message:  fmt.Sprintf("レコードストアに接続できません: %v", err),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidVehicleTypeError は空の車両タイプに対するエラーを生成する。
func NewInvalidVehicleTypeError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidVehicle,
		Message:  "車両タイプが指定されていません。",
		Category: "validation",
		Action:   "vehicle_typeには gasoline、diesel、electric、other のいずれかを指定してください。",
	}
}

// NewInvalidWindowError は不正な集計ウィンドウ指定に対するエラーを生成する。
// rawには解析前のクエリ値をそのまま渡す（数値に解析できない入力も報告できるように）。
func NewInvalidWindowError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidWindow,
		Message:  fmt.Sprintf("無効な集計期間です: %q", raw),
		Category: "validation",
		Action:   "daysは1から365の範囲で指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
