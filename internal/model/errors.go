// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, note, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeAlreadyExists   = "ALREADY_EXISTS"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeNoteNotFound    = "NOTE_NOT_FOUND"
	ErrCodeVersionConflict = "VERSION_CONFLICT"
)

// NewInvalidInputError は入力不正エラーを生成する。
func NewInvalidInputError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  fmt.Sprintf("入力内容が不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認して再度お試しください。",
	}
}

// NewAlreadyExistsError はメールアドレスまたはユーザー名の重複エラーを生成する。
// どちらが重複したかは区別しない。
func NewAlreadyExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyExists,
		Message:  "メールアドレスまたはユーザー名は既に使用されています。",
		Category: "auth",
		Action:   "別のメールアドレスまたはユーザー名で登録してください。",
	}
}

// NewUnauthorizedError は認証エラーを生成する。
// 資格情報の失敗とトークンの失敗で同一のレスポンスを返し、
// どの要素が失敗したかを外部に漏らさない。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証に失敗しました。",
		Category: "auth",
		Action:   "ユーザー名とパスワード、またはトークンを確認してください。",
	}
}

// NewNoteNotFoundError はノート未検出エラーを生成する。
// ノートが存在しない場合と、存在するが呼び出し元に権限がない場合の
// 両方で同一のエラーを返し、ノートの存在を非所有者に漏らさない。
func NewNoteNotFoundError(noteID int64) *APIError {
	return &APIError{
		Code:     ErrCodeNoteNotFound,
		Message:  fmt.Sprintf("指定されたノートが見つかりません: %d", noteID),
		Category: "note",
		Action:   "ノートIDを確認してください。",
	}
}

// NewVersionConflictError はバージョン競合エラーを生成する。
// 他の更新が先に適用された場合に返し、呼び出し元に再取得と再試行を促す。
// サーバー側で暗黙に再適用することはない。
func NewVersionConflictError(noteID int64) *APIError {
	return &APIError{
		Code:     ErrCodeVersionConflict,
		Message:  fmt.Sprintf("ノートは他の操作によって更新されています: %d", noteID),
		Category: "note",
		Action:   "最新のノートを取得し直してから、再度更新してください。",
	}
}
