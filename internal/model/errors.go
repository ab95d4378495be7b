// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, pose, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodePoseNotFound        = "POSE_NOT_FOUND"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeTokenExpired        = "TOKEN_EXPIRED"
	ErrCodeInvalidSignature    = "INVALID_SIGNATURE"
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodeStorage             = "STORAGE_ERROR"
)

// NewValidationError は入力値不正エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("リクエスト内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewPoseNotFoundError はセッション未検出エラーを生成する。
func NewPoseNotFoundError(poseID string) *APIError {
	return &APIError{
		Code:     ErrCodePoseNotFound,
		Message:  fmt.Sprintf("指定されたセッションが見つかりません: %s", poseID),
		Category: "pose",
		Action:   "セッションIDを確認してください。",
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

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError はアクセス権限なしエラーを生成する。
// 認証済みだが対象リソースへの操作が許可されていない場合に使う。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "自分のアカウントのデータのみ操作できます。",
	}
}

// NewTokenExpiredError はトークン期限切れエラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenExpired,
		Message:  "アクセストークンの有効期限が切れています。",
		Category: "auth",
		Action:   "再度ログインしてトークンを取得し直してください。",
	}
}

// NewInvalidSignatureError はトークン署名不正エラーを生成する。
func NewInvalidSignatureError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSignature,
		Message:  "アクセストークンの署名が不正です。",
		Category: "auth",
		Action:   "正しいトークンでリクエストしてください。",
	}
}

// NewProviderUnavailableError はOAuthプロバイダー呼び出し失敗エラーを生成する。
func NewProviderUnavailableError(provider string) *APIError {
	return &APIError{
		Code:     ErrCodeProviderUnavailable,
		Message:  fmt.Sprintf("%sからのユーザー情報取得に失敗しました。", provider),
		Category: "auth",
		Action:   "しばらく待ってから再度ログインをお試しください。",
	}
}

// NewStorageError は分類不能なストレージ障害エラーを生成する。
// 内部詳細はログのみに残し、メッセージには含めない。
func NewStorageError() *APIError {
	return &APIError{
		Code:     ErrCodeStorage,
		Message:  "データの保存処理に失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
