// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, booking, payment, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized            = "UNAUTHORIZED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeValidationFailed        = "VALIDATION_FAILED"
	ErrCodeInvalidCredentials      = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken              = "EMAIL_TAKEN"
	ErrCodeInvalidToken            = "INVALID_TOKEN"
	ErrCodeUserNotFound            = "USER_NOT_FOUND"
	ErrCodeTeacherNotFound         = "TEACHER_NOT_FOUND"
	ErrCodeTeacherInactive         = "TEACHER_INACTIVE"
	ErrCodeAvailabilityNotFound    = "AVAILABILITY_NOT_FOUND"
	ErrCodeBookingNotFound         = "BOOKING_NOT_FOUND"
	ErrCodePaymentNotFound         = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidBookingStatus    = "INVALID_BOOKING_STATUS"
	ErrCodeRejectionReasonRequired = "REJECTION_REASON_REQUIRED"
	ErrCodePaymentPartiallyApplied = "PAYMENT_PARTIALLY_APPLIED"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError(operation string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  fmt.Sprintf("この操作を行う権限がありません: %s", operation),
		Category: "auth",
		Action:   "必要な権限を持つアカウントでログインしてください。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewInvalidTokenError は確認トークンが無効な場合のエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "確認トークンが無効か、有効期限が切れています。",
		Category: "auth",
		Action:   "確認メールを再送して新しいトークンをお使いください。",
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

// NewTeacherNotFoundError は講師が見つからない場合のエラーを生成する。
func NewTeacherNotFoundError(teacherID string) *APIError {
	return &APIError{
		Code:     ErrCodeTeacherNotFound,
		Message:  fmt.Sprintf("指定された講師が見つかりません: %s", teacherID),
		Category: "booking",
		Action:   "講師IDを確認してください。",
	}
}

// NewTeacherInactiveError は非アクティブな講師への予約エラーを生成する。
func NewTeacherInactiveError() *APIError {
	return &APIError{
		Code:     ErrCodeTeacherInactive,
		Message:  "この講師は現在予約を受け付けていません。",
		Category: "booking",
		Action:   "講師一覧から受付中の講師を選択してください。",
	}
}

// NewAvailabilityNotFoundError は空き枠が見つからない場合のエラーを生成する。
func NewAvailabilityNotFoundError(slotID string) *APIError {
	return &APIError{
		Code:     ErrCodeAvailabilityNotFound,
		Message:  fmt.Sprintf("指定された空き枠が見つかりません: %s", slotID),
		Category: "booking",
		Action:   "空き枠IDを確認してください。",
	}
}

// NewBookingNotFoundError は予約が見つからない場合のエラーを生成する。
func NewBookingNotFoundError(bookingID string) *APIError {
	return &APIError{
		Code:     ErrCodeBookingNotFound,
		Message:  fmt.Sprintf("指定された予約が見つかりません: %s", bookingID),
		Category: "booking",
		Action:   "予約IDを確認してください。",
	}
}

// NewPaymentNotFoundError は決済が見つからない場合のエラーを生成する。
func NewPaymentNotFoundError(paymentID string) *APIError {
	return &APIError{
		Code:     ErrCodePaymentNotFound,
		Message:  fmt.Sprintf("指定された決済が見つかりません: %s", paymentID),
		Category: "payment",
		Action:   "決済IDを確認してください。",
	}
}

// NewInvalidBookingStatusError は未定義の予約状態が指定された場合のエラーを生成する。
func NewInvalidBookingStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBookingStatus,
		Message:  fmt.Sprintf("無効な予約状態です: %s", status),
		Category: "validation",
		Action:   "予約状態には PENDING、CONFIRMED、CANCELLED、COMPLETED のいずれかを指定してください。",
	}
}

// NewRejectionReasonRequiredError は却下理由が未指定の場合のエラーを生成する。
func NewRejectionReasonRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeRejectionReasonRequired,
		Message:  "決済を却下するには理由の入力が必要です。",
		Category: "validation",
		Action:   "却下理由を入力して再度お試しください。",
	}
}

// NewPaymentPartiallyAppliedError は決済と予約の連動更新が途中で失敗した場合のエラーを生成する。
// 決済側の書き込みは成功し、予約側の書き込みに失敗した状態を示す。
func NewPaymentPartiallyAppliedError(paymentID, bookingID string) *APIError {
	return &APIError{
		Code:     ErrCodePaymentPartiallyApplied,
		Message:  fmt.Sprintf("決済の裁定が部分的にしか適用されませんでした: payment=%s booking=%s", paymentID, bookingID),
		Category: "system",
		Action:   "運用担当者に連絡し、決済と予約の状態を照合してください。",
	}
}
