// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, mentor, session, review, payment, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMentorNotFound         = "MENTOR_NOT_FOUND"
	ErrCodeUserNotFound           = "USER_NOT_FOUND"
	ErrCodeUserAlreadyExists      = "USER_ALREADY_EXISTS"
	ErrCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	ErrCodeInvalidRole            = "INVALID_ROLE"
	ErrCodeInvalidRateFilter      = "INVALID_RATE_FILTER"
	ErrCodeInvalidRating          = "INVALID_RATING"
	ErrCodeSessionNotFound        = "SESSION_NOT_FOUND"
	ErrCodeSessionNotCompleted    = "SESSION_NOT_COMPLETED"
	ErrCodeSessionNotScheduled    = "SESSION_NOT_SCHEDULED"
	ErrCodeSessionAlreadyPaid     = "SESSION_ALREADY_PAID"
	ErrCodeNotSessionStudent      = "NOT_SESSION_STUDENT"
	ErrCodeNotSessionMentor       = "NOT_SESSION_MENTOR"
	ErrCodeSessionAlreadyReviewed = "SESSION_ALREADY_REVIEWED"
	ErrCodeReviewNotFound         = "REVIEW_NOT_FOUND"
	ErrCodePaymentNotFound        = "PAYMENT_NOT_FOUND"
	ErrCodeDuplicateTxn           = "DUPLICATE_TXN"
	ErrCodeSkillNotFound          = "SKILL_NOT_FOUND"
	ErrCodeSkillAlreadyExists     = "SKILL_ALREADY_EXISTS"
)

// NewMentorNotFoundError はメンター未検出エラーを生成する。
// ユーザーが存在しない場合とroleがmentorでない場合のどちらも同じエラーになる。
func NewMentorNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeMentorNotFound,
		Message:  "Mentor not found",
		Category: "mentor",
		Action:   "Check the mentor id and try again.",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "auth",
		Action:   "Log in again.",
	}
}

// NewUserAlreadyExistsError はメールアドレス重複エラーを生成する。
func NewUserAlreadyExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserAlreadyExists,
		Message:  "User already exists with this email",
		Category: "auth",
		Action:   "Log in with the existing account or use another email.",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メール未登録とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid email or password",
		Category: "auth",
		Action:   "Check your email and password.",
	}
}

// NewInvalidRoleError は役割不正エラーを生成する。
func NewInvalidRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  fmt.Sprintf("Invalid role: %s", role),
		Category: "validation",
		Action:   "Role must be either mentor or student.",
	}
}

// NewInvalidRateFilterError は料金フィルタ不正エラーを生成する。
// 数値として解釈できない文字列やNaN/Infを拒否する。
func NewInvalidRateFilterError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRateFilter,
		Message:  fmt.Sprintf("Invalid rate filter: %s", value),
		Category: "validation",
		Action:   "minRate and maxRate must be finite numbers.",
	}
}

// NewInvalidRatingError は評価値不正エラーを生成する。
func NewInvalidRatingError(rating int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRating,
		Message:  fmt.Sprintf("Invalid rating: %d", rating),
		Category: "validation",
		Action:   "Rating must be an integer between 1 and 5.",
	}
}

// NewSessionNotFoundError はセッション未検出エラーを生成する。
func NewSessionNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionNotFound,
		Message:  "Session not found",
		Category: "session",
		Action:   "Check the session id.",
	}
}

// NewSessionNotCompletedError は未完了セッションへのレビューエラーを生成する。
func NewSessionNotCompletedError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionNotCompleted,
		Message:  "Can only review completed sessions",
		Category: "review",
		Action:   "Wait until the session is completed.",
	}
}

// NewSessionNotScheduledError は予約済みでないセッションの完了操作エラーを生成する。
func NewSessionNotScheduledError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionNotScheduled,
		Message:  "Only scheduled sessions can be completed",
		Category: "session",
		Action:   "Check the session status.",
	}
}

// NewSessionAlreadyPaidError は支払い済みセッションへの再支払いエラーを生成する。
func NewSessionAlreadyPaidError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionAlreadyPaid,
		Message:  "Session already paid",
		Category: "payment",
		Action:   "This session has already been paid for.",
	}
}

// NewNotSessionStudentError はセッションの学生以外によるレビューエラーを生成する。
func NewNotSessionStudentError() *APIError {
	return &APIError{
		Code:     ErrCodeNotSessionStudent,
		Message:  "Only students can review their sessions",
		Category: "review",
		Action:   "Reviews can only be submitted by the session's student.",
	}
}

// NewNotSessionMentorError はセッションのメンター以外による完了操作エラーを生成する。
func NewNotSessionMentorError() *APIError {
	return &APIError{
		Code:     ErrCodeNotSessionMentor,
		Message:  "Only the session's mentor can complete it",
		Category: "session",
		Action:   "Completion can only be performed by the session's mentor.",
	}
}

// NewSessionAlreadyReviewedError はレビュー重複エラーを生成する。
// 既存レビューは変更されない。再提出はマージされず拒否される。
func NewSessionAlreadyReviewedError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionAlreadyReviewed,
		Message:  "Session already reviewed",
		Category: "review",
		Action:   "Each session can be reviewed only once.",
	}
}

// NewReviewNotFoundError はレビュー未検出エラーを生成する。
func NewReviewNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeReviewNotFound,
		Message:  "Review not found",
		Category: "review",
		Action:   "Check the review id.",
	}
}

// NewPaymentNotFoundError は支払い未検出エラーを生成する。
func NewPaymentNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePaymentNotFound,
		Message:  "Payment not found",
		Category: "payment",
		Action:   "Check the payment id.",
	}
}

// NewDuplicateTxnError は取引ID重複エラーを生成する。
func NewDuplicateTxnError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateTxn,
		Message:  "Payment with this transaction ID already exists",
		Category: "payment",
		Action:   "Check the provider transaction id.",
	}
}

// NewSkillNotFoundError はスキル未検出エラーを生成する。
func NewSkillNotFoundError(skillID string) *APIError {
	return &APIError{
		Code:     ErrCodeSkillNotFound,
		Message:  fmt.Sprintf("Skill not found: %s", skillID),
		Category: "validation",
		Action:   "Check the skill id.",
	}
}

// NewSkillAlreadyExistsError はスキル名重複エラーを生成する。
func NewSkillAlreadyExistsError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeSkillAlreadyExists,
		Message:  fmt.Sprintf("Skill already exists: %s", name),
		Category: "validation",
		Action:   "Use the existing skill.",
	}
}
