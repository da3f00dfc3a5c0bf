// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Abdullah34123513/english-sub002/internal/model"
)

// ErrDuplicateKey はストアの一意制約違反を表す。
// 呼び出し側がerrors.Isで「not found」と区別できるようにする。
// 講師プロフィールの遅延作成では、このエラーは成功経路として扱われる。
var ErrDuplicateKey = errors.New("duplicate key violation")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateKeyを返す。
	Create(ctx context.Context, user *model.User) error

	// SetEmailVerified はユーザーのメール確認済みフラグを更新する。
	SetEmailVerified(ctx context.Context, userID string, verified bool) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションをユーザーの役割付きで取得する。
	// 期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// VerificationTokenRepository はメール確認トークンの永続化インターフェース。
type VerificationTokenRepository interface {
	// Create はトークンを作成する。
	Create(ctx context.Context, token *model.VerificationToken) error

	// FindLatestByUserID はユーザーの最新の未消費トークンを取得する。
	// 見つからない場合はnilを返す。
	FindLatestByUserID(ctx context.Context, userID string) (*model.VerificationToken, error)

	// FindByTokenHash はトークンハッシュでトークンを検索する。見つからない場合はnilを返す。
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.VerificationToken, error)

	// MarkConsumed はトークンを消費済みにする。
	MarkConsumed(ctx context.Context, id string, consumedAt time.Time) error

	// DeleteExpired は期限切れかつ未消費のトークンを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TeacherRepository は講師プロフィールの永続化インターフェース。
type TeacherRepository interface {
	// FindByID は指定IDの講師を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Teacher, error)

	// FindByUserID は所有ユーザーIDで講師を検索する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Teacher, error)

	// Create は講師プロフィールを作成する。
	// user_idの一意制約違反時はErrDuplicateKeyを返す。
	Create(ctx context.Context, teacher *model.Teacher) error

	// Update は講師プロフィールの属性を更新する。
	Update(ctx context.Context, teacher *model.Teacher) error

	// ListActive は受付中（is_active = true）の講師一覧を作成日時順で返す。
	ListActive(ctx context.Context) ([]*model.Teacher, error)
}

// AvailabilityRepository は講師の空き枠の永続化インターフェース。
type AvailabilityRepository interface {
	// FindByID は指定IDの空き枠を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.AvailabilitySlot, error)

	// Create は空き枠を作成する。
	Create(ctx context.Context, slot *model.AvailabilitySlot) error

	// ListByTeacherID は講師の空き枠一覧を曜日・開始時刻順で返す。
	// onlyAvailableがtrueの場合はis_available = trueの枠のみ返す。
	ListByTeacherID(ctx context.Context, teacherID string, onlyAvailable bool) ([]*model.AvailabilitySlot, error)

	// DeleteByID は指定IDの空き枠を削除する。
	DeleteByID(ctx context.Context, id string) error
}

// BookingRepository は予約データの永続化インターフェース。
type BookingRepository interface {
	// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Booking, error)

	// Create は予約を作成する。
	Create(ctx context.Context, booking *model.Booking) error

	// UpdateStatus は予約状態を更新する。
	// meetLinkがnilの場合、保存済みのミーティングリンクは変更しない（部分更新）。
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus, meetLink *string) error

	// UpdateStatusAndPaymentState は予約状態と決済状態を同時に更新する。
	// 決済裁定による連動遷移で使用する。
	UpdateStatusAndPaymentState(ctx context.Context, id string, status model.BookingStatus, paymentState model.PaymentState) error

	// ListAll は全予約を開始時刻の降順で返す。
	ListAll(ctx context.Context) ([]*model.Booking, error)

	// ListByTeacherID は講師の予約一覧を開始時刻の降順で返す。
	ListByTeacherID(ctx context.Context, teacherID string) ([]*model.Booking, error)

	// ListByStudentID は受講者の予約一覧を開始時刻の降順で返す。
	ListByStudentID(ctx context.Context, studentID string) ([]*model.Booking, error)
}

// PaymentRepository は決済データの永続化インターフェース。
type PaymentRepository interface {
	// FindByID は指定IDの決済を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Payment, error)

	// Create は決済を作成する。
	Create(ctx context.Context, payment *model.Payment) error

	// UpdateAdjudication は裁定結果（status、approved_by、approved_at、
	// rejection_reason、admin_notes）を更新する。
	UpdateAdjudication(ctx context.Context, payment *model.Payment) error

	// ListAll は全決済を作成日時の降順で返す。
	ListAll(ctx context.Context) ([]*model.Payment, error)

	// ListByStudentID は受講者が提出した決済一覧を作成日時の降順で返す。
	// 予約テーブルとJOINして受講者を特定する。
	ListByStudentID(ctx context.Context, studentID string) ([]*model.Payment, error)
}
