// Package booking は予約ライフサイクルのドメインロジックを提供する。
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Abdullah34123513/english-sub002/internal/authz"
	"github.com/Abdullah34123513/english-sub002/internal/model"
	"github.com/Abdullah34123513/english-sub002/internal/repository"
)

// CreationRecorder は予約作成のメトリクス記録インターフェース。
type CreationRecorder interface {
	RecordBookingCreated()
}

// Service は予約のサービス層。
// 作成、管理者による直接の状態編集、役割に応じた一覧取得を提供する。
type Service struct {
	bookingRepo repository.BookingRepository
	teacherRepo repository.TeacherRepository
	recorder    CreationRecorder
	now         func() time.Time
}

// NewService はServiceを生成する。
// recorderはnil可。nowFnがnilの場合はtime.Nowを使用する。
func NewService(bookingRepo repository.BookingRepository, teacherRepo repository.TeacherRepository, recorder CreationRecorder, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		bookingRepo: bookingRepo,
		teacherRepo: teacherRepo,
		recorder:    recorder,
		now:         nowFn,
	}
}

// Create は受講者が講師の時間枠に対して予約を作成する。
// 講師が存在し受付中であることを確認し、status=PENDING、
// paymentStatus=PENDINGの予約を作成する。
func (s *Service) Create(ctx context.Context, actor model.Identity, teacherID string, startsAt, endsAt time.Time) (*model.Booking, error) {
	if actor.Role != model.RoleStudent {
		return nil, model.NewForbiddenError("予約の作成")
	}
	if !startsAt.Before(endsAt) {
		return nil, model.NewValidationError("開始時刻は終了時刻より前で指定してください")
	}

	t, err := s.teacherRepo.FindByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to find teacher: %w", err)
	}
	if t == nil {
		return nil, model.NewTeacherNotFoundError(teacherID)
	}
	if !t.IsActive {
		return nil, model.NewTeacherInactiveError()
	}

	now := s.now()
	b := &model.Booking{
		ID:            uuid.New().String(),
		TeacherID:     teacherID,
		StudentID:     actor.UserID,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		Status:        model.BookingStatusPending,
		PaymentStatus: model.PaymentStatePending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.bookingRepo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordBookingCreated()
	}

	slog.Info("booking created",
		slog.String("booking_id", b.ID),
		slog.String("teacher_id", teacherID),
		slog.String("student_id", actor.UserID),
	)

	return b, nil
}

// SetStatus は管理者が予約の状態を直接編集する。
//
// 状態値は定義済みの集合に含まれていれば無条件に適用され、
// 遷移グラフの検証は行わない（決済裁定による連動更新とは独立の経路）。
// meetLinkがnilの場合、保存済みのミーティングリンクは変更しない。
func (s *Service) SetStatus(ctx context.Context, actor model.Identity, bookingID string, status model.BookingStatus, meetLink *string) (*model.Booking, error) {
	if !authz.CanAdminister(actor) {
		return nil, model.NewForbiddenError("予約状態の直接編集")
	}
	if !model.ValidBookingStatus(status) {
		return nil, model.NewInvalidBookingStatusError(string(status))
	}

	b, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	if b == nil {
		return nil, model.NewBookingNotFoundError(bookingID)
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, status, meetLink); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	slog.Info("booking status set by admin",
		slog.String("booking_id", bookingID),
		slog.String("from", string(b.Status)),
		slog.String("to", string(status)),
		slog.String("admin_id", actor.UserID),
	)

	b.Status = status
	if meetLink != nil {
		b.MeetLink = *meetLink
	}
	b.UpdatedAt = s.now()
	return b, nil
}

// ListFor は主体の役割に応じた予約一覧を返す。
// 管理者は全件、講師は自身の講師予約、受講者は自身の予約を閲覧できる。
func (s *Service) ListFor(ctx context.Context, actor model.Identity) ([]*model.Booking, error) {
	switch actor.Role {
	case model.RoleAdmin:
		return s.bookingRepo.ListAll(ctx)
	case model.RoleTeacher:
		t, err := s.teacherRepo.FindByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to find teacher profile: %w", err)
		}
		if t == nil {
			// プロフィール未作成の講師に予約は存在しない
			return nil, nil
		}
		return s.bookingRepo.ListByTeacherID(ctx, t.ID)
	default:
		return s.bookingRepo.ListByStudentID(ctx, actor.UserID)
	}
}
