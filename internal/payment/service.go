// Package payment は決済の提出と管理者による裁定のドメインロジックを提供する。
//
// 裁定（承認・却下）は決済レコードと予約レコードの2段階書き込みであり、
// ストアのトランザクションには包まれない。2段階目の失敗時は1段階目の
// 巻き戻しを試み、巻き戻しにも失敗した場合は部分適用エラーを返す。
package payment

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

// AdjudicationRecorder は決済申請と裁定結果のメトリクス記録インターフェース。
type AdjudicationRecorder interface {
	RecordPaymentSubmitted()
	RecordPaymentApproved()
	RecordPaymentRejected()
}

// Service は決済のサービス層。
type Service struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	recorder    AdjudicationRecorder
	now         func() time.Time
}

// NewService はServiceを生成する。
// recorderはnil可。nowFnがnilの場合はtime.Nowを使用する。
func NewService(paymentRepo repository.PaymentRepository, bookingRepo repository.BookingRepository, recorder AdjudicationRecorder, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		recorder:    recorder,
		now:         nowFn,
	}
}

// Submit は受講者が自身の予約に対する決済を提出する。
// 決済はstatus=PENDINGで作成され、管理者の裁定を待つ。
func (s *Service) Submit(ctx context.Context, actor model.Identity, bookingID string, amountCents int, method string) (*model.Payment, error) {
	if amountCents <= 0 {
		return nil, model.NewValidationError("金額は1以上で指定してください")
	}
	if method == "" {
		return nil, model.NewValidationError("決済方法が未指定です")
	}

	b, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	if b == nil {
		return nil, model.NewBookingNotFoundError(bookingID)
	}
	if !authz.CanActAsStudent(actor, b.StudentID) {
		return nil, model.NewForbiddenError("他の受講者の予約への決済提出")
	}

	now := s.now()
	p := &model.Payment{
		ID:          uuid.New().String(),
		BookingID:   bookingID,
		AmountCents: amountCents,
		Method:      method,
		Status:      model.PaymentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordPaymentSubmitted()
	}

	slog.Info("payment submitted",
		slog.String("payment_id", p.ID),
		slog.String("booking_id", bookingID),
		slog.Int("amount_cents", amountCents),
	)

	return p, nil
}

// Approve は管理者が決済を承認する。
// 決済をAPPROVEDにし、承認者と承認日時を記録した後、
// 紐づく予約をCONFIRMED/PAIDへ連動遷移させる。
func (s *Service) Approve(ctx context.Context, actor model.Identity, paymentID string, notes *string) (*model.Payment, error) {
	if !authz.CanAdminister(actor) {
		return nil, model.NewForbiddenError("決済の承認")
	}

	p, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	if p == nil {
		return nil, model.NewPaymentNotFoundError(paymentID)
	}

	prev := *p

	approvedAt := s.now()
	p.Status = model.PaymentStatusApproved
	p.ApprovedBy = actor.UserID
	p.ApprovedAt = &approvedAt
	p.RejectionReason = ""
	if notes != nil {
		p.AdminNotes = *notes
	}

	if err := s.paymentRepo.UpdateAdjudication(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	if err := s.coupleBooking(ctx, p, &prev, model.BookingStatusConfirmed, model.PaymentStatePaid); err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordPaymentApproved()
	}
	slog.Info("payment approved",
		slog.String("payment_id", p.ID),
		slog.String("booking_id", p.BookingID),
		slog.String("admin_id", actor.UserID),
	)

	return p, nil
}

// Reject は管理者が決済を却下する。
// 却下理由は必須であり、未指定の場合はストアに触れる前に検証エラーを返す。
// 決済をREJECTEDにした後、紐づく予約をCANCELLED/FAILEDへ連動遷移させる。
func (s *Service) Reject(ctx context.Context, actor model.Identity, paymentID, reason string) (*model.Payment, error) {
	if !authz.CanAdminister(actor) {
		return nil, model.NewForbiddenError("決済の却下")
	}
	if reason == "" {
		return nil, model.NewRejectionReasonRequiredError()
	}

	p, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	if p == nil {
		return nil, model.NewPaymentNotFoundError(paymentID)
	}

	prev := *p

	p.Status = model.PaymentStatusRejected
	p.RejectionReason = reason
	p.ApprovedBy = ""
	p.ApprovedAt = nil

	if err := s.paymentRepo.UpdateAdjudication(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	if err := s.coupleBooking(ctx, p, &prev, model.BookingStatusCancelled, model.PaymentStateFailed); err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordPaymentRejected()
	}
	slog.Info("payment rejected",
		slog.String("payment_id", p.ID),
		slog.String("booking_id", p.BookingID),
		slog.String("admin_id", actor.UserID),
		slog.String("reason", reason),
	)

	return p, nil
}

// ListFor は主体の役割に応じた決済一覧を返す。
// 管理者は全件、受講者は自身が提出した決済を閲覧できる。
func (s *Service) ListFor(ctx context.Context, actor model.Identity) ([]*model.Payment, error) {
	switch actor.Role {
	case model.RoleAdmin:
		return s.paymentRepo.ListAll(ctx)
	case model.RoleStudent:
		return s.paymentRepo.ListByStudentID(ctx, actor.UserID)
	default:
		return nil, model.NewForbiddenError("決済一覧の閲覧")
	}
}

// coupleBooking は裁定に連動する予約側の遷移を書き込む。
// 失敗時は決済側の巻き戻しを試み、巻き戻しにも失敗した場合は
// 部分適用エラーを返して運用担当者の照合に委ねる。
func (s *Service) coupleBooking(ctx context.Context, p, prev *model.Payment, status model.BookingStatus, state model.PaymentState) error {
	err := s.bookingRepo.UpdateStatusAndPaymentState(ctx, p.BookingID, status, state)
	if err == nil {
		return nil
	}

	if revertErr := s.paymentRepo.UpdateAdjudication(ctx, prev); revertErr != nil {
		slog.Error("failed to revert payment after booking update failure",
			slog.String("payment_id", p.ID),
			slog.String("booking_id", p.BookingID),
			slog.String("update_error", err.Error()),
			slog.String("revert_error", revertErr.Error()),
		)
		return model.NewPaymentPartiallyAppliedError(p.ID, p.BookingID)
	}

	return fmt.Errorf("failed to update booking for payment %s (payment reverted): %w", p.ID, err)
}
