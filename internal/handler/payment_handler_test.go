package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abdullah34123513/english-sub002/internal/model"
)

type mockPaymentService struct {
	submitFn  func(ctx context.Context, actor model.Identity, bookingID string, amountCents int, method string) (*model.Payment, error)
	approveFn func(ctx context.Context, actor model.Identity, paymentID string, notes *string) (*model.Payment, error)
	rejectFn  func(ctx context.Context, actor model.Identity, paymentID, reason string) (*model.Payment, error)
	listForFn func(ctx context.Context, actor model.Identity) ([]*model.Payment, error)
}

func (m *mockPaymentService) Submit(ctx context.Context, actor model.Identity, bookingID string, amountCents int, method string) (*model.Payment, error) {
	return m.submitFn(ctx, actor, bookingID, amountCents, method)
}

func (m *mockPaymentService) Approve(ctx context.Context, actor model.Identity, paymentID string, notes *string) (*model.Payment, error) {
	return m.approveFn(ctx, actor, paymentID, notes)
}

func (m *mockPaymentService) Reject(ctx context.Context, actor model.Identity, paymentID, reason string) (*model.Payment, error) {
	return m.rejectFn(ctx, actor, paymentID, reason)
}

func (m *mockPaymentService) ListFor(ctx context.Context, actor model.Identity) ([]*model.Payment, error) {
	return m.listForFn(ctx, actor)
}

// TestPaymentHandler_SubmitPayment は決済申請成功時に201が返ることを検証する。
func TestPaymentHandler_SubmitPayment(t *testing.T) {
	service := &mockPaymentService{
		submitFn: func(ctx context.Context, actor model.Identity, bookingID string, amountCents int, method string) (*model.Payment, error) {
			if bookingID != "booking-1" {
				t.Errorf("bookingID = %q, want booking-1", bookingID)
			}
			if amountCents != 3500 {
				t.Errorf("amountCents = %d, want 3500", amountCents)
			}
			if method != "bank_transfer" {
				t.Errorf("method = %q, want bank_transfer", method)
			}
			return &model.Payment{
				ID:          "payment-1",
				BookingID:   bookingID,
				AmountCents: amountCents,
				Method:      method,
				Status:      model.PaymentStatusPending,
			}, nil
		},
	}
	h := NewPaymentHandler(service)

	body := `{"booking_id":"booking-1","amount_cents":3500,"method":"bank_transfer"}`
	req := requestWithIdentity(http.MethodPost, "/api/payments", body, model.Identity{UserID: "student-1", Role: model.RoleStudent})
	rec := httptest.NewRecorder()

	h.SubmitPayment(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp paymentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "PENDING" {
		t.Errorf("Status = %q, want PENDING", resp.Status)
	}
}

// TestPaymentHandler_SubmitPayment_Validation は金額不正が400になることを検証する。
func TestPaymentHandler_SubmitPayment_Validation(t *testing.T) {
	service := &mockPaymentService{
		submitFn: func(ctx context.Context, actor model.Identity, bookingID string, amountCents int, method string) (*model.Payment, error) {
			return nil, model.NewValidationError("amount_cents must be positive")
		},
	}
	h := NewPaymentHandler(service)

	body := `{"booking_id":"booking-1","amount_cents":0,"method":"bank_transfer"}`
	req := requestWithIdentity(http.MethodPost, "/api/payments", body, model.Identity{UserID: "student-1", Role: model.RoleStudent})
	rec := httptest.NewRecorder()

	h.SubmitPayment(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestPaymentHandler_ApprovePayment は承認成功時に更新後の決済が返ることを検証する。
func TestPaymentHandler_ApprovePayment(t *testing.T) {
	approvedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	service := &mockPaymentService{
		approveFn: func(ctx context.Context, actor model.Identity, paymentID string, notes *string) (*model.Payment, error) {
			if paymentID != "payment-1" {
				t.Errorf("paymentID = %q, want payment-1", paymentID)
			}
			if notes == nil || *notes != "receipt confirmed" {
				t.Errorf("notes = %v, want receipt confirmed", notes)
			}
			return &model.Payment{
				ID:         paymentID,
				Status:     model.PaymentStatusApproved,
				ApprovedBy: actor.UserID,
				ApprovedAt: &approvedAt,
				AdminNotes: *notes,
			}, nil
		},
	}
	h := NewPaymentHandler(service)

	req := requestWithIdentity(http.MethodPost, "/api/payments/payment-1/approve", `{"admin_notes":"receipt confirmed"}`, model.Identity{UserID: "admin-1", Role: model.RoleAdmin})
	req = withURLParam(req, "id", "payment-1")
	rec := httptest.NewRecorder()

	h.ApprovePayment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp paymentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "APPROVED" {
		t.Errorf("Status = %q, want APPROVED", resp.Status)
	}
	if resp.ApprovedBy != "admin-1" {
		t.Errorf("ApprovedBy = %q, want admin-1", resp.ApprovedBy)
	}
	if resp.ApprovedAt == nil || !resp.ApprovedAt.Equal(approvedAt) {
		t.Errorf("ApprovedAt = %v, want %v", resp.ApprovedAt, approvedAt)
	}
}

// TestPaymentHandler_ApprovePayment_NonAdmin は管理者以外が403になることを検証する。
func TestPaymentHandler_ApprovePayment_NonAdmin(t *testing.T) {
	service := &mockPaymentService{
		approveFn: func(ctx context.Context, actor model.Identity, paymentID string, notes *string) (*model.Payment, error) {
			return nil, model.NewForbiddenError("approve payment")
		},
	}
	h := NewPaymentHandler(service)

	req := requestWithIdentity(http.MethodPost, "/api/payments/payment-1/approve", `{}`, model.Identity{UserID: "student-1", Role: model.RoleStudent})
	req = withURLParam(req, "id", "payment-1")
	rec := httptest.NewRecorder()

	h.ApprovePayment(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

// TestPaymentHandler_ApprovePayment_PartialApply は部分適用エラーが500で露出することを検証する。
func TestPaymentHandler_ApprovePayment_PartialApply(t *testing.T) {
	service := &mockPaymentService{
		approveFn: func(ctx context.Context, actor model.Identity, paymentID string, notes *string) (*model.Payment, error) {
			return nil, model.NewPaymentPartiallyAppliedError(paymentID, "booking-1")
		},
	}
	h := NewPaymentHandler(service)

	req := requestWithIdentity(http.MethodPost, "/api/payments/payment-1/approve", `{}`, model.Identity{UserID: "admin-1", Role: model.RoleAdmin})
	req = withURLParam(req, "id", "payment-1")
	rec := httptest.NewRecorder()

	h.ApprovePayment(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != model.ErrCodePaymentPartiallyApplied {
		t.Errorf("Code = %q, want %q", resp.Code, model.ErrCodePaymentPartiallyApplied)
	}
}

// TestPaymentHandler_RejectPayment は却下成功時に理由付きの決済が返ることを検証する。
func TestPaymentHandler_RejectPayment(t *testing.T) {
	service := &mockPaymentService{
		rejectFn: func(ctx context.Context, actor model.Identity, paymentID, reason string) (*model.Payment, error) {
			if reason != "amount mismatch" {
				t.Errorf("reason = %q, want amount mismatch", reason)
			}
			return &model.Payment{
				ID:              paymentID,
				Status:          model.PaymentStatusRejected,
				RejectionReason: reason,
			}, nil
		},
	}
	h := NewPaymentHandler(service)

	req := requestWithIdentity(http.MethodPost, "/api/payments/payment-1/reject", `{"reason":"amount mismatch"}`, model.Identity{UserID: "admin-1", Role: model.RoleAdmin})
	req = withURLParam(req, "id", "payment-1")
	rec := httptest.NewRecorder()

	h.RejectPayment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp paymentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "REJECTED" {
		t.Errorf("Status = %q, want REJECTED", resp.Status)
	}
	if resp.RejectionReason != "amount mismatch" {
		t.Errorf("RejectionReason = %q, want amount mismatch", resp.RejectionReason)
	}
}

// TestPaymentHandler_RejectPayment_EmptyReason は理由なしの却下が400になることを検証する。
func TestPaymentHandler_RejectPayment_EmptyReason(t *testing.T) {
	service := &mockPaymentService{
		rejectFn: func(ctx context.Context, actor model.Identity, paymentID, reason string) (*model.Payment, error) {
			return nil, model.NewRejectionReasonRequiredError()
		},
	}
	h := NewPaymentHandler(service)

	req := requestWithIdentity(http.MethodPost, "/api/payments/payment-1/reject", `{"reason":""}`, model.Identity{UserID: "admin-1", Role: model.RoleAdmin})
	req = withURLParam(req, "id", "payment-1")
	rec := httptest.NewRecorder()

	h.RejectPayment(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestPaymentHandler_ListPayments は決済一覧が返ることを検証する。
func TestPaymentHandler_ListPayments(t *testing.T) {
	service := &mockPaymentService{
		listForFn: func(ctx context.Context, actor model.Identity) ([]*model.Payment, error) {
			return []*model.Payment{
				{ID: "payment-1", Status: model.PaymentStatusApproved},
				{ID: "payment-2", Status: model.PaymentStatusPending},
			}, nil
		},
	}
	h := NewPaymentHandler(service)

	req := requestWithIdentity(http.MethodGet, "/api/payments", "", model.Identity{UserID: "admin-1", Role: model.RoleAdmin})
	rec := httptest.NewRecorder()

	h.ListPayments(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp []paymentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Errorf("payment count = %d, want 2", len(resp))
	}
}

// TestPaymentHandler_ListPayments_TeacherForbidden は講師による一覧取得が403になることを検証する。
func TestPaymentHandler_ListPayments_TeacherForbidden(t *testing.T) {
	service := &mockPaymentService{
		listForFn: func(ctx context.Context, actor model.Identity) ([]*model.Payment, error) {
			return nil, model.NewForbiddenError("list payments")
		},
	}
	h := NewPaymentHandler(service)

	req := requestWithIdentity(http.MethodGet, "/api/payments", "", model.Identity{UserID: "teacher-1", Role: model.RoleTeacher})
	rec := httptest.NewRecorder()

	h.ListPayments(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
