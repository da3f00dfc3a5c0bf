package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abdullah34123513/english-sub002/internal/middleware"
	"github.com/Abdullah34123513/english-sub002/internal/model"
)

// PaymentServiceInterface は決済ハンドラーが必要とするサービスインターフェース。
type PaymentServiceInterface interface {
	// Submit は受講者として決済を申請する。
	Submit(ctx context.Context, actor model.Identity, bookingID string, amountCents int, method string) (*model.Payment, error)
	// Approve は管理者として決済を承認し、予約を確定する。
	Approve(ctx context.Context, actor model.Identity, paymentID string, notes *string) (*model.Payment, error)
	// Reject は管理者として決済を却下し、予約を取り消す。却下理由が必須。
	Reject(ctx context.Context, actor model.Identity, paymentID, reason string) (*model.Payment, error)
	// ListFor は操作者のロールに応じた決済一覧を返す。
	ListFor(ctx context.Context, actor model.Identity) ([]*model.Payment, error)
}

// PaymentHandler は決済管理のHTTPハンドラー。
type PaymentHandler struct {
	service PaymentServiceInterface
}

// NewPaymentHandler はPaymentHandlerを生成する。
func NewPaymentHandler(service PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// submitPaymentRequest は決済申請リクエストのボディ。
type submitPaymentRequest struct {
	BookingID   string `json:"booking_id"`
	AmountCents int    `json:"amount_cents"`
	Method      string `json:"method"`
}

// approvePaymentRequest は決済承認リクエストのボディ。
type approvePaymentRequest struct {
	AdminNotes *string `json:"admin_notes"`
}

// rejectPaymentRequest は決済却下リクエストのボディ。
type rejectPaymentRequest struct {
	Reason string `json:"reason"`
}

// paymentResponse は決済のAPIレスポンス。
type paymentResponse struct {
	ID              string     `json:"id"`
	BookingID       string     `json:"booking_id"`
	AmountCents     int        `json:"amount_cents"`
	Method          string     `json:"method"`
	Status          string     `json:"status"`
	ApprovedBy      string     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	AdminNotes      string     `json:"admin_notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SubmitPayment は決済申請を処理する。
// POST /api/payments
func (h *PaymentHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req submitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	payment, err := h.service.Submit(r.Context(), identity, req.BookingID, req.AmountCents, req.Method)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentResponse(payment))
}

// ListPayments は操作者に応じた決済一覧を返す。
// 管理者は全件、受講者は自分の予約に紐づく決済のみ。
// GET /api/payments
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	payments, err := h.service.ListFor(r.Context(), identity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, toPaymentResponse(p))
	}

	writeJSON(w, http.StatusOK, responses)
}

// ApprovePayment は管理者による決済承認を処理する。
// 承認に成功すると紐づく予約はCONFIRMED/PAIDに遷移する。
// POST /api/payments/:id/approve
func (h *PaymentHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	paymentID := chi.URLParam(r, "id")

	var req approvePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	payment, err := h.service.Approve(r.Context(), identity, paymentID, req.AdminNotes)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}

// RejectPayment は管理者による決済却下を処理する。
// 却下に成功すると紐づく予約はCANCELLED/FAILEDに遷移する。
// POST /api/payments/:id/reject
func (h *PaymentHandler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	paymentID := chi.URLParam(r, "id")

	var req rejectPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	payment, err := h.service.Reject(r.Context(), identity, paymentID, req.Reason)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}

// toPaymentResponse はmodel.PaymentからAPIレスポンスに変換する。
func toPaymentResponse(p *model.Payment) paymentResponse {
	return paymentResponse{
		ID:              p.ID,
		BookingID:       p.BookingID,
		AmountCents:     p.AmountCents,
		Method:          p.Method,
		Status:          string(p.Status),
		ApprovedBy:      p.ApprovedBy,
		ApprovedAt:      p.ApprovedAt,
		RejectionReason: p.RejectionReason,
		AdminNotes:      p.AdminNotes,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
