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

// BookingServiceInterface は予約ハンドラーが必要とするサービスインターフェース。
type BookingServiceInterface interface {
	// Create は受講者として新規予約を作成する。
	Create(ctx context.Context, actor model.Identity, teacherID string, startsAt, endsAt time.Time) (*model.Booking, error)
	// SetStatus は管理者として予約状態を変更する。
	SetStatus(ctx context.Context, actor model.Identity, bookingID string, status model.BookingStatus, meetLink *string) (*model.Booking, error)
	// ListFor は操作者のロールに応じた予約一覧を返す。
	ListFor(ctx context.Context, actor model.Identity) ([]*model.Booking, error)
}

// BookingHandler は予約管理のHTTPハンドラー。
type BookingHandler struct {
	service BookingServiceInterface
}

// NewBookingHandler はBookingHandlerを生成する。
func NewBookingHandler(service BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: service}
}

// createBookingRequest は予約作成リクエストのボディ。
type createBookingRequest struct {
	TeacherID string    `json:"teacher_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
}

// setBookingStatusRequest は予約状態変更リクエストのボディ。
// meet_linkは省略可能で、省略時は既存値を維持する。
type setBookingStatusRequest struct {
	Status   string  `json:"status"`
	MeetLink *string `json:"meet_link"`
}

// bookingResponse は予約のAPIレスポンス。
type bookingResponse struct {
	ID            string    `json:"id"`
	TeacherID     string    `json:"teacher_id"`
	StudentID     string    `json:"student_id"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	MeetLink      string    `json:"meet_link"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateBooking は予約作成を処理する。
// POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	booking, err := h.service.Create(r.Context(), identity, req.TeacherID, req.StartsAt, req.EndsAt)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

// ListBookings は操作者に応じた予約一覧を返す。
// 管理者は全件、講師は自分宛て、受講者は自分の予約のみ。
// GET /api/bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	bookings, err := h.service.ListFor(r.Context(), identity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, toBookingResponse(b))
	}

	writeJSON(w, http.StatusOK, responses)
}

// SetBookingStatus は管理者による予約状態の変更を処理する。
// PATCH /api/bookings/:id/status
func (h *BookingHandler) SetBookingStatus(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	bookingID := chi.URLParam(r, "id")

	var req setBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	booking, err := h.service.SetStatus(r.Context(), identity, bookingID, model.BookingStatus(req.Status), req.MeetLink)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

// toBookingResponse はmodel.BookingからAPIレスポンスに変換する。
func toBookingResponse(b *model.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		TeacherID:     b.TeacherID,
		StudentID:     b.StudentID,
		StartsAt:      b.StartsAt,
		EndsAt:        b.EndsAt,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		MeetLink:      b.MeetLink,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
