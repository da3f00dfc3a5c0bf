package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abdullah34123513/english-sub002/internal/middleware"
	"github.com/Abdullah34123513/english-sub002/internal/model"
	"github.com/Abdullah34123513/english-sub002/internal/teacher"
)

// TeacherServiceInterface は講師ハンドラーが必要とするサービスインターフェース。
type TeacherServiceInterface interface {
	// EnsureProfile は講師プロフィールを取得し、未作成なら既定値で作成する。
	EnsureProfile(ctx context.Context, userID string) (*model.Teacher, error)
	// GetByID は講師プロフィールを取得する。見つからない場合はnilを返す。
	GetByID(ctx context.Context, teacherID string) (*model.Teacher, error)
	// ListActive は受付中の講師一覧を返す。
	ListActive(ctx context.Context) ([]*model.Teacher, error)
	// UpdateProfile は講師自身のプロフィールを更新する。
	UpdateProfile(ctx context.Context, actor model.Identity, input teacher.UpdateProfileInput) (*model.Teacher, error)
	// AddAvailability は講師自身の空き枠を追加する。
	AddAvailability(ctx context.Context, actor model.Identity, input teacher.AddAvailabilityInput) (*model.AvailabilitySlot, error)
	// ListAvailability は講師の空き枠一覧を返す。
	ListAvailability(ctx context.Context, actor model.Identity, teacherID string) ([]*model.AvailabilitySlot, error)
	// DeleteAvailability は講師自身の空き枠を削除する。
	DeleteAvailability(ctx context.Context, actor model.Identity, slotID string) error
}

// TeacherHandler は講師プロフィールと空き枠のHTTPハンドラー。
type TeacherHandler struct {
	service TeacherServiceInterface
}

// NewTeacherHandler はTeacherHandlerを生成する。
func NewTeacherHandler(service TeacherServiceInterface) *TeacherHandler {
	return &TeacherHandler{service: service}
}

// updateProfileRequest はプロフィール更新リクエストのボディ。
type updateProfileRequest struct {
	HourlyRateCents int      `json:"hourly_rate_cents"`
	Bio             string   `json:"bio"`
	ExperienceYears int      `json:"experience_years"`
	Education       string   `json:"education"`
	Languages       []string `json:"languages"`
	IsActive        bool     `json:"is_active"`
}

// addAvailabilityRequest は空き枠追加リクエストのボディ。
type addAvailabilityRequest struct {
	DayOfWeek   int `json:"day_of_week"`
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// teacherResponse は講師プロフィールのAPIレスポンス。
type teacherResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	HourlyRateCents int       `json:"hourly_rate_cents"`
	Bio             string    `json:"bio"`
	ExperienceYears int       `json:"experience_years"`
	Education       string    `json:"education"`
	Languages       []string  `json:"languages"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// availabilityResponse は空き枠のAPIレスポンス。
type availabilityResponse struct {
	ID          string `json:"id"`
	TeacherID   string `json:"teacher_id"`
	DayOfWeek   int    `json:"day_of_week"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	IsAvailable bool   `json:"is_available"`
}

// ListTeachers は受付中の講師一覧を返す。
// GET /api/teachers
func (h *TeacherHandler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.service.ListActive(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]teacherResponse, 0, len(teachers))
	for _, t := range teachers {
		responses = append(responses, toTeacherResponse(t))
	}

	writeJSON(w, http.StatusOK, responses)
}

// GetTeacher は講師詳細を取得する。
// GET /api/teachers/:id
func (h *TeacherHandler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "id")

	t, err := h.service.GetByID(r.Context(), teacherID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if t == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewTeacherNotFoundError(teacherID))
		return
	}

	writeJSON(w, http.StatusOK, toTeacherResponse(t))
}

// MyProfile は講師自身のプロフィールを返す。未作成の場合は既定値で作成する。
// GET /api/teachers/me
func (h *TeacherHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if identity.Role != model.RoleTeacher {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError("講師プロフィールの取得"))
		return
	}

	t, err := h.service.EnsureProfile(r.Context(), identity.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTeacherResponse(t))
}

// UpdateMyProfile は講師自身のプロフィールを更新する。
// PUT /api/teachers/me
func (h *TeacherHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	t, err := h.service.UpdateProfile(r.Context(), identity, teacher.UpdateProfileInput{
		HourlyRateCents: req.HourlyRateCents,
		Bio:             req.Bio,
		ExperienceYears: req.ExperienceYears,
		Education:       req.Education,
		Languages:       req.Languages,
		IsActive:        req.IsActive,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTeacherResponse(t))
}

// AddAvailability は講師自身の空き枠を追加する。
// POST /api/teachers/me/availability
func (h *TeacherHandler) AddAvailability(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req addAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	slot, err := h.service.AddAvailability(r.Context(), identity, teacher.AddAvailabilityInput{
		DayOfWeek:   req.DayOfWeek,
		StartMinute: req.StartMinute,
		EndMinute:   req.EndMinute,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAvailabilityResponse(slot))
}

// ListAvailability は講師の空き枠一覧を返す。
// 講師本人には全枠を、それ以外には予約可能な枠のみを返す。
// GET /api/teachers/:id/availability
func (h *TeacherHandler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	teacherID := chi.URLParam(r, "id")

	slots, err := h.service.ListAvailability(r.Context(), identity, teacherID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]availabilityResponse, 0, len(slots))
	for _, slot := range slots {
		responses = append(responses, toAvailabilityResponse(slot))
	}

	writeJSON(w, http.StatusOK, responses)
}

// DeleteAvailability は講師自身の空き枠を削除する。
// DELETE /api/availability/:id
func (h *TeacherHandler) DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	slotID := chi.URLParam(r, "id")

	if err := h.service.DeleteAvailability(r.Context(), identity, slotID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toTeacherResponse はmodel.TeacherからAPIレスポンスに変換する。
func toTeacherResponse(t *model.Teacher) teacherResponse {
	return teacherResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		HourlyRateCents: t.HourlyRateCents,
		Bio:             t.Bio,
		ExperienceYears: t.ExperienceYears,
		Education:       t.Education,
		Languages:       t.Languages,
		IsActive:        t.IsActive,
		CreatedAt:       t.CreatedAt,
	}
}

// toAvailabilityResponse はmodel.AvailabilitySlotからAPIレスポンスに変換する。
func toAvailabilityResponse(slot *model.AvailabilitySlot) availabilityResponse {
	return availabilityResponse{
		ID:          slot.ID,
		TeacherID:   slot.TeacherID,
		DayOfWeek:   slot.DayOfWeek,
		StartMinute: slot.StartMinute,
		EndMinute:   slot.EndMinute,
		IsAvailable: slot.IsAvailable,
	}
}
