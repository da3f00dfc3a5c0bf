package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/Abdullah34123513/english-sub002/internal/middleware"
	"github.com/Abdullah34123513/english-sub002/internal/model"
)

type stubSessionFinder struct {
	session *model.Session
}

func (s *stubSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if s.session != nil && s.session.ID == id {
		return s.session, nil
	}
	return nil, nil
}

type stubHealthChecker struct {
	err error
}

func (s *stubHealthChecker) PingContext(ctx context.Context) error {
	return s.err
}

func newTestRouter(t *testing.T, checker HealthChecker, session *model.Session) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(1000),
		GeneralBurst:    1000,
		BookingRate:     rate.Limit(1000),
		BookingBurst:    1000,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		SessionFinder:     &stubSessionFinder{session: session},
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		HealthChecker:     checker,
		AuthService:       &mockAuthService{},
		VerificationService: &mockVerificationService{
			statusForFn: func(ctx context.Context, userID string) (model.VerificationStatus, error) {
				return model.VerificationStatus{}, nil
			},
		},
		TeacherService: &mockTeacherService{
			listActiveFn: func(ctx context.Context) ([]*model.Teacher, error) {
				return nil, nil
			},
		},
		BookingService: &mockBookingService{
			listForFn: func(ctx context.Context, actor model.Identity) ([]*model.Booking, error) {
				return nil, nil
			},
		},
		PaymentService: &mockPaymentService{},
	})
}

// TestRouter_Health はヘルスチェックが認証なしで応答することを検証する。
func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestRouter_Health_DBDown はDB疎通失敗時に503が返ることを検証する。
func TestRouter_Health_DBDown(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{err: errors.New("connection refused")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

// TestRouter_ProtectedRoutesRequireSession は保護ルートがセッションなしで401になることを検証する。
func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{}, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/teachers"},
		{http.MethodGet, "/api/teachers/teacher-1"},
		{http.MethodPost, "/api/bookings"},
		{http.MethodGet, "/api/bookings"},
		{http.MethodPost, "/api/payments"},
		{http.MethodGet, "/api/payments"},
		{http.MethodPost, "/api/payments/payment-1/approve"},
		{http.MethodDelete, "/api/availability/slot-1"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", tt.method, tt.path, rec.Code)
		}
	}
}

// TestRouter_AuthenticatedAccess は有効なセッションCookieで保護ルートに到達できることを検証する。
func TestRouter_AuthenticatedAccess(t *testing.T) {
	session := &model.Session{ID: "session-1", UserID: "user-1", Role: model.RoleStudent}
	router := newTestRouter(t, &stubHealthChecker{}, session)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-1"})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestRouter_SecurityHeaders はセキュリティヘッダーが全応答に付与されることを検証する。
func TestRouter_SecurityHeaders(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got == "" {
		t.Error("X-Frame-Options must be set")
	}
}

// TestRouter_CORS はCORSヘッダーが許可オリジンに付与されることを検証する。
func TestRouter_CORS(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want http://localhost:3000", got)
	}
}

// TestRouter_MetricsRoute はメトリクスハンドラー指定時に/metricsが公開されることを検証する。
func TestRouter_MetricsRoute(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	router := NewRouter(&RouterDeps{
		SessionFinder:     &stubSessionFinder{},
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		HealthChecker:     &stubHealthChecker{},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		AuthService:         &mockAuthService{},
		VerificationService: &mockVerificationService{},
		TeacherService:      &mockTeacherService{},
		BookingService:      &mockBookingService{},
		PaymentService:      &mockPaymentService{},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
