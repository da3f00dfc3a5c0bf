package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Abdullah34123513/english-sub002/internal/middleware"
)

// HealthChecker はヘルスチェックで疎通確認する依存のインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 監視
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 認証
	AuthService         AuthServiceInterface
	VerificationService VerificationServiceInterface
	AuthConfig          AuthHandlerConfig

	// 講師
	TeacherService TeacherServiceInterface

	// 予約
	BookingService BookingServiceInterface

	// 決済
	PaymentService PaymentServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → SessionMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 認証ルート（/auth/*）、/health、/metricsはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))

	authHandler := NewAuthHandler(deps.AuthService, deps.VerificationService, deps.AuthConfig)
	teacherHandler := NewTeacherHandler(deps.TeacherService)
	bookingHandler := NewBookingHandler(deps.BookingService)
	paymentHandler := NewPaymentHandler(deps.PaymentService)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/health", newHealthHandler(deps.HealthChecker))

	// Prometheusスクレイプ
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// 認証ルート
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Post("/verify", authHandler.Verify)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 講師プロフィールと空き枠
		r.Route("/api/teachers", func(r chi.Router) {
			r.Get("/", teacherHandler.ListTeachers)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", teacherHandler.MyProfile)
				r.Put("/", teacherHandler.UpdateMyProfile)
				r.Post("/availability", teacherHandler.AddAvailability)
			})

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", teacherHandler.GetTeacher)
				r.Get("/availability", teacherHandler.ListAvailability)
			})
		})

		r.Delete("/api/availability/{id}", teacherHandler.DeleteAvailability)

		// 予約管理
		r.Route("/api/bookings", func(r chi.Router) {
			// POST /api/bookings - 予約作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.BookingCreationMiddleware()).Post("/", bookingHandler.CreateBooking)

			r.Get("/", bookingHandler.ListBookings)
			r.Patch("/{id}/status", bookingHandler.SetBookingStatus)
		})

		// 決済管理
		r.Route("/api/payments", func(r chi.Router) {
			r.Post("/", paymentHandler.SubmitPayment)
			r.Get("/", paymentHandler.ListPayments)

			r.Route("/{id}", func(r chi.Router) {
				r.Post("/approve", paymentHandler.ApprovePayment)
				r.Post("/reject", paymentHandler.RejectPayment)
			})
		})
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
