// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層やワーカーから利用する。
type MetricsCollector interface {
	RecordBookingCreated()
	RecordPaymentSubmitted()
	RecordPaymentApproved()
	RecordPaymentRejected()
	RecordLogin()
	RecordHTTPStatus(statusCode int)
	RecordSessionsPurged(count int)
	RecordTokensPurged(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	bookingsCreated   prometheus.Counter
	paymentsSubmitted prometheus.Counter
	paymentsApproved  prometheus.Counter
	paymentsRejected  prometheus.Counter
	logins            prometheus.Counter
	httpStatus        *prometheus.CounterVec
	sessionsPurged    prometheus.Counter
	tokensPurged      prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lessonbook_bookings_created_total",
			Help: "作成された予約の合計数",
		}),
		paymentsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lessonbook_payments_submitted_total",
			Help: "申請された決済の合計数",
		}),
		paymentsApproved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lessonbook_payments_approved_total",
			Help: "承認された決済の合計数",
		}),
		paymentsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lessonbook_payments_rejected_total",
			Help: "却下された決済の合計数",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lessonbook_logins_total",
			Help: "ログイン成功の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lessonbook_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lessonbook_sessions_purged_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
		tokensPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lessonbook_tokens_purged_total",
			Help: "クリーンアップで削除された期限切れ確認トークンの合計数",
		}),
	}

	reg.MustRegister(
		c.bookingsCreated,
		c.paymentsSubmitted,
		c.paymentsApproved,
		c.paymentsRejected,
		c.logins,
		c.httpStatus,
		c.sessionsPurged,
		c.tokensPurged,
	)

	return c
}

// RecordBookingCreated は予約作成を記録する。
func (c *Collector) RecordBookingCreated() {
	c.bookingsCreated.Inc()
}

// RecordPaymentSubmitted は決済申請を記録する。
func (c *Collector) RecordPaymentSubmitted() {
	c.paymentsSubmitted.Inc()
}

// RecordPaymentApproved は決済承認を記録する。
func (c *Collector) RecordPaymentApproved() {
	c.paymentsApproved.Inc()
}

// RecordPaymentRejected は決済却下を記録する。
func (c *Collector) RecordPaymentRejected() {
	c.paymentsRejected.Inc()
}

// RecordLogin はログイン成功を記録する。
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSessionsPurged は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int) {
	c.sessionsPurged.Add(float64(count))
}

// RecordTokensPurged は削除された期限切れ確認トークン数を記録する。
func (c *Collector) RecordTokensPurged(count int) {
	c.tokensPurged.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
