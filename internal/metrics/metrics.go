// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordMentorListing()
	RecordReviewCreated()
	RecordSessionBooked()
	RecordPaymentRecorded()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
	mentorListings   prometheus.Counter
	reviewsCreated   prometheus.Counter
	sessionsBooked   prometheus.Counter
	paymentsRecorded prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentormatch_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mentormatch_request_latency_seconds",
			Help:    "APIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		mentorListings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentormatch_mentor_listings_total",
			Help: "メンター一覧クエリの合計数",
		}),
		reviewsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentormatch_reviews_created_total",
			Help: "作成されたレビューの合計数",
		}),
		sessionsBooked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentormatch_sessions_booked_total",
			Help: "予約されたセッションの合計数",
		}),
		paymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentormatch_payments_recorded_total",
			Help: "記録された支払いの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.mentorListings,
		c.reviewsCreated,
		c.sessionsBooked,
		c.paymentsRecorded,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordMentorListing はメンター一覧クエリを記録する。
func (c *Collector) RecordMentorListing() {
	c.mentorListings.Inc()
}

// RecordReviewCreated はレビュー作成を記録する。
func (c *Collector) RecordReviewCreated() {
	c.reviewsCreated.Inc()
}

// RecordSessionBooked はセッション予約を記録する。
func (c *Collector) RecordSessionBooked() {
	c.sessionsBooked.Inc()
}

// RecordPaymentRecorded は支払い記録を記録する。
func (c *Collector) RecordPaymentRecorded() {
	c.paymentsRecorded.Inc()
}

// Middleware は全リクエストのステータスコードとレイテンシを記録するHTTPミドルウェアを返す。
func (c *Collector) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			c.RecordHTTPStatus(sr.statusCode)
			c.RecordRequestLatency(time.Since(start))
		})
	}
}

// CountSuccesses は2xxレスポンスが返ったときだけrecordを呼ぶHTTPミドルウェアを返す。
// 特定ルートの成功数を数えるために使う。
func CountSuccesses(record func()) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			if sr.statusCode >= 200 && sr.statusCode < 300 {
				record()
			}
		})
	}
}

// statusRecorder はWriteHeaderで書き込まれたステータスコードを捕捉する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wroteHeader {
		sr.statusCode = code
		sr.wroteHeader = true
	}
	sr.ResponseWriter.WriteHeader(code)
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
