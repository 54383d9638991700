package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/mentormatch/internal/metrics"
	"github.com/hitoshi/mentormatch/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenParser       middleware.TokenParser
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス
	Metrics         *metrics.Collector
	MetricsGatherer prometheus.Gatherer

	// ハンドラ共通設定
	HandlerConfig Config

	// サービス層
	AuthService    AuthServiceInterface
	MentorService  MentorServiceInterface
	UserService    UserServiceInterface
	SkillService   SkillServiceInterface
	SessionService SessionServiceInterface
	ReviewService  ReviewServiceInterface
	PaymentService PaymentServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → Metrics → CORS → (認証ルートのみ) Auth → RateLimit(General)
//
// メンター一覧・詳細・スキルカタログ・レビュー一覧と認証エンドポイントは公開。
// それ以外はBearerトークン必須で、ユーザー単位の一般レート制限を共有する。
// レビュー投稿はさらに専用の厳しいレート制限を重ねる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.HandlerConfig)
	mentorHandler := NewMentorHandler(deps.MentorService, deps.HandlerConfig)
	userHandler := NewUserHandler(deps.UserService, deps.HandlerConfig)
	skillHandler := NewSkillHandler(deps.SkillService, deps.HandlerConfig)
	sessionHandler := NewSessionHandler(deps.SessionService, deps.HandlerConfig)
	reviewHandler := NewReviewHandler(deps.ReviewService, deps.HandlerConfig)
	paymentHandler := NewPaymentHandler(deps.PaymentService, deps.HandlerConfig)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok"})
	})

	if deps.MetricsGatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.MetricsGatherer).ServeHTTP)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	// メンター一覧・詳細の読み取りパスは公開
	r.Route("/api/mentors", func(r chi.Router) {
		r.With(countSuccesses(deps, func(c *metrics.Collector) { c.RecordMentorListing() })).
			Get("/", mentorHandler.ListMentors)
		r.Get("/carousel", mentorHandler.Carousel)
		r.Get("/skill/{skillId}", mentorHandler.ListBySkill)
		r.Get("/{id}", mentorHandler.GetMentor)
	})

	// GET /api/skills - スキルカタログ（公開）
	r.Get("/api/skills", skillHandler.ListSkills)

	// GET /api/reviews?mentor=<id> - メンターのレビュー一覧（公開）
	r.Get("/api/reviews", reviewHandler.ListReviews)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenParser))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// プロフィール管理
		r.Route("/api/users/me", func(r chi.Router) {
			r.Get("/", userHandler.GetMe)
			r.Patch("/", userHandler.UpdateMe)
			r.Put("/skills", userHandler.ReplaceSkills)
		})

		// スキル登録
		r.Post("/api/skills", skillHandler.CreateSkill)

		// セッション管理
		r.Route("/api/sessions", func(r chi.Router) {
			r.With(countSuccesses(deps, func(c *metrics.Collector) { c.RecordSessionBooked() })).
				Post("/", sessionHandler.BookSession)
			r.Get("/", sessionHandler.ListSessions)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Post("/complete", sessionHandler.CompleteSession)
			})
		})

		// レビュー投稿（専用レート制限を追加）と詳細取得。
		// GET /api/reviews は公開側で登録済みなのでサブルーターは使わない。
		create := r.With(countSuccesses(deps, func(c *metrics.Collector) { c.RecordReviewCreated() }))
		if deps.RateLimiter != nil {
			create = create.With(deps.RateLimiter.ReviewMiddleware())
		}
		create.Post("/api/reviews", reviewHandler.CreateReview)
		r.Get("/api/reviews/{id}", reviewHandler.GetReview)

		// 支払い管理
		r.Route("/api/payments", func(r chi.Router) {
			r.With(countSuccesses(deps, func(c *metrics.Collector) { c.RecordPaymentRecorded() })).
				Post("/", paymentHandler.CreatePayment)
			r.Get("/session/{id}", paymentHandler.ListPaymentsBySession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", paymentHandler.GetPayment)
				r.Patch("/status", paymentHandler.UpdatePaymentStatus)
			})
		})
	})

	return r
}

// countSuccesses はメトリクス未設定時に素通しする成功カウントミドルウェアを返す。
func countSuccesses(deps *RouterDeps, record func(*metrics.Collector)) func(next http.Handler) http.Handler {
	if deps.Metrics == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return metrics.CountSuccesses(func() { record(deps.Metrics) })
}
