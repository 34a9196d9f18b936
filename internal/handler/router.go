package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/lifehub/internal/metrics"
	"github.com/hitoshi/lifehub/internal/middleware"
	"github.com/hitoshi/lifehub/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.AccessTokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface

	// エンティティ
	TaskService     EntityService[model.Task, model.TaskInput]
	ScheduleService EntityService[model.Schedule, model.ScheduleInput]
	BookmarkService EntityService[model.Bookmark, model.BookmarkInput]
	FaviconResolver FaviconResolverInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	StripSlashes → CORS → SecurityHeaders → Logging → Recovery → Metrics
//
// 認証ルート（/api/auth/google、/api/auth/refresh）はJWT認証の外に配置し、
// 代わりにIPキーのレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 末尾スラッシュあり・なしの両方を受け付ける
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.Metrics)
	taskHandler := NewTaskHandler(deps.TaskService)
	scheduleHandler := NewScheduleHandler(deps.ScheduleService)
	bookmarkHandler := NewBookmarkHandler(deps.BookmarkService)
	faviconHandler := NewFaviconHandler(deps.FaviconResolver)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheusスクレイプ
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	// トークン発行（IPキーのレート制限を適用）
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())
		r.Post("/api/auth/google", authHandler.GoogleAuth)
		r.Post("/api/auth/refresh", authHandler.Refresh)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: JWT認証 → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/auth/me", authHandler.Me)

		r.Route("/api/tasks", taskHandler.RegisterRoutes)
		r.Route("/api/schedules", scheduleHandler.RegisterRoutes)
		r.Route("/api/bookmarks", func(r chi.Router) {
			// CRUDより先に登録し/{id}に飲み込まれないようにする
			r.Get("/favicon", faviconHandler.ResolveFavicon)
			bookmarkHandler.RegisterRoutes(r)
		})
	})

	return r
}
