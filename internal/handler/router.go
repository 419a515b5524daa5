package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/carbonlog/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DB のPingContextを満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	StatusRecorder    middleware.StatusRecorder // nil可

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 活動記録
	ActivityService ActivityServiceInterface

	// ダッシュボード
	DashboardService DashboardServiceInterface
	DashboardConfig  DashboardHandlerConfig
	LatencyRecorder  DashboardLatencyRecorder // nil可

	// 排出係数
	FactorRegistry FactorLister

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler // nil可
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → RecoveryMiddleware → LoggingMiddleware → SessionMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// ログインと運用エンドポイント（/health, /metrics）はセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusRecorder))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	activityHandler := NewActivityHandler(deps.ActivityService)
	dashboardHandler := NewDashboardHandler(deps.DashboardService, deps.DashboardConfig, deps.LatencyRecorder)
	factorHandler := NewFactorHandler(deps.FactorRegistry)

	// --- 認証不要のルート ---

	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/logout", authHandler.Logout)

	r.Get("/health", healthHandler(deps.HealthChecker))

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/auth/me", authHandler.Me)

		// 活動記録
		r.Route("/api/logs", func(r chi.Router) {
			// 書き込みには活動記録専用レート制限を追加
			r.With(deps.RateLimiter.LogWriteMiddleware()).Post("/electricity", activityHandler.CreateElectricityLog)
			r.With(deps.RateLimiter.LogWriteMiddleware()).Post("/transport", activityHandler.CreateTransportLog)
			r.With(deps.RateLimiter.LogWriteMiddleware()).Post("/purchase", activityHandler.CreatePurchaseLog)

			r.Get("/electricity", activityHandler.ListElectricityLogs)
			r.Get("/transport", activityHandler.ListTransportLogs)
			r.Get("/purchase", activityHandler.ListPurchaseLogs)
		})

		// ダッシュボード
		r.Get("/api/dashboard", dashboardHandler.GetDashboard)

		// 排出係数テーブル
		r.Get("/api/factors", factorHandler.ListFactors)
	})

	return r
}

// healthHandler はレコードストアへの疎通を確認するヘルスチェックハンドラーを返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
