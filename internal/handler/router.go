package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/notehub/internal/metrics"
	"github.com/hitoshi/notehub/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// サービス
	AuthService AuthServiceInterface
	NoteService NoteServiceInterface

	// 運用
	HealthChecker HealthChecker
	Metrics       *metrics.Collector
	Gatherer      prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成した
// chi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RequestID → CORS → Logging →（認証ルートのみ）Auth → RateLimit
//
// 認証が不要なのは登録・ログイン・公開ノート一覧・ヘルスチェック・メトリクスのみ。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// nilの*Collectorをそのままインターフェースに渡すと非nil扱いになるため明示的に変換する
	var httpMetrics middleware.HTTPMetricsRecorder
	if deps.Metrics != nil {
		httpMetrics = deps.Metrics
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, httpMetrics))

	authHandler := NewAuthHandler(deps.AuthService)
	noteHandler := NewNoteHandler(deps.NoteService)

	// --- 認証不要のルート ---

	r.Get("/", handleRoot)
	r.Get("/health", handleHealth(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/notes", func(r chi.Router) {
			// 公開ノート一覧は認証なしで誰でも閲覧できる
			r.Get("/public", noteHandler.ListPublicNotes)

			// --- 認証が必要なルート ---
			// ミドルウェアスタック: Auth → RateLimit
			r.Group(func(r chi.Router) {
				r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
				r.Use(deps.RateLimiter.Middleware())

				r.Post("/", noteHandler.CreateNote)
				r.Get("/", noteHandler.ListNotes)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", noteHandler.GetNote)
					r.Put("/", noteHandler.UpdateNote)
					r.Delete("/", noteHandler.DeleteNote)
				})
			})
		})
	})

	return r
}

// handleRoot はAPIのルートにサービス情報を返す。
// GET /
func handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{
		"message": "Welcome to notehub API",
		"health":  "/health",
	})
}

// handleHealth はDB接続を確認するヘルスチェックハンドラーを返す。
// GET /health
func handleHealth(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
				})
				return
			}
		}
		writeJSONResponse(w, http.StatusOK, map[string]string{
			"status": "healthy",
		})
	}
}
