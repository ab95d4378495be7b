package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/one2zero1/janejase-backend/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 姿勢セッション
	PoseService PoseServiceInterface

	// マイページ
	MypageService MypageServiceInterface

	// ヘルスチェック
	DB Pinger

	// メトリクス（nilの場合は記録しない）
	Metrics middleware.HTTPStatusRecorder
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → CORS → SecurityHeaders → AuthMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 認証ルート（/auth/google/*, /auth/login）とヘルスチェックは
// ミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通: パニック回復 → アクセスログ → CORS → セキュリティヘッダー
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	poseHandler := NewPoseHandler(deps.PoseService)
	mypageHandler := NewMypageHandler(deps.MypageService)
	healthHandler := NewHealthHandler(deps.DB)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Check)

	// 認証ルート（OAuthフロー / トークンログイン）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/login", authHandler.LoginWithToken)

		// GET /auth/me - 現在のユーザー情報（Bearerトークン必須）
		r.With(middleware.NewAuthMiddleware(deps.TokenVerifier)).Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 姿勢セッション
		r.Route("/pose", func(r chi.Router) {
			r.Post("/create", poseHandler.Create)
			r.Patch("/end", poseHandler.End)

			// POST /pose/warning - 警告イベント記録（専用レート制限を追加）
			r.With(deps.RateLimiter.WarningMiddleware()).Post("/warning", poseHandler.Warning)
		})

		// マイページ
		r.Route("/mypage", func(r chi.Router) {
			r.Get("/history/{user_id}", mypageHandler.History)
			r.Delete("/history/{pose_id}", mypageHandler.Delete)
		})
	})

	return r
}
