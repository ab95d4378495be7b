package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/one2zero1/janejase-backend/internal/model"
)

// Profile は外部プロバイダーから取得したユーザープロフィール。
type Profile struct {
	Email    string
	Name     string
	Picture  string
	Provider string
}

// ProfileFetcher はアクセストークンからプロフィールを取得する。
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// OAuthProvider は認可コードフローを提供するプロバイダー。
type OAuthProvider interface {
	GetLoginURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*Profile, error)
}

// UserDirectory はプロフィールからユーザーを解決する。
type UserDirectory interface {
	FindOrCreate(ctx context.Context, profile *Profile) (*model.User, error)
	FindByID(ctx context.Context, userID string) (*model.User, error)
}

// TokenIssuer はユーザーIDを主体とするアクセストークンを発行する。
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
}

// Service は外部プロバイダーによるログイン処理を提供する。
type Service struct {
	google   OAuthProvider
	fetchers map[string]ProfileFetcher
	users    UserDirectory
	tokens   TokenIssuer
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewService はauth.Serviceを生成する。
// fetchersのキーはプロバイダー名（"google", "kakao"）。
func NewService(google OAuthProvider, fetchers map[string]ProfileFetcher, users UserDirectory, tokens TokenIssuer, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		google:   google,
		fetchers: fetchers,
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// GetLoginURL はGoogle OAuthの認証URLを返す。
func (s *Service) GetLoginURL(state string) string {
	return s.google.GetLoginURL(state)
}

// HandleCallback は認可コードフローのコールバックを処理する。
// コードをプロフィールに交換し、ユーザーを解決してトークンを発行する。
func (s *Service) HandleCallback(ctx context.Context, code string) (string, *model.User, error) {
	if code == "" {
		return "", nil, model.NewValidationError("認可コードが指定されていません")
	}

	profile, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Warn("oauth code exchange failed",
			slog.String("provider", "google"),
			slog.String("error", err.Error()))
		return "", nil, model.NewProviderUnavailableError("google")
	}

	return s.login(ctx, profile)
}

// LoginWithAccessToken はクライアントが取得済みのアクセストークンでログインする。
// プロバイダーからのプロフィール取得に失敗した場合はPROVIDER_UNAVAILABLEを返す。
func (s *Service) LoginWithAccessToken(ctx context.Context, provider, accessToken string) (string, *model.User, error) {
	if accessToken == "" {
		return "", nil, model.NewValidationError("アクセストークンが指定されていません")
	}

	fetcher, ok := s.fetchers[provider]
	if !ok {
		return "", nil, model.NewValidationError("サポートされていないプロバイダーです: " + provider)
	}

	profile, err := fetcher.FetchProfile(ctx, accessToken)
	if err != nil {
		s.logger.Warn("profile fetch failed",
			slog.String("provider", provider),
			slog.String("error", err.Error()))
		return "", nil, model.NewProviderUnavailableError(provider)
	}

	return s.login(ctx, profile)
}

// login はプロフィールからユーザーを解決し、アクセストークンを発行する。
func (s *Service) login(ctx context.Context, profile *Profile) (string, *model.User, error) {
	user, err := s.users.FindOrCreate(ctx, profile)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		s.logger.Error("token issue failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
		return "", nil, model.NewStorageError()
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("provider", profile.Provider))

	return token, user, nil
}

// CurrentUser はトークン主体のユーザーIDからユーザー情報を取得する。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}
