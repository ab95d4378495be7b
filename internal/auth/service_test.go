package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/one2zero1/janejase-backend/internal/model"
)

// mockOAuthProvider はOAuthProviderのモック実装
type mockOAuthProvider struct {
	getLoginURLFunc  func(state string) string
	exchangeCodeFunc func(ctx context.Context, code string) (*Profile, error)
}

func (m *mockOAuthProvider) GetLoginURL(state string) string {
	if m.getLoginURLFunc != nil {
		return m.getLoginURLFunc(state)
	}
	return ""
}

func (m *mockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*Profile, error) {
	if m.exchangeCodeFunc != nil {
		return m.exchangeCodeFunc(ctx, code)
	}
	return nil, errors.New("not implemented")
}

// mockProfileFetcher はProfileFetcherのモック実装
type mockProfileFetcher struct {
	fetchProfileFunc func(ctx context.Context, accessToken string) (*Profile, error)
}

func (m *mockProfileFetcher) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	if m.fetchProfileFunc != nil {
		return m.fetchProfileFunc(ctx, accessToken)
	}
	return nil, errors.New("not implemented")
}

// mockUserDirectory はUserDirectoryのモック実装
type mockUserDirectory struct {
	findOrCreateFunc func(ctx context.Context, profile *Profile) (*model.User, error)
	findByIDFunc     func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockUserDirectory) FindOrCreate(ctx context.Context, profile *Profile) (*model.User, error) {
	if m.findOrCreateFunc != nil {
		return m.findOrCreateFunc(ctx, profile)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserDirectory) FindByID(ctx context.Context, userID string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

// mockTokenIssuer はTokenIssuerのモック実装
type mockTokenIssuer struct {
	issueFunc func(subject string, ttl time.Duration) (string, error)
}

func (m *mockTokenIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	if m.issueFunc != nil {
		return m.issueFunc(subject, ttl)
	}
	return "", errors.New("not implemented")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestService(google OAuthProvider, fetchers map[string]ProfileFetcher, users UserDirectory, tokens TokenIssuer) *Service {
	return NewService(google, fetchers, users, tokens, time.Hour, testLogger())
}

func TestService_LoginWithAccessToken_Success(t *testing.T) {
	testUser := &model.User{ID: "user-1", Email: "test@example.com", Name: "Test", Provider: "google"}

	fetcher := &mockProfileFetcher{
		fetchProfileFunc: func(ctx context.Context, accessToken string) (*Profile, error) {
			if accessToken != "provider-token" {
				t.Errorf("unexpected access token: %s", accessToken)
			}
			return &Profile{Email: "test@example.com", Name: "Test", Provider: "google"}, nil
		},
	}
	users := &mockUserDirectory{
		findOrCreateFunc: func(ctx context.Context, profile *Profile) (*model.User, error) {
			return testUser, nil
		},
	}
	tokens := &mockTokenIssuer{
		issueFunc: func(subject string, ttl time.Duration) (string, error) {
			if subject != "user-1" {
				t.Errorf("expected subject user-1, got %s", subject)
			}
			return "issued-jwt", nil
		},
	}

	service := newTestService(nil, map[string]ProfileFetcher{"google": fetcher}, users, tokens)

	token, user, err := service.LoginWithAccessToken(context.Background(), "google", "provider-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "issued-jwt" {
		t.Errorf("expected token issued-jwt, got %s", token)
	}
	if user.ID != "user-1" {
		t.Errorf("expected user user-1, got %s", user.ID)
	}
}

func TestService_LoginWithAccessToken_UnknownProvider(t *testing.T) {
	service := newTestService(nil, map[string]ProfileFetcher{}, &mockUserDirectory{}, &mockTokenIssuer{})

	_, _, err := service.LoginWithAccessToken(context.Background(), "naver", "token")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeValidation {
		t.Errorf("expected code %s, got %s", model.ErrCodeValidation, apiErr.Code)
	}
}

func TestService_LoginWithAccessToken_EmptyToken(t *testing.T) {
	service := newTestService(nil, map[string]ProfileFetcher{}, &mockUserDirectory{}, &mockTokenIssuer{})

	_, _, err := service.LoginWithAccessToken(context.Background(), "google", "")
	if err == nil {
		t.Fatal("expected error for empty token")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeValidation {
		t.Errorf("expected code %s, got %s", model.ErrCodeValidation, apiErr.Code)
	}
}

func TestService_LoginWithAccessToken_ProviderUnavailable(t *testing.T) {
	fetcher := &mockProfileFetcher{
		fetchProfileFunc: func(ctx context.Context, accessToken string) (*Profile, error) {
			return nil, errors.New("connection refused")
		},
	}

	service := newTestService(nil, map[string]ProfileFetcher{"google": fetcher}, &mockUserDirectory{}, &mockTokenIssuer{})

	_, _, err := service.LoginWithAccessToken(context.Background(), "google", "token")
	if err == nil {
		t.Fatal("expected error when provider is unreachable")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeProviderUnavailable {
		t.Errorf("expected code %s, got %s", model.ErrCodeProviderUnavailable, apiErr.Code)
	}
}

func TestService_LoginWithAccessToken_DirectoryError(t *testing.T) {
	fetcher := &mockProfileFetcher{
		fetchProfileFunc: func(ctx context.Context, accessToken string) (*Profile, error) {
			return &Profile{Email: "test@example.com", Provider: "google"}, nil
		},
	}
	users := &mockUserDirectory{
		findOrCreateFunc: func(ctx context.Context, profile *Profile) (*model.User, error) {
			return nil, model.NewStorageError()
		},
	}

	service := newTestService(nil, map[string]ProfileFetcher{"google": fetcher}, users, &mockTokenIssuer{})

	_, _, err := service.LoginWithAccessToken(context.Background(), "google", "token")
	if err == nil {
		t.Fatal("expected error from user directory")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeStorage {
		t.Errorf("expected code %s, got %s", model.ErrCodeStorage, apiErr.Code)
	}
}

func TestService_HandleCallback_Success(t *testing.T) {
	google := &mockOAuthProvider{
		exchangeCodeFunc: func(ctx context.Context, code string) (*Profile, error) {
			if code != "auth-code" {
				t.Errorf("unexpected code: %s", code)
			}
			return &Profile{Email: "test@example.com", Name: "Test", Provider: "google"}, nil
		},
	}
	users := &mockUserDirectory{
		findOrCreateFunc: func(ctx context.Context, profile *Profile) (*model.User, error) {
			return &model.User{ID: "user-1", Email: profile.Email, Provider: "google"}, nil
		},
	}
	tokens := &mockTokenIssuer{
		issueFunc: func(subject string, ttl time.Duration) (string, error) {
			return "issued-jwt", nil
		},
	}

	service := newTestService(google, nil, users, tokens)

	token, user, err := service.HandleCallback(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "issued-jwt" {
		t.Errorf("expected token issued-jwt, got %s", token)
	}
	if user.Email != "test@example.com" {
		t.Errorf("unexpected user email: %s", user.Email)
	}
}

func TestService_HandleCallback_EmptyCode(t *testing.T) {
	service := newTestService(&mockOAuthProvider{}, nil, &mockUserDirectory{}, &mockTokenIssuer{})

	_, _, err := service.HandleCallback(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty code")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeValidation {
		t.Errorf("expected code %s, got %s", model.ErrCodeValidation, apiErr.Code)
	}
}

func TestService_HandleCallback_ExchangeFailure(t *testing.T) {
	google := &mockOAuthProvider{
		exchangeCodeFunc: func(ctx context.Context, code string) (*Profile, error) {
			return nil, errors.New("token exchange failed with status 400")
		},
	}

	service := newTestService(google, nil, &mockUserDirectory{}, &mockTokenIssuer{})

	_, _, err := service.HandleCallback(context.Background(), "bad-code")
	if err == nil {
		t.Fatal("expected error for failed exchange")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeProviderUnavailable {
		t.Errorf("expected code %s, got %s", model.ErrCodeProviderUnavailable, apiErr.Code)
	}
}

func TestService_GetLoginURL(t *testing.T) {
	google := &mockOAuthProvider{
		getLoginURLFunc: func(state string) string {
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}

	service := newTestService(google, nil, &mockUserDirectory{}, &mockTokenIssuer{})

	url := service.GetLoginURL("abc123")
	if url != "https://accounts.google.com/o/oauth2/auth?state=abc123" {
		t.Errorf("unexpected login URL: %s", url)
	}
}

func TestService_CurrentUser_Success(t *testing.T) {
	users := &mockUserDirectory{
		findByIDFunc: func(ctx context.Context, userID string) (*model.User, error) {
			return &model.User{ID: userID, Email: "test@example.com"}, nil
		},
	}

	service := newTestService(nil, nil, users, &mockTokenIssuer{})

	user, err := service.CurrentUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("expected user-1, got %s", user.ID)
	}
}

func TestService_CurrentUser_NotFound(t *testing.T) {
	users := &mockUserDirectory{
		findByIDFunc: func(ctx context.Context, userID string) (*model.User, error) {
			return nil, nil
		},
	}

	service := newTestService(nil, nil, users, &mockTokenIssuer{})

	_, err := service.CurrentUser(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing user")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("expected code %s, got %s", model.ErrCodeUserNotFound, apiErr.Code)
	}
}
