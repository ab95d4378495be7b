package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/one2zero1/janejase-backend/internal/middleware"
	"github.com/one2zero1/janejase-backend/internal/model"
)

// mockAuthService はAuthServiceInterfaceのモック実装
type mockAuthService struct {
	getLoginURLFunc          func(state string) string
	handleCallbackFunc       func(ctx context.Context, code string) (string, *model.User, error)
	loginWithAccessTokenFunc func(ctx context.Context, provider, accessToken string) (string, *model.User, error)
	currentUserFunc          func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFunc != nil {
		return m.getLoginURLFunc(state)
	}
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (string, *model.User, error) {
	if m.handleCallbackFunc != nil {
		return m.handleCallbackFunc(ctx, code)
	}
	return "", nil, errors.New("not implemented")
}

func (m *mockAuthService) LoginWithAccessToken(ctx context.Context, provider, accessToken string) (string, *model.User, error) {
	if m.loginWithAccessTokenFunc != nil {
		return m.loginWithAccessTokenFunc(ctx, provider, accessToken)
	}
	return "", nil, errors.New("not implemented")
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if m.currentUserFunc != nil {
		return m.currentUserFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func TestAuthHandler_Login_RedirectsWithStateCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{FrontendURL: "http://localhost:7010"})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	location := resp.Header.Get("Location")
	if !strings.Contains(location, "state=") {
		t.Errorf("redirect URL should contain state parameter: %s", location)
	}

	var stateCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == oauthStateCookie {
			stateCookie = c
		}
	}
	if stateCookie == nil {
		t.Fatal("expected oauth_state cookie to be set")
	}
	if !stateCookie.HttpOnly {
		t.Error("state cookie should be HttpOnly")
	}
	if !strings.Contains(location, "state="+stateCookie.Value) {
		t.Error("state in redirect URL should match state cookie")
	}
}

func TestAuthHandler_Callback_RedirectsToFrontendWithToken(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFunc: func(ctx context.Context, code string) (string, *model.User, error) {
			if code != "auth-code" {
				t.Errorf("unexpected code: %s", code)
			}
			return "issued-jwt", &model.User{ID: "user-1"}, nil
		},
	}

	h := NewAuthHandler(service, AuthHandlerConfig{FrontendURL: "http://localhost:7010"})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=state123", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "state123"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	location := resp.Header.Get("Location")
	if location != "http://localhost:7010?token=issued-jwt" {
		t.Errorf("unexpected redirect location: %s", location)
	}
}

func TestAuthHandler_Callback_StateMismatch_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=evil", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "state123"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Callback_MissingCode_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=state123", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "state123"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_LoginWithToken_Success(t *testing.T) {
	service := &mockAuthService{
		loginWithAccessTokenFunc: func(ctx context.Context, provider, accessToken string) (string, *model.User, error) {
			if provider != "kakao" {
				t.Errorf("unexpected provider: %s", provider)
			}
			if accessToken != "provider-token" {
				t.Errorf("unexpected access token: %s", accessToken)
			}
			return "issued-jwt", &model.User{
				ID:       "user-1",
				Email:    "test@example.com",
				Provider: "kakao",
			}, nil
		},
	}

	h := NewAuthHandler(service, AuthHandlerConfig{})

	body := `{"provider": "kakao", "access_token": "provider-token"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.LoginWithToken(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.AccessToken != "issued-jwt" {
		t.Errorf("access_token = %q, want issued-jwt", got.AccessToken)
	}
	if got.TokenType != "bearer" {
		t.Errorf("token_type = %q, want bearer", got.TokenType)
	}
	if got.User.Email != "test@example.com" {
		t.Errorf("user email = %q, want test@example.com", got.User.Email)
	}
}

func TestAuthHandler_LoginWithToken_ProviderUnavailable_Returns502(t *testing.T) {
	service := &mockAuthService{
		loginWithAccessTokenFunc: func(ctx context.Context, provider, accessToken string) (string, *model.User, error) {
			return "", nil, model.NewProviderUnavailableError(provider)
		},
	}

	h := NewAuthHandler(service, AuthHandlerConfig{})

	body := `{"provider": "google", "access_token": "token"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.LoginWithToken(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadGateway)
	}

	var errBody apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errBody.Code != model.ErrCodeProviderUnavailable {
		t.Errorf("code = %s, want %s", errBody.Code, model.ErrCodeProviderUnavailable)
	}
}

func TestAuthHandler_LoginWithToken_InvalidBody_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{broken`))
	w := httptest.NewRecorder()

	h.LoginWithToken(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Me_Success(t *testing.T) {
	service := &mockAuthService{
		currentUserFunc: func(ctx context.Context, userID string) (*model.User, error) {
			return &model.User{ID: userID, Email: "test@example.com", Name: "Test"}, nil
		},
	}

	h := NewAuthHandler(service, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got userResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("id = %q, want user-1", got.ID)
	}
}

func TestAuthHandler_Me_UserNotFound_Returns404(t *testing.T) {
	service := &mockAuthService{
		currentUserFunc: func(ctx context.Context, userID string) (*model.User, error) {
			return nil, model.NewUserNotFoundError()
		},
	}

	h := NewAuthHandler(service, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "ghost"))
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}
