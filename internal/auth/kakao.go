package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultKakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"

// KakaoConfig はKakaoプロバイダーの設定。
type KakaoConfig struct {
	// テスト用にオーバーライド可能なURL
	UserInfoURL string

	HTTPClient *http.Client
}

// KakaoProvider はKakaoのアクセストークンによるプロフィール取得を提供する。
// Googleと異なり認可コードフローはクライアント側で完結するため、
// サーバーはアクセストークンの検証とプロフィール取得のみを担う。
type KakaoProvider struct {
	config KakaoConfig
}

// NewKakaoProvider はKakaoProviderを生成する。
func NewKakaoProvider(config KakaoConfig) *KakaoProvider {
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultKakaoUserInfoURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	return &KakaoProvider{config: config}
}

// EndpointURLs はデフォルト適用後のアウトバウンドエンドポイントURLを返す。
// 起動時の事前検証（SSRFガード）に使用する。
func (p *KakaoProvider) EndpointURLs() []string {
	return []string{p.config.UserInfoURL}
}

// kakaoUserInfo はKakaoのユーザー情報エンドポイントのレスポンス。
type kakaoUserInfo struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
}

// FetchProfile はアクセストークンでKakaoのユーザー情報を取得する。
func (p *KakaoProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user info response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo kakaoUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info response: %w", err)
	}

	if userInfo.KakaoAccount.Email == "" {
		return nil, fmt.Errorf("empty email in user info response")
	}

	// kakao_account.profileが優先。旧形式のpropertiesにフォールバックする。
	name := userInfo.KakaoAccount.Profile.Nickname
	if name == "" {
		name = userInfo.Properties.Nickname
	}
	picture := userInfo.KakaoAccount.Profile.ProfileImageURL
	if picture == "" {
		picture = userInfo.Properties.ProfileImage
	}

	return &Profile{
		Email:    userInfo.KakaoAccount.Email,
		Name:     name,
		Picture:  picture,
		Provider: "kakao",
	}, nil
}

var _ ProfileFetcher = (*KakaoProvider)(nil)
