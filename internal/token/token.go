// Package token は署名付きアクセストークンの発行と検証を提供する。
// トークンは自己完結型（HS256 JWT）で、サーバー側にセッション状態を持たない。
// 即時失効の仕組みは持たないため、有効期間はTTLのみで制御する。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/one2zero1/janejase-backend/internal/model"
)

// Service はJWTアクセストークンの発行・検証を行う。
type Service struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time // テスト用に差し替え可能
}

// NewService はServiceを生成する。
// defaultTTLはIssueでTTL未指定（0）の場合に使用する。
func NewService(secret string, defaultTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Issue はsubject（ユーザーID）を埋め込んだ署名付きトークンを発行する。
// ttlが0の場合はデフォルトTTLを使用する。
func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、subjectを返す。
// 期限切れはTOKEN_EXPIRED、署名不一致はINVALID_SIGNATUREとして区別する。
// subject以外のクレームは信頼しない。
func (s *Service) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", model.NewTokenExpiredError()
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", model.NewInvalidSignatureError()
		default:
			return "", model.NewUnauthorizedError()
		}
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", model.NewUnauthorizedError()
	}

	return claims.Subject, nil
}
