package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/one2zero1/janejase-backend/internal/auth"
	"github.com/one2zero1/janejase-backend/internal/model"
	"github.com/one2zero1/janejase-backend/internal/repository"
	"github.com/one2zero1/janejase-backend/internal/security"
)

// Service はユーザーディレクトリ機能を提供する。
// メールアドレスをキーとしてプロバイダーのプロフィールからユーザーを解決する。
type Service struct {
	repo      repository.UserRepository
	sanitizer security.ProfileSanitizerService
	logger    *slog.Logger
}

// NewService はuser.Serviceを生成する。
func NewService(repo repository.UserRepository, sanitizer security.ProfileSanitizerService, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// FindOrCreate はメールアドレスでユーザーを検索し、存在しなければ作成する。
// 既存ユーザーのプロフィール（名前・画像）は更新せずそのまま返す。
// 同一メールアドレスで同時に作成が走った場合、一意制約違反を検知して
// 既存レコードを再取得する。
func (s *Service) FindOrCreate(ctx context.Context, profile *auth.Profile) (*model.User, error) {
	if profile == nil || profile.Email == "" {
		return nil, model.NewValidationError("メールアドレスが取得できませんでした")
	}

	existing, err := s.repo.FindByEmail(ctx, profile.Email)
	if err != nil {
		s.logger.Error("user lookup failed", slog.String("error", err.Error()))
		return nil, model.NewStorageError()
	}
	if existing != nil {
		return existing, nil
	}

	newUser := &model.User{
		ID:        uuid.New().String(),
		Email:     profile.Email,
		Name:      s.sanitizer.Sanitize(profile.Name),
		Picture:   s.sanitizer.Sanitize(profile.Picture),
		Provider:  profile.Provider,
		CreatedAt: time.Now(),
	}

	created, err := s.repo.Create(ctx, newUser)
	if err != nil {
		// 同時作成による一意制約違反。先に作成された方を正とする。
		if repository.IsUniqueViolation(err) {
			winner, findErr := s.repo.FindByEmail(ctx, profile.Email)
			if findErr != nil {
				s.logger.Error("user re-lookup after conflict failed", slog.String("error", findErr.Error()))
				return nil, model.NewStorageError()
			}
			if winner == nil {
				return nil, model.NewStorageError()
			}
			return winner, nil
		}
		s.logger.Error("user creation failed", slog.String("error", err.Error()))
		return nil, model.NewStorageError()
	}

	s.logger.Info("user created",
		slog.String("user_id", created.ID),
		slog.String("provider", created.Provider))

	return created, nil
}

// FindByID はIDでユーザーを取得する。存在しない場合はnilを返す。
func (s *Service) FindByID(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, model.NewValidationError("ユーザーIDが指定されていません")
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Error("user lookup failed", slog.String("error", err.Error()))
		return nil, model.NewStorageError()
	}
	return u, nil
}

var _ auth.UserDirectory = (*Service)(nil)
