// Package mypage はユーザーのセッション履歴の閲覧と削除を提供する。
package mypage

import (
	"context"
	"log/slog"

	"github.com/one2zero1/janejase-backend/internal/metrics"
	"github.com/one2zero1/janejase-backend/internal/model"
	"github.com/one2zero1/janejase-backend/internal/repository"
)

// Service はマイページ機能を提供する。
type Service struct {
	repo      repository.PoseRepository
	collector metrics.MetricsCollector
	logger    *slog.Logger
}

// NewService はmypage.Serviceを生成する。collectorはnil可。
func NewService(repo repository.PoseRepository, collector metrics.MetricsCollector, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		collector: collector,
		logger:    logger,
	}
}

// ListHistory はユーザーのセッション履歴を新しい順に返す。
// 警告のないセッションはカウント0・合計時間0で含まれる。
// 履歴が存在しない場合は空のスライスを返す。
func (s *Service) ListHistory(ctx context.Context, userID string) ([]model.PoseSummary, error) {
	if userID == "" {
		return nil, model.NewValidationError("ユーザーIDが指定されていません")
	}

	summaries, err := s.repo.ListHistoryByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("history listing failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, model.NewStorageError()
	}
	return summaries, nil
}

// DeleteHistory はセッションとその警告イベントを削除する。
// requesterIDがセッションの所有者と一致しない場合は所有者情報を
// 漏らさないためPOSE_NOT_FOUNDを返す。
func (s *Service) DeleteHistory(ctx context.Context, poseID, requesterID string) error {
	if poseID == "" {
		return model.NewValidationError("セッションIDが指定されていません")
	}

	p, err := s.repo.FindByID(ctx, poseID)
	if err != nil {
		s.logger.Error("pose lookup failed",
			slog.String("pose_id", poseID),
			slog.String("error", err.Error()))
		return model.NewStorageError()
	}
	if p == nil || p.UserID != requesterID {
		return model.NewPoseNotFoundError(poseID)
	}

	found, err := s.repo.Delete(ctx, poseID)
	if err != nil {
		s.logger.Error("pose deletion failed",
			slog.String("pose_id", poseID),
			slog.String("error", err.Error()))
		return model.NewStorageError()
	}
	if !found {
		return model.NewPoseNotFoundError(poseID)
	}

	if s.collector != nil {
		s.collector.RecordPoseDeleted()
	}
	s.logger.Info("pose deleted",
		slog.String("pose_id", poseID),
		slog.String("user_id", requesterID))

	return nil
}
