// Package pose は姿勢セッションと警告イベントの記録を提供する。
package pose

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/one2zero1/janejase-backend/internal/metrics"
	"github.com/one2zero1/janejase-backend/internal/model"
	"github.com/one2zero1/janejase-backend/internal/repository"
)

// 警告イベントの平均偏差キー。クライアントが送信するaverages内のキー名。
const (
	avgKeyNTSD = "FNTSD"
	avgKeyETSD = "FETSD"
	avgKeySLD  = "FSLD"
)

// Service は姿勢セッションのライフサイクルと警告イベントの集計を提供する。
type Service struct {
	repo      repository.PoseRepository
	collector metrics.MetricsCollector
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はpose.Serviceを生成する。collectorはnil可。
func NewService(repo repository.PoseRepository, collector metrics.MetricsCollector, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		collector: collector,
		logger:    logger,
		now:       time.Now,
	}
}

// Create は新しい姿勢セッションを作成し、セッションIDを返す。
// measurementはキャリブレーション計測値のJSONドキュメント。
// endedAtを指定すると終了済みセッションとして記録する（過去データの取り込み用）。
func (s *Service) Create(ctx context.Context, userID string, measurement model.Document, endedAt *time.Time) (string, error) {
	if userID == "" {
		return "", model.NewValidationError("ユーザーIDが指定されていません")
	}
	if len(measurement) == 0 {
		return "", model.NewValidationError("計測データが指定されていません")
	}

	p := &model.Pose{
		ID:          uuid.New().String(),
		UserID:      userID,
		CreatedAt:   s.now(),
		EndedAt:     endedAt,
		Measurement: measurement,
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return "", model.NewValidationError("指定されたユーザーが存在しません")
		}
		s.logger.Error("pose creation failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return "", model.NewStorageError()
	}

	if s.collector != nil {
		s.collector.RecordPoseCreated()
	}
	s.logger.Info("pose created",
		slog.String("pose_id", created.ID),
		slog.String("user_id", userID))

	return created.ID, nil
}

// End はセッションの終了時刻を記録する。
// すでに終了済みのセッションに対しては終了時刻を上書きする。
func (s *Service) End(ctx context.Context, poseID string, endedAt time.Time) error {
	if poseID == "" {
		return model.NewValidationError("セッションIDが指定されていません")
	}
	if endedAt.IsZero() {
		endedAt = s.now()
	}

	found, err := s.repo.End(ctx, poseID, endedAt)
	if err != nil {
		s.logger.Error("pose end failed",
			slog.String("pose_id", poseID),
			slog.String("error", err.Error()))
		return model.NewStorageError()
	}
	if !found {
		return model.NewPoseNotFoundError(poseID)
	}

	if s.collector != nil {
		s.collector.RecordPoseEnded()
	}
	s.logger.Info("pose ended", slog.String("pose_id", poseID))

	return nil
}

// RecordWarning は警告イベントを記録し、セッションの累積統計を返す。
// averagesのキーはFNTSD/FETSD/FSLD。欠けているキーは0.0として扱う。
// イベントの挿入と統計の再集計は単一トランザクションで行われるため、
// 返される統計には必ず今回のイベントが含まれる。
func (s *Service) RecordWarning(ctx context.Context, poseID string, occurredAt time.Time, durationSec float64, averages map[string]float64, status model.Document) (*model.WarningStats, error) {
	if poseID == "" {
		return nil, model.NewValidationError("セッションIDが指定されていません")
	}
	if durationSec < 0 {
		return nil, model.NewValidationError("継続時間は0以上である必要があります")
	}
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	w := &model.Warning{
		ID:           uuid.New().String(),
		PoseID:       poseID,
		OccurredAt:   occurredAt,
		DurationSec:  durationSec,
		AvgDeltaNTSD: averages[avgKeyNTSD],
		AvgDeltaETSD: averages[avgKeyETSD],
		AvgDeltaSLD:  averages[avgKeySLD],
		Status:       status,
		CreatedAt:    s.now(),
	}

	stats, err := s.repo.CreateWarning(ctx, w)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, model.NewPoseNotFoundError(poseID)
		}
		s.logger.Error("warning recording failed",
			slog.String("pose_id", poseID),
			slog.String("error", err.Error()))
		return nil, model.NewStorageError()
	}

	if s.collector != nil {
		s.collector.RecordWarning(durationSec)
	}
	s.logger.Info("warning recorded",
		slog.String("pose_id", poseID),
		slog.Float64("duration_sec", durationSec),
		slog.Int("warning_count", stats.Count))

	return stats, nil
}
