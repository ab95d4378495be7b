// Package cleanup は姿勢セッションデータの自動削除ジョブを提供する。
// 保持期間（デフォルト365日）を超過した終了済みセッションと関連する
// pose_detectedを日次バッチで削除する。pose_detectedはCASCADE削除で
// 自動的に処理される。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/one2zero1/janejase-backend/internal/metrics"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CleanupJob は保持期間を超過した終了済みセッションの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
// 進行中（ended_atがNULL）のセッションは削除対象にならない。
type CleanupJob struct {
	db            Executor
	collector     metrics.MetricsCollector
	logger        *slog.Logger
	RetentionDays int // セッションの保持日数（デフォルト: 365）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は365日。collectorはnilでもよい。
func NewCleanupJob(db Executor, collector metrics.MetricsCollector, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:            db,
		collector:     collector,
		logger:        logger,
		RetentionDays: 365,
	}
}

// Run は保持期間を超過した終了済みセッションを削除する。
// ended_atがRetentionDays日前より古いセッションをDELETEする。
// pose_detectedはCASCADE削除により自動的に削除される。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	interval := fmt.Sprintf("%d days", j.RetentionDays)

	query := `DELETE FROM pose WHERE ended_at IS NOT NULL AND ended_at < now() - $1::interval`
	result, err := j.db.ExecContext(ctx, query, interval)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("削除件数の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	if j.collector != nil && deletedCount > 0 {
		j.collector.RecordPosesCleaned(int(deletedCount))
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
