package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/one2zero1/janejase-backend/internal/model"
)

// PostgresPoseRepo はPostgreSQLを使用したセッション・警告リポジトリ。
type PostgresPoseRepo struct {
	db *sql.DB
}

// NewPostgresPoseRepo はPostgresPoseRepoを生成する。
func NewPostgresPoseRepo(db *sql.DB) *PostgresPoseRepo {
	return &PostgresPoseRepo{db: db}
}

// Create はセッションを作成し、挿入された行を返す。
// 外部キー制約違反（存在しないuser_id）はそのまま返す。
func (r *PostgresPoseRepo) Create(ctx context.Context, pose *model.Pose) (*model.Pose, error) {
	created := &model.Pose{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO pose (id, user_id, created_at, ended_at, measurement)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, created_at, ended_at, measurement`,
		pose.ID, pose.UserID, pose.CreatedAt, pose.EndedAt, pose.Measurement,
	).Scan(&created.ID, &created.UserID, &created.CreatedAt, &created.EndedAt, &created.Measurement)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to insert pose: %w", err)
	}
	return created, nil
}

// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
func (r *PostgresPoseRepo) FindByID(ctx context.Context, id string) (*model.Pose, error) {
	pose := &model.Pose{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, ended_at, measurement FROM pose WHERE id = $1`,
		id,
	).Scan(&pose.ID, &pose.UserID, &pose.CreatedAt, &pose.EndedAt, &pose.Measurement)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pose: %w", err)
	}

	return pose, nil
}

// End はセッションの終了時刻を設定する。
// 対象行が存在しない場合はfalseを返す。再実行は後勝ちで上書きされる。
func (r *PostgresPoseRepo) End(ctx context.Context, poseID string, endedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE pose SET ended_at = $2 WHERE id = $1`,
		poseID, endedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update pose ended_at: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// Delete はセッションと所属警告イベントを同一トランザクションで削除する。
// 並行する読み手が「警告だけ残ったセッション」や「セッションだけ残った警告」を
// 観測しないよう、両方のDELETEをひとつのトランザクションに収める。
func (r *PostgresPoseRepo) Delete(ctx context.Context, poseID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM pose_detected WHERE pose_id = $1`, poseID,
	); err != nil {
		return false, fmt.Errorf("failed to delete pose warnings: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM pose WHERE id = $1`, poseID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete pose: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		// 存在しないセッション。ロールバックして未検出を報告する。
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// CreateWarning は警告イベントを挿入し、同一トランザクション内で
// セッションの累積統計を再集計して返す。
// インクリメンタルなカウンタ維持ではなく毎回の再集計を選んでいるため、
// 並行挿入があっても返却値は少なくとも自分自身の挿入を含む正確な値になる。
func (r *PostgresPoseRepo) CreateWarning(ctx context.Context, warning *model.Warning) (*model.WarningStats, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pose_detected (id, pose_id, occurred_at, duration_sec, avg_delta_ntsd, avg_delta_etsd, avg_delta_sld, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		warning.ID, warning.PoseID, warning.OccurredAt, warning.DurationSec,
		warning.AvgDeltaNTSD, warning.AvgDeltaETSD, warning.AvgDeltaSLD,
		warning.Status, warning.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to insert warning: %w", err)
	}

	stats := &model.WarningStats{}
	err = tx.QueryRowContext(ctx,
		`SELECT count(*), COALESCE(sum(duration_sec), 0)
		 FROM pose_detected
		 WHERE pose_id = $1`,
		warning.PoseID,
	).Scan(&stats.Count, &stats.TotalTime)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate warning stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stats, nil
}

// ListHistoryByUserID はユーザーの全セッションのサマリーをcreated_at降順で返す。
// LEFT JOINにより警告ゼロのセッションも件数0・合計0として含まれる。
func (r *PostgresPoseRepo) ListHistoryByUserID(ctx context.Context, userID string) ([]model.PoseSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT
		     p.id AS pose_id,
		     p.created_at,
		     COUNT(pd.id) AS warning_count,
		     COALESCE(SUM(pd.duration_sec), 0) AS total_unfocus_time
		 FROM pose p
		 LEFT JOIN pose_detected pd ON p.id = pd.pose_id
		 WHERE p.user_id = $1
		 GROUP BY p.id, p.created_at
		 ORDER BY p.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pose history: %w", err)
	}
	defer rows.Close()

	summaries := []model.PoseSummary{}
	for rows.Next() {
		var s model.PoseSummary
		if err := rows.Scan(&s.PoseID, &s.CreatedAt, &s.WarningCount, &s.TotalUnfocusTime); err != nil {
			return nil, fmt.Errorf("failed to scan pose summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pose history: %w", err)
	}

	return summaries, nil
}

// compile-time interface check
var _ PoseRepository = (*PostgresPoseRepo)(nil)
