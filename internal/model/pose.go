// Package model はドメインモデルを定義する。
package model

import "time"

// Pose は1回の姿勢トラッキングセッションを表す。
// EndedAtがnilの間は「進行中」のセッション。
type Pose struct {
	ID          string
	UserID      string
	CreatedAt   time.Time
	EndedAt     *time.Time
	Measurement Document
}

// Warning はセッション中に検出された姿勢崩れ1件を表す。
// 作成後は更新されず、所属Poseの削除時にのみカスケード削除される。
type Warning struct {
	ID           string
	PoseID       string
	OccurredAt   time.Time // クライアント側の検出時刻
	DurationSec  float64
	AvgDeltaNTSD float64
	AvgDeltaETSD float64
	AvgDeltaSLD  float64
	Status       Document
	CreatedAt    time.Time
}

// WarningStats はあるPoseの累積警告統計を表す。
// CreateWarning実行直後の再集計結果として返される。
type WarningStats struct {
	Count     int     `json:"count"`
	TotalTime float64 `json:"total_time"`
}

// PoseSummary はマイページ履歴1行分のセッションサマリー。
// 警告ゼロのセッションではWarningCount=0、TotalUnfocusTime=0となる（nullにはしない）。
type PoseSummary struct {
	PoseID           string    `json:"pose_id"`
	CreatedAt        time.Time `json:"created_at"`
	WarningCount     int       `json:"warning_count"`
	TotalUnfocusTime float64   `json:"total_unfocus_time"`
}
