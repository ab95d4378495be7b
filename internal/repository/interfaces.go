// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/one2zero1/janejase-backend/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はemailでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、挿入された行を返す。
	// 同一emailの行が既に存在する場合はUNIQUE制約違反のエラーを返す
	// （IsUniqueViolationで判別できる）。
	Create(ctx context.Context, user *model.User) (*model.User, error)
}

// PoseRepository はセッション（pose）と警告イベントの永続化インターフェース。
type PoseRepository interface {
	// Create はセッションを作成し、挿入された行を返す。
	// user_idが存在しない場合は外部キー制約違反のエラーを返す
	// （IsForeignKeyViolationで判別できる）。
	Create(ctx context.Context, pose *model.Pose) (*model.Pose, error)

	// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Pose, error)

	// End はセッションの終了時刻を設定する。
	// 同一セッションへの再実行は後勝ちで上書きする。
	// 対象行が存在しない場合はfalseを返す（エラーにはしない）。
	End(ctx context.Context, poseID string, endedAt time.Time) (bool, error)

	// Delete はセッションと所属する全警告イベントを同一トランザクションで削除する。
	// セッションが存在しない場合はfalseを返す。
	Delete(ctx context.Context, poseID string) (bool, error)

	// CreateWarning は警告イベントを1件挿入し、同一トランザクション内で
	// そのセッションの累積統計（件数・合計時間）を再集計して返す。
	// 返される統計は挿入後の状態を反映する。
	// pose_idが存在しない場合は外部キー制約違反のエラーを返す。
	CreateWarning(ctx context.Context, warning *model.Warning) (*model.WarningStats, error)

	// ListHistoryByUserID はユーザーの全セッションのサマリーを
	// created_at降順で返す。警告ゼロのセッションも件数0・合計0で含まれる。
	ListHistoryByUserID(ctx context.Context, userID string) ([]model.PoseSummary, error)
}
