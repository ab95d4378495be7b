package repository

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQLのSQLSTATEコード
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation はUNIQUE制約違反のエラーかを判定する。
// FindOrCreateの同時登録レースの検出に使用する。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return false
}

// IsForeignKeyViolation は外部キー制約違反のエラーかを判定する。
// 存在しないuser_id/pose_idへの参照をバリデーションエラーとして扱うために使用する。
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgForeignKeyViolation
	}
	return false
}
