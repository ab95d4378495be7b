package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/one2zero1/janejase-backend/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, picture, provider, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Picture, &user.Provider, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByEmail はemailでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, picture, provider, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Picture, &user.Provider, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// Create はユーザーを作成し、挿入された行を返す。
// emailのUNIQUE制約違反はそのまま返す（呼び出し側がIsUniqueViolationで判別する）。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	created := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, name, picture, provider, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, email, name, picture, provider, created_at`,
		user.ID, user.Email, user.Name, user.Picture, user.Provider, user.CreatedAt,
	).Scan(&created.ID, &created.Email, &created.Name, &created.Picture, &created.Provider, &created.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return created, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
