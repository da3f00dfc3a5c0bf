package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Abdullah34123513/english-sub002/internal/model"
)

// PostgresVerificationTokenRepo はPostgreSQLを使用したメール確認トークンリポジトリ。
type PostgresVerificationTokenRepo struct {
	db *sql.DB
}

// NewPostgresVerificationTokenRepo はPostgresVerificationTokenRepoを生成する。
func NewPostgresVerificationTokenRepo(db *sql.DB) *PostgresVerificationTokenRepo {
	return &PostgresVerificationTokenRepo{db: db}
}

// Create はトークンを作成する。
func (r *PostgresVerificationTokenRepo) Create(ctx context.Context, token *model.VerificationToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_tokens (id, user_id, token_hash, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert verification token: %w", err)
	}
	return nil
}

// FindLatestByUserID はユーザーの最新の未消費トークンを取得する。
// 見つからない場合はnilを返す。
func (r *PostgresVerificationTokenRepo) FindLatestByUserID(ctx context.Context, userID string) (*model.VerificationToken, error) {
	token := &model.VerificationToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, consumed_at, created_at
		 FROM verification_tokens
		 WHERE user_id = $1 AND consumed_at IS NULL
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.ConsumedAt, &token.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find verification token by user ID: %w", err)
	}

	return token, nil
}

// FindByTokenHash はトークンハッシュでトークンを検索する。見つからない場合はnilを返す。
func (r *PostgresVerificationTokenRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.VerificationToken, error) {
	token := &model.VerificationToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, consumed_at, created_at
		 FROM verification_tokens WHERE token_hash = $1`,
		tokenHash,
	).Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.ConsumedAt, &token.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find verification token by hash: %w", err)
	}

	return token, nil
}

// MarkConsumed はトークンを消費済みにする。
func (r *PostgresVerificationTokenRepo) MarkConsumed(ctx context.Context, id string, consumedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE verification_tokens SET consumed_at = $2 WHERE id = $1 AND consumed_at IS NULL`,
		id, consumedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to mark verification token consumed: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("verification token not found or already consumed: %s", id)
	}
	return nil
}

// DeleteExpired は期限切れかつ未消費のトークンを削除し、削除件数を返す。
func (r *PostgresVerificationTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE consumed_at IS NULL AND expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired verification tokens: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// compile-time interface check
var _ VerificationTokenRepository = (*PostgresVerificationTokenRepo)(nil)
