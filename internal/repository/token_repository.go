package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TokenRepo persists access token bindings (single 'token_hash' column).
// Each row binds one opaque token to one user; the row existing is what
// makes the token valid. All three operations are single statements, so a
// concurrent revoke and validate observe the binding as either fully
// present or fully gone.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts an access token hash row. Multiple live tokens per user
// are allowed, one per session.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO access_tokens (user_id, token_hash) VALUES (?,?)",
		userID, tokenHash)
	return err
}

// Validate returns the bound user id, or ErrTokenNotFound when the hash
// matches no live binding.
func (r *TokenRepo) Validate(ctx context.Context, tokenHash string) (uint64, error) {
	var userID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM access_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// Revoke deletes the binding. Revoking an already revoked token is a no-op,
// not an error.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM access_tokens WHERE token_hash=?", tokenHash)
	return err
}
