package repository

import (
	"context"
	"database/sql"
	"time"
)

// SessionTokenRepo persists issued session tokens so logout can invalidate
// them server-side. Only the SHA-256 hash of the token's jti is stored.
type SessionTokenRepo struct{ DB *sql.DB }

func NewSessionTokenRepo(db *sql.DB) *SessionTokenRepo { return &SessionTokenRepo{DB: db} }

// Store inserts a session token hash row.
func (r *SessionTokenRepo) Store(ctx context.Context, userID uint64, jtiHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO session_tokens (user_id, jti_hash, expires_at) VALUES (?,?,?)",
		userID, jtiHash, exp)
	return err
}

// Validate returns the owning userID if a non-revoked, non-expired token
// with the given jti hash exists; otherwise sql.ErrNoRows.
func (r *SessionTokenRepo) Validate(ctx context.Context, jtiHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM session_tokens WHERE jti_hash=? LIMIT 1",
		jtiHash).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		return 0, err
	}
	if revokedAt.Valid {
		return 0, sql.ErrNoRows
	}
	if time.Now().UTC().After(expiresAt) {
		return 0, sql.ErrNoRows
	}
	return userID, nil
}

// Revoke marks a token as revoked.
func (r *SessionTokenRepo) Revoke(ctx context.Context, jtiHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE session_tokens SET revoked_at=NOW() WHERE jti_hash=? AND revoked_at IS NULL",
		jtiHash)
	return err
}
