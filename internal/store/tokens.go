package store

import (
	"context"
	"fmt"
	"time"

	"github.com/nitpy-cse/assetreg/internal/db"
)

// Revocation statements. Both dialects accept ON CONFLICT once '?' is rebound.
const (
	revokeTokenSQL = `INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?) ON CONFLICT (jti) DO NOTHING`
	pruneTokensSQL = `DELETE FROM revoked_tokens WHERE expires_at < ?`
)

// RevokeToken records a logged-out session's JTI until the token would have
// expired anyway. Revoking the same JTI twice is not an error. Entries past
// their expiry are pruned on the way.
func RevokeToken(ctx context.Context, db *db.DB, jti string, expiresAt time.Time) error {
	if _, err := db.ExecContext(ctx, revokeTokenSQL, jti, expiresAt.UTC()); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	if _, err := PruneRevokedTokens(ctx, db, time.Now()); err != nil {
		return err
	}
	return nil
}

// PruneRevokedTokens drops revocations whose tokens expired before now and
// returns how many were removed.
func PruneRevokedTokens(ctx context.Context, db *db.DB, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, pruneTokensSQL, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning revoked tokens: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned tokens: %w", err)
	}
	return n, nil
}

// IsTokenRevoked reports whether the session carrying jti has logged out.
func IsTokenRevoked(ctx context.Context, db *db.DB, jti string) (bool, error) {
	var revoked bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = ?)`, jti,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return revoked, nil
}
