package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/j-veylop/agentlens-tui/internal/models"
)

// ScopeKey builds the cache key segment for a scope.
func ScopeKey(scope models.Scope) string {
	key := strconv.Itoa(scope.Window.Days()) + "d"
	if scope.Project != "" {
		key += "/" + scope.Project
	}
	return key
}

// GetSnapshot returns a cached payload for (scope, resource), with ok=false
// on a miss.
func (db *DB) GetSnapshot(scope models.Scope, resource string) ([]byte, bool, error) {
	query := `SELECT payload FROM snapshots WHERE scope_key = ? AND resource = ?`

	var payload []byte
	err := db.QueryRowContext(context.Background(), query, ScopeKey(scope), resource).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return payload, true, nil
}

// PutSnapshot stores a payload for (scope, resource), replacing any earlier
// snapshot for the same key.
func (db *DB) PutSnapshot(scope models.Scope, resource string, payload []byte) error {
	query := `
		INSERT INTO snapshots (scope_key, resource, payload, fetched_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(scope_key, resource) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`
	if _, err := db.ExecContext(context.Background(), query, ScopeKey(scope), resource, payload); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// InvalidateScope drops every snapshot for one scope.
func (db *DB) InvalidateScope(scope models.Scope) error {
	query := `DELETE FROM snapshots WHERE scope_key = ?`
	if _, err := db.ExecContext(context.Background(), query, ScopeKey(scope)); err != nil {
		return fmt.Errorf("failed to invalidate scope: %w", err)
	}
	return nil
}

// InvalidateAll drops every snapshot. Used when thresholds reload or the
// project filter changes.
func (db *DB) InvalidateAll() error {
	if _, err := db.ExecContext(context.Background(), `DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// SnapshotCount returns the number of cached snapshots.
func (db *DB) SnapshotCount() (int, error) {
	var n int
	err := db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM snapshots`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}
