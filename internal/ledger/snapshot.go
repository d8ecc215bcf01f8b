package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Snapshots hold the content a run collected until its writes are planned.
// Collection archives source files, so a run that fails after collecting can
// only be retried from its snapshot.
type Snapshots interface {
	// SaveSnapshot stores data under key, replacing any earlier value
	SaveSnapshot(ctx context.Context, key string, data json.RawMessage) error
	// LoadSnapshot returns the data stored under key and whether it exists
	LoadSnapshot(ctx context.Context, key string) (json.RawMessage, bool, error)
	// DeleteSnapshot removes key. Deleting a missing key is not an error.
	DeleteSnapshot(ctx context.Context, key string) error
}

// SnapshotKey names the snapshot of one run kind and period
func SnapshotKey(kind, period string) string {
	return kind + ":" + period
}

func (m *Memory) SaveSnapshot(_ context.Context, key string, data json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshots == nil {
		m.snapshots = make(map[string]json.RawMessage)
	}
	m.snapshots[key] = append(json.RawMessage(nil), data...)
	return nil
}

func (m *Memory) LoadSnapshot(_ context.Context, key string) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.snapshots[key]
	if !ok {
		return nil, false, nil
	}
	return append(json.RawMessage(nil), data...), true, nil
}

func (m *Memory) DeleteSnapshot(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, key)
	return nil
}

// SaveSnapshot upserts the snapshot row for key
func (l *PostgresLedger) SaveSnapshot(ctx context.Context, key string, data json.RawMessage) error {
	query := `
		INSERT INTO journal_snapshots (key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`
	if _, err := l.db.ExecContext(ctx, query, key, []byte(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}
	return nil
}

// LoadSnapshot reads the snapshot row for key
func (l *PostgresLedger) LoadSnapshot(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var payload []byte
	err := l.db.QueryRowContext(ctx, `SELECT payload FROM journal_snapshots WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}
	return payload, true, nil
}

// DeleteSnapshot removes the snapshot row for key
func (l *PostgresLedger) DeleteSnapshot(ctx context.Context, key string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM journal_snapshots WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
	}
	return nil
}

var (
	_ Snapshots = (*Memory)(nil)
	_ Snapshots = (*PostgresLedger)(nil)
)
