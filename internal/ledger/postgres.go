package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS journal_write_steps (
	id UUID PRIMARY KEY,
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	kind TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	applied_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS journal_write_steps_pending
	ON journal_write_steps (created_at, seq) WHERE applied_at IS NULL;
CREATE TABLE IF NOT EXISTS journal_snapshots (
	key TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// PostgresLedger stores planned writes in PostgreSQL
type PostgresLedger struct {
	db *sql.DB
}

// OpenPostgres connects to databaseURL and creates the ledger table if needed
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresLedger, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	l := NewPostgres(db)
	if err := l.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// NewPostgres wraps an open database handle
func NewPostgres(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Migrate creates the ledger and snapshot tables
func (l *PostgresLedger) Migrate(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create ledger tables: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (l *PostgresLedger) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Close closes the database handle
func (l *PostgresLedger) Close() error {
	return l.db.Close()
}

// Plan inserts all steps in one transaction
func (l *PostgresLedger) Plan(ctx context.Context, steps []Step) error {
	if len(steps) == 0 {
		return nil
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO journal_write_steps (id, run_id, seq, kind, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, s := range steps {
		if _, err := tx.ExecContext(ctx, query, s.ID, s.RunID, s.Seq, string(s.Kind), []byte(s.Payload), s.CreatedAt); err != nil {
			return fmt.Errorf("failed to record %s step: %w", s.Kind, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plan: %w", err)
	}
	return nil
}

// MarkApplied sets applied_at on a step
func (l *PostgresLedger) MarkApplied(ctx context.Context, id uuid.UUID) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE journal_write_steps SET applied_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark step applied: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark step applied: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrStepNotFound)
	}
	return nil
}

// Unapplied returns steps that have not been written, oldest first
func (l *PostgresLedger) Unapplied(ctx context.Context) ([]Step, error) {
	query := `
		SELECT id, run_id, seq, kind, payload, created_at
		FROM journal_write_steps
		WHERE applied_at IS NULL
		ORDER BY created_at, run_id, seq
	`
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var s Step
		var kind string
		var payload []byte
		if err := rows.Scan(&s.ID, &s.RunID, &s.Seq, &kind, &payload, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger step: %w", err)
		}
		s.Kind = StepKind(kind)
		s.Payload = payload
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger steps: %w", err)
	}
	return steps, nil
}
