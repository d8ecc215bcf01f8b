// Package ledger records the writes a journal run intends to make so that a
// run interrupted part way through persistence can be completed later.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StepKind names one persistence write
type StepKind string

const (
	StepUpsertDaily    StepKind = "upsert_daily"
	StepAppendTasks    StepKind = "append_tasks"
	StepAppendInsights StepKind = "append_insights"
	StepAppendWeekly   StepKind = "append_weekly"
)

// Step is one planned write. Payload holds the JSON-encoded record(s) to write.
type Step struct {
	ID        uuid.UUID       `json:"id"`
	RunID     string          `json:"run_id"`
	Seq       int             `json:"seq"`
	Kind      StepKind        `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	AppliedAt *time.Time      `json:"applied_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Applied reports whether the step has been written
func (s Step) Applied() bool {
	return s.AppliedAt != nil
}

// NewStep builds a step for run with payload encoded as JSON
func NewStep(runID string, seq int, kind StepKind, payload any) (Step, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Step{}, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}
	return Step{
		ID:        uuid.New(),
		RunID:     runID,
		Seq:       seq,
		Kind:      kind,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the step payload into v
func (s Step) Decode(v any) error {
	if err := json.Unmarshal(s.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", s.Kind, err)
	}
	return nil
}

// ErrStepNotFound is returned when marking a step the ledger does not hold
var ErrStepNotFound = errors.New("ledger step not found")

// Ledger stores planned writes and which of them have been applied
type Ledger interface {
	// Plan records steps before any of them is applied
	Plan(ctx context.Context, steps []Step) error
	// MarkApplied records that a step has been written
	MarkApplied(ctx context.Context, id uuid.UUID) error
	// Unapplied returns pending steps ordered by creation then sequence
	Unapplied(ctx context.Context) ([]Step, error)
}

// Nop is a ledger that keeps nothing. Runs using it fail fast with no replay.
type Nop struct{}

func (Nop) Plan(context.Context, []Step) error           { return nil }
func (Nop) MarkApplied(context.Context, uuid.UUID) error { return nil }
func (Nop) Unapplied(context.Context) ([]Step, error)    { return nil, nil }

// Memory is an in-process ledger
type Memory struct {
	mu        sync.Mutex
	steps     []Step
	snapshots map[string]json.RawMessage
	now       func() time.Time
}

// NewMemory creates an empty in-process ledger
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Plan(_ context.Context, steps []Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, steps...)
	return nil
}

func (m *Memory) MarkApplied(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.steps {
		if m.steps[i].ID == id {
			at := m.now().UTC()
			m.steps[i].AppliedAt = &at
			return nil
		}
	}
	return fmt.Errorf("%s: %w", id, ErrStepNotFound)
}

func (m *Memory) Unapplied(_ context.Context) ([]Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Step
	for _, s := range m.steps {
		if !s.Applied() {
			out = append(out, s)
		}
	}
	return out, nil
}

var (
	_ Ledger = Nop{}
	_ Ledger = (*Memory)(nil)
	_ Ledger = (*PostgresLedger)(nil)
)
