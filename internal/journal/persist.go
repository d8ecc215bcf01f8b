package journal

import (
	"context"
	"fmt"

	"github.com/benvon/daily-journal/internal/collector"
	"github.com/benvon/daily-journal/internal/ledger"
	"github.com/benvon/daily-journal/internal/models"
	"go.uber.org/zap"
)

type insightsPayload struct {
	Date     models.Date     `json:"date"`
	Insights models.Insights `json:"insights"`
}

// weeklyPayload carries the week bounds, which the review omits from its JSON form
type weeklyPayload struct {
	WeekStart models.Date         `json:"week_start"`
	WeekEnd   models.Date         `json:"week_end"`
	Review    models.WeeklyReview `json:"review"`
}

func newWeeklyPayload(r models.WeeklyReview) weeklyPayload {
	return weeklyPayload{WeekStart: r.WeekStart, WeekEnd: r.WeekEnd, Review: r}
}

// planDaily lists a daily run's writes in order: entry, tasks (when any), insights
func planDaily(runID string, entry models.DailyEntry, tasks []models.Task, date models.Date, ins models.Insights) ([]ledger.Step, error) {
	type planned struct {
		kind    ledger.StepKind
		payload any
	}
	plan := []planned{{ledger.StepUpsertDaily, entry}}
	if len(tasks) > 0 {
		plan = append(plan, planned{ledger.StepAppendTasks, tasks})
	}
	plan = append(plan, planned{ledger.StepAppendInsights, insightsPayload{Date: date, Insights: ins}})

	steps := make([]ledger.Step, 0, len(plan))
	for i, p := range plan {
		step, err := ledger.NewStep(runID, i, p.kind, p.payload)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// persist records steps in the ledger, then applies them in order. It stops at
// the first failed write; the remaining steps stay in the ledger for Replay.
// planned, when set, runs once the steps are recorded.
func (j *Journal) persist(ctx context.Context, log *zap.Logger, steps []ledger.Step, planned func()) ([]string, error) {
	ctx, span := j.tracer.Start(ctx, "journal.persist")
	defer span.End()

	if err := collector.Propagate("record write plan", func() error {
		return j.ledger.Plan(ctx, steps)
	}); err != nil {
		return nil, fail(span, err)
	}
	if planned != nil {
		planned()
	}

	var ids []string
	for _, step := range steps {
		var created []string
		err := collector.Propagate(string(step.Kind), func() error {
			var err error
			created, err = j.applyStep(ctx, step)
			return err
		})
		if err != nil {
			return nil, fail(span, err)
		}
		ids = append(ids, created...)
		collector.BestEffort(log, "ledger_mark_applied", func() error {
			return j.ledger.MarkApplied(ctx, step.ID)
		}, zap.String("step", string(step.Kind)), zap.String("step_id", step.ID.String()))
	}
	return ids, nil
}

// applyStep performs one write and returns the ids of any tasks it created
func (j *Journal) applyStep(ctx context.Context, step ledger.Step) ([]string, error) {
	switch step.Kind {
	case ledger.StepUpsertDaily:
		var entry models.DailyEntry
		if err := step.Decode(&entry); err != nil {
			return nil, err
		}
		return nil, j.store.SaveDailyEntry(ctx, entry)
	case ledger.StepAppendTasks:
		var tasks []models.Task
		if err := step.Decode(&tasks); err != nil {
			return nil, err
		}
		return j.store.AddTasksBatch(ctx, tasks)
	case ledger.StepAppendInsights:
		var p insightsPayload
		if err := step.Decode(&p); err != nil {
			return nil, err
		}
		return nil, j.store.SaveInsights(ctx, p.Date, p.Insights)
	case ledger.StepAppendWeekly:
		var p weeklyPayload
		if err := step.Decode(&p); err != nil {
			return nil, err
		}
		p.Review.WeekStart = p.WeekStart
		p.Review.WeekEnd = p.WeekEnd
		return nil, j.store.SaveWeeklyReview(ctx, p.Review)
	default:
		return nil, fmt.Errorf("unknown ledger step kind %q", step.Kind)
	}
}

// Replay applies every write the ledger still holds as unapplied and returns how many it applied
func (j *Journal) Replay(ctx context.Context) (int, error) {
	steps, err := j.ledger.Unapplied(ctx)
	if err != nil {
		return 0, fmt.Errorf("load unapplied writes: %w", err)
	}
	applied := 0
	for _, step := range steps {
		log := j.logger.With(zap.String("run_id", step.RunID), zap.String("step", string(step.Kind)))
		if _, err := j.applyStep(ctx, step); err != nil {
			return applied, fmt.Errorf("replay %s of run %s: %w", step.Kind, step.RunID, err)
		}
		if err := j.ledger.MarkApplied(ctx, step.ID); err != nil {
			return applied, fmt.Errorf("mark %s applied: %w", step.ID, err)
		}
		applied++
		log.Info("ledger_step_replayed")
	}
	return applied, nil
}
