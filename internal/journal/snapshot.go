package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benvon/daily-journal/internal/collector"
	"github.com/benvon/daily-journal/internal/ledger"
	"github.com/benvon/daily-journal/internal/models"
	"go.uber.org/zap"
)

func collectionKey(date models.Date) string {
	return ledger.SnapshotKey("daily", date.String())
}

// loadCollection returns the content saved by an earlier failed run of date,
// or nil. Files collected by that run have already been archived, so its
// content is only available from the snapshot.
func (j *Journal) loadCollection(ctx context.Context, log *zap.Logger, date models.Date) (models.Collection, error) {
	data, ok, err := j.snapshots.LoadSnapshot(ctx, collectionKey(date))
	if err != nil {
		return nil, fmt.Errorf("load collected content: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var saved models.Collection
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("decode collected content: %w", err)
	}
	log.Info("collection_restored", zap.Int("sources", len(saved)))
	return saved, nil
}

// saveCollection keeps c until the run's writes are planned
func (j *Journal) saveCollection(ctx context.Context, log *zap.Logger, date models.Date, c models.Collection) {
	collector.BestEffort(log, "collection_snapshot", func() error {
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		return j.snapshots.SaveSnapshot(ctx, collectionKey(date), data)
	})
}

func (j *Journal) dropCollection(ctx context.Context, log *zap.Logger, date models.Date) {
	collector.BestEffort(log, "collection_snapshot_delete", func() error {
		return j.snapshots.DeleteSnapshot(context.WithoutCancel(ctx), collectionKey(date))
	})
}

// combine appends the blocks of later to those of earlier, per category
func combine(earlier, later models.Collection) models.Collection {
	out := make(models.Collection, len(earlier)+len(later))
	for category, text := range earlier {
		if text != "" {
			out[category] = text
		}
	}
	for category, text := range later {
		if text == "" {
			continue
		}
		if prev := out[category]; prev != "" {
			text = prev + collector.BlockDelimiter + text
		}
		out[category] = text
	}
	return out
}
