// Package importer commits lead candidates to the store in fixed-size
// batches and keeps the in-progress import sessions.
package importer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"OutreachLab/internal/metrics"
	"OutreachLab/internal/models"
)

const DefaultBatchSize = 10

type BulkCreator interface {
	BulkCreateLeads(ctx context.Context, leads []models.Lead) ([]models.Lead, error)
}

type Importer struct {
	Store     BulkCreator
	BatchSize int
	// Pacing is an optional pause between batches so progress moves in
	// visible steps. Zero disables it.
	Pacing time.Duration
	Log    *zap.Logger
}

// Import creates leads batch by batch, calling progress with the percentage
// of batches done after each one. The first failing batch aborts the import;
// batches already committed stay in the store.
func (im *Importer) Import(ctx context.Context, leads []models.Lead, progress func(float64)) (int, error) {
	size := im.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	if progress == nil {
		progress = func(float64) {}
	}

	total := (len(leads) + size - 1) / size
	imported := 0

	for i := 0; i < total; i++ {
		start := i * size
		end := min(start+size, len(leads))

		created, err := im.Store.BulkCreateLeads(ctx, leads[start:end])
		if err != nil {
			im.Log.Error("lead batch failed",
				zap.Int("batch", i+1),
				zap.Int("batches", total),
				zap.Int("imported", imported),
				zap.Error(err),
			)
			return imported, models.External(fmt.Sprintf("import batch %d/%d", i+1, total), err)
		}

		imported += len(created)
		metrics.LeadsImported.Add(float64(len(created)))

		progress(float64(i+1) / float64(total) * 100)

		if im.Pacing > 0 && i < total-1 {
			select {
			case <-ctx.Done():
				return imported, ctx.Err()
			case <-time.After(im.Pacing):
			}
		}
	}

	im.Log.Info("lead import complete",
		zap.Int("imported", imported),
		zap.Int("batches", total),
	)

	return imported, nil
}
