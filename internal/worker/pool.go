package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"OutreachLab/internal/metrics"
)

func StartPool(
	ctx context.Context,
	wg *sync.WaitGroup,
	workers int,
	jobs <-chan Job,
	tracker *Tracker,
	logger *zap.Logger,
) {

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			logger.Info("worker started", zap.Int("worker_id", id))

			for {
				select {

				case <-ctx.Done():
					logger.Info("worker shutting down", zap.Int("worker_id", id))
					return

				case job, ok := <-jobs:
					if !ok {
						logger.Info("job channel closed", zap.Int("worker_id", id))
						return
					}

					run(ctx, id, job, tracker, logger)
				}
			}
		}(i)
	}
}

func run(ctx context.Context, workerID int, job Job, tracker *Tracker, logger *zap.Logger) {
	log := logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID),
		zap.String("kind", string(job.Kind)),
	)

	tracker.Start(job.ID)
	log.Info("job started")

	count, err := job.Run(ctx, func(pct float64) {
		tracker.Progress(job.ID, pct)
	})

	tracker.Finish(job.ID, count, err)

	if err != nil {
		log.Error("job failed", zap.Int("count", count), zap.Error(err))
		metrics.JobsFinished.WithLabelValues(string(job.Kind), string(StateFailed)).Inc()
		return
	}

	log.Info("job finished", zap.Int("count", count))
	metrics.JobsFinished.WithLabelValues(string(job.Kind), string(StateSucceeded)).Inc()
}
