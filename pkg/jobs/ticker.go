package jobs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Every enqueues the job built by next on each tick until ctx is cancelled.
// Ticks that find the queue saturated are skipped so slow jobs never pile up.
// It blocks; run it in its own goroutine.
func Every(ctx context.Context, q *Queue, interval time.Duration, next func() Job) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job := next()
			if err := q.TryEnqueue(job); err != nil {
				if errors.Is(err, ErrQueueFull) {
					q.logger.Debug("tick skipped, previous job still pending", zap.String("queue", q.name), zap.String("type", job.Type))
					continue
				}
				q.logger.Warn("tick enqueue failed", zap.String("queue", q.name), zap.Error(err))
			}
		}
	}
}
