package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/dms-admin-api/internal/models"
	"github.com/noah-isme/dms-admin-api/pkg/jobs"
)

const pullJobType = "sheet_pull"

type puller interface {
	PullStudents(ctx context.Context) (*models.PullResult, error)
	PullTeachers(ctx context.Context) (*models.PullResult, error)
}

// PeriodicPull re-reads both tabs on a fixed interval. Ticks feed a
// single-worker queue without retries, so at most one pull runs at a time.
type PeriodicPull struct {
	sync     puller
	interval time.Duration
	queue    *jobs.Queue
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewPeriodicPull builds the scheduler. Nothing runs until Start.
func NewPeriodicPull(sync puller, interval time.Duration, logger *zap.Logger) *PeriodicPull {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &PeriodicPull{sync: sync, interval: interval, logger: logger}
	p.queue = jobs.NewQueue(pullJobType, p.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 1,
		MaxRetries: 0,
		Logger:     logger,
	})
	return p
}

// Start launches the queue and the ticker.
func (p *PeriodicPull) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	p.queue.Start(ctx)
	go func() {
		defer close(p.done)
		jobs.Every(ctx, p.queue, p.interval, func() jobs.Job {
			return jobs.Job{ID: uuid.NewString(), Type: pullJobType}
		})
	}()
	p.logger.Info("periodic sheet pull enabled", zap.Duration("interval", p.interval))
}

// Stop halts the ticker and waits for the worker to finish.
func (p *PeriodicPull) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.queue.Stop()
}

func (p *PeriodicPull) handle(ctx context.Context, job jobs.Job) error {
	var errs []error
	for _, pull := range []func(context.Context) (*models.PullResult, error){p.sync.PullStudents, p.sync.PullTeachers} {
		result, err := pull(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p.logger.Info("periodic pull finished",
			zap.String("job_id", job.ID),
			zap.String("tab", result.Tab),
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
			zap.Int("failed", result.Failed))
	}
	return errors.Join(errs...)
}
