package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/internal/blueprint"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

// Processor runs one extraction.
type Processor interface {
	ProcessBlueprint(ctx context.Context, req blueprint.Request) (*entity.Blueprint, error)
}

// ProcessorQueue runs queued extractions on a fixed pool of workers. Job
// outcomes are visible through the project's blueprint status.
type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 2,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					q.run(workerID, job)
				}

				q.logger.Info("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	ctx := context.Background()
	if job.RequestID != "" {
		ctx = common.WithRequestID(ctx, job.RequestID)
	}
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	bp, err := q.proc.ProcessBlueprint(ctx, blueprint.Request{
		ProjectID:  job.ProjectID,
		FileKey:    job.FileKey,
		TemplateID: job.TemplateID,
		UserID:     job.UserID,
	})
	if err != nil {
		q.logger.Error("queue.job.failed", "worker_id", workerID, "project_id", job.ProjectID, "file_key", job.FileKey, "error", err)
		return
	}
	q.logger.Info("queue.job.ok",
		"worker_id", workerID,
		"project_id", job.ProjectID,
		"blueprint_id", bp.BlueprintID,
		"waited_ms", bp.CreatedAt.Sub(job.SubmittedAt).Milliseconds(),
	)
}

// Enqueue adds job without blocking. It fails with ErrQueueFull when every
// slot is taken and ErrQueueClosed after Shutdown.
func (q *ProcessorQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "project_id", job.ProjectID)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queue.enqueue.ok", "project_id", job.ProjectID, "file_key", job.FileKey, "depth", len(q.ch))
		return nil
	default:
		q.logger.Warn("queue.enqueue.full", "project_id", job.ProjectID, "capacity", cap(q.ch))
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish, or for
// ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
