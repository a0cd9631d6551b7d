package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/blueprint-estimator/internal/blueprint"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

type recordingProcessor struct {
	mu      sync.Mutex
	seen    []blueprint.Request
	release chan struct{}
	err     error
}

func (p *recordingProcessor) ProcessBlueprint(ctx context.Context, req blueprint.Request) (*entity.Blueprint, error) {
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p.mu.Lock()
	p.seen = append(p.seen, req)
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return &entity.Blueprint{BlueprintID: "bp-" + req.FileKey, CreatedAt: time.Now()}, nil
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func TestQueueProcessesAndDrains(t *testing.T) {
	proc := &recordingProcessor{}
	q := NewProcessorQueue(proc, nil, WithWorkers(3), WithQueueSize(10))

	tpl := "t1"
	for _, key := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{ProjectID: "p1", FileKey: key, TemplateID: &tpl, UserID: "u1"}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	require.Equal(t, 4, proc.count())
	for _, req := range proc.seen {
		assert.Equal(t, "p1", req.ProjectID)
		assert.Equal(t, &tpl, req.TemplateID)
	}

	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{ProjectID: "p1", FileKey: "late.pdf"}), ErrQueueClosed)
	q.Shutdown(ctx)
}

func TestQueueFullIsReported(t *testing.T) {
	proc := &recordingProcessor{release: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithQueueSize(1))

	require.NoError(t, q.Enqueue(context.Background(), Job{ProjectID: "p1", FileKey: "1"}))
	// the single worker may or may not have taken job 1 yet; at most two fit
	var full bool
	for i := 0; i < 3; i++ {
		if err := q.Enqueue(context.Background(), Job{ProjectID: "p1", FileKey: "x"}); errors.Is(err, ErrQueueFull) {
			full = true
			break
		}
	}
	assert.True(t, full)

	close(proc.release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)
}

func TestQueueFailuresDoNotStopWorkers(t *testing.T) {
	proc := &recordingProcessor{err: errors.New("boom")}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithProcessTimeout(time.Second))

	require.NoError(t, q.Enqueue(context.Background(), Job{ProjectID: "p1", FileKey: "1"}))
	require.NoError(t, q.Enqueue(context.Background(), Job{ProjectID: "p1", FileKey: "2"}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)
	assert.Equal(t, 2, proc.count())
}
