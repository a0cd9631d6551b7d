package async

import (
	"context"
	"errors"
	"time"
)

var (
	ErrQueueFull   = errors.New("extraction queue is full")
	ErrQueueClosed = errors.New("extraction queue is shutting down")
)

// Job is one queued blueprint extraction.
type Job struct {
	ProjectID   string
	FileKey     string
	TemplateID  *string
	UserID      string
	SubmittedAt time.Time
	RequestID   string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
