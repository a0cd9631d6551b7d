package estimate

import (
	"time"

	"github.com/google/uuid"
)

const defaultFanout = 8

type options struct {
	now    func() time.Time
	newID  func() string
	fanout int
}

func defaultOptions() options {
	return options{
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		fanout: defaultFanout,
	}
}

// Option configures an Engine or a Service.
type Option func(*options)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) { o.newID = gen }
}

// WithCatalogFanout bounds concurrent catalog lookups during generation.
func WithCatalogFanout(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.fanout = n
		}
	}
}
