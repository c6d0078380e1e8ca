package events

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

// DefaultWorkers is the subscriber pool size used when none is configured
const DefaultWorkers = 4

// Handler processes one level-up message
type Handler interface {
	HandleLevelUp(ctx context.Context, event LevelUp) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, event LevelUp) error

// HandleLevelUp calls f
func (f HandlerFunc) HandleLevelUp(ctx context.Context, event LevelUp) error {
	return f(ctx, event)
}

// SubscriberConfig holds the subscriber dependencies
type SubscriberConfig struct {
	Queue   *Queue
	Handler Handler
	Workers int
}

// Validate ensures all required dependencies are provided
func (c *SubscriberConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if c.Queue == nil {
		vb.RequiredField("Queue")
	}
	if c.Handler == nil {
		vb.RequiredField("Handler")
	}
	if c.Workers < 0 {
		vb.InvalidField("Workers", "cannot be negative")
	}
	return vb.Build()
}

// Subscriber drains the queue with a pool of workers. A failing or
// panicking message is logged and never stops the pool.
type Subscriber struct {
	queue   *Queue
	handler Handler
	workers int
}

// NewSubscriber creates a subscriber
func NewSubscriber(cfg *SubscriberConfig) (*Subscriber, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = DefaultWorkers
	}

	return &Subscriber{
		queue:   cfg.Queue,
		handler: cfg.Handler,
		workers: workers,
	}, nil
}

// Run processes messages until the queue is closed and drained or ctx is
// done
func (s *Subscriber) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < s.workers; i++ {
		worker := i
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-s.queue.Messages():
					if !ok {
						return nil
					}
					s.process(ctx, worker, event)
				}
			}
		})
	}

	return g.Wait()
}

func (s *Subscriber) process(ctx context.Context, worker int, event LevelUp) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "level-up handler panicked",
				"worker", worker,
				"character_id", event.CharacterID,
				"panic", fmt.Sprint(r))
		}
	}()

	if err := event.Validate(); err != nil {
		slog.WarnContext(ctx, "dropping invalid level-up",
			"worker", worker,
			"character_id", event.CharacterID,
			"error", err)
		return
	}

	if err := s.handler.HandleLevelUp(ctx, event); err != nil {
		slog.ErrorContext(ctx, "level-up handler failed",
			"worker", worker,
			"character_id", event.CharacterID,
			"old_level", event.OldLevel,
			"new_level", event.NewLevel,
			"error", err)
	}
}
