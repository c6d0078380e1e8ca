// Package events carries level-up messages into the engine and advancement
// notifications out of it
package events

import (
	"context"
	"sync"

	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

// LevelUp is emitted whenever a character gains levels
type LevelUp struct {
	CharacterID string `json:"character_id"`
	OldLevel    int32  `json:"old_level"`
	NewLevel    int32  `json:"new_level"`
}

// Validate checks the message is processable
func (e LevelUp) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("CharacterID", e.CharacterID, vb)
	if e.NewLevel <= e.OldLevel {
		vb.Fieldf("NewLevel", "must be above old level %d", e.OldLevel)
	}
	return vb.Build()
}

// Publisher accepts level-up messages
type Publisher interface {
	PublishLevelUp(ctx context.Context, event LevelUp) error
}

// DefaultQueueSize is the buffer used when none is configured
const DefaultQueueSize = 256

// Queue is the in-process channel between level-up producers and the
// subscriber
type Queue struct {
	ch     chan LevelUp
	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a queue buffering size messages
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan LevelUp, size)}
}

// PublishLevelUp enqueues a message, blocking while the buffer is full
// Returns errors.Unavailable once the queue is closed
func (q *Queue) PublishLevelUp(ctx context.Context, event LevelUp) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return errors.Unavailable("level-up queue is closed")
	}

	select {
	case q.ch <- event:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "level-up publish cancelled")
	}
}

// Messages is the receive side consumed by the subscriber
func (q *Queue) Messages() <-chan LevelUp {
	return q.ch
}

// Close stops accepting messages. Buffered messages are still delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
