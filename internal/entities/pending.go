package entities

import (
	"time"

	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

// PendingStatus is the lifecycle state of a pending advancement
type PendingStatus string

// Pending statuses
const (
	PendingStatusAvailable PendingStatus = "available"
	PendingStatusAccepted  PendingStatus = "accepted"
	PendingStatusExpired   PendingStatus = "expired"
)

// PendingOption is one transition offered to the player
type PendingOption struct {
	MappingID string               `json:"mapping_id"`
	ToClassID string               `json:"to_class_id"`
	Available bool                 `json:"available"`
	Missing   *MissingRequirements `json:"missing,omitempty"`
}

// PendingAdvancement is a queued choice waiting on the player
type PendingAdvancement struct {
	ID          string          `json:"id"`
	CharacterID string          `json:"character_id"`
	UserID      string          `json:"user_id"`
	Options     []PendingOption `json:"options"`
	Status      PendingStatus   `json:"status"`
	CreatedAt   int64           `json:"created_at"`
	UpdatedAt   int64           `json:"updated_at"`
	ExpiresAt   int64           `json:"expires_at,omitempty"`
}

// Option returns the offered option for mappingID
func (p *PendingAdvancement) Option(mappingID string) (*PendingOption, bool) {
	for i := range p.Options {
		if p.Options[i].MappingID == mappingID {
			return &p.Options[i], true
		}
	}
	return nil, false
}

// IsExpired reports whether the offer lapsed at now (unix seconds)
func (p *PendingAdvancement) IsExpired(now int64) bool {
	return p.ExpiresAt > 0 && now >= p.ExpiresAt
}

// Accept moves an available, unexpired offer to accepted. Every store runs
// its accept path through here.
// Returns errors.InvalidState if the offer is no longer available
func (p *PendingAdvancement) Accept(now int64) error {
	if p.Status != PendingStatusAvailable {
		return errors.InvalidStatef("pending advancement %s is %s", p.ID, p.Status)
	}
	if p.IsExpired(now) {
		return errors.InvalidStatef("pending advancement %s has expired", p.ID)
	}
	p.Status = PendingStatusAccepted
	p.UpdatedAt = now
	return nil
}

// Expire retires an available offer; it reports false for offers already
// resolved
func (p *PendingAdvancement) Expire(now int64) bool {
	if p.Status != PendingStatusAvailable {
		return false
	}
	p.Status = PendingStatusExpired
	p.UpdatedAt = now
	return true
}

// Resolution describes why the offer can no longer be accepted: its status,
// or "expired" for an available offer past its deadline
func (p *PendingAdvancement) Resolution(now int64) PendingStatus {
	if p.Status == PendingStatusAvailable && p.IsExpired(now) {
		return PendingStatusExpired
	}
	return p.Status
}

// Retention is how long a stored record is kept: the offer's lifetime,
// counted again from every write. Zero keeps it forever.
func (p *PendingAdvancement) Retention() time.Duration {
	if p.ExpiresAt <= p.CreatedAt {
		return 0
	}
	return time.Duration(p.ExpiresAt-p.CreatedAt) * time.Second
}
