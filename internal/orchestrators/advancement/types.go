package advancement

import (
	"github.com/KirkDiggler/rpg-advancement/internal/engine/transition"
	"github.com/KirkDiggler/rpg-advancement/internal/entities"
)

// Outcome is what EvaluateLevelUp did
type Outcome string

// Level-up outcomes
const (
	OutcomeNone           Outcome = "none"
	OutcomeAwakened       Outcome = "awakened"
	OutcomePromoted       Outcome = "promoted"
	OutcomePendingCreated Outcome = "pending_created"
	OutcomeFailed         Outcome = "failed"
)

// Candidate is one transition the character could take next
type Candidate struct {
	MappingID         string
	ToClassID         string
	ToClassName       string
	Tier              int32
	Weight            int32
	AllowPlayerChoice bool
	IsAwakening       bool
	Available         bool
	Missing           *entities.MissingRequirements
}

// AwakenInput defines the request for a first class
type AwakenInput struct {
	CharacterID string
	UserID      string
}

// AwakenOutput defines the response for a first class
type AwakenOutput struct {
	Result *transition.Result
}

// GetAvailableAdvancementsInput defines the request for listing next steps
type GetAvailableAdvancementsInput struct {
	CharacterID string
}

// GetAvailableAdvancementsOutput defines the response for listing next steps
type GetAvailableAdvancementsOutput struct {
	CanAdvance bool
	// Missing is the shortest gap when nothing is available
	Missing    *entities.MissingRequirements
	Candidates []*Candidate
}

// PerformAdvancementInput defines the request for a player-driven advancement
type PerformAdvancementInput struct {
	CharacterID   string
	TargetClassID string
	UserID        string
}

// PerformAdvancementOutput defines the response for a player-driven advancement
type PerformAdvancementOutput struct {
	Result *transition.Result
}

// ListPendingInput defines the request for the outstanding offer
type ListPendingInput struct {
	CharacterID string
}

// ListPendingOutput defines the response for the outstanding offer
type ListPendingOutput struct {
	// Pending is nil when no offer is available
	Pending *entities.PendingAdvancement
}

// AcceptPendingInput defines the request for accepting an offered option
type AcceptPendingInput struct {
	CharacterID string
	MappingID   string
	UserID      string
}

// AcceptPendingOutput defines the response for accepting an offered option
type AcceptPendingOutput struct {
	Result    *transition.Result
	PendingID string
}

// ClearPendingInput defines the request for dropping the outstanding offer
type ClearPendingInput struct {
	CharacterID string
}

// ClearPendingOutput defines the response for dropping the outstanding offer
type ClearPendingOutput struct {
	Cleared int
}

// GetClassHistoryInput defines the request for a character's class history
type GetClassHistoryInput struct {
	CharacterID string
}

// GetClassHistoryOutput defines the response for a character's class history
type GetClassHistoryOutput struct {
	History []*entities.ClassHistory
}

// EvaluateLevelUpInput defines the request for reacting to a level-up
type EvaluateLevelUpInput struct {
	CharacterID string
	OldLevel    int32
	NewLevel    int32
}

// EvaluateLevelUpOutput defines the response for reacting to a level-up
type EvaluateLevelUpOutput struct {
	Outcome Outcome
	Result  *transition.Result
	Pending *entities.PendingAdvancement
	// Error describes why the outcome is failed
	Error string
}
