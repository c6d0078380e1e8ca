package entities

// HistoryReason tags why a class changed
type HistoryReason string

// History reasons
const (
	ReasonAwakening          HistoryReason = "awakening"
	ReasonPromotion          HistoryReason = "promotion"
	ReasonAdmin              HistoryReason = "admin"
	ReasonPendingAdvancement HistoryReason = "pending_advancement"
)

// ClassHistory is an append-only audit row. PreviousClassID is empty only for
// the first assignment and TriggeredByUserID is empty for system changes.
type ClassHistory struct {
	ID                string        `json:"id"`
	CharacterID       string        `json:"character_id"`
	PreviousClassID   string        `json:"previous_class_id,omitempty"`
	NewClassID        string        `json:"new_class_id"`
	Reason            HistoryReason `json:"reason"`
	TriggeredByUserID string        `json:"triggered_by_user_id,omitempty"`
	StatDelta         StatBlock     `json:"stat_delta"`
	CreatedAt         int64         `json:"created_at"`
}
