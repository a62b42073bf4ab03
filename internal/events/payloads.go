package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adamrubinsky/draft-copilot/internal/models"
	"github.com/google/uuid"
)

// Type identifies a monitor event.
type Type string

const (
	TypeNewPicksDetected    Type = "picks.detected"
	TypePrecomputationReady Type = "precompute.ready"
	TypeDraftCompleted      Type = "draft.completed"
)

// Event is the envelope published to sinks.
type Event struct {
	ID         uuid.UUID       `json:"event_id"`
	Type       Type            `json:"event_type"`
	DraftID    string          `json:"draft_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewPicksDetectedPayload carries exactly the picks discovered by one poll
// tick, in arrival order.
type NewPicksDetectedPayload struct {
	Picks     []models.PickRecord `json:"picks"`
	PickCount int                 `json:"pick_count"` // total picks known after this tick
}

// PrecomputationReadyPayload announces a cached speculative recommendation.
type PrecomputationReadyPayload struct {
	TriggeringPick int    `json:"triggering_pick"`
	PicksAhead     int    `json:"picks_ahead"`
	TriggerKind    string `json:"trigger_kind"`
	ElapsedMs      int64  `json:"elapsed_ms"`
}

// DraftCompletedPayload marks the terminal transition of the poll loop.
type DraftCompletedPayload struct {
	TotalPicks int `json:"total_picks"`
}

// New builds an event envelope around a marshaled payload.
func New(t Type, draftID string, occurredAt time.Time, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Event{
		ID:         uuid.New(),
		Type:       t,
		DraftID:    draftID,
		OccurredAt: occurredAt,
		Payload:    raw,
	}, nil
}
