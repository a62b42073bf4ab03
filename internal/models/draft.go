package models

import "fmt"

// DraftStatus defines the status of a draft as reported by the platform.
type DraftStatus string

const (
	DraftStatusPreDraft DraftStatus = "pre_draft"
	DraftStatusDrafting DraftStatus = "drafting"
	DraftStatusPaused   DraftStatus = "paused"
	DraftStatusComplete DraftStatus = "complete"
)

// DraftInfo holds the draft parameters reported by the snapshot source,
// before the user's team has been bound to them.
type DraftInfo struct {
	DraftID     string      `json:"draft_id"`
	Status      DraftStatus `json:"status"`
	TeamCount   int         `json:"team_count"`
	TotalRounds int         `json:"total_rounds"`
	DraftOrder  []string    `json:"draft_order"` // round-1 pick order, one team ID per slot
}

// DraftConfiguration is the fully bound draft setup. It is immutable once
// monitoring starts.
type DraftConfiguration struct {
	DraftID     string   `json:"draft_id"`
	TeamCount   int      `json:"team_count"`
	TotalRounds int      `json:"total_rounds"`
	DraftOrder  []string `json:"draft_order"`
	UserTeamID  string   `json:"user_team_id"`
}

// Validate checks the structural invariants: positive counts, a full draft
// order, and the user's team appearing in it exactly once.
func (c DraftConfiguration) Validate() error {
	if c.TeamCount <= 0 {
		return fmt.Errorf("team count must be positive, got %d", c.TeamCount)
	}
	if c.TotalRounds <= 0 {
		return fmt.Errorf("total rounds must be positive, got %d", c.TotalRounds)
	}
	if len(c.DraftOrder) != c.TeamCount {
		return fmt.Errorf("draft order has %d entries, want %d", len(c.DraftOrder), c.TeamCount)
	}
	seen := 0
	for _, id := range c.DraftOrder {
		if id == c.UserTeamID {
			seen++
		}
	}
	if seen != 1 {
		return fmt.Errorf("user team %q appears %d times in draft order, want exactly once", c.UserTeamID, seen)
	}
	return nil
}

// UserPosition returns the user's 0-based slot in the round-1 draft order,
// or -1 if the team is not in the order.
func (c DraftConfiguration) UserPosition() int {
	for i, id := range c.DraftOrder {
		if id == c.UserTeamID {
			return i
		}
	}
	return -1
}

// TotalPicks returns the theoretical maximum overall pick number.
func (c DraftConfiguration) TotalPicks() int {
	return c.TeamCount * c.TotalRounds
}
