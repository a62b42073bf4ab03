package models

// PickRecord is one immutable pick fact as reported by the draft platform.
// Records accumulate in arrival order and are never mutated.
type PickRecord struct {
	OverallPick int    `json:"overall_pick"` // 1-based, unique
	Round       int    `json:"round"`
	TeamID      string `json:"team_id"`
	PlayerID    string `json:"player_id,omitempty"` // empty when not yet resolved
}

// TurnPrediction describes the user's next turn relative to the pick
// currently on the clock. Recomputed every poll tick; never persisted.
type TurnPrediction struct {
	CurrentOverallPick  int  `json:"current_overall_pick"`
	PicksUntilUserTurn  int  `json:"picks_until_user_turn"`
	UserNextOverallPick int  `json:"user_next_overall_pick"`
	Known               bool `json:"known"` // false when the draft is over or state is unavailable
}
