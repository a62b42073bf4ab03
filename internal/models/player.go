package models

// AvailablePlayer is an undrafted player enriched with ranking data, as fed
// to the recommendation engine and UI displays.
type AvailablePlayer struct {
	PlayerID  string   `json:"player_id"`
	Name      string   `json:"name"`
	Positions []string `json:"positions"`
	Team      string   `json:"team"` // empty for free agents
	Rank      int      `json:"rank"` // overall rank, lower is better
	ADP       float64  `json:"adp,omitempty"`
	ByeWeek   int      `json:"bye_week,omitempty"`
	YearsExp  int      `json:"years_exp"`
}

// RosterContext summarizes the user's roster so far for recommendation
// prompts.
type RosterContext struct {
	TeamID         string         `json:"team_id"`
	PlayerNames    []string       `json:"player_names"`
	PositionCounts map[string]int `json:"position_counts"`
}

// ValuePick flags an available player still on the board well past their
// typical draft slot.
type ValuePick struct {
	PlayerID          string   `json:"player_id"`
	Name              string   `json:"name"`
	Positions         []string `json:"positions"`
	ADP               float64  `json:"adp"`
	ValueDifferential float64  `json:"value_differential"` // current pick minus ADP
}

// RecommendationRequest is the input handed to a recommendation engine when
// a speculative computation is triggered.
type RecommendationRequest struct {
	PickNumber int               `json:"pick_number"` // overall pick on the clock at trigger time
	PicksAhead int               `json:"picks_ahead"` // how far before the user's turn this fired
	Available  []AvailablePlayer `json:"available"`
	Roster     RosterContext     `json:"roster"`
	ValuePicks []ValuePick       `json:"value_picks,omitempty"`
}

// DraftStateSnapshot is the on-disk persistence form of the monitor's view
// of a draft, so a restarted process can resume against the same draft.
type DraftStateSnapshot struct {
	DraftID       string `json:"draft_id"`
	UserTeamID    string `json:"user_team_id"`
	CurrentPick   int    `json:"current_pick"`
	LastPickCount int    `json:"last_pick_count"`
	LastUpdated   string `json:"last_updated"` // RFC 3339
}
