package sleeper

// User is a Sleeper account.
type User struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// League holds league settings and the current draft pointer.
type League struct {
	LeagueID        string             `json:"league_id"`
	Name            string             `json:"name"`
	Season          string             `json:"season"`
	Status          string             `json:"status"`
	DraftID         string             `json:"draft_id"`
	TotalRosters    int                `json:"total_rosters"`
	RosterPositions []string           `json:"roster_positions"`
	ScoringSettings map[string]float64 `json:"scoring_settings"`
	Settings        LeagueSettings     `json:"settings"`
}

// LeagueSettings is the subset of league-level numbers we consume.
type LeagueSettings struct {
	DraftRounds int `json:"draft_rounds"`
}

// Roster binds a league member to a roster slot.
type Roster struct {
	RosterID int      `json:"roster_id"`
	OwnerID  string   `json:"owner_id"`
	Players  []string `json:"players"`
	Starters []string `json:"starters"`
}

// Draft describes a draft's configuration. DraftOrder maps user IDs to
// 1-based slots; SlotToRosterID maps slots back to roster IDs, which is the
// ordering the pick records use.
type Draft struct {
	DraftID        string         `json:"draft_id"`
	Type           string         `json:"type"`
	Status         string         `json:"status"`
	LeagueID       string         `json:"league_id"`
	Settings       DraftSettings  `json:"settings"`
	DraftOrder     map[string]int `json:"draft_order"`
	SlotToRosterID map[string]int `json:"slot_to_roster_id"`
}

// DraftSettings is the subset of draft-level numbers we consume.
type DraftSettings struct {
	Teams  int `json:"teams"`
	Rounds int `json:"rounds"`
}

// Pick is one draft pick as reported by the picks endpoint.
type Pick struct {
	PickNo    int    `json:"pick_no"` // 1-based overall pick number
	Round     int    `json:"round"`
	DraftSlot int    `json:"draft_slot"`
	RosterID  int    `json:"roster_id"`
	PlayerID  string `json:"player_id"`
	PickedBy  string `json:"picked_by"`
}

// Player is one entry of the full NFL players blob.
type Player struct {
	PlayerID         string   `json:"player_id"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	Team             string   `json:"team"`
	FantasyPositions []string `json:"fantasy_positions"`
	SearchRank       int      `json:"search_rank"`
	YearsExp         int      `json:"years_exp"`
	Age              int      `json:"age"`
	Active           bool     `json:"active"`
	InjuryStatus     string   `json:"injury_status"`
}

// FullName joins first and last, tolerating either being empty.
func (p Player) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}
