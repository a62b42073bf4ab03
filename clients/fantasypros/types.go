package fantasypros

// RankedPlayer is one row of a FantasyPros consensus board.
type RankedPlayer struct {
	Rank    int     `json:"rank"`
	Tier    int     `json:"tier,omitempty"`
	Name    string  `json:"name"`
	Team    string  `json:"team"`
	Pos     string  `json:"pos"`
	ByeWeek int     `json:"bye_week,omitempty"`
	ADP     float64 `json:"adp,omitempty"`
}
