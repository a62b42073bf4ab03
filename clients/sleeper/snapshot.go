package sleeper

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/adamrubinsky/draft-copilot/internal/models"
)

// Enricher decorates available players with merged ranking data. Optional;
// without one the adapter passes through Sleeper's own search ranks.
type Enricher interface {
	Enrich(players []models.AvailablePlayer) []models.AvailablePlayer
}

// boardReader and valueFinder are extra board capabilities an enricher may
// provide; the adapter detects them at the call site.
type boardReader interface {
	TopAvailable(playerIDs []string, position string, limit int) []models.AvailablePlayer
}

type valueFinder interface {
	ValuePicks(playerIDs []string, currentPick int, threshold float64) []models.ValuePick
}

// valuePickThreshold is the minimum picks-past-ADP gap worth flagging.
const valuePickThreshold = 15

// SnapshotAdapter adapts the Sleeper client to the shapes the monitor and
// the speculative cache consume.
type SnapshotAdapter struct {
	client   *Client
	enricher Enricher

	// Cap on players handed to the recommendation engine; the full list is
	// thousands deep and only the top of the board matters.
	availableLimit int
}

// NewSnapshotAdapter wraps a client. enricher may be nil.
func NewSnapshotAdapter(client *Client, enricher Enricher) *SnapshotAdapter {
	return &SnapshotAdapter{
		client:         client,
		enricher:       enricher,
		availableLimit: 50,
	}
}

// GetDraftInfo maps a Sleeper draft to the monitor's draft parameters. The
// draft order is derived from slot_to_roster_id so it lines up with the
// roster IDs the pick feed reports.
func (a *SnapshotAdapter) GetDraftInfo(ctx context.Context, draftID string) (models.DraftInfo, error) {
	draft, err := a.client.GetDraft(ctx, draftID)
	if err != nil {
		return models.DraftInfo{}, err
	}

	teams := draft.Settings.Teams
	if teams == 0 {
		teams = len(draft.SlotToRosterID)
	}

	order, err := orderedTeamIDs(draft, teams)
	if err != nil {
		return models.DraftInfo{}, err
	}

	return models.DraftInfo{
		DraftID:     draft.DraftID,
		Status:      models.DraftStatus(draft.Status),
		TeamCount:   teams,
		TotalRounds: draft.Settings.Rounds,
		DraftOrder:  order,
	}, nil
}

// GetDraftPicks maps the Sleeper pick feed to pick records, sorted by
// overall pick number.
func (a *SnapshotAdapter) GetDraftPicks(ctx context.Context, draftID string) ([]models.PickRecord, error) {
	picks, err := a.client.GetDraftPicks(ctx, draftID)
	if err != nil {
		return nil, err
	}

	records := make([]models.PickRecord, len(picks))
	for i, pick := range picks {
		records[i] = models.PickRecord{
			OverallPick: pick.PickNo,
			Round:       pick.Round,
			TeamID:      strconv.Itoa(pick.RosterID),
			PlayerID:    pick.PlayerID,
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].OverallPick < records[j].OverallPick
	})
	return records, nil
}

// AvailablePlayers returns the undrafted board, enriched when an enricher
// is configured, capped for prompt-sized consumption.
func (a *SnapshotAdapter) AvailablePlayers(ctx context.Context, draftID string) ([]models.AvailablePlayer, error) {
	players, err := a.client.GetAvailablePlayers(ctx, draftID, "")
	if err != nil {
		return nil, err
	}

	out := make([]models.AvailablePlayer, 0, a.availableLimit)
	for _, p := range players {
		out = append(out, toAvailable(p))
		if len(out) == a.availableLimit {
			break
		}
	}

	if a.enricher != nil {
		out = a.enricher.Enrich(out)
	}
	return out, nil
}

// TopAvailable returns the best remaining players, optionally filtered to
// one position. With a board-capable enricher the merged board decides the
// order; otherwise Sleeper's search ranks do.
func (a *SnapshotAdapter) TopAvailable(ctx context.Context, draftID, position string, limit int) ([]models.AvailablePlayer, error) {
	players, err := a.client.GetAvailablePlayers(ctx, draftID, position)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = a.availableLimit
	}

	board, ok := a.enricher.(boardReader)
	if !ok {
		out := make([]models.AvailablePlayer, 0, limit)
		for _, p := range players {
			out = append(out, toAvailable(p))
			if len(out) == limit {
				break
			}
		}
		return out, nil
	}

	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.PlayerID
	}
	return board.TopAvailable(ids, position, limit), nil
}

// ValuePicks flags available players sitting well past their ADP at the
// given pick. Empty without a value-capable enricher.
func (a *SnapshotAdapter) ValuePicks(ctx context.Context, draftID string, currentPick int) ([]models.ValuePick, error) {
	finder, ok := a.enricher.(valueFinder)
	if !ok {
		return nil, nil
	}
	players, err := a.client.GetAvailablePlayers(ctx, draftID, "")
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.PlayerID
	}
	return finder.ValuePicks(ids, currentPick, valuePickThreshold), nil
}

func toAvailable(p Player) models.AvailablePlayer {
	return models.AvailablePlayer{
		PlayerID:  p.PlayerID,
		Name:      p.FullName(),
		Positions: p.FantasyPositions,
		Team:      p.Team,
		Rank:      p.SearchRank,
		YearsExp:  p.YearsExp,
	}
}

// UserRosterContext summarizes the bound user's roster for recommendation
// prompts.
func (a *SnapshotAdapter) UserRosterContext(ctx context.Context) (models.RosterContext, error) {
	user, err := a.client.GetUser(ctx)
	if err != nil {
		return models.RosterContext{}, err
	}
	rosters, err := a.client.GetLeagueRosters(ctx)
	if err != nil {
		return models.RosterContext{}, err
	}

	var mine *Roster
	for i := range rosters {
		if rosters[i].OwnerID == user.UserID {
			mine = &rosters[i]
			break
		}
	}
	if mine == nil {
		return models.RosterContext{}, fmt.Errorf("user %s in league %s: %w", user.UserID, a.client.LeagueID(), ErrRosterNotFound)
	}

	players, err := a.client.GetAllPlayers(ctx, false)
	if err != nil {
		return models.RosterContext{}, err
	}

	rc := models.RosterContext{
		TeamID:         strconv.Itoa(mine.RosterID),
		PositionCounts: make(map[string]int),
	}
	for _, id := range mine.Players {
		p, ok := players[id]
		if !ok {
			continue
		}
		rc.PlayerNames = append(rc.PlayerNames, p.FullName())
		for _, pos := range p.FantasyPositions {
			rc.PositionCounts[pos]++
		}
	}
	return rc, nil
}

// UserTeamID resolves the bound user's roster ID, the team identity the
// monitor tracks.
func (a *SnapshotAdapter) UserTeamID(ctx context.Context) (string, error) {
	user, err := a.client.GetUser(ctx)
	if err != nil {
		return "", err
	}
	rosters, err := a.client.GetLeagueRosters(ctx)
	if err != nil {
		return "", err
	}
	for _, r := range rosters {
		if r.OwnerID == user.UserID {
			return strconv.Itoa(r.RosterID), nil
		}
	}
	return "", fmt.Errorf("user %s in league %s: %w", user.UserID, a.client.LeagueID(), ErrRosterNotFound)
}

func orderedTeamIDs(draft *Draft, teams int) ([]string, error) {
	order := make([]string, 0, teams)
	for slot := 1; slot <= teams; slot++ {
		rosterID, ok := draft.SlotToRosterID[strconv.Itoa(slot)]
		if !ok {
			// Some mock drafts omit the slot map; fall back to slot order.
			rosterID = slot
		}
		order = append(order, strconv.Itoa(rosterID))
	}
	if len(order) != teams {
		return nil, fmt.Errorf("draft %s order has %d slots, want %d", draft.DraftID, len(order), teams)
	}
	return order, nil
}
