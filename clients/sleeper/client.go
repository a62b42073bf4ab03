// Package sleeper wraps the public Sleeper fantasy-football API: league and
// draft lookups, the pick feed the monitor polls, and the big NFL players
// blob with its on-disk cache.
package sleeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/adamrubinsky/draft-copilot/clients"
	"github.com/rs/zerolog/log"
)

// DefaultPlayersCacheTTL is how long the cached players blob stays valid.
const DefaultPlayersCacheTTL = 24 * time.Hour

// ErrNoDraft is returned when the bound league has no draft attached.
var ErrNoDraft = errors.New("league has no draft")

// ErrRosterNotFound is returned when the bound user owns no roster in the
// league.
var ErrRosterNotFound = errors.New("roster not found for user")

// Client calls the Sleeper API for one user and league.
type Client struct {
	*clients.BaseClient

	username string
	leagueID string

	dataDir        string
	playersTTL     time.Duration
	playersMu      sync.Mutex
	players        map[string]Player // in-memory copy of the blob
	playersLoaded  time.Time
}

// NewClient builds a client bound to a username and league. dataDir holds
// the players cache file; empty disables disk caching.
func NewClient(username, leagueID, dataDir string) *Client {
	return &Client{
		BaseClient: clients.NewBaseClient(BaseURL),
		username:   username,
		leagueID:   leagueID,
		dataDir:    dataDir,
		playersTTL: DefaultPlayersCacheTTL,
	}
}

// Username returns the bound Sleeper username.
func (c *Client) Username() string { return c.username }

// LeagueID returns the bound league ID.
func (c *Client) LeagueID() string { return c.leagueID }

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("sleeper request %s: %w", endpoint, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("sleeper decode %s: %w", endpoint, err)
	}
	return nil
}

// GetUser fetches the bound user's account.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, fmt.Sprintf(UserEndpoint, c.username), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetLeague fetches the bound league's settings.
func (c *Client) GetLeague(ctx context.Context) (*League, error) {
	var league League
	if err := c.getJSON(ctx, fmt.Sprintf(LeagueEndpoint, c.leagueID), &league); err != nil {
		return nil, err
	}
	return &league, nil
}

// GetLeagueRosters fetches the league's rosters.
func (c *Client) GetLeagueRosters(ctx context.Context) ([]Roster, error) {
	var rosters []Roster
	if err := c.getJSON(ctx, fmt.Sprintf(LeagueRostersEndpoint, c.leagueID), &rosters); err != nil {
		return nil, err
	}
	return rosters, nil
}

// GetDraft fetches a draft's configuration.
func (c *Client) GetDraft(ctx context.Context, draftID string) (*Draft, error) {
	var draft Draft
	if err := c.getJSON(ctx, fmt.Sprintf(DraftEndpoint, draftID), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// GetDraftPicks fetches every pick made in a draft so far, in pick order.
func (c *Client) GetDraftPicks(ctx context.Context, draftID string) ([]Pick, error) {
	var picks []Pick
	if err := c.getJSON(ctx, fmt.Sprintf(DraftPicksEndpoint, draftID), &picks); err != nil {
		return nil, err
	}
	return picks, nil
}

// FindDraftID resolves the league's current draft.
func (c *Client) FindDraftID(ctx context.Context) (string, error) {
	league, err := c.GetLeague(ctx)
	if err != nil {
		return "", err
	}
	if league.DraftID == "" {
		return "", fmt.Errorf("league %s: %w", c.leagueID, ErrNoDraft)
	}
	return league.DraftID, nil
}

// GetAllPlayers returns the full NFL players map keyed by player ID. The
// payload is ~5MB for 11k players, so it is cached on disk for a day and
// held in memory afterwards.
func (c *Client) GetAllPlayers(ctx context.Context, forceRefresh bool) (map[string]Player, error) {
	c.playersMu.Lock()
	defer c.playersMu.Unlock()

	if !forceRefresh && c.players != nil && time.Since(c.playersLoaded) < c.playersTTL {
		return c.players, nil
	}

	if !forceRefresh {
		if players, ok := c.loadPlayersCache(); ok {
			c.players = players
			c.playersLoaded = time.Now()
			return players, nil
		}
	}

	log.Info().Msg("fetching fresh player data from Sleeper")
	var players map[string]Player
	if err := c.getJSON(ctx, PlayersEndpoint, &players); err != nil {
		return nil, err
	}
	// The blob keys are player IDs; copy them into the structs so callers
	// can pass players around standalone.
	for id, p := range players {
		if p.PlayerID == "" {
			p.PlayerID = id
			players[id] = p
		}
	}

	c.savePlayersCache(players)
	c.players = players
	c.playersLoaded = time.Now()
	return players, nil
}

// GetAvailablePlayers returns undrafted, active players sorted by Sleeper's
// search rank (lower is better). position optionally filters to one fantasy
// position.
func (c *Client) GetAvailablePlayers(ctx context.Context, draftID, position string) ([]Player, error) {
	players, err := c.GetAllPlayers(ctx, false)
	if err != nil {
		return nil, err
	}
	picks, err := c.GetDraftPicks(ctx, draftID)
	if err != nil {
		return nil, err
	}

	drafted := make(map[string]struct{}, len(picks))
	for _, pick := range picks {
		if pick.PlayerID != "" {
			drafted[pick.PlayerID] = struct{}{}
		}
	}

	available := make([]Player, 0, 256)
	for id, p := range players {
		if _, taken := drafted[id]; taken {
			continue
		}
		if !p.Active || len(p.FantasyPositions) == 0 {
			continue
		}
		if position != "" && !hasPosition(p.FantasyPositions, position) {
			continue
		}
		if p.SearchRank == 0 {
			p.SearchRank = 999 // unranked
		}
		available = append(available, p)
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].SearchRank < available[j].SearchRank
	})
	return available, nil
}

func hasPosition(positions []string, want string) bool {
	for _, p := range positions {
		if p == want {
			return true
		}
	}
	return false
}

func (c *Client) playersCachePath() string {
	if c.dataDir == "" {
		return ""
	}
	return filepath.Join(c.dataDir, PlayersCacheFile)
}

func (c *Client) loadPlayersCache() (map[string]Player, bool) {
	path := c.playersCachePath()
	if path == "" {
		return nil, false
	}
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) >= c.playersTTL {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var players map[string]Player
	if err := json.Unmarshal(data, &players); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("discarding corrupt players cache")
		return nil, false
	}
	log.Info().Int("players", len(players)).Msg("loaded players from cache")
	return players, true
}

func (c *Client) savePlayersCache(players map[string]Player) {
	path := c.playersCachePath()
	if path == "" {
		return
	}
	data, err := json.Marshal(players)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn().Err(err).Msg("create players cache dir")
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Msg("write players cache")
	}
}
