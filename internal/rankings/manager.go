// Package rankings merges player rankings from multiple sources into one
// board that drives recommendations: Sleeper search ranks as the base,
// FantasyPros ADP layered on top, with a QB boost for superflex leagues.
package rankings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adamrubinsky/draft-copilot/clients/fantasypros"
	"github.com/adamrubinsky/draft-copilot/clients/sleeper"
	"github.com/adamrubinsky/draft-copilot/internal/models"
	"github.com/rs/zerolog/log"
)

// DefaultCacheTTL is how long a merged board stays valid on disk.
const DefaultCacheTTL = time.Hour

const cacheFile = "rankings_cache.json"

// superflexBoostCutoff leaves the elite QBs alone; they are already ranked
// where they belong.
const superflexBoostCutoff = 10

// PlayerSource supplies the full player database.
type PlayerSource interface {
	GetAllPlayers(ctx context.Context, forceRefresh bool) (map[string]sleeper.Player, error)
}

// ADPSource supplies average draft position keyed by player name.
type ADPSource interface {
	GetADP(ctx context.Context, scoring fantasypros.Scoring, forceRefresh bool) (map[string]float64, error)
}

// PlayerRanking is one player's merged board entry.
type PlayerRanking struct {
	PlayerID      string         `json:"player_id"`
	Name          string         `json:"name"`
	Team          string         `json:"team"`
	Positions     []string       `json:"positions"`
	OverallRank   int            `json:"overall_rank"`
	PositionRanks map[string]int `json:"position_ranks"`
	SleeperRank   int            `json:"sleeper_rank"`
	ADP           float64        `json:"adp,omitempty"`
	YearsExp      int            `json:"years_exp"`
	InjuryStatus  string         `json:"injury_status,omitempty"`
}

// Config controls how the board is built.
type Config struct {
	Scoring   fantasypros.Scoring
	Superflex bool

	// Key names the board for this league's shape; when set, each shape
	// gets its own cache file.
	Key string

	// DataDir holds the merged board cache; empty disables disk caching.
	DataDir  string
	CacheTTL time.Duration
}

// Manager builds and serves the merged board.
type Manager struct {
	cfg     Config
	players PlayerSource
	adp     ADPSource

	mu         sync.RWMutex
	board      map[string]PlayerRanking
	lastUpdate time.Time
}

// New builds a manager. adp may be nil when no FantasyPros access is
// configured; the board then carries Sleeper ranks only.
func New(cfg Config, players PlayerSource, adp ADPSource) *Manager {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Scoring == "" {
		cfg.Scoring = fantasypros.ScoringHalfPPR
	}
	return &Manager{cfg: cfg, players: players, adp: adp}
}

type boardSnapshot struct {
	LastUpdate time.Time                `json:"last_update"`
	Scoring    fantasypros.Scoring     `json:"scoring"`
	Superflex  bool                     `json:"superflex"`
	Players    map[string]PlayerRanking `json:"players"`
}

// Update rebuilds the merged board, reusing the disk cache when fresh.
func (m *Manager) Update(ctx context.Context, forceRefresh bool) error {
	if !forceRefresh && m.loadCache() {
		return nil
	}

	log.Info().Str("scoring", string(m.cfg.Scoring)).Bool("superflex", m.cfg.Superflex).
		Msg("updating rankings from all sources")

	players, err := m.players.GetAllPlayers(ctx, forceRefresh)
	if err != nil {
		return fmt.Errorf("update rankings: %w", err)
	}

	base := make(map[string]int)
	for id, p := range players {
		if p.Active && p.SearchRank > 0 {
			base[id] = p.SearchRank
		}
	}

	adjusted := base
	if m.cfg.Superflex {
		adjusted = adjustSuperflex(base, players)
	}

	var adpByName map[string]float64
	if m.adp != nil {
		fetched, err := m.adp.GetADP(ctx, m.cfg.Scoring, forceRefresh)
		if err != nil {
			// The board is still useful without ADP.
			log.Warn().Err(err).Msg("continuing without ADP data")
		} else {
			// Source keys are display names as exported; re-key so they
			// match the normalized lookups below.
			adpByName = make(map[string]float64, len(fetched))
			for name, adp := range fetched {
				adpByName[NormalizeName(name)] = adp
			}
		}
	}

	board := make(map[string]PlayerRanking, len(adjusted))
	for id, rank := range adjusted {
		p := players[id]
		entry := PlayerRanking{
			PlayerID:     id,
			Name:         p.FullName(),
			Team:         p.Team,
			Positions:    p.FantasyPositions,
			OverallRank:  rank,
			SleeperRank:  base[id],
			YearsExp:     p.YearsExp,
			InjuryStatus: p.InjuryStatus,
		}
		if adp, ok := adpByName[NormalizeName(entry.Name)]; ok {
			entry.ADP = adp
		}
		board[id] = entry
	}
	assignPositionRanks(board)

	m.mu.Lock()
	m.board = board
	m.lastUpdate = time.Now()
	m.mu.Unlock()

	m.saveCache()
	log.Info().Int("players", len(board)).Msg("rankings updated")
	return nil
}

// adjustSuperflex boosts QB ranks outside the top tier by 40%, then
// reassigns dense ranks so the board has no gaps.
func adjustSuperflex(base map[string]int, players map[string]sleeper.Player) map[string]int {
	type entry struct {
		id   string
		rank int
	}
	entries := make([]entry, 0, len(base))
	for id, rank := range base {
		adjusted := rank
		if hasQB(players[id].FantasyPositions) && rank > superflexBoostCutoff {
			adjusted = rank * 6 / 10
		}
		entries = append(entries, entry{id: id, rank: adjusted})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].rank != entries[j].rank {
			return entries[i].rank < entries[j].rank
		}
		return entries[i].id < entries[j].id
	})

	out := make(map[string]int, len(entries))
	for i, e := range entries {
		out[e.id] = i + 1
	}
	return out
}

func hasQB(positions []string) bool {
	for _, p := range positions {
		if p == "QB" {
			return true
		}
	}
	return false
}

func assignPositionRanks(board map[string]PlayerRanking) {
	byPosition := make(map[string][]string)
	for id, entry := range board {
		for _, pos := range entry.Positions {
			byPosition[pos] = append(byPosition[pos], id)
		}
	}
	for pos, ids := range byPosition {
		sort.Slice(ids, func(i, j int) bool {
			return board[ids[i]].OverallRank < board[ids[j]].OverallRank
		})
		for i, id := range ids {
			entry := board[id]
			if entry.PositionRanks == nil {
				entry.PositionRanks = make(map[string]int)
			}
			entry.PositionRanks[pos] = i + 1
			board[id] = entry
		}
	}
}

// PlayerRanking returns the merged entry for one player.
func (m *Manager) PlayerRanking(playerID string) (PlayerRanking, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.board[playerID]
	return entry, ok
}

// TopAvailable returns the best remaining players by merged rank,
// optionally filtered to one position.
func (m *Manager) TopAvailable(playerIDs []string, position string, limit int) []models.AvailablePlayer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]PlayerRanking, 0, limit)
	for _, id := range playerIDs {
		entry, ok := m.board[id]
		if !ok {
			continue
		}
		if position != "" && !hasPositionIn(entry.Positions, position) {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].OverallRank < entries[j].OverallRank })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]models.AvailablePlayer, len(entries))
	for i, e := range entries {
		out[i] = models.AvailablePlayer{
			PlayerID:  e.PlayerID,
			Name:      e.Name,
			Positions: e.Positions,
			Team:      e.Team,
			Rank:      e.OverallRank,
			ADP:       e.ADP,
			YearsExp:  e.YearsExp,
		}
	}
	return out
}

// ValuePicks returns available players whose ADP is at least threshold
// picks earlier than the current pick, biggest value first.
func (m *Manager) ValuePicks(playerIDs []string, currentPick int, threshold float64) []models.ValuePick {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var picks []models.ValuePick
	for _, id := range playerIDs {
		entry, ok := m.board[id]
		if !ok || entry.ADP == 0 {
			continue
		}
		diff := float64(currentPick) - entry.ADP
		if diff >= threshold {
			picks = append(picks, models.ValuePick{
				PlayerID:          entry.PlayerID,
				Name:              entry.Name,
				Positions:         entry.Positions,
				ADP:               entry.ADP,
				ValueDifferential: diff,
			})
		}
	}
	sort.Slice(picks, func(i, j int) bool {
		return picks[i].ValueDifferential > picks[j].ValueDifferential
	})
	return picks
}

// Enrich overlays merged board data onto an available-player list and
// re-sorts by the merged rank.
func (m *Manager) Enrich(players []models.AvailablePlayer) []models.AvailablePlayer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.board == nil {
		return players
	}

	for i := range players {
		entry, ok := m.board[players[i].PlayerID]
		if !ok {
			continue
		}
		players[i].Rank = entry.OverallRank
		players[i].ADP = entry.ADP
	}
	sort.SliceStable(players, func(i, j int) bool { return players[i].Rank < players[j].Rank })
	return players
}

// LastUpdate reports when the board was last rebuilt.
func (m *Manager) LastUpdate() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdate
}

// NormalizeName lowercases a player name and strips punctuation and
// generational suffixes so names match across platforms.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer(".", "", "'", "", ",", "").Replace(name)
	fields := strings.Fields(name)
	for len(fields) > 1 {
		switch fields[len(fields)-1] {
		case "jr", "sr", "ii", "iii", "iv", "v":
			fields = fields[:len(fields)-1]
		default:
			return strings.Join(fields, " ")
		}
	}
	return strings.Join(fields, " ")
}

func (m *Manager) cachePath() string {
	if m.cfg.DataDir == "" {
		return ""
	}
	name := cacheFile
	if m.cfg.Key != "" {
		name = "rankings_" + m.cfg.Key + ".json"
	}
	return filepath.Join(m.cfg.DataDir, name)
}

func (m *Manager) loadCache() bool {
	path := m.cachePath()
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) >= m.cfg.CacheTTL {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var snap boardSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("discarding corrupt rankings board cache")
		return false
	}
	// A cache built for a different league shape is useless.
	if snap.Scoring != m.cfg.Scoring || snap.Superflex != m.cfg.Superflex {
		return false
	}

	m.mu.Lock()
	m.board = snap.Players
	m.lastUpdate = snap.LastUpdate
	m.mu.Unlock()
	log.Info().Int("players", len(snap.Players)).Msg("loaded rankings board from cache")
	return true
}

func (m *Manager) saveCache() {
	path := m.cachePath()
	if path == "" {
		return
	}

	m.mu.RLock()
	snap := boardSnapshot{
		LastUpdate: m.lastUpdate,
		Scoring:    m.cfg.Scoring,
		Superflex:  m.cfg.Superflex,
		Players:    m.board,
	}
	m.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn().Err(err).Msg("create rankings board cache dir")
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Msg("write rankings board cache")
	}
}

func hasPositionIn(positions []string, want string) bool {
	for _, p := range positions {
		if p == want {
			return true
		}
	}
	return false
}
