// Package fantasypros pulls consensus rankings and ADP from FantasyPros.
// There is no public API; the CSV export endpoints work with a logged-in
// session cookie, and a manually exported CSV can be loaded from disk as a
// fallback.
package fantasypros

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adamrubinsky/draft-copilot/clients"
	"github.com/rs/zerolog/log"
)

// DefaultCacheTTL is how long cached boards stay valid. Consensus ranks
// move slowly outside of injury news.
const DefaultCacheTTL = 6 * time.Hour

// Client fetches FantasyPros consensus boards.
type Client struct {
	*clients.BaseClient

	dataDir  string
	cacheTTL time.Duration
}

// NewClient builds a client. sessionCookie may be empty, in which case the
// export endpoints will reject requests and only CSV import works. dataDir
// holds cache files; empty disables disk caching.
func NewClient(sessionCookie, dataDir string) *Client {
	base := clients.NewBaseClient(BaseURL)
	base.SetHeader("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	base.SetHeader("Accept", "text/csv,text/html,application/xhtml+xml")
	if sessionCookie != "" {
		base.SetHeader("Cookie", "session="+sessionCookie)
	}
	return &Client{
		BaseClient: base,
		dataDir:    dataDir,
		cacheTTL:   DefaultCacheTTL,
	}
}

// GetRankings fetches the consensus board for a scoring format, cached on
// disk per format and league shape.
func (c *Client) GetRankings(ctx context.Context, scoring Scoring, superflex, forceRefresh bool) ([]RankedPlayer, error) {
	cacheFile := cacheFileName("rankings", scoring, superflex)
	if !forceRefresh {
		if board, ok := c.loadCache(cacheFile); ok {
			return board, nil
		}
	}

	log.Info().Str("scoring", string(scoring)).Bool("superflex", superflex).
		Msg("fetching fresh rankings from FantasyPros")

	body, err := c.Get(ctx, rankingsPath(scoring, superflex))
	if err != nil {
		return nil, fmt.Errorf("fantasypros rankings: %w", err)
	}
	board, err := ParseRankingsCSV(string(body))
	if err != nil {
		return nil, fmt.Errorf("fantasypros rankings: %w", err)
	}

	c.saveCache(cacheFile, board)
	return board, nil
}

// GetADP fetches average draft position data keyed by player name.
func (c *Client) GetADP(ctx context.Context, scoring Scoring, forceRefresh bool) (map[string]float64, error) {
	cacheFile := cacheFileName("adp", scoring, false)
	if !forceRefresh {
		if board, ok := c.loadCache(cacheFile); ok {
			return adpByName(board), nil
		}
	}

	log.Info().Str("scoring", string(scoring)).Msg("fetching ADP data from FantasyPros")

	body, err := c.Get(ctx, fmt.Sprintf(ADPEndpoint, scoring))
	if err != nil {
		return nil, fmt.Errorf("fantasypros adp: %w", err)
	}
	board, err := ParseRankingsCSV(string(body))
	if err != nil {
		return nil, fmt.Errorf("fantasypros adp: %w", err)
	}

	c.saveCache(cacheFile, board)
	return adpByName(board), nil
}

// LoadRankingsCSV reads a manually exported board from disk. Draft-morning
// fallback when no session cookie is configured.
func LoadRankingsCSV(path string) ([]RankedPlayer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rankings csv: %w", err)
	}
	return ParseRankingsCSV(string(data))
}

// ParseRankingsCSV parses a FantasyPros CSV export. Column layout varies
// between the rankings and ADP exports, so columns are located by header
// name rather than position.
func ParseRankingsCSV(data string) ([]RankedPlayer, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	cols := headerIndex(rows[0])
	nameCol, ok := cols.first("PLAYER NAME", "PLAYER", "PLAYER TEAM (BYE)")
	if !ok {
		return nil, fmt.Errorf("csv missing player column: %q", rows[0])
	}
	rankCol, _ := cols.first("RK", "RANK")
	tierCol, hasTier := cols.first("TIERS", "TIER")
	teamCol, hasTeam := cols.first("TEAM")
	posCol, hasPos := cols.first("POS")
	byeCol, hasBye := cols.first("BYE WEEK", "BYE")
	adpCol, hasADP := cols.first("AVG", "ADP", "AVG.")

	board := make([]RankedPlayer, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if nameCol >= len(row) || strings.TrimSpace(row[nameCol]) == "" {
			continue
		}
		p := RankedPlayer{Rank: i + 1}
		if rankCol < len(row) {
			if n, err := strconv.Atoi(strings.TrimSpace(row[rankCol])); err == nil {
				p.Rank = n
			}
		}
		p.Name, p.Team = splitNameTeam(row[nameCol])
		if hasTeam && teamCol < len(row) && row[teamCol] != "" {
			p.Team = strings.TrimSpace(row[teamCol])
		}
		if hasPos && posCol < len(row) {
			p.Pos = strings.TrimRight(strings.TrimSpace(row[posCol]), "0123456789")
		}
		if hasTier && tierCol < len(row) {
			p.Tier, _ = strconv.Atoi(strings.TrimSpace(row[tierCol]))
		}
		if hasBye && byeCol < len(row) {
			p.ByeWeek, _ = strconv.Atoi(strings.TrimSpace(row[byeCol]))
		}
		if hasADP && adpCol < len(row) {
			p.ADP, _ = strconv.ParseFloat(strings.TrimSpace(row[adpCol]), 64)
		}
		board = append(board, p)
	}
	return board, nil
}

type headerCols map[string]int

func headerIndex(header []string) headerCols {
	cols := make(headerCols, len(header))
	for i, h := range header {
		cols[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	return cols
}

func (c headerCols) first(names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := c[name]; ok {
			return i, true
		}
	}
	return 0, false
}

// splitNameTeam handles the ADP export's combined "Name TEAM (Bye)" column.
func splitNameTeam(field string) (name, team string) {
	name = strings.TrimSpace(field)
	if i := strings.Index(name, "("); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	parts := strings.Fields(name)
	if len(parts) > 2 {
		last := parts[len(parts)-1]
		if len(last) >= 2 && len(last) <= 3 && last == strings.ToUpper(last) {
			return strings.Join(parts[:len(parts)-1], " "), last
		}
	}
	return name, ""
}

func adpByName(board []RankedPlayer) map[string]float64 {
	out := make(map[string]float64, len(board))
	for _, p := range board {
		adp := p.ADP
		if adp == 0 {
			adp = float64(p.Rank)
		}
		out[p.Name] = adp
	}
	return out
}

func (c *Client) cachePath(file string) string {
	if c.dataDir == "" {
		return ""
	}
	return filepath.Join(c.dataDir, file)
}

func (c *Client) loadCache(file string) ([]RankedPlayer, bool) {
	path := c.cachePath(file)
	if path == "" {
		return nil, false
	}
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) >= c.cacheTTL {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var board []RankedPlayer
	if err := json.Unmarshal(data, &board); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("discarding corrupt rankings cache")
		return nil, false
	}
	return board, true
}

func (c *Client) saveCache(file string, board []RankedPlayer) {
	path := c.cachePath(file)
	if path == "" {
		return
	}
	data, err := json.Marshal(board)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn().Err(err).Msg("create rankings cache dir")
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Msg("write rankings cache")
	}
}
