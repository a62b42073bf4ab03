package rankings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adamrubinsky/draft-copilot/clients"
	"github.com/adamrubinsky/draft-copilot/clients/fantasypros"
	"github.com/adamrubinsky/draft-copilot/clients/sleeper"
	"github.com/adamrubinsky/draft-copilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlayers struct {
	players map[string]sleeper.Player
	err     error
}

func (s *stubPlayers) GetAllPlayers(context.Context, bool) (map[string]sleeper.Player, error) {
	return s.players, s.err
}

type stubADP struct {
	adp map[string]float64
	err error
}

func (s *stubADP) GetADP(context.Context, fantasypros.Scoring, bool) (map[string]float64, error) {
	return s.adp, s.err
}

func testPlayers() map[string]sleeper.Player {
	return map[string]sleeper.Player{
		"wr1": {PlayerID: "wr1", FirstName: "Wide", LastName: "One", Team: "CIN", FantasyPositions: []string{"WR"}, SearchRank: 1, Active: true},
		"rb1": {PlayerID: "rb1", FirstName: "Run", LastName: "One", Team: "ATL", FantasyPositions: []string{"RB"}, SearchRank: 2, Active: true},
		"wr2": {PlayerID: "wr2", FirstName: "Wide", LastName: "Two", Team: "DAL", FantasyPositions: []string{"WR"}, SearchRank: 13, Active: true},
		"qb1": {PlayerID: "qb1", FirstName: "Pass", LastName: "One", Team: "BUF", FantasyPositions: []string{"QB"}, SearchRank: 20, Active: true},
		"out": {PlayerID: "out", FirstName: "Not", LastName: "Active", FantasyPositions: []string{"RB"}, SearchRank: 3, Active: false},
		"nr":  {PlayerID: "nr", FirstName: "No", LastName: "Rank", FantasyPositions: []string{"TE"}, SearchRank: 0, Active: true},
	}
}

func TestUpdateBuildsBoard(t *testing.T) {
	m := New(Config{}, &stubPlayers{players: testPlayers()}, nil)
	require.NoError(t, m.Update(context.Background(), false))

	entry, ok := m.PlayerRanking("wr1")
	require.True(t, ok)
	assert.Equal(t, "Wide One", entry.Name)
	assert.Equal(t, 1, entry.OverallRank)
	assert.Equal(t, 1, entry.PositionRanks["WR"])

	entry, ok = m.PlayerRanking("wr2")
	require.True(t, ok)
	assert.Equal(t, 2, entry.PositionRanks["WR"])

	// Inactive and unranked players never make the board.
	_, ok = m.PlayerRanking("out")
	assert.False(t, ok)
	_, ok = m.PlayerRanking("nr")
	assert.False(t, ok)
}

func TestSuperflexBoostsQBs(t *testing.T) {
	m := New(Config{Superflex: true}, &stubPlayers{players: testPlayers()}, nil)
	require.NoError(t, m.Update(context.Background(), false))

	// Rank 20 QB adjusts to 12, overtaking the rank 13 WR.
	qb, ok := m.PlayerRanking("qb1")
	require.True(t, ok)
	wr, ok := m.PlayerRanking("wr2")
	require.True(t, ok)
	assert.Less(t, qb.OverallRank, wr.OverallRank)
	assert.Equal(t, 20, qb.SleeperRank)

	// Ranks stay dense after the boost.
	ranks := make(map[int]bool)
	for _, id := range []string{"wr1", "rb1", "wr2", "qb1"} {
		entry, _ := m.PlayerRanking(id)
		ranks[entry.OverallRank] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true, 4: true}, ranks)
}

func TestUpdateMergesADP(t *testing.T) {
	// ADP sources key by display name; the merge normalizes both sides.
	adp := &stubADP{adp: map[string]float64{"Wide One": 1.5, "Run One": 3.2}}
	m := New(Config{}, &stubPlayers{players: testPlayers()}, adp)
	require.NoError(t, m.Update(context.Background(), false))

	entry, _ := m.PlayerRanking("wr1")
	assert.Equal(t, 1.5, entry.ADP)
	entry, _ = m.PlayerRanking("wr2")
	assert.Zero(t, entry.ADP)
}

func TestUpdateMergesADPFromExport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"Rank","Player Team (Bye)","POS","AVG"` + "\n" +
			`"1","Ja'Marr Chase CIN (10)","WR1","1.5"` + "\n"))
	}))
	t.Cleanup(srv.Close)

	fp := fantasypros.NewClient("", "")
	fp.BaseClient = clients.NewBaseClient(srv.URL)

	players := map[string]sleeper.Player{
		"chase": {PlayerID: "chase", FirstName: "Ja'Marr", LastName: "Chase", Team: "CIN", FantasyPositions: []string{"WR"}, SearchRank: 1, Active: true},
	}
	m := New(Config{}, &stubPlayers{players: players}, fp)
	require.NoError(t, m.Update(context.Background(), false))

	// Export names carry punctuation the board names also carry; ADP must
	// still attach.
	entry, ok := m.PlayerRanking("chase")
	require.True(t, ok)
	assert.Equal(t, 1.5, entry.ADP)
}

func TestUpdateToleratesADPFailure(t *testing.T) {
	adp := &stubADP{err: errors.New("no session")}
	m := New(Config{}, &stubPlayers{players: testPlayers()}, adp)
	require.NoError(t, m.Update(context.Background(), false))

	entry, ok := m.PlayerRanking("wr1")
	require.True(t, ok)
	assert.Zero(t, entry.ADP)
}

func TestUpdateFailsWithoutPlayers(t *testing.T) {
	m := New(Config{}, &stubPlayers{err: errors.New("sleeper down")}, nil)
	require.Error(t, m.Update(context.Background(), false))
}

func TestCacheRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	src := &stubPlayers{players: testPlayers()}

	first := New(Config{DataDir: dataDir}, src, nil)
	require.NoError(t, first.Update(context.Background(), false))

	// A second manager with a failing source still comes up from cache.
	second := New(Config{DataDir: dataDir}, &stubPlayers{err: errors.New("down")}, nil)
	require.NoError(t, second.Update(context.Background(), false))
	entry, ok := second.PlayerRanking("wr1")
	require.True(t, ok)
	assert.Equal(t, 1, entry.OverallRank)
}

func TestCacheRejectsDifferentShape(t *testing.T) {
	dataDir := t.TempDir()
	src := &stubPlayers{players: testPlayers()}

	standard := New(Config{DataDir: dataDir}, src, nil)
	require.NoError(t, standard.Update(context.Background(), false))

	superflex := New(Config{DataDir: dataDir, Superflex: true}, &stubPlayers{err: errors.New("down")}, nil)
	require.Error(t, superflex.Update(context.Background(), false))
}

func TestCacheKeyedPerLeagueShape(t *testing.T) {
	dataDir := t.TempDir()
	src := &stubPlayers{players: testPlayers()}

	first := New(Config{DataDir: dataDir, Key: "sleeper_ppr_standard_qb1_teams12"}, src, nil)
	require.NoError(t, first.Update(context.Background(), false))

	// A board with a different key never reads the first board's file.
	other := New(Config{DataDir: dataDir, Key: "sleeper_half_ppr_superflex_qb2_teams12"}, &stubPlayers{err: errors.New("down")}, nil)
	require.Error(t, other.Update(context.Background(), false))

	same := New(Config{DataDir: dataDir, Key: "sleeper_ppr_standard_qb1_teams12"}, &stubPlayers{err: errors.New("down")}, nil)
	require.NoError(t, same.Update(context.Background(), false))
}

func TestTopAvailable(t *testing.T) {
	m := New(Config{}, &stubPlayers{players: testPlayers()}, nil)
	require.NoError(t, m.Update(context.Background(), false))

	top := m.TopAvailable([]string{"wr2", "rb1", "qb1", "ghost"}, "", 2)
	require.Len(t, top, 2)
	assert.Equal(t, "rb1", top[0].PlayerID)
	assert.Equal(t, "wr2", top[1].PlayerID)

	wrs := m.TopAvailable([]string{"wr1", "wr2", "rb1"}, "WR", 10)
	require.Len(t, wrs, 2)
	assert.Equal(t, "wr1", wrs[0].PlayerID)
}

func TestValuePicks(t *testing.T) {
	adp := &stubADP{adp: map[string]float64{"wide two": 10, "pass one": 30}}
	m := New(Config{}, &stubPlayers{players: testPlayers()}, adp)
	require.NoError(t, m.Update(context.Background(), false))

	// At pick 28, a player with ADP 10 is an 18-pick value; ADP 30 is not
	// a value at all.
	picks := m.ValuePicks([]string{"wr2", "qb1"}, 28, 15)
	require.Len(t, picks, 1)
	assert.Equal(t, "wr2", picks[0].PlayerID)
	assert.Equal(t, 18.0, picks[0].ValueDifferential)
}

func TestEnrichOverlaysBoard(t *testing.T) {
	adp := &stubADP{adp: map[string]float64{"wide two": 8}}
	m := New(Config{Superflex: true}, &stubPlayers{players: testPlayers()}, adp)
	require.NoError(t, m.Update(context.Background(), false))

	players := []models.AvailablePlayer{
		{PlayerID: "wr2", Name: "Wide Two", Rank: 12},
		{PlayerID: "qb1", Name: "Pass One", Rank: 20},
	}
	enriched := m.Enrich(players)
	require.Len(t, enriched, 2)
	// The boosted QB sorts ahead of the WR on the merged board.
	assert.Equal(t, "qb1", enriched[0].PlayerID)
	assert.Equal(t, 8.0, enriched[1].ADP)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "jamarr chase", NormalizeName("Ja'Marr Chase"))
	assert.Equal(t, "kenneth walker", NormalizeName("Kenneth Walker III"))
	assert.Equal(t, "marvin harrison", NormalizeName("Marvin Harrison Jr."))
	assert.Equal(t, "aj brown", NormalizeName("A.J. Brown"))
}
