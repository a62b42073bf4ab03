package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamrubinsky/draft-copilot/internal/events"
	"github.com/adamrubinsky/draft-copilot/internal/models"
	"github.com/adamrubinsky/draft-copilot/internal/monitor"
	"github.com/adamrubinsky/draft-copilot/internal/speculative"
)

type stubPredictions struct {
	state      monitor.State
	prediction models.TurnPrediction
	picks      []models.PickRecord
}

func (s *stubPredictions) State() monitor.State                    { return s.state }
func (s *stubPredictions) CurrentPrediction() models.TurnPrediction { return s.prediction }
func (s *stubPredictions) KnownPicks() []models.PickRecord          { return s.picks }

type stubCache struct {
	entry *speculative.Entry
}

func (s *stubCache) Read() *speculative.Entry { return s.entry }

func newTestServer(t *testing.T, predictions PredictionSource, cache RecommendationReader) (*Server, *httptest.Server) {
	t.Helper()
	manager := NewConnectionManager(DefaultConnectionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go manager.Start(ctx)

	s := NewServer(Config{
		Addr:        ":0",
		DraftID:     "draft-1",
		Manager:     manager,
		Predictions: predictions,
		Cache:       cache,
	})
	srv := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(srv.Close)
	return s, srv
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t, &stubPredictions{state: monitor.StateMonitoring}, &stubCache{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "monitoring", body["state"])
}

func TestPredictionEndpoint(t *testing.T) {
	predictions := &stubPredictions{
		state: monitor.StateMonitoring,
		prediction: models.TurnPrediction{
			CurrentOverallPick: 53,
			PicksUntilUserTurn: 1,
			UserNextOverallPick: 54,
			Known:              true,
		},
		picks: make([]models.PickRecord, 52),
	}
	_, srv := newTestServer(t, predictions, &stubCache{})

	resp, err := http.Get(srv.URL + "/api/prediction")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body predictionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "draft-1", body.DraftID)
	assert.Equal(t, 52, body.PickCount)
	assert.Equal(t, 1, body.Prediction.PicksUntilUserTurn)
}

func TestRecommendationEndpoint(t *testing.T) {
	cache := &stubCache{entry: &speculative.Entry{
		TriggeringPick: 48,
		PicksAhead:     6,
		TriggerKind:    "initial",
		Payload:        "Take the WR.",
		CreatedAt:      time.Now(),
	}}
	_, srv := newTestServer(t, &stubPredictions{}, cache)

	resp, err := http.Get(srv.URL + "/api/recommendation")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body recommendationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 48, body.TriggeringPick)
	assert.Equal(t, "initial", body.TriggerKind)
	assert.Equal(t, "Take the WR.", body.Recommendation)
}

func TestRecommendationEndpointEmpty(t *testing.T) {
	_, srv := newTestServer(t, &stubPredictions{}, &stubCache{})

	resp, err := http.Get(srv.URL + "/api/recommendation")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPicksEndpoint(t *testing.T) {
	predictions := &stubPredictions{picks: []models.PickRecord{
		{OverallPick: 1, Round: 1, TeamID: "2", PlayerID: "p3"},
	}}
	_, srv := newTestServer(t, predictions, &stubCache{})

	resp, err := http.Get(srv.URL + "/api/picks")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		PickCount int                 `json:"pick_count"`
		Picks     []models.PickRecord `json:"picks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.PickCount)
	require.Len(t, body.Picks, 1)
	assert.Equal(t, "p3", body.Picks[0].PlayerID)
}

type stubBoard struct {
	players  []models.AvailablePlayer
	err      error
	position string
	limit    int
}

func (s *stubBoard) TopAvailable(_ context.Context, draftID, position string, limit int) ([]models.AvailablePlayer, error) {
	s.position = position
	s.limit = limit
	return s.players, s.err
}

func TestBoardEndpoint(t *testing.T) {
	manager := NewConnectionManager(DefaultConnectionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go manager.Start(ctx)

	board := &stubBoard{players: []models.AvailablePlayer{
		{PlayerID: "p9", Name: "Tight One", Positions: []string{"TE"}, Rank: 9},
	}}
	s := NewServer(Config{
		Addr:        ":0",
		DraftID:     "draft-1",
		Manager:     manager,
		Predictions: &stubPredictions{},
		Cache:       &stubCache{},
		Board:       board,
	})
	srv := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/board?position=TE&limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Position string                   `json:"position"`
		Players  []models.AvailablePlayer `json:"players"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "TE", body.Position)
	require.Len(t, body.Players, 1)
	assert.Equal(t, "p9", body.Players[0].PlayerID)
	assert.Equal(t, "TE", board.position)
	assert.Equal(t, 5, board.limit)
}

func TestBoardEndpointWithoutBoard(t *testing.T) {
	_, srv := newTestServer(t, &stubPredictions{}, &stubCache{})

	resp, err := http.Get(srv.URL + "/api/board")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketReceivesBroadcast(t *testing.T) {
	manager := NewConnectionManager(DefaultConnectionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go manager.Start(ctx)

	s := NewServer(Config{
		Addr:        ":0",
		DraftID:     "draft-1",
		Manager:     manager,
		Predictions: &stubPredictions{},
		Cache:       &stubCache{},
	})
	srv := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	// Wait for registration before publishing.
	require.Eventually(t, func() bool {
		return manager.ConnectionStats()["draft-1"] == 1
	}, time.Second, 10*time.Millisecond)

	event, err := events.New(events.TypeNewPicksDetected, "draft-1", time.Now(), events.NewPicksDetectedPayload{
		PickCount: 12,
	})
	require.NoError(t, err)
	require.NoError(t, manager.Publish(context.Background(), event))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got events.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, events.TypeNewPicksDetected, got.Type)
	assert.Equal(t, "draft-1", got.DraftID)
}

func TestBroadcastSkipsOtherDrafts(t *testing.T) {
	manager := NewConnectionManager(DefaultConnectionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go manager.Start(ctx)

	event, err := events.New(events.TypeNewPicksDetected, "other-draft", time.Now(), events.NewPicksDetectedPayload{})
	require.NoError(t, err)
	// No connections registered for this draft; publish must not block.
	require.NoError(t, manager.Publish(context.Background(), event))
}
