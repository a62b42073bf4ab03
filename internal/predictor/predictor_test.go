package predictor

import (
	"fmt"
	"testing"

	"github.com/adamrubinsky/draft-copilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twelveTeamConfig(t *testing.T, userSlot int) models.DraftConfiguration {
	t.Helper()
	order := make([]string, 12)
	for i := range order {
		order[i] = fmt.Sprintf("team-%d", i+1)
	}
	return models.DraftConfiguration{
		DraftID:     "draft-1",
		TeamCount:   12,
		TotalRounds: 15,
		DraftOrder:  order,
		UserTeamID:  order[userSlot],
	}
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	cfg := twelveTeamConfig(t, 5)
	cfg.UserTeamID = "not-in-league"
	_, err := New(cfg, Config{})
	require.Error(t, err)

	cfg = twelveTeamConfig(t, 5)
	cfg.DraftOrder = cfg.DraftOrder[:11]
	_, err = New(cfg, Config{})
	require.Error(t, err)
}

func TestPredict(t *testing.T) {
	p, err := New(twelveTeamConfig(t, 5), Config{})
	require.NoError(t, err)

	// User at slot 5 picks at overall 54 in round 5 (forward).
	pred := p.Predict(53)
	require.True(t, pred.Known)
	assert.Equal(t, 1, pred.PicksUntilUserTurn)
	assert.Equal(t, 54, pred.UserNextOverallPick)

	pred = p.Predict(52)
	require.True(t, pred.Known)
	assert.Equal(t, 2, pred.PicksUntilUserTurn)
	assert.Equal(t, 54, pred.UserNextOverallPick)

	// On the clock.
	pred = p.Predict(54)
	require.True(t, pred.Known)
	assert.Equal(t, 0, pred.PicksUntilUserTurn)
}

func TestPredictDraftOver(t *testing.T) {
	p, err := New(twelveTeamConfig(t, 5), Config{})
	require.NoError(t, err)

	pred := p.Predict(12*15 + 1)
	assert.False(t, pred.Known)
}

func TestInitialTriggerFiresOncePerPick(t *testing.T) {
	p, err := New(twelveTeamConfig(t, 5), Config{})
	require.NoError(t, err)

	// picks-until == 6 at overall 48: round 4 reversed, user slot is 6,
	// next turn at 54.
	require.Equal(t, 6, p.Predict(48).PicksUntilUserTurn)

	assert.Equal(t, TriggerInitial, p.ShouldTriggerPrecomputation(48))
	assert.Equal(t, TriggerNone, p.ShouldTriggerPrecomputation(48))
	assert.Equal(t, TriggerNone, p.ShouldTriggerPrecomputation(48))
}

func TestRevisionTriggerIdempotentAtSamePick(t *testing.T) {
	p, err := New(twelveTeamConfig(t, 5), Config{})
	require.NoError(t, err)

	require.Equal(t, 3, p.Predict(51).PicksUntilUserTurn)

	assert.Equal(t, TriggerRevision, p.ShouldTriggerPrecomputation(51))
	assert.Equal(t, TriggerNone, p.ShouldTriggerPrecomputation(51))
	assert.Equal(t, TriggerNone, p.ShouldTriggerPrecomputation(51))
}

func TestTriggerFiresAgainAtFreshPickNumber(t *testing.T) {
	p, err := New(twelveTeamConfig(t, 5), Config{})
	require.NoError(t, err)

	assert.Equal(t, TriggerRevision, p.ShouldTriggerPrecomputation(51))

	// A later turn cycle reaches the same delta at a different pick number
	// and must fire again. User's round 6 pick is overall 67, so delta 3
	// recurs at overall 64.
	require.Equal(t, 3, p.Predict(64).PicksUntilUserTurn)
	assert.Equal(t, TriggerRevision, p.ShouldTriggerPrecomputation(64))
}

func TestNoTriggerBetweenThresholds(t *testing.T) {
	p, err := New(twelveTeamConfig(t, 5), Config{})
	require.NoError(t, err)

	for overall := 49; overall <= 50; overall++ {
		assert.Equal(t, TriggerNone, p.ShouldTriggerPrecomputation(overall), "overall %d", overall)
	}
	// On the clock: no speculative trigger, the consumer reads the cache.
	assert.Equal(t, TriggerNone, p.ShouldTriggerPrecomputation(54))
}

func TestCustomThresholds(t *testing.T) {
	p, err := New(twelveTeamConfig(t, 5), Config{EarlyThreshold: 4, LateThreshold: 2})
	require.NoError(t, err)

	require.Equal(t, 4, p.Predict(50).PicksUntilUserTurn)
	assert.Equal(t, TriggerInitial, p.ShouldTriggerPrecomputation(50))
	require.Equal(t, 2, p.Predict(52).PicksUntilUserTurn)
	assert.Equal(t, TriggerRevision, p.ShouldTriggerPrecomputation(52))
}
