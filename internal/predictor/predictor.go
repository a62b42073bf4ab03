// Package predictor binds the snake-draft arithmetic to a concrete draft
// configuration and decides when speculative recommendation work should be
// kicked off ahead of the user's turn.
package predictor

import (
	"fmt"
	"sync"

	"github.com/adamrubinsky/draft-copilot/internal/models"
	"github.com/adamrubinsky/draft-copilot/internal/snake"
)

// TriggerKind classifies a pre-computation trigger decision.
type TriggerKind int

const (
	// TriggerNone means no speculative work should start this tick.
	TriggerNone TriggerKind = iota
	// TriggerInitial fires once at the early-warning threshold.
	TriggerInitial
	// TriggerRevision fires once at the late threshold to refresh the
	// earlier computation against the picks made since.
	TriggerRevision
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerInitial:
		return "initial"
	case TriggerRevision:
		return "revision"
	default:
		return "none"
	}
}

// Default trigger thresholds, in picks before the user's turn.
const (
	DefaultEarlyThreshold = 6
	DefaultLateThreshold  = 3
)

// Config tunes the trigger thresholds.
type Config struct {
	EarlyThreshold int // defaults to DefaultEarlyThreshold
	LateThreshold  int // defaults to DefaultLateThreshold
}

func (c Config) withDefaults() Config {
	if c.EarlyThreshold <= 0 {
		c.EarlyThreshold = DefaultEarlyThreshold
	}
	if c.LateThreshold <= 0 {
		c.LateThreshold = DefaultLateThreshold
	}
	return c
}

// TurnPredictor computes how many picks remain until the user's turn and
// decides trigger transitions. Prediction itself is a pure function of the
// current overall pick number; the predictor only remembers which pick
// numbers it has already triggered for, so repeated polls at an unchanged
// pick count stay idempotent.
type TurnPredictor struct {
	cfg      models.DraftConfiguration
	position int
	triggers Config

	mu               sync.Mutex
	lastInitialPick  int
	lastRevisionPick int
}

// New validates the configuration and builds a predictor for the user's team.
func New(cfg models.DraftConfiguration, triggers Config) (*TurnPredictor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid draft configuration: %w", err)
	}
	return &TurnPredictor{
		cfg:      cfg,
		position: cfg.UserPosition(),
		triggers: triggers.withDefaults(),
	}, nil
}

// Predict recomputes the turn prediction for the given overall pick number.
// Side-effect free.
func (p *TurnPredictor) Predict(currentOverall int) models.TurnPrediction {
	picks, ok := snake.PicksUntilTeamTurn(currentOverall, p.position, p.cfg.TeamCount, p.cfg.TotalRounds)
	if !ok {
		return models.TurnPrediction{CurrentOverallPick: currentOverall}
	}
	return models.TurnPrediction{
		CurrentOverallPick:  currentOverall,
		PicksUntilUserTurn:  picks,
		UserNextOverallPick: currentOverall + picks,
		Known:               true,
	}
}

// ShouldTriggerPrecomputation reports whether a speculative computation
// should start for the given overall pick number. Each kind fires at most
// once per pick number: polling repeatedly at an unchanged pick count
// returns the trigger on the first call and TriggerNone afterwards.
func (p *TurnPredictor) ShouldTriggerPrecomputation(currentOverall int) TriggerKind {
	pred := p.Predict(currentOverall)
	if !pred.Known {
		return TriggerNone
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch pred.PicksUntilUserTurn {
	case p.triggers.EarlyThreshold:
		if p.lastInitialPick == currentOverall {
			return TriggerNone
		}
		p.lastInitialPick = currentOverall
		return TriggerInitial
	case p.triggers.LateThreshold:
		if p.lastRevisionPick == currentOverall {
			return TriggerNone
		}
		p.lastRevisionPick = currentOverall
		return TriggerRevision
	}
	return TriggerNone
}
