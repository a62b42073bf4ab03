// Package monitor implements the live draft poll loop: it fetches the pick
// list on a fixed interval, diffs it against known state to detect new
// picks, keeps the turn prediction current, and fires speculative
// recommendation work ahead of the user's turn.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adamrubinsky/draft-copilot/internal/events"
	"github.com/adamrubinsky/draft-copilot/internal/models"
	"github.com/adamrubinsky/draft-copilot/internal/predictor"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// State is the poll loop's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateMonitoring
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateMonitoring:
		return "monitoring"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrConfiguration marks a fatal Start failure: the draft setup itself is
// invalid and retrying cannot help.
var ErrConfiguration = errors.New("invalid draft configuration")

// ErrNotIdle is returned when Start is called on a loop that is already
// monitoring or stopped.
var ErrNotIdle = errors.New("monitor already started")

// SnapshotSource pulls the current draft view from the external platform.
// Calls may fail transiently; the poll cadence is the retry mechanism.
type SnapshotSource interface {
	GetDraftInfo(ctx context.Context, draftID string) (models.DraftInfo, error)
	GetDraftPicks(ctx context.Context, draftID string) ([]models.PickRecord, error)
}

// RecommendationCache is what the loop needs from the speculative cache.
// Trigger must not block; Invalidate must be cheap.
type RecommendationCache interface {
	Trigger(ctx context.Context, currentOverall, picksAhead int, kind predictor.TriggerKind)
	Invalidate(reason string)
}

// StateStore persists the monitor's view across restarts. Best effort.
type StateStore interface {
	Save(snap models.DraftStateSnapshot) error
	Load(draftID string) *models.DraftStateSnapshot
}

// DefaultPollInterval is the steady-state tick cadence.
const DefaultPollInterval = 5 * time.Second

// Config wires the loop's collaborators. Only the snapshot source is
// required.
type Config struct {
	PollInterval time.Duration       // default 5s
	Triggers     predictor.Config    // trigger thresholds
	Cache        RecommendationCache // optional
	Events       events.Sink         // optional
	States       StateStore          // optional
	Clock        clockwork.Clock     // optional, defaults to the real clock
}

// Monitor owns the draft state exclusively: known picks and the observed
// pick count are only ever mutated on its poll goroutine.
type Monitor struct {
	source SnapshotSource
	config Config
	clock  clockwork.Clock

	mu                sync.RWMutex
	state             State
	cfg               models.DraftConfiguration
	pred              *predictor.TurnPredictor
	knownPicks        []models.PickRecord
	lastObservedCount int

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a monitor around a snapshot source.
func New(source SnapshotSource, config Config) *Monitor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Monitor{
		source: source,
		config: config,
		clock:  clock,
		state:  StateIdle,
	}
}

// Start fetches the baseline snapshot and begins polling. A fetch failure
// leaves the monitor in the initializing state and returns a recoverable
// error; the caller may simply call Start again. A configuration problem is
// fatal and wraps ErrConfiguration.
func (m *Monitor) Start(ctx context.Context, draftID, userTeamID string) error {
	m.mu.Lock()
	if m.state != StateIdle && m.state != StateInitializing {
		m.mu.Unlock()
		return ErrNotIdle
	}
	m.state = StateInitializing
	m.mu.Unlock()

	info, err := m.source.GetDraftInfo(ctx, draftID)
	if err != nil {
		return fmt.Errorf("fetch draft info: %w", err)
	}

	cfg := models.DraftConfiguration{
		DraftID:     draftID,
		TeamCount:   info.TeamCount,
		TotalRounds: info.TotalRounds,
		DraftOrder:  info.DraftOrder,
		UserTeamID:  userTeamID,
	}
	pred, err := predictor.New(cfg, m.config.Triggers)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	picks, err := m.source.GetDraftPicks(ctx, draftID)
	if err != nil {
		return fmt.Errorf("fetch baseline picks: %w", err)
	}

	if m.config.States != nil {
		if snap := m.config.States.Load(draftID); snap != nil {
			if snap.UserTeamID != userTeamID {
				log.Warn().
					Str("saved_team", snap.UserTeamID).
					Str("user_team", userTeamID).
					Msg("saved draft state belongs to a different team, ignoring")
			} else {
				log.Info().
					Int("saved_pick_count", snap.LastPickCount).
					Str("last_updated", snap.LastUpdated).
					Msg("resuming draft from saved state")
			}
		}
	}

	runCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.cfg = cfg
	m.pred = pred
	m.knownPicks = picks
	m.lastObservedCount = len(picks)
	m.state = StateMonitoring
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	log.Info().
		Str("draft_id", draftID).
		Str("user_team_id", userTeamID).
		Int("team_count", cfg.TeamCount).
		Int("total_rounds", cfg.TotalRounds).
		Int("picks_made", len(picks)).
		Msg("draft monitor started")

	go m.run(runCtx)
	return nil
}

// Stop requests termination and waits for the poll goroutine to exit. An
// in-flight speculative computation is allowed to finish; its result lands
// in the cache and is simply never consumed.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	m.mu.Lock()
	m.state = StateStopped
	m.mu.Unlock()
	log.Info().Msg("draft monitor stopped")
}

// State returns the loop's lifecycle state.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CurrentPrediction returns the point-in-time turn prediction.
func (m *Monitor) CurrentPrediction() models.TurnPrediction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pred == nil {
		return models.TurnPrediction{}
	}
	return m.pred.Predict(m.lastObservedCount + 1)
}

// KnownPicks returns a copy of the accumulated pick records.
func (m *Monitor) KnownPicks() []models.PickRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.PickRecord, len(m.knownPicks))
	copy(out, m.knownPicks)
	return out
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := m.clock.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if done := m.tick(ctx); done {
				return
			}
		}
	}
}

// tick performs one poll cycle: fetch, diff, invalidate on new picks,
// trigger check. The order matters: invalidation of stale speculative
// results happens before a new computation can be launched, so a tick never
// launches work that its own pick detection would immediately invalidate.
// Returns true when the draft is complete and polling should stop.
func (m *Monitor) tick(ctx context.Context) bool {
	picks, err := m.source.GetDraftPicks(ctx, m.cfg.DraftID)
	if err != nil {
		// Non-fatal: the next tick retries.
		log.Warn().Err(err).Str("draft_id", m.cfg.DraftID).Msg("pick fetch failed, retrying next tick")
		return false
	}

	m.mu.Lock()
	var newPicks []models.PickRecord
	if len(picks) > m.lastObservedCount {
		newPicks = picks[m.lastObservedCount:]
		m.knownPicks = append(m.knownPicks, newPicks...)
		m.lastObservedCount = len(picks)
	}
	current := m.lastObservedCount + 1
	complete := m.lastObservedCount >= m.cfg.TotalPicks()
	if complete {
		m.state = StateStopped
	}
	m.mu.Unlock()

	if len(newPicks) > 0 {
		log.Info().
			Int("new_picks", len(newPicks)).
			Int("pick_count", current-1).
			Msg("new picks detected")
		m.emit(ctx, events.TypeNewPicksDetected, events.NewPicksDetectedPayload{
			Picks:     newPicks,
			PickCount: current - 1,
		})
		// Unconditional: any pick changes who is available, whether or not
		// the user's turn is near.
		if m.config.Cache != nil {
			m.config.Cache.Invalidate("new picks detected")
		}
	}

	if complete {
		log.Info().Str("draft_id", m.cfg.DraftID).Msg("draft complete")
		m.emit(ctx, events.TypeDraftCompleted, events.DraftCompletedPayload{
			TotalPicks: m.cfg.TotalPicks(),
		})
		return true
	}

	if m.config.Cache != nil {
		if kind := m.pred.ShouldTriggerPrecomputation(current); kind != predictor.TriggerNone {
			pred := m.pred.Predict(current)
			m.config.Cache.Trigger(ctx, current, pred.PicksUntilUserTurn, kind)
		}
	}

	m.saveState(current)
	return false
}

func (m *Monitor) emit(ctx context.Context, t events.Type, payload any) {
	if m.config.Events == nil {
		return
	}
	ev, err := events.New(t, m.cfg.DraftID, m.clock.Now(), payload)
	if err != nil {
		log.Warn().Err(err).Str("event_type", string(t)).Msg("build event")
		return
	}
	if err := m.config.Events.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event_type", string(t)).Msg("publish event")
	}
}

func (m *Monitor) saveState(current int) {
	if m.config.States == nil {
		return
	}
	snap := models.DraftStateSnapshot{
		DraftID:       m.cfg.DraftID,
		UserTeamID:    m.cfg.UserTeamID,
		CurrentPick:   current,
		LastPickCount: m.lastObservedCount,
		LastUpdated:   m.clock.Now().UTC().Format(time.RFC3339),
	}
	if err := m.config.States.Save(snap); err != nil {
		log.Warn().Err(err).Msg("save draft state")
	}
}
