// Package speculative holds the at-most-one-entry recommendation cache that
// is computed ahead of the user's turn. The poll loop fires Trigger a few
// picks early; the slow engine call runs detached so the loop keeps its
// cadence, and the landed result is served instantly when the turn arrives.
package speculative

import (
	"context"
	"sync"
	"time"

	"github.com/adamrubinsky/draft-copilot/internal/events"
	"github.com/adamrubinsky/draft-copilot/internal/models"
	"github.com/adamrubinsky/draft-copilot/internal/predictor"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Engine produces a pick recommendation. It may take seconds and may fail;
// failures surface only as a cache miss.
type Engine interface {
	Recommend(ctx context.Context, req models.RecommendationRequest) (string, error)
}

// PlayerSource supplies the current available-players view at computation
// time.
type PlayerSource interface {
	AvailablePlayers(ctx context.Context, draftID string) ([]models.AvailablePlayer, error)
}

// RosterProvider supplies the user's roster context for the recommendation
// prompt. Optional; an empty context is used when absent or failing.
type RosterProvider interface {
	UserRosterContext(ctx context.Context) (models.RosterContext, error)
}

// ValueSource flags available players going past their typical draft slot.
// Optional; value alerts are omitted when absent or failing.
type ValueSource interface {
	ValuePicks(ctx context.Context, draftID string, currentPick int) ([]models.ValuePick, error)
}

// Entry is the single cached speculative recommendation.
type Entry struct {
	TriggeringPick int       `json:"triggering_pick"`
	PicksAhead     int       `json:"picks_ahead"`
	ComputedAtPick int       `json:"computed_at_pick"`
	TriggerKind    string    `json:"trigger_kind"`
	Payload        string    `json:"payload"`
	CreatedAt      time.Time `json:"created_at"`
}

// Default timing parameters.
const (
	DefaultTTL           = 5 * time.Minute
	DefaultEngineTimeout = 25 * time.Second
)

// Config tunes the cache.
type Config struct {
	DraftID       string
	TTL           time.Duration   // read-time freshness window, default 5m
	EngineTimeout time.Duration   // per-computation deadline, default 25s
	Roster        RosterProvider  // optional
	Values        ValueSource     // optional
	Events        events.Sink     // optional, receives precompute.ready
	Clock         clockwork.Clock // optional, defaults to the real clock
}

// Cache owns the single speculative slot. All slot reads and writes go
// through one mutex; the engine call itself runs outside the lock.
type Cache struct {
	engine  Engine
	players PlayerSource
	config  Config
	clock   clockwork.Clock

	mu           sync.Mutex
	entry        *Entry
	inFlightPick int // overall pick of a running computation, 0 when idle
}

// NewCache builds a cache around the engine and player source.
func NewCache(engine Engine, players PlayerSource, config Config) *Cache {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.EngineTimeout <= 0 {
		config.EngineTimeout = DefaultEngineTimeout
	}
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		engine:  engine,
		players: players,
		config:  config,
		clock:   clock,
	}
}

// Trigger starts a speculative computation for the given overall pick
// number. Fire-and-forget: the engine call runs in a background goroutine
// and never blocks the caller. Duplicate triggers for a pick number that is
// already computed or in flight are ignored.
func (c *Cache) Trigger(ctx context.Context, currentOverall, picksAhead int, kind predictor.TriggerKind) {
	c.mu.Lock()
	if c.entry != nil && c.entry.ComputedAtPick == currentOverall {
		c.mu.Unlock()
		log.Debug().Int("overall_pick", currentOverall).Msg("speculative entry already computed for this pick")
		return
	}
	if c.inFlightPick == currentOverall {
		c.mu.Unlock()
		log.Debug().Int("overall_pick", currentOverall).Msg("speculative computation already in flight")
		return
	}
	c.inFlightPick = currentOverall
	c.mu.Unlock()

	log.Info().
		Int("overall_pick", currentOverall).
		Int("picks_ahead", picksAhead).
		Str("kind", kind.String()).
		Msg("starting speculative recommendation")

	// Detached from the tick's context: a computation in flight when the
	// loop stops is allowed to finish and land harmlessly.
	go c.compute(context.WithoutCancel(ctx), currentOverall, picksAhead, kind)
}

func (c *Cache) compute(ctx context.Context, currentOverall, picksAhead int, kind predictor.TriggerKind) {
	start := c.clock.Now()

	ctx, cancel := context.WithTimeout(ctx, c.config.EngineTimeout)
	defer cancel()

	entry, err := c.runEngine(ctx, currentOverall, picksAhead)

	c.mu.Lock()
	if c.inFlightPick == currentOverall {
		c.inFlightPick = 0
	}
	if err != nil {
		c.mu.Unlock()
		// Swallowed: readers see a cache miss and fall back to a
		// synchronous computation at turn time.
		log.Warn().Err(err).Int("overall_pick", currentOverall).Msg("speculative recommendation failed")
		return
	}
	entry.TriggerKind = kind.String()
	c.entry = entry // single slot: replaces whatever was there
	c.mu.Unlock()

	elapsed := c.clock.Since(start)
	log.Info().
		Int("overall_pick", currentOverall).
		Dur("elapsed", elapsed).
		Msg("speculative recommendation cached")

	c.emitReady(ctx, entry, elapsed)
}

func (c *Cache) runEngine(ctx context.Context, currentOverall, picksAhead int) (*Entry, error) {
	available, err := c.players.AvailablePlayers(ctx, c.config.DraftID)
	if err != nil {
		return nil, err
	}

	var roster models.RosterContext
	if c.config.Roster != nil {
		roster, err = c.config.Roster.UserRosterContext(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("roster context unavailable, recommending without it")
			roster = models.RosterContext{}
		}
	}

	var values []models.ValuePick
	if c.config.Values != nil {
		values, err = c.config.Values.ValuePicks(ctx, c.config.DraftID, currentOverall)
		if err != nil {
			log.Warn().Err(err).Msg("value picks unavailable, recommending without them")
			values = nil
		}
	}

	payload, err := c.engine.Recommend(ctx, models.RecommendationRequest{
		PickNumber: currentOverall,
		PicksAhead: picksAhead,
		Available:  available,
		Roster:     roster,
		ValuePicks: values,
	})
	if err != nil {
		return nil, err
	}

	return &Entry{
		TriggeringPick: currentOverall,
		PicksAhead:     picksAhead,
		ComputedAtPick: currentOverall,
		Payload:        payload,
		CreatedAt:      c.clock.Now(),
	}, nil
}

func (c *Cache) emitReady(ctx context.Context, entry *Entry, elapsed time.Duration) {
	if c.config.Events == nil {
		return
	}
	ev, err := events.New(events.TypePrecomputationReady, c.config.DraftID, c.clock.Now(), events.PrecomputationReadyPayload{
		TriggeringPick: entry.TriggeringPick,
		PicksAhead:     entry.PicksAhead,
		TriggerKind:    entry.TriggerKind,
		ElapsedMs:      elapsed.Milliseconds(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("build precompute.ready event")
		return
	}
	if err := c.config.Events.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Msg("publish precompute.ready event")
	}
}

// Invalidate unconditionally clears the slot. Any new pick can change who
// is available, so the poll loop calls this on every new-picks tick before
// considering a fresh trigger. No-op when already empty.
func (c *Cache) Invalidate(reason string) {
	c.mu.Lock()
	had := c.entry != nil
	c.entry = nil
	c.mu.Unlock()

	if had {
		log.Info().Str("reason", reason).Msg("invalidated speculative recommendation")
	}
}

// Read returns the cached entry if one exists and is younger than the TTL.
// An expired entry is treated as absent but left in place; the next
// successful Trigger overwrites it.
func (c *Cache) Read() *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil {
		return nil
	}
	if c.clock.Since(c.entry.CreatedAt) >= c.config.TTL {
		return nil
	}
	cp := *c.entry
	return &cp
}
