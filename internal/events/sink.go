package events

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Sink receives monitor events. Implementations must be safe for concurrent
// use; publish failures are the sink's problem and must not stall the poll
// loop.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// CallbackSink adapts a plain function to a Sink, for in-process consumers
// such as a CLI display.
type CallbackSink func(ev Event)

func (s CallbackSink) Publish(_ context.Context, ev Event) error {
	s(ev)
	return nil
}

// LogSink writes every event to the structured log.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, ev Event) error {
	log.Info().
		Str("event_id", ev.ID.String()).
		Str("event_type", string(ev.Type)).
		Str("draft_id", ev.DraftID).
		RawJSON("payload", ev.Payload).
		Msg("draft event")
	return nil
}

// MultiSink fans one event out to several sinks. Individual failures are
// logged and do not stop delivery to the remaining sinks.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, ev Event) error {
	for _, s := range m {
		if err := s.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).
				Str("event_type", string(ev.Type)).
				Msg("event sink publish failed")
		}
	}
	return nil
}
