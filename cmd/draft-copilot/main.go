package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/adamrubinsky/draft-copilot/clients/fantasypros"
	"github.com/adamrubinsky/draft-copilot/clients/sleeper"
	"github.com/adamrubinsky/draft-copilot/internal/config"
	"github.com/adamrubinsky/draft-copilot/internal/events"
	"github.com/adamrubinsky/draft-copilot/internal/gateway"
	"github.com/adamrubinsky/draft-copilot/internal/league"
	"github.com/adamrubinsky/draft-copilot/internal/monitor"
	"github.com/adamrubinsky/draft-copilot/internal/predictor"
	"github.com/adamrubinsky/draft-copilot/internal/rankings"
	"github.com/adamrubinsky/draft-copilot/internal/recommend"
	"github.com/adamrubinsky/draft-copilot/internal/speculative"
	"github.com/adamrubinsky/draft-copilot/internal/store"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("LOG_LEVEL") == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("draft copilot exited")
	}
	log.Info().Msg("draft copilot stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	sleeperClient := sleeper.NewClient(cfg.Sleeper.Username, cfg.Sleeper.LeagueID, cfg.DataDir)

	// Analyze the league so rankings and prompts match its shape.
	settings, err := league.Analyze(ctx, sleeperClient)
	if err != nil {
		return err
	}

	draftID := cfg.Sleeper.DraftID
	if draftID == "" {
		draftID, err = sleeperClient.FindDraftID(ctx)
		if err != nil {
			return err
		}
	}

	// Rankings board: Sleeper base, FantasyPros ADP when a session cookie
	// is configured.
	var adpSource rankings.ADPSource
	if cookie := os.Getenv("FANTASYPROS_SESSION_COOKIE"); cookie != "" {
		adpSource = fantasypros.NewClient(cookie, cfg.DataDir)
	}
	board := rankings.New(rankings.Config{
		Scoring:   settings.FantasyProsScoring(),
		Superflex: settings.IsSuperflex(),
		Key:       settings.RankingKey(),
		DataDir:   cfg.DataDir,
	}, sleeperClient, adpSource)
	if err := board.Update(ctx, false); err != nil {
		log.Warn().Err(err).Msg("continuing with raw Sleeper ranks")
	}

	adapter := sleeper.NewSnapshotAdapter(sleeperClient, board)

	// A restart mid-draft picks the team binding up from the saved state
	// instead of re-resolving it against the API.
	states := store.New(cfg.DataDir)
	var userTeamID string
	if snap := states.Load(draftID); snap != nil && snap.UserTeamID != "" {
		userTeamID = snap.UserTeamID
		log.Info().Int("pick_count", snap.LastPickCount).Msg("resuming draft from saved state")
	} else {
		userTeamID, err = adapter.UserTeamID(ctx)
		if err != nil {
			return err
		}
	}

	// Event sinks: always log, optionally NATS, always the WebSocket fanout.
	manager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	sinks := events.MultiSink{events.LogSink{}, manager}
	if cfg.NATS.URL != "" {
		natsCfg := events.DefaultNATSConfig()
		natsCfg.URL = cfg.NATS.URL
		if cfg.NATS.SubjectPrefix != "" {
			natsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
		}
		publisher, err := events.NewNATSPublisher(natsCfg)
		if err != nil {
			return err
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}

	engine := recommend.New(cfg.Anthropic.APIKey, recommend.Config{
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
		Settings:  settings,
	})
	cache := speculative.NewCache(engine, adapter, speculative.Config{
		DraftID:       draftID,
		TTL:           cfg.Cache.TTL(),
		EngineTimeout: cfg.Cache.EngineTimeout(),
		Roster:        adapter,
		Values:        adapter,
		Events:        sinks,
	})

	mon := monitor.New(adapter, monitor.Config{
		PollInterval: cfg.Monitor.PollInterval(),
		Triggers: predictor.Config{
			EarlyThreshold: cfg.Monitor.EarlyThreshold,
			LateThreshold:  cfg.Monitor.LateThreshold,
		},
		Cache:  cache,
		Events: sinks,
		States: states,
	})
	if err := mon.Start(ctx, draftID, userTeamID); err != nil {
		return err
	}
	defer mon.Stop()

	go manager.Start(ctx)

	server := gateway.NewServer(gateway.Config{
		Addr:           cfg.Gateway.Addr,
		DraftID:        draftID,
		AllowedOrigins: cfg.Gateway.AllowedOrigins,
		Manager:        manager,
		Predictions:    mon,
		Cache:          cache,
		Board:          adapter,
	})

	log.Info().
		Str("draft_id", draftID).
		Str("user_team", userTeamID).
		Str("league", settings.LeagueName).
		Msg("draft copilot running")
	return server.Run(ctx)
}
