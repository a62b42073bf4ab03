// Package league derives strategy-relevant settings from a league's raw
// configuration: scoring format, superflex detection, positional scarcity.
// These drive which ranking board gets built and how prompts describe the
// league.
package league

import (
	"context"
	"fmt"
	"strings"

	"github.com/adamrubinsky/draft-copilot/clients/fantasypros"
	"github.com/adamrubinsky/draft-copilot/clients/sleeper"
	"github.com/rs/zerolog/log"
)

// ScoringFormat classifies a league's reception scoring.
type ScoringFormat string

const (
	ScoringStandard ScoringFormat = "standard"
	ScoringHalfPPR  ScoringFormat = "half_ppr"
	ScoringPPR      ScoringFormat = "ppr"
)

// Settings is the analyzed shape of a league.
type Settings struct {
	LeagueID   string
	LeagueName string
	TotalTeams int

	ScoringFormat ScoringFormat
	Receptions    float64

	RosterPositions []string
	StartingQBs     int
	StartingRBs     int
	StartingWRs     int
	StartingTEs     int
	FlexSpots       int
	SuperflexSpots  int

	DraftRounds int
}

// IsSuperflex reports whether the league starts a second QB-eligible slot.
func (s Settings) IsSuperflex() bool { return s.SuperflexSpots > 0 }

// TotalQBSpots counts dedicated QB slots plus superflex slots.
func (s Settings) TotalQBSpots() int { return s.StartingQBs + s.SuperflexSpots }

// FantasyProsScoring maps the league's format onto FantasyPros board names.
func (s Settings) FantasyProsScoring() fantasypros.Scoring {
	switch s.ScoringFormat {
	case ScoringPPR:
		return fantasypros.ScoringPPR
	case ScoringHalfPPR:
		return fantasypros.ScoringHalfPPR
	default:
		return fantasypros.ScoringStandard
	}
}

// PositionScarcity scores how contested each position is given the roster
// requirements. Higher means more starting slots chasing the position per
// team. Flex slots count fractionally toward the positions that fill them.
func (s Settings) PositionScarcity() map[string]float64 {
	teams := float64(s.TotalTeams)
	if teams == 0 {
		return nil
	}
	return map[string]float64{
		"QB": float64(s.TotalQBSpots()) / teams,
		"RB": (float64(s.StartingRBs) + float64(s.FlexSpots)*0.4) / teams,
		"WR": (float64(s.StartingWRs) + float64(s.FlexSpots)*0.4) / teams,
		"TE": (float64(s.StartingTEs) + float64(s.FlexSpots)*0.2) / teams,
	}
}

// RankingKey names the ranking board this league needs, used as a cache
// discriminator.
func (s Settings) RankingKey() string {
	shape := "standard"
	if s.IsSuperflex() {
		shape = "superflex"
	}
	return strings.Join([]string{
		"sleeper",
		string(s.ScoringFormat),
		shape,
		fmt.Sprintf("qb%d", s.TotalQBSpots()),
		fmt.Sprintf("teams%d", s.TotalTeams),
	}, "_")
}

// LeagueSource fetches raw league configuration.
type LeagueSource interface {
	GetLeague(ctx context.Context) (*sleeper.League, error)
}

// Analyze fetches a league and derives its settings.
func Analyze(ctx context.Context, source LeagueSource) (Settings, error) {
	raw, err := source.GetLeague(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("analyze league: %w", err)
	}
	settings := FromLeague(raw)

	log.Info().
		Str("league", settings.LeagueName).
		Str("scoring", string(settings.ScoringFormat)).
		Int("teams", settings.TotalTeams).
		Bool("superflex", settings.IsSuperflex()).
		Int("qb_spots", settings.TotalQBSpots()).
		Msg("league analysis complete")
	return settings, nil
}

// FromLeague derives settings from a raw league payload.
func FromLeague(raw *sleeper.League) Settings {
	s := Settings{
		LeagueID:        raw.LeagueID,
		LeagueName:      raw.Name,
		TotalTeams:      raw.TotalRosters,
		RosterPositions: raw.RosterPositions,
		DraftRounds:     raw.Settings.DraftRounds,
	}

	s.Receptions = raw.ScoringSettings["rec"]
	switch {
	case s.Receptions >= 1.0:
		s.ScoringFormat = ScoringPPR
	case s.Receptions >= 0.5:
		s.ScoringFormat = ScoringHalfPPR
	default:
		s.ScoringFormat = ScoringStandard
	}

	for _, pos := range raw.RosterPositions {
		switch pos {
		case "QB":
			s.StartingQBs++
		case "RB":
			s.StartingRBs++
		case "WR":
			s.StartingWRs++
		case "TE":
			s.StartingTEs++
		case "FLEX":
			s.FlexSpots++
		case "SUPER_FLEX":
			s.SuperflexSpots++
		}
	}
	return s
}
