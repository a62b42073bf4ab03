package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adamrubinsky/draft-copilot/internal/league"
	"github.com/adamrubinsky/draft-copilot/internal/models"
)

// BuildSystemPrompt assembles the assistant's standing instructions with
// the league's analyzed settings baked in.
func BuildSystemPrompt(settings league.Settings, now time.Time) string {
	var b strings.Builder

	b.WriteString("You are an expert fantasy football draft assistant with deep knowledge of player analysis, draft strategy, and league dynamics.\n\n")

	b.WriteString("LEAGUE CONTEXT:\n")
	if settings.LeagueID == "" {
		b.WriteString("- Using default SUPERFLEX Half-PPR settings\n")
	} else {
		shape := "Standard"
		if settings.IsSuperflex() {
			shape = "SUPERFLEX"
		}
		fmt.Fprintf(&b, "- League: %s\n", settings.LeagueName)
		fmt.Fprintf(&b, "- Scoring: %s (%.1f points per reception)\n", strings.ToUpper(string(settings.ScoringFormat)), settings.Receptions)
		fmt.Fprintf(&b, "- Teams: %d\n", settings.TotalTeams)
		fmt.Fprintf(&b, "- Format: %s (%d QB spots)\n", shape, settings.TotalQBSpots())
		if len(settings.RosterPositions) > 0 {
			fmt.Fprintf(&b, "- Roster: %s\n", strings.Join(settings.RosterPositions, ", "))
		}
		if scarcity := settings.PositionScarcity(); len(scarcity) > 0 {
			fmt.Fprintf(&b, "- Position scarcity (starting slots per team): QB %.2f, RB %.2f, WR %.2f, TE %.2f\n",
				scarcity["QB"], scarcity["RB"], scarcity["WR"], scarcity["TE"])
		}
	}

	fmt.Fprintf(&b, "\nCURRENT DATE: %s\n\n", now.Format("January 2, 2006"))

	b.WriteString(`YOUR EXPERTISE:
- Player analysis and comparisons
- Draft strategy optimization
- Roster construction
- Value identification
- Positional scarcity understanding

RESPONSE STYLE:
- Start with a clear recommendation
- Provide 2-3 key supporting points
- End with actionable advice
- Keep responses concise but comprehensive (2-4 paragraphs max)

IMPORTANT CONSIDERATIONS:
- SUPERFLEX leagues make QBs much more valuable
- Position scarcity varies by league settings
- ADP vs current availability creates value opportunities

Always consider the league context in your analysis.`)

	return b.String()
}

// BuildRecommendationPrompt renders one recommendation request as the user
// message. Players arrive pre-sorted by rank; only the top of the board is
// included to keep the prompt small.
func BuildRecommendationPrompt(req models.RecommendationRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "DRAFT RECOMMENDATION REQUEST for Pick #%d", req.PickNumber)
	if req.PicksAhead > 0 {
		fmt.Fprintf(&b, " (your turn in %d picks)", req.PicksAhead)
	}
	b.WriteString("\n\nAVAILABLE PLAYERS (best first):\n")
	for i, p := range req.Available {
		fmt.Fprintf(&b, "%d. %s (%s, %s)", p.Rank, p.Name, strings.Join(p.Positions, "/"), orFree(p.Team))
		if p.ADP > 0 {
			fmt.Fprintf(&b, " ADP %.1f", p.ADP)
		}
		b.WriteString("\n")
		if i >= 19 {
			break
		}
	}

	if len(req.ValuePicks) > 0 {
		b.WriteString("\nVALUE ALERTS (still available past their ADP):\n")
		for _, v := range req.ValuePicks {
			fmt.Fprintf(&b, "- %s (%s) ADP %.1f, %.0f picks past\n",
				v.Name, strings.Join(v.Positions, "/"), v.ADP, v.ValueDifferential)
		}
	}

	b.WriteString("\nYOUR ROSTER SO FAR:\n")
	if len(req.Roster.PlayerNames) == 0 {
		b.WriteString("(empty)\n")
	} else {
		fmt.Fprintf(&b, "%s\n", strings.Join(req.Roster.PlayerNames, ", "))
		b.WriteString("Position counts: ")
		b.WriteString(formatPositionCounts(req.Roster.PositionCounts))
		b.WriteString("\n")
	}

	b.WriteString(`
Please provide a draft recommendation considering:
1. Best value picks based on ADP
2. Positional needs and scarcity
3. League-specific strategy

Provide:
- PRIMARY RECOMMENDATION with clear reasoning
- 2-3 ALTERNATIVE OPTIONS
- STRATEGY NOTES for future picks`)

	return b.String()
}

func formatPositionCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func orFree(team string) string {
	if team == "" {
		return "FA"
	}
	return team
}
