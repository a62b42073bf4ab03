package fantasypros

import "fmt"

const (
	// Base URL. The export endpoints require a logged-in session cookie.
	BaseURL = "https://www.fantasypros.com"

	// ADPEndpoint serves consensus average draft position per scoring format.
	ADPEndpoint = "/nfl/adp/%s.php?export=csv"

	// Cache file prefix, relative to the client's data directory. One file
	// per scoring format and league shape.
	cacheFilePrefix = "fantasypros"
)

// Scoring selects a FantasyPros scoring format.
type Scoring string

const (
	ScoringStandard Scoring = "standard"
	ScoringHalfPPR  Scoring = "half-ppr"
	ScoringPPR      Scoring = "ppr"
)

// rankingsPath picks the consensus rankings page for a scoring format.
// Superflex boards rank QBs far higher and are published separately.
func rankingsPath(scoring Scoring, superflex bool) string {
	if superflex {
		switch scoring {
		case ScoringPPR:
			return "/nfl/rankings/superflex-ppr.php?export=csv"
		case ScoringHalfPPR:
			return "/nfl/rankings/superflex-half-ppr.php?export=csv"
		default:
			return "/nfl/rankings/superflex.php?export=csv"
		}
	}
	switch scoring {
	case ScoringPPR:
		return "/nfl/rankings/ppr.php?export=csv"
	case ScoringHalfPPR:
		return "/nfl/rankings/half-ppr.php?export=csv"
	default:
		return "/nfl/rankings/overall.php?export=csv"
	}
}

func cacheFileName(kind string, scoring Scoring, superflex bool) string {
	shape := "standard"
	if superflex {
		shape = "superflex"
	}
	return fmt.Sprintf("%s_%s_%s_%s.json", cacheFilePrefix, kind, scoring, shape)
}
