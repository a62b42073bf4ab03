package sleeper

const (
	// Base URL. All Sleeper read endpoints are public, no auth required.
	BaseURL = "https://api.sleeper.app/v1"

	// API endpoints
	UserEndpoint          = "/user/%s"
	LeagueEndpoint        = "/league/%s"
	LeagueRostersEndpoint = "/league/%s/rosters"
	DraftEndpoint         = "/draft/%s"
	DraftPicksEndpoint    = "/draft/%s/picks"
	PlayersEndpoint       = "/players/nfl"

	// Players cache file, relative to the client's data directory. The
	// players blob is ~5MB and changes rarely; a daily cache is plenty.
	PlayersCacheFile = "players_cache.json"
)
