// Package snake implements standard snake-draft pick arithmetic: odd rounds
// proceed forward through the draft order, even rounds in reverse.
//
// Both the live turn predictor and the speculative pre-computation trigger
// consume these functions, so the ordering math is defined exactly once.
package snake

// PickNumberForTeamInRound returns the 1-based overall pick number for the
// team at position (0-based slot in the round-1 order) in the given 1-based
// round. Results are undefined for round < 1 or position outside
// [0, teamCount).
func PickNumberForTeamInRound(round, position, teamCount int) int {
	if round%2 == 1 {
		return (round-1)*teamCount + position + 1
	}
	return (round-1)*teamCount + (teamCount - position)
}

// PicksUntilTeamTurn returns the number of picks that will be made before
// the team's next turn, counting from currentOverall (the 1-based pick
// currently on the clock). A result of 0 means the team is on the clock
// right now. ok is false when the team has no remaining pick within
// totalRounds, or the inputs are out of range.
func PicksUntilTeamTurn(currentOverall, position, teamCount, totalRounds int) (picks int, ok bool) {
	if currentOverall < 1 || teamCount < 1 || position < 0 || position >= teamCount {
		return 0, false
	}

	roundIdx := (currentOverall - 1) / teamCount // 0-based round
	pickInRound := (currentOverall - 1) % teamCount
	if roundIdx >= totalRounds {
		return 0, false
	}

	teamSlot := slotInRound(roundIdx, position, teamCount)
	if pickInRound <= teamSlot {
		// The team's slot this round has not passed yet.
		return teamSlot - pickInRound, true
	}

	// The team already picked this round; count out the rest of this round
	// plus its slot in the next one.
	nextIdx := roundIdx + 1
	if nextIdx >= totalRounds {
		return 0, false
	}
	remaining := teamCount - pickInRound - 1
	return remaining + 1 + slotInRound(nextIdx, position, teamCount), true
}

// slotInRound maps a round-1 position to the 0-based slot within a 0-based
// round, applying the snake direction flip on odd round indices.
func slotInRound(roundIdx, position, teamCount int) int {
	if roundIdx%2 == 0 {
		return position
	}
	return teamCount - 1 - position
}
