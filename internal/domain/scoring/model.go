package scoring

import "context"

// PlayerPoints is one player's score for one real-world gameweek.
type PlayerPoints struct {
	PlayerID int64
	Gameweek int
	Points   int64
}

// Repository describes gameweek score persistence needs from use cases.
type Repository interface {
	UpsertMany(ctx context.Context, points []PlayerPoints) error
	// TotalsForPlayers sums points per player across the inclusive gameweek
	// range, omitting players with no recorded scores.
	TotalsForPlayers(ctx context.Context, playerIDs []int64, fromGameweek, toGameweek int) (map[int64]int64, error)
}

// PhaseForGameweek maps a gameweek to the roster phase it scores against:
// phases cover gameweeks 1-9, 10-19, 20-29 and 30 onwards.
func PhaseForGameweek(gameweek int) int {
	switch {
	case gameweek <= 9:
		return 1
	case gameweek <= 19:
		return 2
	case gameweek <= 29:
		return 3
	default:
		return 4
	}
}

// GameweekRangeForPhase is the inverse of PhaseForGameweek: the inclusive
// gameweek window a phase squad earns points from.
func GameweekRangeForPhase(phase int) (from, to int) {
	switch phase {
	case 1:
		return 1, 9
	case 2:
		return 10, 19
	case 3:
		return 20, 29
	default:
		return 30, 38
	}
}
