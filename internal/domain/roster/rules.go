package roster

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
)

var (
	ErrSquadFull                = errors.New("squad is full")
	ErrPositionLimitExceeded    = errors.New("position limit exceeded")
	ErrTooManyPlayers           = errors.New("too many players in allocation")
	ErrOwnedByOtherManager      = errors.New("player owned by another manager this phase")
	ErrDuplicatePlayerInRequest = errors.New("duplicate player in request")
)

// Limits stores roster validation parameters. The per-position caps are
// exact: a fifth defender is rejected even when total slots remain open.
type Limits struct {
	SquadSize     int
	MaxByPosition map[player.Position]int
}

func DefaultLimits() Limits {
	return Limits{
		SquadSize: 11,
		MaxByPosition: map[player.Position]int{
			player.PositionGoalkeeper: 1,
			player.PositionDefender:   4,
			player.PositionMidfielder: 5,
			player.PositionForward:    3,
		},
	}
}

// CheckAdmission decides whether a player with the candidate position may
// join a roster currently holding the given positions. Errors carry the
// offending limit and the current count, so callers can render a precise
// message.
func CheckAdmission(held []player.Position, candidate player.Position, limits Limits) error {
	if len(held) >= limits.SquadSize {
		return fmt.Errorf("%w: size=%d max=%d", ErrSquadFull, len(held), limits.SquadSize)
	}

	max, ok := limits.MaxByPosition[candidate]
	if !ok {
		return fmt.Errorf("unknown player position: %s", candidate)
	}

	current := 0
	for _, pos := range held {
		if pos == candidate {
			current++
		}
	}
	if current >= max {
		return fmt.Errorf("%w: pos=%s current=%d max=%d", ErrPositionLimitExceeded, candidate, current, max)
	}

	return nil
}

// ValidateAllocations validates a bulk phase allocation standalone: the new
// list replaces whatever squad existed for the phase, so the caps apply to
// the list alone rather than merged with prior membership.
func ValidateAllocations(positions []player.Position, limits Limits) error {
	if len(positions) > limits.SquadSize {
		return fmt.Errorf("%w: count=%d max=%d", ErrTooManyPlayers, len(positions), limits.SquadSize)
	}

	counts := make(map[player.Position]int, len(limits.MaxByPosition))
	for _, pos := range positions {
		max, ok := limits.MaxByPosition[pos]
		if !ok {
			return fmt.Errorf("unknown player position: %s", pos)
		}
		counts[pos]++
		if counts[pos] > max {
			return fmt.Errorf("%w: pos=%s current=%d max=%d", ErrPositionLimitExceeded, pos, counts[pos], max)
		}
	}

	return nil
}
