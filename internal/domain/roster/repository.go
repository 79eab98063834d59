package roster

import (
	"context"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
)

// Allocation is one (player, fee) pair in a bulk phase allocation.
type Allocation struct {
	PlayerID int64
	FeeHalfM int64
}

// Repository describes squad persistence needs from use cases.
//
// ReplaceSquad atomically swaps a manager's squad for one phase: it clears
// the existing membership rows and inserts the new set, inside one
// transactional boundary.
type Repository interface {
	GetByManagerAndPhase(ctx context.Context, managerID string, phase int) (Squad, bool, error)
	ListByPhase(ctx context.Context, phase int) ([]Squad, error)
	ListPlayers(ctx context.Context, squadID string) ([]SquadPlayer, error)
	// PositionsHeld reports the positions of every player currently in the
	// manager's squad for the phase; an empty slice when no squad exists.
	PositionsHeld(ctx context.Context, managerID string, phase int) ([]player.Position, error)
	// OwnersOf maps playerID to the owning manager for the phase, omitting
	// unowned players.
	OwnersOf(ctx context.Context, playerIDs []int64, phase int) (map[int64]string, error)
	ReplaceSquad(ctx context.Context, managerID string, phase int, allocations []Allocation) error
	SetTotalPoints(ctx context.Context, squadID string, totalPoints int64) error
}
