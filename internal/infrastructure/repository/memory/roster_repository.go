package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
)

type RosterRepository struct {
	ledger *Ledger
}

func NewRosterRepository(ledger *Ledger) *RosterRepository {
	return &RosterRepository{ledger: ledger}
}

func (r *RosterRepository) GetByManagerAndPhase(_ context.Context, managerID string, phase int) (roster.Squad, bool, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	for _, squad := range r.ledger.squads {
		if squad.ManagerID == managerID && squad.Phase == phase {
			return squad, true, nil
		}
	}
	return roster.Squad{}, false, nil
}

func (r *RosterRepository) ListByPhase(_ context.Context, phase int) ([]roster.Squad, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	out := make([]roster.Squad, 0)
	for _, squad := range r.ledger.squads {
		if squad.Phase == phase {
			out = append(out, squad)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ManagerID < out[j].ManagerID })

	return out, nil
}

func (r *RosterRepository) ListPlayers(_ context.Context, squadID string) ([]roster.SquadPlayer, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	return append([]roster.SquadPlayer(nil), r.ledger.squadPlayers[squadID]...), nil
}

func (r *RosterRepository) PositionsHeld(_ context.Context, managerID string, phase int) ([]player.Position, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	return r.ledger.heldPositionsLocked(managerID, phase), nil
}

func (r *RosterRepository) OwnersOf(_ context.Context, playerIDs []int64, phase int) (map[int64]string, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	wanted := make(map[int64]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		wanted[id] = struct{}{}
	}

	out := make(map[int64]string)
	for _, squad := range r.ledger.squads {
		if squad.Phase != phase {
			continue
		}
		for _, member := range r.ledger.squadPlayers[squad.ID] {
			if _, ok := wanted[member.PlayerID]; ok {
				out[member.PlayerID] = squad.ManagerID
			}
		}
	}

	return out, nil
}

func (r *RosterRepository) ReplaceSquad(_ context.Context, managerID string, phase int, allocations []roster.Allocation) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	squad := r.ledger.squadFor(managerID, phase)
	members := make([]roster.SquadPlayer, 0, len(allocations))
	for _, alloc := range allocations {
		members = append(members, roster.SquadPlayer{
			SquadID:  squad.ID,
			PlayerID: alloc.PlayerID,
			FeeHalfM: alloc.FeeHalfM,
		})
	}
	r.ledger.squadPlayers[squad.ID] = members

	return nil
}

func (r *RosterRepository) SetTotalPoints(_ context.Context, squadID string, totalPoints int64) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	squad, ok := r.ledger.squads[squadID]
	if !ok {
		return fmt.Errorf("squad not found: id=%s", squadID)
	}
	squad.TotalPoints = totalPoints
	r.ledger.squads[squadID] = squad

	return nil
}
