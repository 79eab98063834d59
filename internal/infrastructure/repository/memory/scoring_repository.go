package memory

import (
	"context"

	"github.com/riskibarqy/squad-auction/internal/domain/scoring"
)

type ScoringRepository struct {
	ledger *Ledger
}

func NewScoringRepository(ledger *Ledger) *ScoringRepository {
	return &ScoringRepository{ledger: ledger}
}

func (r *ScoringRepository) UpsertMany(_ context.Context, points []scoring.PlayerPoints) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	for _, row := range points {
		byGameweek, ok := r.ledger.points[row.PlayerID]
		if !ok {
			byGameweek = make(map[int]int64)
			r.ledger.points[row.PlayerID] = byGameweek
		}
		byGameweek[row.Gameweek] = row.Points
	}

	return nil
}

func (r *ScoringRepository) TotalsForPlayers(_ context.Context, playerIDs []int64, fromGameweek, toGameweek int) (map[int64]int64, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	out := make(map[int64]int64)
	for _, playerID := range playerIDs {
		byGameweek, ok := r.ledger.points[playerID]
		if !ok {
			continue
		}
		var total int64
		recorded := false
		for gameweek, pts := range byGameweek {
			if gameweek >= fromGameweek && gameweek <= toGameweek {
				total += pts
				recorded = true
			}
		}
		if recorded {
			out[playerID] = total
		}
	}

	return out, nil
}
