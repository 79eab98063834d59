package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/team"
)

type PlayerRepository struct {
	ledger *Ledger
}

func NewPlayerRepository(ledger *Ledger) *PlayerRepository {
	return &PlayerRepository{ledger: ledger}
}

func (r *PlayerRepository) List(_ context.Context, filter player.Filter) ([]player.Player, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]player.Player, 0, len(r.ledger.players))
	for _, p := range r.ledger.players {
		if filter.Position != "" && p.Position != filter.Position {
			continue
		}
		if filter.TeamID > 0 && p.TeamID != filter.TeamID {
			continue
		}
		if search != "" && !playerMatches(p, search) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func playerMatches(p player.Player, search string) bool {
	return strings.Contains(strings.ToLower(p.FirstName), search) ||
		strings.Contains(strings.ToLower(p.SecondName), search) ||
		strings.Contains(strings.ToLower(p.WebName), search)
}

func (r *PlayerRepository) GetByID(_ context.Context, id int64) (player.Player, bool, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	p, ok := r.ledger.players[id]
	return p, ok, nil
}

func (r *PlayerRepository) GetByIDs(_ context.Context, ids []int64) ([]player.Player, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	out := make([]player.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.ledger.players[id]; ok {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *PlayerRepository) UpsertMany(_ context.Context, players []player.Player) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	for _, p := range players {
		r.ledger.players[p.ID] = p
	}

	return nil
}

type TeamRepository struct {
	ledger *Ledger
}

func NewTeamRepository(ledger *Ledger) *TeamRepository {
	return &TeamRepository{ledger: ledger}
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	out := make([]team.Team, 0, len(r.ledger.teams))
	for _, t := range r.ledger.teams {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *TeamRepository) UpsertMany(_ context.Context, teams []team.Team) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	for _, t := range teams {
		r.ledger.teams[t.ID] = t
	}

	return nil
}
