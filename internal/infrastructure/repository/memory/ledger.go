// Package memory is the in-process implementation of every repository
// interface. All state lives in one Ledger guarded by a single mutex, so a
// mutating call is serialized exactly like a SQL transaction with row locks,
// and tests exercise the same re-validation the postgres layer performs.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/domain/manager"
	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
	"github.com/riskibarqy/squad-auction/internal/domain/team"
)

type Ledger struct {
	mu sync.RWMutex

	limits roster.Limits
	now    func() time.Time
	newID  func() string

	managers     map[string]manager.Manager
	teams        map[int64]team.Team
	players      map[int64]player.Player
	auctions     map[string]auction.Auction
	lots         map[string]auction.Lot
	bids         map[string][]auction.Bid        // keyed by lot id
	squads       map[string]roster.Squad         // keyed by squad id
	squadPlayers map[string][]roster.SquadPlayer // keyed by squad id
	points       map[int64]map[int]int64         // player id -> gameweek -> points
}

func NewLedger() *Ledger {
	return &Ledger{
		limits:       roster.DefaultLimits(),
		now:          time.Now,
		newID:        uuid.NewString,
		managers:     make(map[string]manager.Manager),
		teams:        make(map[int64]team.Team),
		players:      make(map[int64]player.Player),
		auctions:     make(map[string]auction.Auction),
		lots:         make(map[string]auction.Lot),
		bids:         make(map[string][]auction.Bid),
		squads:       make(map[string]roster.Squad),
		squadPlayers: make(map[string][]roster.SquadPlayer),
		points:       make(map[int64]map[int]int64),
	}
}

func cloneLot(l auction.Lot) auction.Lot {
	copied := l
	if l.WinnerID != nil {
		winner := *l.WinnerID
		copied.WinnerID = &winner
	}
	return copied
}

func cloneAuction(a auction.Auction) auction.Auction {
	copied := a
	if a.CurrentLotID != nil {
		lotID := *a.CurrentLotID
		copied.CurrentLotID = &lotID
	}
	return copied
}

// squadFor finds or creates the manager's squad for the phase. Caller holds
// the write lock.
func (r *Ledger) squadFor(managerID string, phase int) roster.Squad {
	for _, squad := range r.squads {
		if squad.ManagerID == managerID && squad.Phase == phase {
			return squad
		}
	}

	squad := roster.Squad{
		ID:        r.newID(),
		ManagerID: managerID,
		Phase:     phase,
		CreatedAt: r.now().UTC(),
	}
	r.squads[squad.ID] = squad
	return squad
}
