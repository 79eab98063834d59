package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/domain/budget"
	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
)

// AuctionRepository holds the serialization points of the engine: InsertBid,
// ResolveLot and ReopenLot take the ledger's write lock for their whole
// read-validate-write cycle, the in-memory equivalent of the postgres row
// locks.
type AuctionRepository struct {
	ledger *Ledger
}

func NewAuctionRepository(ledger *Ledger) *AuctionRepository {
	return &AuctionRepository{ledger: ledger}
}

func (r *AuctionRepository) GetOpen(_ context.Context) (auction.Auction, bool, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	for _, a := range r.ledger.auctions {
		if a.Status == auction.StatusOpen {
			return cloneAuction(a), true, nil
		}
	}
	return auction.Auction{}, false, nil
}

func (r *AuctionRepository) GetByID(_ context.Context, id string) (auction.Auction, bool, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	a, ok := r.ledger.auctions[id]
	if !ok {
		return auction.Auction{}, false, nil
	}
	return cloneAuction(a), true, nil
}

func (r *AuctionRepository) Create(_ context.Context, a auction.Auction, lots []auction.Lot) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	if _, exists := r.ledger.auctions[a.ID]; exists {
		return fmt.Errorf("auction already exists: id=%s", a.ID)
	}
	for _, open := range r.ledger.auctions {
		if open.Status == auction.StatusOpen {
			return fmt.Errorf("%w: id=%s", auction.ErrAuctionAlreadyOpen, open.ID)
		}
	}

	r.ledger.auctions[a.ID] = cloneAuction(a)
	for _, lot := range lots {
		r.ledger.lots[lot.ID] = cloneLot(lot)
	}

	return nil
}

func (r *AuctionRepository) SetCurrentLot(_ context.Context, auctionID string, lotID *string) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	a, ok := r.ledger.auctions[auctionID]
	if !ok {
		return fmt.Errorf("%w: id=%s", auction.ErrAuctionNotFound, auctionID)
	}
	if lotID != nil {
		id := *lotID
		a.CurrentLotID = &id
	} else {
		a.CurrentLotID = nil
	}
	r.ledger.auctions[auctionID] = a

	return nil
}

func (r *AuctionRepository) SetStatus(_ context.Context, auctionID string, status auction.Status) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	a, ok := r.ledger.auctions[auctionID]
	if !ok {
		return fmt.Errorf("%w: id=%s", auction.ErrAuctionNotFound, auctionID)
	}
	a.Status = status
	r.ledger.auctions[auctionID] = a

	return nil
}

func (r *AuctionRepository) GetLot(_ context.Context, lotID string) (auction.Lot, bool, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	lot, ok := r.ledger.lots[lotID]
	if !ok {
		return auction.Lot{}, false, nil
	}
	return cloneLot(lot), true, nil
}

func (r *AuctionRepository) ListLots(_ context.Context, auctionID string) ([]auction.Lot, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	return r.ledger.lotsLocked(auctionID), nil
}

func (r *AuctionRepository) ListLotsWonBy(_ context.Context, auctionID, managerID string) ([]auction.Lot, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	out := make([]auction.Lot, 0)
	for _, lot := range r.ledger.lots {
		if lot.AuctionID != auctionID || !lot.Sold {
			continue
		}
		if lot.WinnerID == nil || *lot.WinnerID != managerID {
			continue
		}
		out = append(out, cloneLot(lot))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *AuctionRepository) InsertSettledLots(_ context.Context, lots []auction.Lot) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	for _, settled := range lots {
		if existing, ok := r.ledger.unsoldLotForPlayer(settled.AuctionID, settled.PlayerID); ok {
			existing.Sold = true
			existing.SoldPriceHalfM = settled.SoldPriceHalfM
			existing.WinnerID = settled.WinnerID
			r.ledger.lots[existing.ID] = existing
			delete(r.ledger.bids, existing.ID)
			continue
		}
		r.ledger.lots[settled.ID] = cloneLot(settled)
	}

	return nil
}

func (r *AuctionRepository) ListBids(_ context.Context, lotID string) ([]auction.Bid, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	return append([]auction.Bid(nil), r.ledger.bids[lotID]...), nil
}

func (r *AuctionRepository) InsertBid(_ context.Context, b auction.Bid) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	lot, ok := r.ledger.lots[b.LotID]
	if !ok {
		return fmt.Errorf("%w: id=%s", auction.ErrLotNotFound, b.LotID)
	}
	if lot.Sold {
		return fmt.Errorf("%w: id=%s", auction.ErrLotAlreadySold, b.LotID)
	}
	if leading, has := auction.HighestBid(r.ledger.bids[b.LotID]); has && b.AmountHalfM <= leading.AmountHalfM {
		return fmt.Errorf("%w: amount=%d leading=%d", auction.ErrBidTooLow, b.AmountHalfM, leading.AmountHalfM)
	}

	r.ledger.bids[b.LotID] = append(r.ledger.bids[b.LotID], b)

	return nil
}

// ResolveLot re-validates everything under the write lock before mutating:
// pre-transaction reads in the service are never trusted.
func (r *AuctionRepository) ResolveLot(_ context.Context, sale auction.Sale) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	lot, ok := r.ledger.lots[sale.LotID]
	if !ok {
		return fmt.Errorf("%w: id=%s", auction.ErrLotNotFound, sale.LotID)
	}
	if lot.Sold {
		return fmt.Errorf("%w: id=%s", auction.ErrLotAlreadySold, sale.LotID)
	}
	a, ok := r.ledger.auctions[sale.AuctionID]
	if !ok {
		return fmt.Errorf("%w: id=%s", auction.ErrAuctionNotFound, sale.AuctionID)
	}

	if sale.WinnerID != nil {
		winnerID := *sale.WinnerID
		b, err := r.ledger.breakdownLocked(sale.AuctionID, winnerID)
		if err != nil {
			return err
		}
		if err := budget.CheckSpend(b, sale.PriceHalfM); err != nil {
			return err
		}

		p, ok := r.ledger.players[sale.PlayerID]
		if !ok {
			return fmt.Errorf("player not found: id=%d", sale.PlayerID)
		}
		held := r.ledger.heldPositionsLocked(winnerID, sale.Phase)
		if err := roster.CheckAdmission(held, p.Position, r.ledger.limits); err != nil {
			return err
		}
	}

	lot.Sold = true
	lot.SoldPriceHalfM = sale.PriceHalfM
	lot.WinnerID = nil
	if sale.WinnerID != nil {
		winnerID := *sale.WinnerID
		lot.WinnerID = &winnerID
	}
	r.ledger.lots[lot.ID] = lot
	delete(r.ledger.bids, lot.ID)

	if sale.WinnerID != nil {
		squad := r.ledger.squadFor(*sale.WinnerID, sale.Phase)
		r.ledger.squadPlayers[squad.ID] = append(r.ledger.squadPlayers[squad.ID], roster.SquadPlayer{
			SquadID:  squad.ID,
			PlayerID: sale.PlayerID,
			FeeHalfM: sale.PriceHalfM,
		})
	}

	ordered := auction.OrderLots(r.ledger.lotsLocked(a.ID), r.ledger.playersByIDLocked())
	next, err := auction.NextAfter(ordered, lot.ID)
	if err != nil {
		return err
	}
	if next != nil {
		nextID := next.ID
		a.CurrentLotID = &nextID
	} else {
		a.CurrentLotID = nil
	}
	r.ledger.auctions[a.ID] = a

	return nil
}

// ReopenLot reverses a resolution: the squad allocation comes back out, the
// lot returns to unsold and the hammer points at it again.
func (r *AuctionRepository) ReopenLot(_ context.Context, lotID string) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	lot, ok := r.ledger.lots[lotID]
	if !ok {
		return fmt.Errorf("%w: id=%s", auction.ErrLotNotFound, lotID)
	}
	a, ok := r.ledger.auctions[lot.AuctionID]
	if !ok {
		return fmt.Errorf("%w: id=%s", auction.ErrAuctionNotFound, lot.AuctionID)
	}

	if lot.Sold && lot.WinnerID != nil {
		r.ledger.removeSquadPlayerLocked(*lot.WinnerID, a.Phase, lot.PlayerID)
	}

	lot.Sold = false
	lot.SoldPriceHalfM = 0
	lot.WinnerID = nil
	r.ledger.lots[lotID] = lot
	delete(r.ledger.bids, lotID)

	id := lotID
	a.CurrentLotID = &id
	a.Status = auction.StatusOpen
	r.ledger.auctions[a.ID] = a

	return nil
}

// PurgeAll is the season reset: auction history and squads go, the manager
// accounts, the player catalog and recorded gameweek points stay.
func (r *AuctionRepository) PurgeAll(_ context.Context) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	r.ledger.auctions = make(map[string]auction.Auction)
	r.ledger.lots = make(map[string]auction.Lot)
	r.ledger.bids = make(map[string][]auction.Bid)
	r.ledger.squads = make(map[string]roster.Squad)
	r.ledger.squadPlayers = make(map[string][]roster.SquadPlayer)

	return nil
}

// Locked helpers below assume the caller holds the ledger lock.

func (l *Ledger) lotsLocked(auctionID string) []auction.Lot {
	out := make([]auction.Lot, 0)
	for _, lot := range l.lots {
		if lot.AuctionID == auctionID {
			out = append(out, cloneLot(lot))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (l *Ledger) playersByIDLocked() map[int64]player.Player {
	out := make(map[int64]player.Player, len(l.players))
	for id, p := range l.players {
		out[id] = p
	}
	return out
}

func (l *Ledger) unsoldLotForPlayer(auctionID string, playerID int64) (auction.Lot, bool) {
	for _, lot := range l.lots {
		if lot.AuctionID == auctionID && lot.PlayerID == playerID && !lot.Sold {
			return lot, true
		}
	}
	return auction.Lot{}, false
}

func (l *Ledger) breakdownLocked(auctionID, managerID string) (budget.Breakdown, error) {
	m, ok := l.managers[managerID]
	if !ok {
		return budget.Breakdown{}, fmt.Errorf("manager not found: id=%s", managerID)
	}

	won := make([]auction.Lot, 0)
	for _, lot := range l.lots {
		if lot.AuctionID == auctionID && lot.Sold && lot.WinnerID != nil && *lot.WinnerID == managerID {
			won = append(won, lot)
		}
	}

	return budget.Compute(budget.StartingHalfUnits(m.BudgetThousandths), won), nil
}

func (l *Ledger) heldPositionsLocked(managerID string, phase int) []player.Position {
	var squadID string
	for _, squad := range l.squads {
		if squad.ManagerID == managerID && squad.Phase == phase {
			squadID = squad.ID
			break
		}
	}
	if squadID == "" {
		return nil
	}

	members := l.squadPlayers[squadID]
	out := make([]player.Position, 0, len(members))
	for _, member := range members {
		if p, ok := l.players[member.PlayerID]; ok {
			out = append(out, p.Position)
		}
	}
	return out
}

func (l *Ledger) removeSquadPlayerLocked(managerID string, phase int, playerID int64) {
	for _, squad := range l.squads {
		if squad.ManagerID != managerID || squad.Phase != phase {
			continue
		}
		members := l.squadPlayers[squad.ID]
		kept := make([]roster.SquadPlayer, 0, len(members))
		for _, member := range members {
			if member.PlayerID != playerID {
				kept = append(kept, member)
			}
		}
		l.squadPlayers[squad.ID] = kept
		return
	}
}
