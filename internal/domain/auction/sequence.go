package auction

import (
	"fmt"
	"sort"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
)

// OrderLots derives the fixed auction sequence: position ascending
// (GK, DEF, MID, FWD), list price descending, then first and second name
// ascending, with lot id as the final tiebreak. The order is a deterministic
// function of the catalog, so it is re-derived on every advance rather than
// cached; mid-auction catalog edits cannot strand the pointer.
func OrderLots(lots []Lot, playersByID map[int64]player.Player) []Lot {
	ordered := append([]Lot(nil), lots...)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := playersByID[ordered[i].PlayerID], playersByID[ordered[j].PlayerID]
		if pi.Position.Rank() != pj.Position.Rank() {
			return pi.Position.Rank() < pj.Position.Rank()
		}
		if pi.ListPriceHalfM != pj.ListPriceHalfM {
			return pi.ListPriceHalfM > pj.ListPriceHalfM
		}
		if pi.FirstName != pj.FirstName {
			return pi.FirstName < pj.FirstName
		}
		if pi.SecondName != pj.SecondName {
			return pi.SecondName < pj.SecondName
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

// NextAfter locates lotID in the ordered sequence and returns the lot
// immediately following it, regardless of that lot's sold state. It returns
// nil past the end of the sequence.
func NextAfter(ordered []Lot, lotID string) (*Lot, error) {
	for i, lot := range ordered {
		if lot.ID != lotID {
			continue
		}
		if i+1 >= len(ordered) {
			return nil, nil
		}
		next := ordered[i+1]
		return &next, nil
	}

	return nil, fmt.Errorf("%w: id=%s", ErrLotNotFound, lotID)
}

// CurrentLot resolves the lot to present for bidding: the explicit pointer if
// it still refers to an unsold lot, otherwise the first unsold lot in
// sequence order. The fallback covers pointers gone stale through out-of-band
// edits.
func CurrentLot(ordered []Lot, currentLotID *string) (*Lot, int) {
	if currentLotID != nil {
		for i, lot := range ordered {
			if lot.ID == *currentLotID && !lot.Sold {
				current := lot
				return &current, i
			}
		}
	}
	for i, lot := range ordered {
		if !lot.Sold {
			current := lot
			return &current, i
		}
	}

	return nil, -1
}
