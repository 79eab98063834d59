package auction

import (
	"fmt"
	"time"
)

// Status is the auction lifecycle state. At most one auction is OPEN at any
// time; starting a second one is rejected.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

const (
	// MinPhase and MaxPhase bound the roster periods an auction can populate.
	MinPhase = 1
	MaxPhase = 4
)

// Auction is one live run through the player pool. CurrentLotID points into
// the derived lot sequence; nil means the sequence is exhausted.
type Auction struct {
	ID           string
	Status       Status
	Phase        int
	CurrentLotID *string
	CreatedAt    time.Time
}

func (a Auction) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("auction id is required")
	}
	if a.Status != StatusOpen && a.Status != StatusClosed {
		return fmt.Errorf("invalid auction status: %s", a.Status)
	}
	if a.Phase < MinPhase || a.Phase > MaxPhase {
		return fmt.Errorf("auction phase must be between %d and %d", MinPhase, MaxPhase)
	}

	return nil
}

// Lot offers one player in one auction. A resolved lot has Sold true even
// when nobody won it (WinnerID nil, price zero); "unsold" and "not yet
// reached" are different states.
type Lot struct {
	ID             string
	AuctionID      string
	PlayerID       int64
	Sold           bool
	SoldPriceHalfM int64
	WinnerID       *string
	CreatedAt      time.Time
}

// Bid is one live offer on a lot. Bids are ephemeral: resolution deletes all
// bids on the lot.
type Bid struct {
	ID          string
	LotID       string
	ManagerID   string
	AmountHalfM int64
	CreatedAt   time.Time
}

// Sale carries the decided outcome of a lot into the transactional resolve.
// WinnerID nil marks the lot unsold.
type Sale struct {
	AuctionID  string
	LotID      string
	PlayerID   int64
	WinnerID   *string
	PriceHalfM int64
	Phase      int
}

// HighestBid returns the leading bid among live bids on a lot, by amount.
func HighestBid(bids []Bid) (Bid, bool) {
	var best Bid
	found := false
	for _, b := range bids {
		if !found || b.AmountHalfM > best.AmountHalfM {
			best = b
			found = true
		}
	}
	return best, found
}
