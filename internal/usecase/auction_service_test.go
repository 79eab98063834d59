package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
)

func TestAuctionService_StartOrdersLotsAndPointsAtFirst(t *testing.T) {
	f := newFixture(t)

	a, err := f.auctions.Start(t.Context(), 1)
	if err != nil {
		t.Fatalf("start auction: %v", err)
	}
	if a.Status != auction.StatusOpen {
		t.Fatalf("expected OPEN auction, got %s", a.Status)
	}
	if a.CurrentLotID == nil {
		t.Fatal("expected current lot pointer on start")
	}

	view, err := f.auctions.Current(t.Context())
	if err != nil {
		t.Fatalf("current auction: %v", err)
	}
	if len(view.Lots) != len(testPlayers) {
		t.Fatalf("expected %d lots, got %d", len(testPlayers), len(view.Lots))
	}

	// GK before DEF before MID before FWD, price descending inside a position.
	wantOrder := []int64{101, 102, 201, 202, 301, 401}
	for i, want := range wantOrder {
		if got := view.Lots[i].Lot.PlayerID; got != want {
			t.Fatalf("lot %d: expected player %d, got %d", i, want, got)
		}
	}
	if view.CurrentLot.Player.ID != 101 {
		t.Fatalf("expected first lot to offer player 101, got %d", view.CurrentLot.Player.ID)
	}
	if view.CurrentIndex != 0 {
		t.Fatalf("expected current index 0, got %d", view.CurrentIndex)
	}
}

func TestAuctionService_StartZeroPhaseDefaultsToFirst(t *testing.T) {
	f := newFixture(t)

	a, err := f.auctions.Start(t.Context(), 0)
	if err != nil {
		t.Fatalf("start auction: %v", err)
	}
	if a.Phase != auction.MinPhase {
		t.Fatalf("expected phase %d, got %d", auction.MinPhase, a.Phase)
	}

	if _, err := f.auctions.Start(t.Context(), auction.MaxPhase+1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for out-of-range phase, got %v", err)
	}
}

func TestAuctionService_StartWhileOpenRejected(t *testing.T) {
	f := newFixture(t)
	f.startAuction(t)

	_, err := f.auctions.Start(t.Context(), 1)
	if !errors.Is(err, auction.ErrAuctionAlreadyOpen) {
		t.Fatalf("expected ErrAuctionAlreadyOpen, got %v", err)
	}
}

func TestAuctionService_EndThenNoCurrent(t *testing.T) {
	f := newFixture(t)
	f.startAuction(t)

	ended, err := f.auctions.End(t.Context())
	if err != nil {
		t.Fatalf("end auction: %v", err)
	}
	if ended.Status != auction.StatusClosed {
		t.Fatalf("expected CLOSED, got %s", ended.Status)
	}

	view, err := f.auctions.Current(t.Context())
	if err != nil {
		t.Fatalf("current after end: %v", err)
	}
	if view.Auction != nil {
		t.Fatal("expected no open auction after end")
	}

	if _, err := f.auctions.End(t.Context()); !errors.Is(err, auction.ErrNoOpenAuction) {
		t.Fatalf("expected ErrNoOpenAuction on second end, got %v", err)
	}
}

func TestAuctionService_SkipToLotForcesOpen(t *testing.T) {
	f := newFixture(t)
	view := f.startAuction(t)
	target := lotFor(t, view, 301)

	if _, err := f.auctions.End(t.Context()); err != nil {
		t.Fatalf("end auction: %v", err)
	}

	a, err := f.auctions.SkipToLot(t.Context(), target)
	if err != nil {
		t.Fatalf("skip to lot: %v", err)
	}
	if a.Status != auction.StatusOpen {
		t.Fatalf("expected skip to force OPEN, got %s", a.Status)
	}
	if a.CurrentLotID == nil || *a.CurrentLotID != target {
		t.Fatalf("expected pointer at %s, got %v", target, a.CurrentLotID)
	}

	if _, err := f.auctions.SkipToLot(t.Context(), "missing"); !errors.Is(err, auction.ErrLotNotFound) {
		t.Fatalf("expected ErrLotNotFound, got %v", err)
	}
}

func TestAuctionService_ClearResetsSeason(t *testing.T) {
	f := newFixture(t)
	view := f.startAuction(t)

	gk := lotFor(t, view, 101)
	if _, err := f.bids.PlaceBid(t.Context(), PlaceBidInput{LotID: gk, ManagerID: "mgr-a", AmountHalfM: 11}); err != nil {
		t.Fatalf("place bid: %v", err)
	}
	if _, err := f.sales.ResolveAuto(t.Context(), gk); err != nil {
		t.Fatalf("resolve lot: %v", err)
	}
	if _, err := f.budgets.SetAllotment(t.Context(), "mgr-a", 90000); err != nil {
		t.Fatalf("set allotment: %v", err)
	}

	if err := f.auctions.Clear(t.Context()); err != nil {
		t.Fatalf("clear: %v", err)
	}

	afterView, err := f.auctions.Current(t.Context())
	if err != nil {
		t.Fatalf("current after clear: %v", err)
	}
	if afterView.Auction != nil {
		t.Fatal("expected no auction after clear")
	}

	b, err := f.budgets.Breakdown(t.Context(), "mgr-a")
	if err != nil {
		t.Fatalf("breakdown after clear: %v", err)
	}
	if b.StartingHalfM != 300 || b.SpentHalfM != 0 || b.RemainingHalfM != 300 {
		t.Fatalf("expected reset budget 300/0/300, got %+v", b)
	}

	if _, exists, err := f.rosterRepo.GetByManagerAndPhase(t.Context(), "mgr-a", 1); err != nil || exists {
		t.Fatalf("expected squads wiped, exists=%v err=%v", exists, err)
	}
}
