package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/domain/budget"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
)

func TestSaleService_AutoResolveAwardsLeadingBidAndAdvances(t *testing.T) {
	f := newFixture(t)
	view := f.startAuction(t)
	gk := lotFor(t, view, 101)

	// 5.5 display units.
	if _, err := f.bids.PlaceBid(t.Context(), PlaceBidInput{LotID: gk, ManagerID: "mgr-a", AmountHalfM: 11}); err != nil {
		t.Fatalf("place bid: %v", err)
	}

	result, err := f.sales.ResolveAuto(t.Context(), gk)
	if err != nil {
		t.Fatalf("resolve auto: %v", err)
	}
	if !result.Lot.Sold {
		t.Fatal("expected lot sold")
	}
	if result.Lot.WinnerID == nil || *result.Lot.WinnerID != "mgr-a" {
		t.Fatalf("expected winner mgr-a, got %v", result.Lot.WinnerID)
	}
	if result.Lot.SoldPriceHalfM != 11 {
		t.Fatalf("expected sold price 11, got %d", result.Lot.SoldPriceHalfM)
	}
	if result.NextLotID == nil || *result.NextLotID != lotFor(t, view, 102) {
		t.Fatalf("expected pointer at the second goalkeeper lot, got %v", result.NextLotID)
	}

	// 150.0 - 5.5 = 144.5 display units remaining.
	b, err := f.budgets.Breakdown(t.Context(), "mgr-a")
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if b.SpentHalfM != 11 || b.RemainingHalfM != 289 {
		t.Fatalf("expected spent=11 remaining=289, got %+v", b)
	}

	// Bids on the lot are gone after resolution.
	bids, err := f.auctionRepo.ListBids(t.Context(), gk)
	if err != nil {
		t.Fatalf("list bids: %v", err)
	}
	if len(bids) != 0 {
		t.Fatalf("expected bids deleted on resolve, got %d", len(bids))
	}

	// The player landed in A's phase-1 squad.
	held, err := f.rosterRepo.PositionsHeld(t.Context(), "mgr-a", 1)
	if err != nil {
		t.Fatalf("positions held: %v", err)
	}
	if len(held) != 1 {
		t.Fatalf("expected one squad member, got %d", len(held))
	}
}

func TestSaleService_AutoResolveWithoutBidsGoesUnsold(t *testing.T) {
	f := newFixture(t)
	view := f.startAuction(t)
	gk := lotFor(t, view, 101)

	result, err := f.sales.ResolveAuto(t.Context(), gk)
	if err != nil {
		t.Fatalf("resolve auto: %v", err)
	}
	if !result.Lot.Sold || result.Lot.WinnerID != nil || result.Lot.SoldPriceHalfM != 0 {
		t.Fatalf("expected unsold resolution, got %+v", result.Lot)
	}
}

func TestSaleService_ManualSaleBelowListingRejected(t *testing.T) {
	f := newFixture(t)
	view := f.startAuction(t)
	def := lotFor(t, view, 201) // listed at 4.0 display units (8 half-units)

	_, err := f.sales.ResolveManual(t.Context(), def, "mgr-c", 7)
	if !errors.Is(err, auction.ErrPriceBelowListing) {
		t.Fatalf("expected ErrPriceBelowListing, got %v", err)
	}

	lot, _, err := f.auctionRepo.GetLot(t.Context(), def)
	if err != nil {
		t.Fatalf("get lot: %v", err)
	}
	if lot.Sold {
		t.Fatal("expected no state change on rejected sale")
	}
}

func TestSaleService_ManualSaleOverBudgetNamesManager(t *testing.T) {
	f := newFixture(t)
	view := f.startAuction(t)

	if _, err := f.budgets.SetAllotment(t.Context(), "mgr-c", 10000); err != nil {
		t.Fatalf("set allotment: %v", err)
	}

	_, err := f.sales.ResolveManual(t.Context(), lotFor(t, view, 301), "mgr-c", 26)
	if !errors.Is(err, budget.ErrInsufficientBudget) {
		t.Fatalf("expected ErrInsufficientBudget, got %v", err)
	}
	if !strings.Contains(err.Error(), "mgr-c") {
		t.Fatalf("expected the manager id in the error, got %v", err)
	}
}

func TestSaleService_ManualSaleSecondKeeperRejected(t *testing.T) {
	f := newFixture(t)
	view := f.startAuction(t)

	if _, err := f.sales.ResolveManual(t.Context(), lotFor(t, view, 101), "mgr-a", 10); err != nil {
		t.Fatalf("first keeper sale: %v", err)
	}

	_, err := f.sales.ResolveManual(t.Context(), lotFor(t, view, 102), "mgr-a", 9)
	if !errors.Is(err, roster.ErrPositionLimitExceeded) {
		t.Fatalf("expected ErrPositionLimitExceeded, got %v", err)
	}
}

func TestSaleService_DoubleResolveRejected(t *testing.T) {
	f := newFixture(t)
	view := f.startAuction(t)
	gk := lotFor(t, view, 101)

	if _, err := f.sales.MarkUnsold(t.Context(), gk); err != nil {
		t.Fatalf("mark unsold: %v", err)
	}
	if _, err := f.sales.MarkUnsold(t.Context(), gk); !errors.Is(err, auction.ErrLotAlreadySold) {
		t.Fatalf("expected ErrLotAlreadySold, got %v", err)
	}
	if _, err := f.sales.ResolveAuto(t.Context(), gk); !errors.Is(err, auction.ErrLotAlreadySold) {
		t.Fatalf("expected ErrLotAlreadySold on auto, got %v", err)
	}
}

func TestSaleService_MarkUnsoldAdvancesPastLot(t *testing.T) {
	f := newFixture(t)
	view := f.startAuction(t)
	gk := lotFor(t, view, 101)

	result, err := f.sales.MarkUnsold(t.Context(), gk)
	if err != nil {
		t.Fatalf("mark unsold: %v", err)
	}
	if !result.Lot.Sold || result.Lot.WinnerID != nil || result.Lot.SoldPriceHalfM != 0 {
		t.Fatalf("expected sold=true winner=nil price=0, got %+v", result.Lot)
	}
	if result.NextLotID == nil || *result.NextLotID != lotFor(t, view, 102) {
		t.Fatalf("expected pointer at next lot in sequence, got %v", result.NextLotID)
	}
}

func TestSaleService_ReopenRoundTrip(t *testing.T) {
	f := newFixture(t)
	view := f.startAuction(t)
	gk := lotFor(t, view, 101)

	before, err := f.budgets.Breakdown(t.Context(), "mgr-a")
	if err != nil {
		t.Fatalf("breakdown before: %v", err)
	}

	if _, err := f.sales.ResolveManual(t.Context(), gk, "mgr-a", 11); err != nil {
		t.Fatalf("manual sale: %v", err)
	}

	lot, err := f.sales.Reopen(t.Context(), gk)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if lot.Sold || lot.WinnerID != nil || lot.SoldPriceHalfM != 0 {
		t.Fatalf("expected lot back to unsold, got %+v", lot)
	}

	after, err := f.budgets.Breakdown(t.Context(), "mgr-a")
	if err != nil {
		t.Fatalf("breakdown after: %v", err)
	}
	if after != before {
		t.Fatalf("expected budget restored, before=%+v after=%+v", before, after)
	}

	held, err := f.rosterRepo.PositionsHeld(t.Context(), "mgr-a", 1)
	if err != nil {
		t.Fatalf("positions held: %v", err)
	}
	if len(held) != 0 {
		t.Fatalf("expected squad membership reverted, got %d members", len(held))
	}

	// The lot is current and bid-eligible again.
	currentView, err := f.auctions.Current(t.Context())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if currentView.CurrentLot == nil || currentView.CurrentLot.Lot.ID != gk {
		t.Fatal("expected reopened lot to be current")
	}
	if _, err := f.bids.PlaceBid(t.Context(), PlaceBidInput{LotID: gk, ManagerID: "mgr-b", AmountHalfM: 10}); err != nil {
		t.Fatalf("bid after reopen: %v", err)
	}
}

func TestSaleService_ReopenUnresolvedLotRejected(t *testing.T) {
	f := newFixture(t)
	view := f.startAuction(t)

	_, err := f.sales.Reopen(t.Context(), lotFor(t, view, 101))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
