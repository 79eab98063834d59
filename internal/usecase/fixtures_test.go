package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/squad-auction/internal/domain/manager"
	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
	"github.com/riskibarqy/squad-auction/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
)

type seqIDGenerator struct {
	prefix string
	n      int
}

func (g *seqIDGenerator) NewID() string {
	g.n++
	return fmt.Sprintf("%s-%03d", g.prefix, g.n)
}

// Catalog prices below are half-units: listed 5.0 display units is 10.
var testPlayers = []player.Player{
	{ID: 101, TeamID: 1, FirstName: "Alisson", SecondName: "Becker", WebName: "Alisson", Position: player.PositionGoalkeeper, ListPriceHalfM: 10},
	{ID: 102, TeamID: 2, FirstName: "Jordan", SecondName: "Pickford", WebName: "Pickford", Position: player.PositionGoalkeeper, ListPriceHalfM: 9},
	{ID: 201, TeamID: 1, FirstName: "Virgil", SecondName: "van Dijk", WebName: "van Dijk", Position: player.PositionDefender, ListPriceHalfM: 8},
	{ID: 202, TeamID: 2, FirstName: "Ruben", SecondName: "Dias", WebName: "Dias", Position: player.PositionDefender, ListPriceHalfM: 6},
	{ID: 301, TeamID: 1, FirstName: "Mohamed", SecondName: "Salah", WebName: "Salah", Position: player.PositionMidfielder, ListPriceHalfM: 26},
	{ID: 401, TeamID: 2, FirstName: "Erling", SecondName: "Haaland", WebName: "Haaland", Position: player.PositionForward, ListPriceHalfM: 30},
}

var testManagers = []manager.Manager{
	{ID: "mgr-a", Username: "alice", DisplayName: "Alice", PasswordHash: "x", BudgetThousandths: manager.DefaultBudgetThousandths},
	{ID: "mgr-b", Username: "bob", DisplayName: "Bob", PasswordHash: "x", BudgetThousandths: manager.DefaultBudgetThousandths},
	{ID: "mgr-c", Username: "carol", DisplayName: "Carol", PasswordHash: "x", BudgetThousandths: manager.DefaultBudgetThousandths},
}

type fixture struct {
	ledger      *memory.Ledger
	auctionRepo *memory.AuctionRepository
	managerRepo *memory.ManagerRepository
	playerRepo  *memory.PlayerRepository
	teamRepo    *memory.TeamRepository
	rosterRepo  *memory.RosterRepository
	scoringRepo *memory.ScoringRepository

	auctions    *AuctionService
	bids        *BidService
	sales       *SaleService
	allocations *AllocationService
	budgets     *BudgetService
	managers    *ManagerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ledger := memory.NewLedger()
	f := &fixture{
		ledger:      ledger,
		auctionRepo: memory.NewAuctionRepository(ledger),
		managerRepo: memory.NewManagerRepository(ledger),
		playerRepo:  memory.NewPlayerRepository(ledger),
		teamRepo:    memory.NewTeamRepository(ledger),
		rosterRepo:  memory.NewRosterRepository(ledger),
		scoringRepo: memory.NewScoringRepository(ledger),
	}

	ctx := context.Background()
	if err := f.playerRepo.UpsertMany(ctx, testPlayers); err != nil {
		t.Fatalf("seed players: %v", err)
	}
	for _, m := range testManagers {
		if err := f.managerRepo.Create(ctx, m); err != nil {
			t.Fatalf("seed manager %s: %v", m.ID, err)
		}
	}

	logger := logging.NewNop()
	limits := roster.DefaultLimits()
	f.auctions = NewAuctionService(f.auctionRepo, f.managerRepo, f.playerRepo, &seqIDGenerator{prefix: "auc"}, logger)
	f.bids = NewBidService(f.auctionRepo, f.managerRepo, f.playerRepo, f.rosterRepo, limits, &seqIDGenerator{prefix: "bid"}, logger)
	f.sales = NewSaleService(f.auctionRepo, f.managerRepo, f.playerRepo, f.rosterRepo, limits, logger)
	f.allocations = NewAllocationService(f.auctionRepo, f.managerRepo, f.playerRepo, f.rosterRepo, limits, &seqIDGenerator{prefix: "alloc"}, logger)
	f.budgets = NewBudgetService(f.managerRepo, f.auctionRepo, logger)
	f.managers = NewManagerService(f.managerRepo, f.auctionRepo, f.rosterRepo, &seqIDGenerator{prefix: "mgr"}, logger)

	return f
}

// startAuction opens a phase-1 auction over the seeded catalog and returns
// the room view.
func (f *fixture) startAuction(t *testing.T) AuctionView {
	t.Helper()

	if _, err := f.auctions.Start(t.Context(), 1); err != nil {
		t.Fatalf("start auction: %v", err)
	}
	view, err := f.auctions.Current(t.Context())
	if err != nil {
		t.Fatalf("current auction: %v", err)
	}
	if view.Auction == nil || view.CurrentLot == nil {
		t.Fatal("expected an open auction with a current lot")
	}
	return view
}

// lotFor finds the lot offering the player in the room view.
func lotFor(t *testing.T, view AuctionView, playerID int64) string {
	t.Helper()

	for _, lv := range view.Lots {
		if lv.Lot.PlayerID == playerID {
			return lv.Lot.ID
		}
	}
	t.Fatalf("no lot for player %d", playerID)
	return ""
}

func fixedTime() time.Time {
	return time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)
}
