package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/domain/manager"
	"github.com/riskibarqy/squad-auction/internal/domain/player"
	idgen "github.com/riskibarqy/squad-auction/internal/platform/id"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
)

// LotView pairs a lot with its player for presentation.
type LotView struct {
	Lot    auction.Lot
	Player player.Player
}

// CurrentLotView is the lot under the hammer, with its live bids highest
// first.
type CurrentLotView struct {
	Lot    auction.Lot
	Player player.Player
	Bids   []auction.Bid
}

// AuctionView is the polled room state. Auction nil means nothing is OPEN,
// which is a normal answer rather than an error. Lots are in hammer order.
type AuctionView struct {
	Auction      *auction.Auction
	Lots         []LotView
	CurrentLot   *CurrentLotView
	CurrentIndex int
	SoldCount    int
}

// AuctionService runs the auction lifecycle: start, end, the polled room
// view, pointer skips and the full season reset.
type AuctionService struct {
	auctionRepo auction.Repository
	managerRepo manager.Repository
	playerRepo  player.Repository
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewAuctionService(
	auctionRepo auction.Repository,
	managerRepo manager.Repository,
	playerRepo player.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *AuctionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &AuctionService{
		auctionRepo: auctionRepo,
		managerRepo: managerRepo,
		playerRepo:  playerRepo,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// Start opens an auction for the phase with one lot per catalog player and
// the pointer on the first lot in hammer order. At most one auction may be
// OPEN; a second start is rejected.
func (s *AuctionService) Start(ctx context.Context, phase int) (auction.Auction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.Start")
	defer span.End()

	if phase == 0 {
		phase = auction.MinPhase
	}
	if phase < auction.MinPhase || phase > auction.MaxPhase {
		return auction.Auction{}, fmt.Errorf("%w: phase must be between %d and %d", ErrInvalidInput, auction.MinPhase, auction.MaxPhase)
	}

	if open, exists, err := s.auctionRepo.GetOpen(ctx); err != nil {
		return auction.Auction{}, fmt.Errorf("get open auction: %w", err)
	} else if exists {
		return auction.Auction{}, fmt.Errorf("%w: auction=%s", auction.ErrAuctionAlreadyOpen, open.ID)
	}

	players, err := s.playerRepo.List(ctx, player.Filter{})
	if err != nil {
		return auction.Auction{}, fmt.Errorf("list catalog players: %w", err)
	}

	now := s.now().UTC()
	a := auction.Auction{
		ID:        s.idGen.NewID(),
		Status:    auction.StatusOpen,
		Phase:     phase,
		CreatedAt: now,
	}

	playersByID := make(map[int64]player.Player, len(players))
	lots := make([]auction.Lot, 0, len(players))
	for _, p := range players {
		playersByID[p.ID] = p
		lots = append(lots, auction.Lot{
			ID:        s.idGen.NewID(),
			AuctionID: a.ID,
			PlayerID:  p.ID,
			CreatedAt: now,
		})
	}

	ordered := auction.OrderLots(lots, playersByID)
	if len(ordered) > 0 {
		first := ordered[0].ID
		a.CurrentLotID = &first
	}

	if err := a.Validate(); err != nil {
		return auction.Auction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.auctionRepo.Create(ctx, a, ordered); err != nil {
		return auction.Auction{}, fmt.Errorf("create auction: %w", err)
	}

	s.logger.InfoContext(ctx, "auction started",
		"auction_id", a.ID,
		"phase", phase,
		"lot_count", len(ordered),
	)

	return a, nil
}

// End closes the open auction. Lots, bids and ownership stay as they are.
func (s *AuctionService) End(ctx context.Context) (auction.Auction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.End")
	defer span.End()

	a, exists, err := s.auctionRepo.GetOpen(ctx)
	if err != nil {
		return auction.Auction{}, fmt.Errorf("get open auction: %w", err)
	}
	if !exists {
		return auction.Auction{}, auction.ErrNoOpenAuction
	}

	if err := s.auctionRepo.SetStatus(ctx, a.ID, auction.StatusClosed); err != nil {
		return auction.Auction{}, fmt.Errorf("close auction: %w", err)
	}
	a.Status = auction.StatusClosed

	s.logger.InfoContext(ctx, "auction ended", "auction_id", a.ID)

	return a, nil
}

// Current builds the polled room view for the open auction. The current lot
// is the stored pointer when it references an unsold lot, otherwise the
// first unsold lot in hammer order.
func (s *AuctionService) Current(ctx context.Context) (AuctionView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.Current")
	defer span.End()

	a, exists, err := s.auctionRepo.GetOpen(ctx)
	if err != nil {
		return AuctionView{}, fmt.Errorf("get open auction: %w", err)
	}
	if !exists {
		return AuctionView{CurrentIndex: -1}, nil
	}

	lots, err := s.auctionRepo.ListLots(ctx, a.ID)
	if err != nil {
		return AuctionView{}, fmt.Errorf("list lots: %w", err)
	}

	playerIDs := make([]int64, 0, len(lots))
	for _, lot := range lots {
		playerIDs = append(playerIDs, lot.PlayerID)
	}
	players, err := s.playerRepo.GetByIDs(ctx, playerIDs)
	if err != nil {
		return AuctionView{}, fmt.Errorf("get lot players: %w", err)
	}
	playersByID := make(map[int64]player.Player, len(players))
	for _, p := range players {
		playersByID[p.ID] = p
	}

	ordered := auction.OrderLots(lots, playersByID)
	view := AuctionView{
		Auction:      &a,
		Lots:         make([]LotView, 0, len(ordered)),
		CurrentIndex: -1,
	}
	for _, lot := range ordered {
		if lot.Sold {
			view.SoldCount++
		}
		view.Lots = append(view.Lots, LotView{Lot: lot, Player: playersByID[lot.PlayerID]})
	}

	current, index := auction.CurrentLot(ordered, a.CurrentLotID)
	if current == nil {
		return view, nil
	}
	view.CurrentIndex = index

	bids, err := s.auctionRepo.ListBids(ctx, current.ID)
	if err != nil {
		return AuctionView{}, fmt.Errorf("list current lot bids: %w", err)
	}
	sort.SliceStable(bids, func(i, j int) bool {
		if bids[i].AmountHalfM != bids[j].AmountHalfM {
			return bids[i].AmountHalfM > bids[j].AmountHalfM
		}
		return bids[i].CreatedAt.Before(bids[j].CreatedAt)
	})

	view.CurrentLot = &CurrentLotView{
		Lot:    *current,
		Player: playersByID[current.PlayerID],
		Bids:   bids,
	}

	return view, nil
}

// SkipToLot points the hammer at an arbitrary lot and forces the auction
// OPEN, resuming a closed room if needed.
func (s *AuctionService) SkipToLot(ctx context.Context, lotID string) (auction.Auction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.SkipToLot")
	defer span.End()

	lotID = strings.TrimSpace(lotID)
	if lotID == "" {
		return auction.Auction{}, fmt.Errorf("%w: lot id is required", ErrInvalidInput)
	}

	lot, exists, err := s.auctionRepo.GetLot(ctx, lotID)
	if err != nil {
		return auction.Auction{}, fmt.Errorf("get lot: %w", err)
	}
	if !exists {
		return auction.Auction{}, fmt.Errorf("%w: lot=%s", auction.ErrLotNotFound, lotID)
	}

	a, exists, err := s.auctionRepo.GetByID(ctx, lot.AuctionID)
	if err != nil {
		return auction.Auction{}, fmt.Errorf("get auction: %w", err)
	}
	if !exists {
		return auction.Auction{}, fmt.Errorf("%w: auction=%s", auction.ErrAuctionNotFound, lot.AuctionID)
	}

	if err := s.auctionRepo.SetCurrentLot(ctx, a.ID, &lotID); err != nil {
		return auction.Auction{}, fmt.Errorf("set current lot: %w", err)
	}
	a.CurrentLotID = &lotID

	if a.Status != auction.StatusOpen {
		if err := s.auctionRepo.SetStatus(ctx, a.ID, auction.StatusOpen); err != nil {
			return auction.Auction{}, fmt.Errorf("reopen auction: %w", err)
		}
		a.Status = auction.StatusOpen
	}

	s.logger.InfoContext(ctx, "auction pointer skipped",
		"auction_id", a.ID,
		"lot_id", lotID,
	)

	return a, nil
}

// Clear is the season reset: every auction, lot, bid and squad is wiped and
// manager budgets return to the default allotment. Manager accounts and the
// player catalog survive.
func (s *AuctionService) Clear(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.Clear")
	defer span.End()

	if err := s.auctionRepo.PurgeAll(ctx); err != nil {
		return fmt.Errorf("purge auction data: %w", err)
	}
	if err := s.managerRepo.ResetBudgets(ctx, manager.DefaultBudgetThousandths); err != nil {
		return fmt.Errorf("reset manager budgets: %w", err)
	}

	s.logger.WarnContext(ctx, "auction data cleared")

	return nil
}
