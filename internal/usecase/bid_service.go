package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/domain/budget"
	"github.com/riskibarqy/squad-auction/internal/domain/manager"
	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
	idgen "github.com/riskibarqy/squad-auction/internal/platform/id"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
)

// PlaceBidInput is the incoming payload for a live bid. ManagerID is the
// bidder; admins may set it on behalf of any manager, plain managers bid as
// themselves.
type PlaceBidInput struct {
	LotID       string
	ManagerID   string
	AmountHalfM int64
}

// BidService accepts live offers on the current auction's lots. Placing a
// bid writes the bid row only; budgets and ownership move at resolution.
type BidService struct {
	auctionRepo auction.Repository
	managerRepo manager.Repository
	playerRepo  player.Repository
	rosterRepo  roster.Repository
	limits      roster.Limits
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewBidService(
	auctionRepo auction.Repository,
	managerRepo manager.Repository,
	playerRepo player.Repository,
	rosterRepo roster.Repository,
	limits roster.Limits,
	idGen idgen.Generator,
	logger *logging.Logger,
) *BidService {
	if logger == nil {
		logger = logging.Default()
	}

	return &BidService{
		auctionRepo: auctionRepo,
		managerRepo: managerRepo,
		playerRepo:  playerRepo,
		rosterRepo:  rosterRepo,
		limits:      limits,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// PlaceBid validates and records a bid. Checks here give the bidder a fast,
// precise rejection; the repository re-checks lot state and monotonicity
// inside the insert transaction, so two racing bids at the same amount
// cannot both land.
func (s *BidService) PlaceBid(ctx context.Context, input PlaceBidInput) (auction.Bid, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BidService.PlaceBid")
	defer span.End()

	input.LotID = strings.TrimSpace(input.LotID)
	input.ManagerID = strings.TrimSpace(input.ManagerID)
	if input.LotID == "" {
		return auction.Bid{}, fmt.Errorf("%w: lot id is required", ErrInvalidInput)
	}
	if input.ManagerID == "" {
		return auction.Bid{}, fmt.Errorf("%w: manager id is required", ErrInvalidInput)
	}
	if input.AmountHalfM <= 0 {
		return auction.Bid{}, fmt.Errorf("%w: bid amount must be positive", ErrInvalidInput)
	}

	lot, exists, err := s.auctionRepo.GetLot(ctx, input.LotID)
	if err != nil {
		return auction.Bid{}, fmt.Errorf("get lot: %w", err)
	}
	if !exists {
		return auction.Bid{}, fmt.Errorf("%w: lot=%s", auction.ErrLotNotFound, input.LotID)
	}
	if lot.Sold {
		return auction.Bid{}, fmt.Errorf("%w: lot=%s", auction.ErrLotAlreadySold, input.LotID)
	}

	a, exists, err := s.auctionRepo.GetByID(ctx, lot.AuctionID)
	if err != nil {
		return auction.Bid{}, fmt.Errorf("get auction: %w", err)
	}
	if !exists {
		return auction.Bid{}, fmt.Errorf("%w: auction=%s", auction.ErrAuctionNotFound, lot.AuctionID)
	}
	if a.Status != auction.StatusOpen {
		return auction.Bid{}, fmt.Errorf("%w: auction=%s", auction.ErrAuctionClosed, a.ID)
	}

	p, exists, err := s.playerRepo.GetByID(ctx, lot.PlayerID)
	if err != nil {
		return auction.Bid{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return auction.Bid{}, fmt.Errorf("%w: player=%d", ErrNotFound, lot.PlayerID)
	}

	bids, err := s.auctionRepo.ListBids(ctx, lot.ID)
	if err != nil {
		return auction.Bid{}, fmt.Errorf("list bids: %w", err)
	}
	if leading, has := auction.HighestBid(bids); has && input.AmountHalfM <= leading.AmountHalfM {
		return auction.Bid{}, fmt.Errorf("%w: amount=%d leading=%d", auction.ErrBidTooLow, input.AmountHalfM, leading.AmountHalfM)
	}

	b, err := breakdownFor(ctx, s.managerRepo, s.auctionRepo, a.ID, input.ManagerID)
	if err != nil {
		return auction.Bid{}, err
	}
	if err := budget.CheckSpend(b, input.AmountHalfM); err != nil {
		return auction.Bid{}, fmt.Errorf("check bid against budget: %w", err)
	}

	held, err := s.rosterRepo.PositionsHeld(ctx, input.ManagerID, a.Phase)
	if err != nil {
		return auction.Bid{}, fmt.Errorf("list held positions: %w", err)
	}
	if err := roster.CheckAdmission(held, p.Position, s.limits); err != nil {
		return auction.Bid{}, fmt.Errorf("check roster admission: %w", err)
	}

	bid := auction.Bid{
		ID:          s.idGen.NewID(),
		LotID:       lot.ID,
		ManagerID:   input.ManagerID,
		AmountHalfM: input.AmountHalfM,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.auctionRepo.InsertBid(ctx, bid); err != nil {
		return auction.Bid{}, fmt.Errorf("insert bid: %w", err)
	}

	s.logger.InfoContext(ctx, "bid placed",
		"lot_id", lot.ID,
		"player_id", lot.PlayerID,
		"manager_id", input.ManagerID,
		"amount_half_m", input.AmountHalfM,
	)

	return bid, nil
}

// ListBids returns the live bids on a lot, highest first.
func (s *BidService) ListBids(ctx context.Context, lotID string) ([]auction.Bid, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BidService.ListBids")
	defer span.End()

	lotID = strings.TrimSpace(lotID)
	if lotID == "" {
		return nil, fmt.Errorf("%w: lot id is required", ErrInvalidInput)
	}

	if _, exists, err := s.auctionRepo.GetLot(ctx, lotID); err != nil {
		return nil, fmt.Errorf("get lot: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: lot=%s", auction.ErrLotNotFound, lotID)
	}

	bids, err := s.auctionRepo.ListBids(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}

	sort.SliceStable(bids, func(i, j int) bool {
		if bids[i].AmountHalfM != bids[j].AmountHalfM {
			return bids[i].AmountHalfM > bids[j].AmountHalfM
		}
		return bids[i].CreatedAt.Before(bids[j].CreatedAt)
	})

	return bids, nil
}
