package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/domain/budget"
	"github.com/riskibarqy/squad-auction/internal/domain/manager"
	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
)

// SaleResult reports a resolved lot and where the auction pointer moved.
// NextLotID nil means the sequence is exhausted.
type SaleResult struct {
	Lot       auction.Lot
	NextLotID *string
}

// SaleService closes out lots: hammer-down to the leading bidder, manual
// sales at a named price, unsold passes and admin reopens. Every resolution
// runs as one repository transaction that marks the lot, deletes its bids,
// allocates the player and advances the pointer.
type SaleService struct {
	auctionRepo auction.Repository
	managerRepo manager.Repository
	playerRepo  player.Repository
	rosterRepo  roster.Repository
	limits      roster.Limits
	logger      *logging.Logger
}

func NewSaleService(
	auctionRepo auction.Repository,
	managerRepo manager.Repository,
	playerRepo player.Repository,
	rosterRepo roster.Repository,
	limits roster.Limits,
	logger *logging.Logger,
) *SaleService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SaleService{
		auctionRepo: auctionRepo,
		managerRepo: managerRepo,
		playerRepo:  playerRepo,
		rosterRepo:  rosterRepo,
		limits:      limits,
		logger:      logger,
	}
}

// ResolveAuto sells the lot to the leading bidder at the leading amount.
// With no live bids the lot resolves unsold instead of failing.
func (s *SaleService) ResolveAuto(ctx context.Context, lotID string) (SaleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SaleService.ResolveAuto")
	defer span.End()

	lot, a, err := s.loadUnsoldLot(ctx, lotID)
	if err != nil {
		return SaleResult{}, err
	}

	bids, err := s.auctionRepo.ListBids(ctx, lot.ID)
	if err != nil {
		return SaleResult{}, fmt.Errorf("list bids: %w", err)
	}

	winner, has := auction.HighestBid(bids)
	if !has {
		return s.settle(ctx, a, lot, auction.Sale{
			AuctionID: a.ID,
			LotID:     lot.ID,
			PlayerID:  lot.PlayerID,
			Phase:     a.Phase,
		})
	}

	if err := s.checkWinner(ctx, a, lot.PlayerID, winner.ManagerID, winner.AmountHalfM); err != nil {
		return SaleResult{}, err
	}

	return s.settle(ctx, a, lot, auction.Sale{
		AuctionID:  a.ID,
		LotID:      lot.ID,
		PlayerID:   lot.PlayerID,
		WinnerID:   &winner.ManagerID,
		PriceHalfM: winner.AmountHalfM,
		Phase:      a.Phase,
	})
}

// ResolveManual sells the lot to a named manager at a named price. The
// player's list price is a hard floor here, unlike live bidding where it is
// advisory.
func (s *SaleService) ResolveManual(ctx context.Context, lotID, managerID string, priceHalfM int64) (SaleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SaleService.ResolveManual")
	defer span.End()

	managerID = strings.TrimSpace(managerID)
	if managerID == "" {
		return SaleResult{}, fmt.Errorf("%w: manager id is required", ErrInvalidInput)
	}
	if priceHalfM <= 0 {
		return SaleResult{}, fmt.Errorf("%w: sale price must be positive", ErrInvalidInput)
	}

	lot, a, err := s.loadUnsoldLot(ctx, lotID)
	if err != nil {
		return SaleResult{}, err
	}

	p, exists, err := s.playerRepo.GetByID(ctx, lot.PlayerID)
	if err != nil {
		return SaleResult{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return SaleResult{}, fmt.Errorf("%w: player=%d", ErrNotFound, lot.PlayerID)
	}
	if priceHalfM < p.ListPriceHalfM {
		return SaleResult{}, fmt.Errorf("%w: price=%d list=%d", auction.ErrPriceBelowListing, priceHalfM, p.ListPriceHalfM)
	}

	if err := s.checkWinner(ctx, a, lot.PlayerID, managerID, priceHalfM); err != nil {
		return SaleResult{}, err
	}

	return s.settle(ctx, a, lot, auction.Sale{
		AuctionID:  a.ID,
		LotID:      lot.ID,
		PlayerID:   lot.PlayerID,
		WinnerID:   &managerID,
		PriceHalfM: priceHalfM,
		Phase:      a.Phase,
	})
}

// MarkUnsold resolves the lot with no winner. The lot is terminal afterwards
// and only Reopen brings it back.
func (s *SaleService) MarkUnsold(ctx context.Context, lotID string) (SaleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SaleService.MarkUnsold")
	defer span.End()

	lot, a, err := s.loadUnsoldLot(ctx, lotID)
	if err != nil {
		return SaleResult{}, err
	}

	return s.settle(ctx, a, lot, auction.Sale{
		AuctionID: a.ID,
		LotID:     lot.ID,
		PlayerID:  lot.PlayerID,
		Phase:     a.Phase,
	})
}

// Reopen reverses a resolved lot: the squad allocation is removed, the sold
// state cleared, the pointer moved back to the lot and the auction forced
// OPEN. Admin undo only.
func (s *SaleService) Reopen(ctx context.Context, lotID string) (auction.Lot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SaleService.Reopen")
	defer span.End()

	lotID = strings.TrimSpace(lotID)
	if lotID == "" {
		return auction.Lot{}, fmt.Errorf("%w: lot id is required", ErrInvalidInput)
	}

	lot, exists, err := s.auctionRepo.GetLot(ctx, lotID)
	if err != nil {
		return auction.Lot{}, fmt.Errorf("get lot: %w", err)
	}
	if !exists {
		return auction.Lot{}, fmt.Errorf("%w: lot=%s", auction.ErrLotNotFound, lotID)
	}
	if !lot.Sold {
		return auction.Lot{}, fmt.Errorf("%w: lot=%s is not resolved", ErrInvalidInput, lotID)
	}

	if err := s.auctionRepo.ReopenLot(ctx, lotID); err != nil {
		return auction.Lot{}, fmt.Errorf("reopen lot: %w", err)
	}

	reopened, _, err := s.auctionRepo.GetLot(ctx, lotID)
	if err != nil {
		return auction.Lot{}, fmt.Errorf("get reopened lot: %w", err)
	}

	s.logger.InfoContext(ctx, "lot reopened",
		"lot_id", lotID,
		"player_id", lot.PlayerID,
	)

	return reopened, nil
}

func (s *SaleService) loadUnsoldLot(ctx context.Context, lotID string) (auction.Lot, auction.Auction, error) {
	lotID = strings.TrimSpace(lotID)
	if lotID == "" {
		return auction.Lot{}, auction.Auction{}, fmt.Errorf("%w: lot id is required", ErrInvalidInput)
	}

	lot, exists, err := s.auctionRepo.GetLot(ctx, lotID)
	if err != nil {
		return auction.Lot{}, auction.Auction{}, fmt.Errorf("get lot: %w", err)
	}
	if !exists {
		return auction.Lot{}, auction.Auction{}, fmt.Errorf("%w: lot=%s", auction.ErrLotNotFound, lotID)
	}
	if lot.Sold {
		return auction.Lot{}, auction.Auction{}, fmt.Errorf("%w: lot=%s", auction.ErrLotAlreadySold, lotID)
	}

	a, exists, err := s.auctionRepo.GetByID(ctx, lot.AuctionID)
	if err != nil {
		return auction.Lot{}, auction.Auction{}, fmt.Errorf("get auction: %w", err)
	}
	if !exists {
		return auction.Lot{}, auction.Auction{}, fmt.Errorf("%w: auction=%s", auction.ErrAuctionNotFound, lot.AuctionID)
	}

	return lot, a, nil
}

// checkWinner verifies budget and roster admission for the would-be winner.
// A friendly pre-check: the resolve transaction re-validates both before
// committing.
func (s *SaleService) checkWinner(ctx context.Context, a auction.Auction, playerID int64, managerID string, priceHalfM int64) error {
	b, err := breakdownFor(ctx, s.managerRepo, s.auctionRepo, a.ID, managerID)
	if err != nil {
		return err
	}
	if err := budget.CheckSpend(b, priceHalfM); err != nil {
		return fmt.Errorf("check sale against budget for manager=%s: %w", managerID, err)
	}

	p, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: player=%d", ErrNotFound, playerID)
	}

	held, err := s.rosterRepo.PositionsHeld(ctx, managerID, a.Phase)
	if err != nil {
		return fmt.Errorf("list held positions: %w", err)
	}
	if err := roster.CheckAdmission(held, p.Position, s.limits); err != nil {
		return fmt.Errorf("check roster admission: %w", err)
	}

	return nil
}

func (s *SaleService) settle(ctx context.Context, a auction.Auction, lot auction.Lot, sale auction.Sale) (SaleResult, error) {
	if err := s.auctionRepo.ResolveLot(ctx, sale); err != nil {
		return SaleResult{}, fmt.Errorf("resolve lot: %w", err)
	}

	resolved, _, err := s.auctionRepo.GetLot(ctx, lot.ID)
	if err != nil {
		return SaleResult{}, fmt.Errorf("get resolved lot: %w", err)
	}
	updated, _, err := s.auctionRepo.GetByID(ctx, a.ID)
	if err != nil {
		return SaleResult{}, fmt.Errorf("get auction after resolve: %w", err)
	}

	winner := ""
	if sale.WinnerID != nil {
		winner = *sale.WinnerID
	}
	s.logger.InfoContext(ctx, "lot resolved",
		"lot_id", lot.ID,
		"player_id", lot.PlayerID,
		"winner_id", winner,
		"price_half_m", sale.PriceHalfM,
	)

	return SaleResult{Lot: resolved, NextLotID: updated.CurrentLotID}, nil
}
