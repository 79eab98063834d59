package usecase

import (
	"context"
	"fmt"
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

// AllocationInput is one player-and-fee pair in a bulk allocation.
type AllocationInput struct {
	PlayerID int64
	FeeHalfM int64
}

// BulkAllocateInput replaces a manager's squad for one phase wholesale.
type BulkAllocateInput struct {
	ManagerID   string
	Phase       int
	Allocations []AllocationInput
}

// AllocationService is the admin bulk path around live bidding: it installs
// a complete phase squad in one call, settling each allocation against the
// open auction so budget accounting stays uniform with hammer sales.
type AllocationService struct {
	auctionRepo auction.Repository
	managerRepo manager.Repository
	playerRepo  player.Repository
	rosterRepo  roster.Repository
	limits      roster.Limits
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewAllocationService(
	auctionRepo auction.Repository,
	managerRepo manager.Repository,
	playerRepo player.Repository,
	rosterRepo roster.Repository,
	limits roster.Limits,
	idGen idgen.Generator,
	logger *logging.Logger,
) *AllocationService {
	if logger == nil {
		logger = logging.Default()
	}

	return &AllocationService{
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

// BulkAllocate validates the list against roster caps, phase ownership and
// budget, then replaces the manager's phase squad atomically. The caps apply
// to the new list alone: whatever squad existed for the phase is discarded,
// not merged.
func (s *AllocationService) BulkAllocate(ctx context.Context, input BulkAllocateInput) (roster.Squad, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AllocationService.BulkAllocate")
	defer span.End()

	input.ManagerID = strings.TrimSpace(input.ManagerID)
	if input.ManagerID == "" {
		return roster.Squad{}, fmt.Errorf("%w: manager id is required", ErrInvalidInput)
	}
	if input.Phase < auction.MinPhase || input.Phase > auction.MaxPhase {
		return roster.Squad{}, fmt.Errorf("%w: phase must be between %d and %d", ErrInvalidInput, auction.MinPhase, auction.MaxPhase)
	}
	if len(input.Allocations) == 0 {
		return roster.Squad{}, fmt.Errorf("%w: allocations are required", ErrInvalidInput)
	}

	if _, exists, err := s.managerRepo.GetByID(ctx, input.ManagerID); err != nil {
		return roster.Squad{}, fmt.Errorf("get manager: %w", err)
	} else if !exists {
		return roster.Squad{}, fmt.Errorf("%w: manager=%s", ErrNotFound, input.ManagerID)
	}

	playerIDs := make([]int64, 0, len(input.Allocations))
	seen := make(map[int64]struct{}, len(input.Allocations))
	var totalFee int64
	for _, alloc := range input.Allocations {
		if alloc.FeeHalfM < 0 {
			return roster.Squad{}, fmt.Errorf("%w: fee cannot be negative for player=%d", ErrInvalidInput, alloc.PlayerID)
		}
		if _, dup := seen[alloc.PlayerID]; dup {
			return roster.Squad{}, fmt.Errorf("%w: player=%d", roster.ErrDuplicatePlayerInRequest, alloc.PlayerID)
		}
		seen[alloc.PlayerID] = struct{}{}
		playerIDs = append(playerIDs, alloc.PlayerID)
		totalFee += alloc.FeeHalfM
	}

	players, err := s.playerRepo.GetByIDs(ctx, playerIDs)
	if err != nil {
		return roster.Squad{}, fmt.Errorf("get players: %w", err)
	}
	if len(players) != len(playerIDs) {
		found := make(map[int64]struct{}, len(players))
		for _, p := range players {
			found[p.ID] = struct{}{}
		}
		missing := make([]int64, 0, len(playerIDs)-len(players))
		for _, id := range playerIDs {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
		return roster.Squad{}, fmt.Errorf("%w: players=%v", ErrNotFound, missing)
	}

	positions := make([]player.Position, 0, len(players))
	for _, p := range players {
		positions = append(positions, p.Position)
	}
	if err := roster.ValidateAllocations(positions, s.limits); err != nil {
		return roster.Squad{}, fmt.Errorf("validate allocations: %w", err)
	}

	owners, err := s.rosterRepo.OwnersOf(ctx, playerIDs, input.Phase)
	if err != nil {
		return roster.Squad{}, fmt.Errorf("check phase ownership: %w", err)
	}
	for playerID, ownerID := range owners {
		if ownerID != input.ManagerID {
			return roster.Squad{}, fmt.Errorf("%w: player=%d owner=%s", roster.ErrOwnedByOtherManager, playerID, ownerID)
		}
	}

	open, hasOpen, err := s.auctionRepo.GetOpen(ctx)
	if err != nil {
		return roster.Squad{}, fmt.Errorf("get open auction: %w", err)
	}
	if hasOpen {
		b, err := breakdownFor(ctx, s.managerRepo, s.auctionRepo, open.ID, input.ManagerID)
		if err != nil {
			return roster.Squad{}, err
		}
		if err := budget.CheckSpend(b, totalFee); err != nil {
			return roster.Squad{}, fmt.Errorf("check allocation against budget: %w", err)
		}
	}

	allocations := make([]roster.Allocation, 0, len(input.Allocations))
	for _, alloc := range input.Allocations {
		allocations = append(allocations, roster.Allocation{
			PlayerID: alloc.PlayerID,
			FeeHalfM: alloc.FeeHalfM,
		})
	}
	if err := s.rosterRepo.ReplaceSquad(ctx, input.ManagerID, input.Phase, allocations); err != nil {
		return roster.Squad{}, fmt.Errorf("replace phase squad: %w", err)
	}

	if hasOpen {
		now := s.now().UTC()
		settled := make([]auction.Lot, 0, len(input.Allocations))
		managerID := input.ManagerID
		for _, alloc := range input.Allocations {
			settled = append(settled, auction.Lot{
				ID:             s.idGen.NewID(),
				AuctionID:      open.ID,
				PlayerID:       alloc.PlayerID,
				Sold:           true,
				SoldPriceHalfM: alloc.FeeHalfM,
				WinnerID:       &managerID,
				CreatedAt:      now,
			})
		}
		if err := s.auctionRepo.InsertSettledLots(ctx, settled); err != nil {
			return roster.Squad{}, fmt.Errorf("settle allocation lots: %w", err)
		}
	}

	squad, _, err := s.rosterRepo.GetByManagerAndPhase(ctx, input.ManagerID, input.Phase)
	if err != nil {
		return roster.Squad{}, fmt.Errorf("get replaced squad: %w", err)
	}

	s.logger.InfoContext(ctx, "phase squad bulk allocated",
		"manager_id", input.ManagerID,
		"phase", input.Phase,
		"player_count", len(input.Allocations),
		"total_fee_half_m", totalFee,
	)

	return squad, nil
}
