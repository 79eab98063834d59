package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/domain/budget"
	"github.com/riskibarqy/squad-auction/internal/domain/manager"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
)

// BudgetService derives spending power. Nothing here writes: remaining budget
// is always recomputed from the starting allotment and the sold lots the
// manager has won in the open auction.
type BudgetService struct {
	managerRepo manager.Repository
	auctionRepo auction.Repository
	logger      *logging.Logger
}

func NewBudgetService(
	managerRepo manager.Repository,
	auctionRepo auction.Repository,
	logger *logging.Logger,
) *BudgetService {
	if logger == nil {
		logger = logging.Default()
	}

	return &BudgetService{
		managerRepo: managerRepo,
		auctionRepo: auctionRepo,
		logger:      logger,
	}
}

// Breakdown reports a manager's starting, spent and remaining budget in
// half-units. With no auction open, spent is zero.
func (s *BudgetService) Breakdown(ctx context.Context, managerID string) (budget.Breakdown, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BudgetService.Breakdown")
	defer span.End()

	managerID = strings.TrimSpace(managerID)
	if managerID == "" {
		return budget.Breakdown{}, fmt.Errorf("%w: manager id is required", ErrInvalidInput)
	}

	m, exists, err := s.managerRepo.GetByID(ctx, managerID)
	if err != nil {
		return budget.Breakdown{}, fmt.Errorf("get manager: %w", err)
	}
	if !exists {
		return budget.Breakdown{}, fmt.Errorf("%w: manager=%s", ErrNotFound, managerID)
	}

	starting := budget.StartingHalfUnits(m.BudgetThousandths)

	open, hasOpen, err := s.auctionRepo.GetOpen(ctx)
	if err != nil {
		return budget.Breakdown{}, fmt.Errorf("get open auction: %w", err)
	}
	if !hasOpen {
		return budget.Compute(starting, nil), nil
	}

	wonLots, err := s.auctionRepo.ListLotsWonBy(ctx, open.ID, managerID)
	if err != nil {
		return budget.Breakdown{}, fmt.Errorf("list won lots: %w", err)
	}

	return budget.Compute(starting, wonLots), nil
}

// breakdownFor computes a manager's budget against one specific auction.
// Shared by the bid, sale and allocation paths so spend checks all read the
// same ledger.
func breakdownFor(
	ctx context.Context,
	managerRepo manager.Repository,
	auctionRepo auction.Repository,
	auctionID, managerID string,
) (budget.Breakdown, error) {
	m, exists, err := managerRepo.GetByID(ctx, managerID)
	if err != nil {
		return budget.Breakdown{}, fmt.Errorf("get manager: %w", err)
	}
	if !exists {
		return budget.Breakdown{}, fmt.Errorf("%w: manager=%s", ErrNotFound, managerID)
	}

	wonLots, err := auctionRepo.ListLotsWonBy(ctx, auctionID, managerID)
	if err != nil {
		return budget.Breakdown{}, fmt.Errorf("list won lots: %w", err)
	}

	return budget.Compute(budget.StartingHalfUnits(m.BudgetThousandths), wonLots), nil
}

// SetAllotment overrides a manager's stored starting budget, in thousandths
// of a currency unit. Admin correction path; spending stays derived.
func (s *BudgetService) SetAllotment(ctx context.Context, managerID string, budgetThousandths int64) (manager.Manager, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BudgetService.SetAllotment")
	defer span.End()

	managerID = strings.TrimSpace(managerID)
	if managerID == "" {
		return manager.Manager{}, fmt.Errorf("%w: manager id is required", ErrInvalidInput)
	}
	if budgetThousandths < 0 {
		return manager.Manager{}, fmt.Errorf("%w: budget cannot be negative", ErrInvalidInput)
	}

	m, exists, err := s.managerRepo.GetByID(ctx, managerID)
	if err != nil {
		return manager.Manager{}, fmt.Errorf("get manager: %w", err)
	}
	if !exists {
		return manager.Manager{}, fmt.Errorf("%w: manager=%s", ErrNotFound, managerID)
	}

	if err := s.managerRepo.UpdateBudget(ctx, managerID, budgetThousandths); err != nil {
		return manager.Manager{}, fmt.Errorf("update manager budget: %w", err)
	}
	m.BudgetThousandths = budgetThousandths

	s.logger.InfoContext(ctx, "manager budget updated",
		"manager_id", managerID,
		"budget_thousandths", budgetThousandths,
	)

	return m, nil
}
