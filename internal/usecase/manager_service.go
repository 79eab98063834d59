package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/domain/budget"
	"github.com/riskibarqy/squad-auction/internal/domain/manager"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
	idgen "github.com/riskibarqy/squad-auction/internal/platform/id"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
)

// RegisterManagerInput creates a manager account. CredentialHash arrives
// pre-hashed from the account service; this service never sees plaintext.
type RegisterManagerInput struct {
	Username       string
	DisplayName    string
	CredentialHash string
}

// ManagerOverview is one row of the public roll: the account plus derived
// quick stats for the open auction's phase.
type ManagerOverview struct {
	Manager         manager.Manager
	Budget          budget.Breakdown
	SquadSize       int
	SquadValueHalfM int64
}

type ManagerService struct {
	managerRepo manager.Repository
	auctionRepo auction.Repository
	rosterRepo  roster.Repository
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewManagerService(
	managerRepo manager.Repository,
	auctionRepo auction.Repository,
	rosterRepo roster.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *ManagerService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ManagerService{
		managerRepo: managerRepo,
		auctionRepo: auctionRepo,
		rosterRepo:  rosterRepo,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates a manager with the default budget allotment.
func (s *ManagerService) Register(ctx context.Context, input RegisterManagerInput) (manager.Manager, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ManagerService.Register")
	defer span.End()

	input.Username = strings.ToLower(strings.TrimSpace(input.Username))
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.Username == "" {
		return manager.Manager{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if input.DisplayName == "" {
		input.DisplayName = input.Username
	}
	if input.CredentialHash == "" {
		return manager.Manager{}, fmt.Errorf("%w: credential hash is required", ErrInvalidInput)
	}

	if _, exists, err := s.managerRepo.GetByUsername(ctx, input.Username); err != nil {
		return manager.Manager{}, fmt.Errorf("get manager by username: %w", err)
	} else if exists {
		return manager.Manager{}, fmt.Errorf("%w: username=%s is taken", ErrInvalidInput, input.Username)
	}

	m := manager.Manager{
		ID:                s.idGen.NewID(),
		Username:          input.Username,
		DisplayName:       input.DisplayName,
		PasswordHash:      input.CredentialHash,
		BudgetThousandths: manager.DefaultBudgetThousandths,
		CreatedAt:         s.now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return manager.Manager{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.managerRepo.Create(ctx, m); err != nil {
		return manager.Manager{}, fmt.Errorf("create manager: %w", err)
	}

	s.logger.InfoContext(ctx, "manager registered",
		"manager_id", m.ID,
		"username", m.Username,
	)

	return m, nil
}

// Get returns one manager account.
func (s *ManagerService) Get(ctx context.Context, managerID string) (manager.Manager, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ManagerService.Get")
	defer span.End()

	managerID = strings.TrimSpace(managerID)
	if managerID == "" {
		return manager.Manager{}, fmt.Errorf("%w: manager id is required", ErrInvalidInput)
	}

	m, exists, err := s.managerRepo.GetByID(ctx, managerID)
	if err != nil {
		return manager.Manager{}, fmt.Errorf("get manager: %w", err)
	}
	if !exists {
		return manager.Manager{}, fmt.Errorf("%w: manager=%s", ErrNotFound, managerID)
	}

	return m, nil
}

// List returns every manager with quick stats derived against the open
// auction's phase, or phase 1 when nothing is OPEN.
func (s *ManagerService) List(ctx context.Context) ([]ManagerOverview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ManagerService.List")
	defer span.End()

	managers, err := s.managerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}

	open, hasOpen, err := s.auctionRepo.GetOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("get open auction: %w", err)
	}
	phase := auction.MinPhase
	if hasOpen {
		phase = open.Phase
	}

	out := make([]ManagerOverview, 0, len(managers))
	for _, m := range managers {
		row := ManagerOverview{
			Manager: m,
			Budget:  budget.Compute(budget.StartingHalfUnits(m.BudgetThousandths), nil),
		}
		if hasOpen {
			wonLots, err := s.auctionRepo.ListLotsWonBy(ctx, open.ID, m.ID)
			if err != nil {
				return nil, fmt.Errorf("list won lots manager=%s: %w", m.ID, err)
			}
			row.Budget = budget.Compute(budget.StartingHalfUnits(m.BudgetThousandths), wonLots)
		}

		squad, exists, err := s.rosterRepo.GetByManagerAndPhase(ctx, m.ID, phase)
		if err != nil {
			return nil, fmt.Errorf("get squad manager=%s: %w", m.ID, err)
		}
		if exists {
			members, err := s.rosterRepo.ListPlayers(ctx, squad.ID)
			if err != nil {
				return nil, fmt.Errorf("list squad players squad=%s: %w", squad.ID, err)
			}
			row.SquadSize = len(members)
			for _, member := range members {
				row.SquadValueHalfM += member.FeeHalfM
			}
		}

		out = append(out, row)
	}

	return out, nil
}
