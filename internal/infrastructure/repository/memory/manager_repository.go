package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/squad-auction/internal/domain/manager"
)

type ManagerRepository struct {
	ledger *Ledger
}

func NewManagerRepository(ledger *Ledger) *ManagerRepository {
	return &ManagerRepository{ledger: ledger}
}

func (r *ManagerRepository) GetByID(_ context.Context, id string) (manager.Manager, bool, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	m, ok := r.ledger.managers[id]
	return m, ok, nil
}

func (r *ManagerRepository) GetByUsername(_ context.Context, username string) (manager.Manager, bool, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	for _, m := range r.ledger.managers {
		if m.Username == username {
			return m, true, nil
		}
	}
	return manager.Manager{}, false, nil
}

func (r *ManagerRepository) List(_ context.Context) ([]manager.Manager, error) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()

	out := make([]manager.Manager, 0, len(r.ledger.managers))
	for _, m := range r.ledger.managers {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Username < out[j].Username })

	return out, nil
}

func (r *ManagerRepository) Create(_ context.Context, m manager.Manager) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	if _, exists := r.ledger.managers[m.ID]; exists {
		return fmt.Errorf("manager already exists: id=%s", m.ID)
	}
	r.ledger.managers[m.ID] = m

	return nil
}

func (r *ManagerRepository) UpdateBudget(_ context.Context, id string, budgetThousandths int64) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	m, ok := r.ledger.managers[id]
	if !ok {
		return fmt.Errorf("manager not found: id=%s", id)
	}
	m.BudgetThousandths = budgetThousandths
	r.ledger.managers[id] = m

	return nil
}

func (r *ManagerRepository) ResetBudgets(_ context.Context, budgetThousandths int64) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	for id, m := range r.ledger.managers {
		m.BudgetThousandths = budgetThousandths
		r.ledger.managers[id] = m
	}

	return nil
}
