package manager

import "context"

// Repository describes manager persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Manager, bool, error)
	GetByUsername(ctx context.Context, username string) (Manager, bool, error)
	List(ctx context.Context) ([]Manager, error)
	Create(ctx context.Context, m Manager) error
	UpdateBudget(ctx context.Context, id string, budgetThousandths int64) error
	ResetBudgets(ctx context.Context, budgetThousandths int64) error
}
