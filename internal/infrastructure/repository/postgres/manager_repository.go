package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squad-auction/internal/domain/manager"
)

type managerTableModel struct {
	ID                string    `db:"id"`
	Username          string    `db:"username"`
	DisplayName       string    `db:"display_name"`
	PasswordHash      string    `db:"password_hash"`
	BudgetThousandths int64     `db:"budget_thousandths"`
	Admin             bool      `db:"admin"`
	CreatedAt         time.Time `db:"created_at"`
}

func (m managerTableModel) toDomain() manager.Manager {
	return manager.Manager{
		ID:                m.ID,
		Username:          m.Username,
		DisplayName:       m.DisplayName,
		PasswordHash:      m.PasswordHash,
		BudgetThousandths: m.BudgetThousandths,
		Admin:             m.Admin,
		CreatedAt:         m.CreatedAt,
	}
}

const managerSelectQuery = `
SELECT id, username, display_name, password_hash, budget_thousandths, admin, created_at
FROM managers`

type ManagerRepository struct {
	db *sqlx.DB
}

func NewManagerRepository(db *sqlx.DB) *ManagerRepository {
	return &ManagerRepository{db: db}
}

func (r *ManagerRepository) GetByID(ctx context.Context, id string) (manager.Manager, bool, error) {
	var row managerTableModel
	if err := r.db.GetContext(ctx, &row, managerSelectQuery+" WHERE id = $1", id); err != nil {
		if isNotFound(err) {
			return manager.Manager{}, false, nil
		}
		return manager.Manager{}, false, fmt.Errorf("get manager: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ManagerRepository) GetByUsername(ctx context.Context, username string) (manager.Manager, bool, error) {
	var row managerTableModel
	if err := r.db.GetContext(ctx, &row, managerSelectQuery+" WHERE username = $1", username); err != nil {
		if isNotFound(err) {
			return manager.Manager{}, false, nil
		}
		return manager.Manager{}, false, fmt.Errorf("get manager by username: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ManagerRepository) List(ctx context.Context) ([]manager.Manager, error) {
	var rows []managerTableModel
	if err := r.db.SelectContext(ctx, &rows, managerSelectQuery+" ORDER BY username"); err != nil {
		return nil, fmt.Errorf("select managers: %w", err)
	}

	out := make([]manager.Manager, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *ManagerRepository) Create(ctx context.Context, m manager.Manager) error {
	const query = `
INSERT INTO managers (id, username, display_name, password_hash, budget_thousandths, admin, created_at)
VALUES (:id, :username, :display_name, :password_hash, :budget_thousandths, :admin, :created_at)`

	args := map[string]any{
		"id":                 m.ID,
		"username":           m.Username,
		"display_name":       m.DisplayName,
		"password_hash":      m.PasswordHash,
		"budget_thousandths": m.BudgetThousandths,
		"admin":              m.Admin,
		"created_at":         m.CreatedAt,
	}
	insertSQL, insertArgs, err := sqlx.Named(query, args)
	if err != nil {
		return fmt.Errorf("bind insert manager query: %w", err)
	}
	insertSQL = r.db.Rebind(insertSQL)
	if _, err := r.db.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		return fmt.Errorf("insert manager: %w", err)
	}

	return nil
}

func (r *ManagerRepository) UpdateBudget(ctx context.Context, id string, budgetThousandths int64) error {
	const query = `
UPDATE managers
SET budget_thousandths = $1
WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, budgetThousandths, id)
	if err != nil {
		return fmt.Errorf("update manager budget: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update manager budget rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("manager not found: id=%s", id)
	}

	return nil
}

func (r *ManagerRepository) ResetBudgets(ctx context.Context, budgetThousandths int64) error {
	const query = `
UPDATE managers
SET budget_thousandths = $1`

	if _, err := r.db.ExecContext(ctx, query, budgetThousandths); err != nil {
		return fmt.Errorf("reset manager budgets: %w", err)
	}

	return nil
}
