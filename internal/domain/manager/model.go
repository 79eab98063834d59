package manager

import (
	"fmt"
	"time"
)

// DefaultBudgetThousandths is every manager's fixed season allotment,
// stored in thousandths of the display currency (150.0 units).
const DefaultBudgetThousandths int64 = 150000

// Manager is a league participant who bids for players. BudgetThousandths is
// never decremented in storage; remaining budget is always derived from sold
// auction lots.
type Manager struct {
	ID                string
	Username          string
	DisplayName       string
	PasswordHash      string
	BudgetThousandths int64
	Admin             bool
	CreatedAt         time.Time
}

func (m Manager) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("manager id is required")
	}
	if m.Username == "" {
		return fmt.Errorf("manager username is required")
	}
	if m.PasswordHash == "" {
		return fmt.Errorf("manager credential is required")
	}
	if m.BudgetThousandths <= 0 {
		return fmt.Errorf("manager budget must be greater than zero")
	}

	return nil
}

// Principal is the authenticated caller identity supplied by the account
// service.
type Principal struct {
	ManagerID string
	Username  string
	Admin     bool
}
