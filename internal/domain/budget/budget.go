// Package budget derives manager spending power. Budgets are never mutated
// in storage: the starting allotment is fixed and the spent amount is the sum
// of sold lots won in the open auction, so remaining budget is always a
// read-time computation.
package budget

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
)

var ErrInsufficientBudget = errors.New("insufficient budget")

// thousandthsPerHalfUnit converts the stored allotment (thousandths of a
// currency unit) into the engine's half-unit granularity: 500 thousandths
// make one half-unit.
const thousandthsPerHalfUnit = 500

// Breakdown is a manager's budget snapshot, all in half-unit integers.
type Breakdown struct {
	StartingHalfM  int64
	SpentHalfM     int64
	RemainingHalfM int64
}

// StartingHalfUnits converts a stored allotment into half-units, flooring.
func StartingHalfUnits(budgetThousandths int64) int64 {
	return budgetThousandths / thousandthsPerHalfUnit
}

// Compute sums the sold prices of the lots the manager has won and derives
// the remainder. Lots not yet resolved contribute nothing.
func Compute(startingHalfM int64, wonLots []auction.Lot) Breakdown {
	var spent int64
	for _, lot := range wonLots {
		if lot.Sold {
			spent += lot.SoldPriceHalfM
		}
	}

	return Breakdown{
		StartingHalfM:  startingHalfM,
		SpentHalfM:     spent,
		RemainingHalfM: startingHalfM - spent,
	}
}

// CheckSpend rejects an outlay the remaining budget cannot cover. The error
// names the shortfall so callers can render it.
func CheckSpend(b Breakdown, amountHalfM int64) error {
	if amountHalfM > b.RemainingHalfM {
		return fmt.Errorf("%w: amount=%d remaining=%d", ErrInsufficientBudget, amountHalfM, b.RemainingHalfM)
	}

	return nil
}
