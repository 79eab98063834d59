package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
)

func TestStartingHalfUnits(t *testing.T) {
	assert.Equal(t, int64(300), StartingHalfUnits(150000))
	assert.Equal(t, int64(0), StartingHalfUnits(499))
	// Floors, never rounds.
	assert.Equal(t, int64(1), StartingHalfUnits(999))
}

func TestCompute(t *testing.T) {
	winner := "mgr-1"
	lots := []auction.Lot{
		{ID: "lot-1", Sold: true, SoldPriceHalfM: 11, WinnerID: &winner},
		{ID: "lot-2", Sold: true, SoldPriceHalfM: 8, WinnerID: &winner},
		{ID: "lot-3", Sold: false, SoldPriceHalfM: 99, WinnerID: &winner},
	}

	b := Compute(300, lots)
	require.Equal(t, int64(300), b.StartingHalfM)
	// Unresolved lots contribute nothing.
	require.Equal(t, int64(19), b.SpentHalfM)
	require.Equal(t, int64(281), b.RemainingHalfM)
}

func TestCheckSpend(t *testing.T) {
	b := Breakdown{StartingHalfM: 300, SpentHalfM: 296, RemainingHalfM: 4}

	require.NoError(t, CheckSpend(b, 4))
	assert.ErrorIs(t, CheckSpend(b, 5), ErrInsufficientBudget)
}
