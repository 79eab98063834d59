package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/squad-auction/internal/domain/manager"
)

func TestManagerService_Register(t *testing.T) {
	f := newFixture(t)
	f.managers.now = fixedTime

	m, err := f.managers.Register(t.Context(), RegisterManagerInput{
		Username:       "  Dave ",
		CredentialHash: "hash",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if m.Username != "dave" {
		t.Fatalf("expected normalized username dave, got %s", m.Username)
	}
	if m.DisplayName != "dave" {
		t.Fatalf("expected display name defaulted to username, got %s", m.DisplayName)
	}
	if m.BudgetThousandths != manager.DefaultBudgetThousandths {
		t.Fatalf("expected default budget, got %d", m.BudgetThousandths)
	}
	if !m.CreatedAt.Equal(fixedTime()) {
		t.Fatalf("expected created at %v, got %v", fixedTime(), m.CreatedAt)
	}

	_, err = f.managers.Register(t.Context(), RegisterManagerInput{
		Username:       "dave",
		CredentialHash: "hash",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for taken username, got %v", err)
	}
}

func TestManagerService_ListOverview(t *testing.T) {
	f := newFixture(t)
	view := f.startAuction(t)

	if _, err := f.sales.ResolveManual(t.Context(), lotFor(t, view, 101), "mgr-a", 12); err != nil {
		t.Fatalf("sale: %v", err)
	}

	rows, err := f.managers.List(t.Context())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != len(testManagers) {
		t.Fatalf("expected %d rows, got %d", len(testManagers), len(rows))
	}

	// Sorted by username: alice first.
	alice := rows[0]
	if alice.Manager.ID != "mgr-a" {
		t.Fatalf("expected mgr-a first, got %s", alice.Manager.ID)
	}
	if alice.SquadSize != 1 || alice.SquadValueHalfM != 12 {
		t.Fatalf("expected squad size 1 value 12, got size=%d value=%d", alice.SquadSize, alice.SquadValueHalfM)
	}
	if alice.Budget.SpentHalfM != 12 || alice.Budget.RemainingHalfM != 288 {
		t.Fatalf("expected spent=12 remaining=288, got %+v", alice.Budget)
	}

	bob := rows[1]
	if bob.SquadSize != 0 || bob.Budget.SpentHalfM != 0 {
		t.Fatalf("expected empty stats for bob, got %+v", bob)
	}
}
