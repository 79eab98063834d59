package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/team"
	"github.com/riskibarqy/squad-auction/internal/platform/cache"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
)

func newPlayerService(f *fixture, store *cache.Store) *PlayerService {
	return NewPlayerService(f.playerRepo, f.teamRepo, store, logging.NewNop())
}

func TestPlayerService_ListFilters(t *testing.T) {
	f := newFixture(t)
	svc := newPlayerService(f, nil)

	all, err := svc.List(t.Context(), player.Filter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != len(testPlayers) {
		t.Fatalf("expected %d players, got %d", len(testPlayers), len(all))
	}

	gks, err := svc.List(t.Context(), player.Filter{Position: player.PositionGoalkeeper})
	if err != nil {
		t.Fatalf("list goalkeepers: %v", err)
	}
	if len(gks) != 2 {
		t.Fatalf("expected 2 goalkeepers, got %d", len(gks))
	}

	citizens, err := svc.List(t.Context(), player.Filter{TeamID: 2, Position: player.PositionForward})
	if err != nil {
		t.Fatalf("list team 2 forwards: %v", err)
	}
	if len(citizens) != 1 || citizens[0].WebName != "Haaland" {
		t.Fatalf("expected Haaland only, got %+v", citizens)
	}

	// Search is trimmed and case-insensitive over all three name fields.
	found, err := svc.List(t.Context(), player.Filter{Search: "  SALAH "})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].ID != 301 {
		t.Fatalf("expected player 301, got %+v", found)
	}

	if _, err := svc.List(t.Context(), player.Filter{Position: "STRIKER"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown position, got %v", err)
	}
}

func TestPlayerService_ListCachesUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	store := cache.NewStore(time.Minute)
	svc := newPlayerService(f, store)

	before, err := svc.List(t.Context(), player.Filter{Position: player.PositionForward})
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	if len(before) != 1 {
		t.Fatalf("expected 1 forward, got %d", len(before))
	}

	extra := player.Player{ID: 402, TeamID: 1, FirstName: "Darwin", SecondName: "Nunez", WebName: "Nunez", Position: player.PositionForward, ListPriceHalfM: 15}
	if err := f.playerRepo.UpsertMany(t.Context(), []player.Player{extra}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	stale, err := svc.List(t.Context(), player.Filter{Position: player.PositionForward})
	if err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if len(stale) != 1 {
		t.Fatalf("expected cached listing to miss the new player, got %d", len(stale))
	}

	store.DeletePrefix("players:")
	fresh, err := svc.List(t.Context(), player.Filter{Position: player.PositionForward})
	if err != nil {
		t.Fatalf("fresh list: %v", err)
	}
	if len(fresh) != 2 {
		t.Fatalf("expected 2 forwards after invalidation, got %d", len(fresh))
	}
}

func TestPlayerService_Get(t *testing.T) {
	f := newFixture(t)
	svc := newPlayerService(f, nil)

	p, err := svc.Get(t.Context(), 101)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.WebName != "Alisson" {
		t.Fatalf("expected Alisson, got %s", p.WebName)
	}

	if _, err := svc.Get(t.Context(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero id, got %v", err)
	}
	if _, err := svc.Get(t.Context(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayerService_Teams(t *testing.T) {
	f := newFixture(t)
	svc := newPlayerService(f, nil)

	seed := []team.Team{
		{ID: 1, Name: "Liverpool", ShortName: "LIV"},
		{ID: 2, Name: "Manchester City", ShortName: "MCI"},
	}
	if err := f.teamRepo.UpsertMany(t.Context(), seed); err != nil {
		t.Fatalf("seed teams: %v", err)
	}

	teams, err := svc.Teams(t.Context())
	if err != nil {
		t.Fatalf("teams: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
}
