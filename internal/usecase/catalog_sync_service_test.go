package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
)

type staticCatalogProvider struct {
	bundle CatalogBundle
	err    error
}

func (p staticCatalogProvider) FetchBootstrap(context.Context) (CatalogBundle, error) {
	return p.bundle, p.err
}

func TestCatalogSyncService_Sync(t *testing.T) {
	ledger := memory.NewLedger()
	teamRepo := memory.NewTeamRepository(ledger)
	playerRepo := memory.NewPlayerRepository(ledger)

	provider := staticCatalogProvider{bundle: CatalogBundle{
		Teams: []ExternalTeam{
			{ExternalID: 1, Name: "Liverpool", ShortName: "LIV"},
			{ExternalID: 2, Name: "Everton"},
			{ExternalID: 0, Name: "ignored"},
		},
		Players: []ExternalPlayer{
			{ExternalID: 11, TeamExternalID: 1, FirstName: "Mohamed", SecondName: "Salah", WebName: "Salah", ElementType: 3, NowCostTenths: 130},
			{ExternalID: 12, TeamExternalID: 1, WebName: "Alisson", ElementType: 1, NowCostTenths: 55},
			{ExternalID: 13, TeamExternalID: 2, SecondName: "Unknown", ElementType: 9, NowCostTenths: 40},
		},
	}}

	service := NewCatalogSyncService(provider, teamRepo, playerRepo, nil, logging.NewNop())

	result, err := service.Sync(t.Context())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.TeamCount != 2 || result.PlayerCount != 2 || result.SkippedCount != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	teams, err := teamRepo.List(t.Context())
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
	if teams[1].ShortName != "EVE" {
		t.Fatalf("expected derived short name EVE, got %s", teams[1].ShortName)
	}

	salah, exists, err := playerRepo.GetByID(t.Context(), 11)
	if err != nil || !exists {
		t.Fatalf("get salah: exists=%v err=%v", exists, err)
	}
	// 13.0 display units priced in tenths becomes 26 half-units.
	if salah.ListPriceHalfM != 26 {
		t.Fatalf("expected list price 26, got %d", salah.ListPriceHalfM)
	}
	if salah.Position != player.PositionMidfielder {
		t.Fatalf("expected MID, got %s", salah.Position)
	}

	alisson, exists, err := playerRepo.GetByID(t.Context(), 12)
	if err != nil || !exists {
		t.Fatalf("get alisson: exists=%v err=%v", exists, err)
	}
	if alisson.SecondName != "Alisson" {
		t.Fatalf("expected web name fallback for second name, got %q", alisson.SecondName)
	}
}

func TestCatalogSyncService_ProviderFailure(t *testing.T) {
	ledger := memory.NewLedger()
	service := NewCatalogSyncService(
		staticCatalogProvider{err: errors.New("upstream down")},
		memory.NewTeamRepository(ledger),
		memory.NewPlayerRepository(ledger),
		nil,
		logging.NewNop(),
	)

	_, err := service.Sync(t.Context())
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}
