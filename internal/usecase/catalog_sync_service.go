package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/team"
	"github.com/riskibarqy/squad-auction/internal/platform/cache"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
)

// CatalogProvider fetches the upstream player catalog.
type CatalogProvider interface {
	FetchBootstrap(ctx context.Context) (CatalogBundle, error)
}

// CatalogBundle is the provider's catalog snapshot.
type CatalogBundle struct {
	Teams   []ExternalTeam
	Players []ExternalPlayer
}

type ExternalTeam struct {
	ExternalID int64
	Name       string
	ShortName  string
}

type ExternalPlayer struct {
	ExternalID     int64
	TeamExternalID int64
	FirstName      string
	SecondName     string
	WebName        string
	ElementType    int
	NowCostTenths  int64
}

// CatalogSyncResult summarizes one sync run.
type CatalogSyncResult struct {
	TeamCount    int
	PlayerCount  int
	SkippedCount int
}

// CatalogSyncService refreshes teams and players from the provider. Syncs
// never touch ownership: squad membership references players by id and
// survives any catalog update.
type CatalogSyncService struct {
	provider   CatalogProvider
	teamRepo   team.Repository
	playerRepo player.Repository
	cache      *cache.Store
	logger     *logging.Logger
}

func NewCatalogSyncService(
	provider CatalogProvider,
	teamRepo team.Repository,
	playerRepo player.Repository,
	store *cache.Store,
	logger *logging.Logger,
) *CatalogSyncService {
	if logger == nil {
		logger = logging.Default()
	}

	return &CatalogSyncService{
		provider:   provider,
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		cache:      store,
		logger:     logger,
	}
}

// Sync pulls the provider bootstrap and upserts teams and players. The two
// upserts are independent and run concurrently.
func (s *CatalogSyncService) Sync(ctx context.Context) (CatalogSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogSyncService.Sync")
	defer span.End()

	if s.provider == nil {
		return CatalogSyncResult{}, fmt.Errorf("%w: catalog provider is not configured", ErrDependencyUnavailable)
	}

	bundle, err := s.provider.FetchBootstrap(ctx)
	if err != nil {
		return CatalogSyncResult{}, fmt.Errorf("%w: fetch catalog bootstrap: %v", ErrDependencyUnavailable, err)
	}

	teams := mapExternalTeams(bundle.Teams)
	players, skipped := mapExternalPlayers(bundle.Players)

	p := pool.New().WithErrors().WithContext(ctx)
	if len(teams) > 0 {
		p.Go(func(ctx context.Context) error {
			if err := s.teamRepo.UpsertMany(ctx, teams); err != nil {
				return fmt.Errorf("upsert teams: %w", err)
			}
			return nil
		})
	}
	if len(players) > 0 {
		p.Go(func(ctx context.Context) error {
			if err := s.playerRepo.UpsertMany(ctx, players); err != nil {
				return fmt.Errorf("upsert players: %w", err)
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return CatalogSyncResult{}, err
	}

	if s.cache != nil {
		s.cache.DeletePrefix("players:")
	}

	result := CatalogSyncResult{
		TeamCount:    len(teams),
		PlayerCount:  len(players),
		SkippedCount: skipped,
	}
	s.logger.InfoContext(ctx, "catalog synced",
		"team_count", result.TeamCount,
		"player_count", result.PlayerCount,
		"skipped_count", result.SkippedCount,
	)

	return result, nil
}

func mapExternalTeams(items []ExternalTeam) []team.Team {
	out := make([]team.Team, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if item.ExternalID <= 0 {
			continue
		}
		if _, dup := seen[item.ExternalID]; dup {
			continue
		}
		seen[item.ExternalID] = struct{}{}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		short := strings.TrimSpace(item.ShortName)
		if short == "" {
			short = strings.ToUpper(name)
			if len(short) > 3 {
				short = short[:3]
			}
		}

		out = append(out, team.Team{
			ID:        item.ExternalID,
			Name:      name,
			ShortName: short,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// mapExternalPlayers converts provider elements to catalog players. The
// provider prices in tenths of a unit; five tenths make one half-unit.
func mapExternalPlayers(items []ExternalPlayer) ([]player.Player, int) {
	out := make([]player.Player, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	skipped := 0
	for _, item := range items {
		if item.ExternalID <= 0 || item.TeamExternalID <= 0 {
			skipped++
			continue
		}
		if _, dup := seen[item.ExternalID]; dup {
			skipped++
			continue
		}
		seen[item.ExternalID] = struct{}{}

		pos, err := player.PositionFromElementType(item.ElementType)
		if err != nil {
			skipped++
			continue
		}

		secondName := strings.TrimSpace(item.SecondName)
		if secondName == "" {
			secondName = strings.TrimSpace(item.WebName)
		}
		if secondName == "" {
			skipped++
			continue
		}

		out = append(out, player.Player{
			ID:             item.ExternalID,
			TeamID:         item.TeamExternalID,
			FirstName:      strings.TrimSpace(item.FirstName),
			SecondName:     secondName,
			WebName:        strings.TrimSpace(item.WebName),
			Position:       pos,
			ListPriceHalfM: item.NowCostTenths / 5,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, skipped
}
