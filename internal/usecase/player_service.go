package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/team"
	"github.com/riskibarqy/squad-auction/internal/platform/cache"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
)

// PlayerService serves the player catalog. Listings are cached briefly; the
// catalog only changes through provider syncs, which invalidate the cache.
type PlayerService struct {
	playerRepo player.Repository
	teamRepo   team.Repository
	cache      *cache.Store
	logger     *logging.Logger
}

func NewPlayerService(
	playerRepo player.Repository,
	teamRepo team.Repository,
	store *cache.Store,
	logger *logging.Logger,
) *PlayerService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PlayerService{
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		cache:      store,
		logger:     logger,
	}
}

// List returns catalog players matching the filter.
func (s *PlayerService) List(ctx context.Context, filter player.Filter) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.List")
	defer span.End()

	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Position != "" {
		if _, ok := player.AllPositions[filter.Position]; !ok {
			return nil, fmt.Errorf("%w: unknown position %s", ErrInvalidInput, filter.Position)
		}
	}

	if s.cache == nil {
		return s.playerRepo.List(ctx, filter)
	}

	key := fmt.Sprintf("players:list:pos=%s:team=%d:q=%s", filter.Position, filter.TeamID, strings.ToLower(filter.Search))
	value, err := s.cache.GetOrLoad(key, func() (any, error) {
		return s.playerRepo.List(ctx, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	players, ok := value.([]player.Player)
	if !ok {
		return nil, fmt.Errorf("unexpected cache payload for key=%s", key)
	}

	return players, nil
}

// Get returns one catalog player.
func (s *PlayerService) Get(ctx context.Context, playerID int64) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Get")
	defer span.End()

	if playerID <= 0 {
		return player.Player{}, fmt.Errorf("%w: player id must be positive", ErrInvalidInput)
	}

	p, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player=%d", ErrNotFound, playerID)
	}

	return p, nil
}

// Teams returns the club list backing the catalog.
func (s *PlayerService) Teams(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Teams")
	defer span.End()

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	return teams, nil
}
