package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/squad-auction/internal/domain/roster"
	"github.com/riskibarqy/squad-auction/internal/domain/scoring"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
)

const (
	minGameweek = 1
	maxGameweek = 38

	defaultScoreChunkSize   = 200
	defaultScoreWorkerCount = 4
)

// GameweekScoreProvider fetches per-player points for one real gameweek.
type GameweekScoreProvider interface {
	FetchGameweekPoints(ctx context.Context, gameweek int) ([]ExternalGameweekScore, error)
}

type ExternalGameweekScore struct {
	PlayerExternalID int64
	Points           int64
}

// ScoreRefreshResult summarizes one points refresh run.
type ScoreRefreshResult struct {
	Gameweek    int
	Phase       int
	PlayerCount int
	SquadCount  int
}

// ScoringService ingests gameweek points and keeps squad totals current.
// Points are stored per player per gameweek; a squad's total is the sum of
// its members' points across the gameweeks its phase covers.
type ScoringService struct {
	provider    GameweekScoreProvider
	scoringRepo scoring.Repository
	rosterRepo  roster.Repository
	logger      *logging.Logger
	chunkSize   int
	workerCount int
}

func NewScoringService(
	provider GameweekScoreProvider,
	scoringRepo scoring.Repository,
	rosterRepo roster.Repository,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ScoringService{
		provider:    provider,
		scoringRepo: scoringRepo,
		rosterRepo:  rosterRepo,
		logger:      logger,
		chunkSize:   defaultScoreChunkSize,
		workerCount: defaultScoreWorkerCount,
	}
}

// RefreshGameweek pulls the live points for one gameweek, upserts them in
// parallel chunks and recomputes squad totals for the phase the gameweek
// scores against.
func (s *ScoringService) RefreshGameweek(ctx context.Context, gameweek int) (ScoreRefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RefreshGameweek")
	defer span.End()

	if gameweek < minGameweek || gameweek > maxGameweek {
		return ScoreRefreshResult{}, fmt.Errorf("%w: gameweek must be between %d and %d", ErrInvalidInput, minGameweek, maxGameweek)
	}
	if s.provider == nil {
		return ScoreRefreshResult{}, fmt.Errorf("%w: score provider is not configured", ErrDependencyUnavailable)
	}

	scores, err := s.provider.FetchGameweekPoints(ctx, gameweek)
	if err != nil {
		return ScoreRefreshResult{}, fmt.Errorf("%w: fetch gameweek points gameweek=%d: %v", ErrDependencyUnavailable, gameweek, err)
	}

	points := make([]scoring.PlayerPoints, 0, len(scores))
	for _, score := range scores {
		if score.PlayerExternalID <= 0 {
			continue
		}
		points = append(points, scoring.PlayerPoints{
			PlayerID: score.PlayerExternalID,
			Gameweek: gameweek,
			Points:   score.Points,
		})
	}

	if err := s.upsertChunked(ctx, points); err != nil {
		return ScoreRefreshResult{}, err
	}

	phase := scoring.PhaseForGameweek(gameweek)
	squadCount, err := s.recomputePhaseTotals(ctx, phase)
	if err != nil {
		return ScoreRefreshResult{}, err
	}

	result := ScoreRefreshResult{
		Gameweek:    gameweek,
		Phase:       phase,
		PlayerCount: len(points),
		SquadCount:  squadCount,
	}
	s.logger.InfoContext(ctx, "gameweek points refreshed",
		"gameweek", gameweek,
		"phase", phase,
		"player_count", result.PlayerCount,
		"squad_count", result.SquadCount,
	)

	return result, nil
}

func (s *ScoringService) upsertChunked(ctx context.Context, points []scoring.PlayerPoints) error {
	if len(points) == 0 {
		return nil
	}

	chunkSize := s.chunkSize
	if chunkSize <= 0 {
		chunkSize = defaultScoreChunkSize
	}
	chunks := make([][]scoring.PlayerPoints, 0, len(points)/chunkSize+1)
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}
		chunks = append(chunks, points[start:end])
	}

	workerCount := s.workerCount
	if workerCount <= 0 {
		workerCount = defaultScoreWorkerCount
	}
	if workerCount > len(chunks) {
		workerCount = len(chunks)
	}

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return fmt.Errorf("create score worker pool: %w", err)
	}
	defer workerPool.Release()

	errs := make(chan error, len(chunks))
	var workers sync.WaitGroup
	for _, chunk := range chunks {
		chunk := chunk
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()
			if err := s.scoringRepo.UpsertMany(ctx, chunk); err != nil {
				errs <- fmt.Errorf("upsert points chunk: %w", err)
			}
		}); err != nil {
			workers.Done()
			return fmt.Errorf("submit points chunk: %w", err)
		}
	}

	workers.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *ScoringService) recomputePhaseTotals(ctx context.Context, phase int) (int, error) {
	from, to := scoring.GameweekRangeForPhase(phase)

	squads, err := s.rosterRepo.ListByPhase(ctx, phase)
	if err != nil {
		return 0, fmt.Errorf("list phase squads: %w", err)
	}

	for _, squad := range squads {
		members, err := s.rosterRepo.ListPlayers(ctx, squad.ID)
		if err != nil {
			return 0, fmt.Errorf("list squad players squad=%s: %w", squad.ID, err)
		}
		if len(members) == 0 {
			if err := s.rosterRepo.SetTotalPoints(ctx, squad.ID, 0); err != nil {
				return 0, fmt.Errorf("reset squad total squad=%s: %w", squad.ID, err)
			}
			continue
		}

		playerIDs := make([]int64, 0, len(members))
		for _, member := range members {
			playerIDs = append(playerIDs, member.PlayerID)
		}
		totals, err := s.scoringRepo.TotalsForPlayers(ctx, playerIDs, from, to)
		if err != nil {
			return 0, fmt.Errorf("sum points squad=%s: %w", squad.ID, err)
		}

		var total int64
		for _, playerID := range playerIDs {
			total += totals[playerID]
		}
		if err := s.rosterRepo.SetTotalPoints(ctx, squad.ID, total); err != nil {
			return 0, fmt.Errorf("set squad total squad=%s: %w", squad.ID, err)
		}
	}

	return len(squads), nil
}
