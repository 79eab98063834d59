package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squad-auction/internal/domain/scoring"
	qb "github.com/riskibarqy/squad-auction/internal/platform/querybuilder"
)

type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) UpsertMany(ctx context.Context, points []scoring.PlayerPoints) error {
	if len(points) == 0 {
		return nil
	}

	builder := qb.InsertInto("gameweek_player_points").Columns("player_id", "gameweek", "points")
	for _, p := range points {
		builder = builder.Values(p.PlayerID, p.Gameweek, p.Points)
	}
	query, args, err := builder.Suffix(`
ON CONFLICT (player_id, gameweek) DO UPDATE SET
    points = EXCLUDED.points`).ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert gameweek points query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert gameweek points: %w", err)
	}

	return nil
}

func (r *ScoringRepository) TotalsForPlayers(ctx context.Context, playerIDs []int64, fromGameweek, toGameweek int) (map[int64]int64, error) {
	if len(playerIDs) == 0 {
		return map[int64]int64{}, nil
	}

	query, args, err := qb.Select("player_id", "SUM(points) AS total").
		From("gameweek_player_points").
		Where(
			qb.In("player_id", int64SliceToAny(playerIDs)),
			qb.Expr("gameweek BETWEEN ? AND ?", fromGameweek, toGameweek),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select gameweek totals query: %w", err)
	}
	query += " GROUP BY player_id"

	var rows []struct {
		PlayerID int64 `db:"player_id"`
		Total    int64 `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select gameweek totals: %w", err)
	}

	out := make(map[int64]int64, len(rows))
	for _, row := range rows {
		out[row.PlayerID] = row.Total
	}

	return out, nil
}
