package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/team"
	qb "github.com/riskibarqy/squad-auction/internal/platform/querybuilder"
)

var playerSelectColumns = []string{
	"id",
	"team_id",
	"first_name",
	"second_name",
	"web_name",
	"position",
	"list_price_half_m",
	"created_at",
	"updated_at",
}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) List(ctx context.Context, filter player.Filter) ([]player.Player, error) {
	builder := qb.Select(playerSelectColumns...).From("players").OrderBy("id")
	if filter.Position != "" {
		builder = builder.Where(qb.Eq("position", string(filter.Position)))
	}
	if filter.TeamID != 0 {
		builder = builder.Where(qb.Eq("team_id", filter.TeamID))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(qb.Expr(
			"(first_name ILIKE ? OR second_name ILIKE ? OR web_name ILIKE ?)",
			pattern, pattern, pattern,
		))
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (player.Player, bool, error) {
	const query = `
SELECT id, team_id, first_name, second_name, web_name, position, list_price_half_m, created_at, updated_at
FROM players
WHERE id = $1`

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, ids []int64) ([]player.Player, error) {
	if len(ids) == 0 {
		return []player.Player{}, nil
	}

	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.In("id", int64SliceToAny(ids))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by ids query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by ids: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *PlayerRepository) UpsertMany(ctx context.Context, players []player.Player) error {
	if len(players) == 0 {
		return nil
	}

	builder := qb.InsertInto("players").
		Columns("id", "team_id", "first_name", "second_name", "web_name", "position", "list_price_half_m")
	for _, p := range players {
		builder = builder.Values(p.ID, p.TeamID, p.FirstName, p.SecondName, p.WebName, string(p.Position), p.ListPriceHalfM)
	}
	query, args, err := builder.Suffix(`
ON CONFLICT (id) DO UPDATE SET
    team_id = EXCLUDED.team_id,
    first_name = EXCLUDED.first_name,
    second_name = EXCLUDED.second_name,
    web_name = EXCLUDED.web_name,
    position = EXCLUDED.position,
    list_price_half_m = EXCLUDED.list_price_half_m,
    updated_at = NOW()`).ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert players query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert players: %w", err)
	}

	return nil
}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	const query = `
SELECT id, name, short_name, created_at, updated_at
FROM teams
ORDER BY id`

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *TeamRepository) UpsertMany(ctx context.Context, teams []team.Team) error {
	if len(teams) == 0 {
		return nil
	}

	builder := qb.InsertInto("teams").Columns("id", "name", "short_name")
	for _, t := range teams {
		builder = builder.Values(t.ID, t.Name, t.ShortName)
	}
	query, args, err := builder.Suffix(`
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    short_name = EXCLUDED.short_name,
    updated_at = NOW()`).ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert teams query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert teams: %w", err)
	}

	return nil
}
