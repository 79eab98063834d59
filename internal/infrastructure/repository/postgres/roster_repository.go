package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
	qb "github.com/riskibarqy/squad-auction/internal/platform/querybuilder"
)

type squadTableModel struct {
	ID          string    `db:"id"`
	ManagerID   string    `db:"manager_id"`
	Phase       int       `db:"phase"`
	TotalPoints int64     `db:"total_points"`
	CreatedAt   time.Time `db:"created_at"`
}

func (m squadTableModel) toDomain() roster.Squad {
	return roster.Squad{
		ID:          m.ID,
		ManagerID:   m.ManagerID,
		Phase:       m.Phase,
		TotalPoints: m.TotalPoints,
		CreatedAt:   m.CreatedAt,
	}
}

const squadSelectQuery = `
SELECT id, manager_id, phase, total_points, created_at
FROM squads`

type RosterRepository struct {
	db    *sqlx.DB
	newID func() string
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db, newID: uuid.NewString}
}

func (r *RosterRepository) GetByManagerAndPhase(ctx context.Context, managerID string, phase int) (roster.Squad, bool, error) {
	var row squadTableModel
	err := r.db.GetContext(ctx, &row, squadSelectQuery+" WHERE manager_id = $1 AND phase = $2", managerID, phase)
	if err != nil {
		if isNotFound(err) {
			return roster.Squad{}, false, nil
		}
		return roster.Squad{}, false, fmt.Errorf("get squad: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *RosterRepository) ListByPhase(ctx context.Context, phase int) ([]roster.Squad, error) {
	var rows []squadTableModel
	err := r.db.SelectContext(ctx, &rows, squadSelectQuery+" WHERE phase = $1 ORDER BY manager_id", phase)
	if err != nil {
		return nil, fmt.Errorf("select squads by phase: %w", err)
	}

	out := make([]roster.Squad, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *RosterRepository) ListPlayers(ctx context.Context, squadID string) ([]roster.SquadPlayer, error) {
	const query = `
SELECT squad_id, player_id, fee_half_m
FROM squad_players
WHERE squad_id = $1
ORDER BY player_id`

	var rows []struct {
		SquadID  string `db:"squad_id"`
		PlayerID int64  `db:"player_id"`
		FeeHalfM int64  `db:"fee_half_m"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, squadID); err != nil {
		return nil, fmt.Errorf("select squad players: %w", err)
	}

	out := make([]roster.SquadPlayer, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.SquadPlayer{
			SquadID:  row.SquadID,
			PlayerID: row.PlayerID,
			FeeHalfM: row.FeeHalfM,
		})
	}

	return out, nil
}

func (r *RosterRepository) PositionsHeld(ctx context.Context, managerID string, phase int) ([]player.Position, error) {
	const query = `
SELECT players.position
FROM squad_players
JOIN squads ON squads.id = squad_players.squad_id
JOIN players ON players.id = squad_players.player_id
WHERE squads.manager_id = $1
  AND squads.phase = $2`

	var rows []string
	if err := r.db.SelectContext(ctx, &rows, query, managerID, phase); err != nil {
		return nil, fmt.Errorf("select held positions: %w", err)
	}

	out := make([]player.Position, 0, len(rows))
	for _, p := range rows {
		out = append(out, player.Position(p))
	}

	return out, nil
}

func (r *RosterRepository) OwnersOf(ctx context.Context, playerIDs []int64, phase int) (map[int64]string, error) {
	if len(playerIDs) == 0 {
		return map[int64]string{}, nil
	}

	query, args, err := qb.Select("squad_players.player_id", "squads.manager_id").
		From("squad_players JOIN squads ON squads.id = squad_players.squad_id").
		Where(
			qb.In("squad_players.player_id", int64SliceToAny(playerIDs)),
			qb.Eq("squads.phase", phase),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select owners query: %w", err)
	}

	var rows []struct {
		PlayerID  int64  `db:"player_id"`
		ManagerID string `db:"manager_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select owners: %w", err)
	}

	out := make(map[int64]string, len(rows))
	for _, row := range rows {
		out[row.PlayerID] = row.ManagerID
	}

	return out, nil
}

// ReplaceSquad swaps the manager's phase squad wholesale: existing membership
// rows go, the new allocation comes in, all inside one transaction.
func (r *RosterRepository) ReplaceSquad(ctx context.Context, managerID string, phase int, allocations []roster.Allocation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for squad replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var squadID string
	err = tx.GetContext(ctx, &squadID, `SELECT id FROM squads WHERE manager_id = $1 AND phase = $2 FOR UPDATE`, managerID, phase)
	if err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("find squad: %w", err)
		}
		squadID = r.newID()
		const insertQuery = `
INSERT INTO squads (id, manager_id, phase, total_points)
VALUES ($1, $2, $3, 0)`
		if _, err := tx.ExecContext(ctx, insertQuery, squadID, managerID, phase); err != nil {
			return fmt.Errorf("insert squad: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM squad_players WHERE squad_id = $1`, squadID); err != nil {
		return fmt.Errorf("clear squad players: %w", err)
	}

	if len(allocations) > 0 {
		builder := qb.InsertInto("squad_players").Columns("squad_id", "player_id", "fee_half_m")
		for _, allocation := range allocations {
			builder = builder.Values(squadID, allocation.PlayerID, allocation.FeeHalfM)
		}
		memberSQL, memberArgs, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert squad players query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, memberSQL, memberArgs...); err != nil {
			return fmt.Errorf("insert squad players: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit squad replace tx: %w", err)
	}

	return nil
}

func (r *RosterRepository) SetTotalPoints(ctx context.Context, squadID string, totalPoints int64) error {
	const query = `
UPDATE squads
SET total_points = $1
WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, totalPoints, squadID)
	if err != nil {
		return fmt.Errorf("set squad total points: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set squad total points rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("squad not found: id=%s", squadID)
	}

	return nil
}
