package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/domain/budget"
	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
	qb "github.com/riskibarqy/squad-auction/internal/platform/querybuilder"
)

const lotSelectQuery = `
SELECT id, auction_id, player_id, sold, sold_price_half_m, winner_id, created_at
FROM auction_lots`

const auctionSelectQuery = `
SELECT id, status, phase, current_lot_id, created_at
FROM auctions`

// AuctionRepository holds the serialization points of the engine: InsertBid,
// ResolveLot and ReopenLot run their whole read-validate-write cycle inside
// one transaction with SELECT ... FOR UPDATE row locks on the lot, so two
// concurrent hammers on the same lot cannot both pass validation.
type AuctionRepository struct {
	db     *sqlx.DB
	limits roster.Limits
	newID  func() string
}

func NewAuctionRepository(db *sqlx.DB) *AuctionRepository {
	return &AuctionRepository{
		db:     db,
		limits: roster.DefaultLimits(),
		newID:  uuid.NewString,
	}
}

func (r *AuctionRepository) GetOpen(ctx context.Context) (auction.Auction, bool, error) {
	var row auctionTableModel
	err := r.db.GetContext(ctx, &row, auctionSelectQuery+" WHERE status = $1", string(auction.StatusOpen))
	if err != nil {
		if isNotFound(err) {
			return auction.Auction{}, false, nil
		}
		return auction.Auction{}, false, fmt.Errorf("get open auction: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *AuctionRepository) GetByID(ctx context.Context, id string) (auction.Auction, bool, error) {
	var row auctionTableModel
	if err := r.db.GetContext(ctx, &row, auctionSelectQuery+" WHERE id = $1", id); err != nil {
		if isNotFound(err) {
			return auction.Auction{}, false, nil
		}
		return auction.Auction{}, false, fmt.Errorf("get auction: %w", err)
	}

	return row.toDomain(), true, nil
}

// Create inserts the auction and its full lot sheet in one transaction. The
// partial unique index on status enforces the single-OPEN rule at the
// database level.
func (r *AuctionRepository) Create(ctx context.Context, a auction.Auction, lots []auction.Lot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for auction create: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertAuctionQuery = `
INSERT INTO auctions (id, status, phase, current_lot_id, created_at)
VALUES (:id, :status, :phase, :current_lot_id, :created_at)`

	insertSQL, insertArgs, err := sqlx.Named(insertAuctionQuery, map[string]any{
		"id":             a.ID,
		"status":         string(a.Status),
		"phase":          a.Phase,
		"current_lot_id": nullString(a.CurrentLotID),
		"created_at":     a.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("bind insert auction query: %w", err)
	}
	insertSQL = tx.Rebind(insertSQL)
	if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: id=%s", auction.ErrAuctionAlreadyOpen, a.ID)
		}
		return fmt.Errorf("insert auction: %w", err)
	}

	if len(lots) > 0 {
		builder := qb.InsertInto("auction_lots").
			Columns("id", "auction_id", "player_id", "sold", "sold_price_half_m", "winner_id", "created_at")
		for _, lot := range lots {
			builder = builder.Values(lot.ID, lot.AuctionID, lot.PlayerID, lot.Sold, lot.SoldPriceHalfM, nullString(lot.WinnerID), lot.CreatedAt)
		}
		lotSQL, lotArgs, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert auction lots query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, lotSQL, lotArgs...); err != nil {
			return fmt.Errorf("insert auction lots: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit auction create tx: %w", err)
	}

	return nil
}

func (r *AuctionRepository) SetCurrentLot(ctx context.Context, auctionID string, lotID *string) error {
	const query = `
UPDATE auctions
SET current_lot_id = $1
WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, nullString(lotID), auctionID)
	if err != nil {
		return fmt.Errorf("set current lot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set current lot rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id=%s", auction.ErrAuctionNotFound, auctionID)
	}

	return nil
}

func (r *AuctionRepository) SetStatus(ctx context.Context, auctionID string, status auction.Status) error {
	const query = `
UPDATE auctions
SET status = $1
WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, string(status), auctionID)
	if err != nil {
		return fmt.Errorf("set auction status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set auction status rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id=%s", auction.ErrAuctionNotFound, auctionID)
	}

	return nil
}

func (r *AuctionRepository) GetLot(ctx context.Context, lotID string) (auction.Lot, bool, error) {
	var row lotTableModel
	if err := r.db.GetContext(ctx, &row, lotSelectQuery+" WHERE id = $1", lotID); err != nil {
		if isNotFound(err) {
			return auction.Lot{}, false, nil
		}
		return auction.Lot{}, false, fmt.Errorf("get lot: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *AuctionRepository) ListLots(ctx context.Context, auctionID string) ([]auction.Lot, error) {
	var rows []lotTableModel
	err := r.db.SelectContext(ctx, &rows, lotSelectQuery+" WHERE auction_id = $1 ORDER BY id", auctionID)
	if err != nil {
		return nil, fmt.Errorf("select auction lots: %w", err)
	}

	out := make([]auction.Lot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *AuctionRepository) ListLotsWonBy(ctx context.Context, auctionID, managerID string) ([]auction.Lot, error) {
	const query = lotSelectQuery + `
WHERE auction_id = $1
  AND sold = TRUE
  AND winner_id = $2
ORDER BY id`

	var rows []lotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, auctionID, managerID); err != nil {
		return nil, fmt.Errorf("select won lots: %w", err)
	}

	out := make([]auction.Lot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

// InsertSettledLots records already-sold lots from bulk phase allocation.
// When the auction still holds an unsold lot for the player, that lot is
// settled in place (its live bids dropped) instead of inserting a duplicate.
func (r *AuctionRepository) InsertSettledLots(ctx context.Context, lots []auction.Lot) error {
	if len(lots) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for settled lots: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const existingQuery = `
SELECT id
FROM auction_lots
WHERE auction_id = $1
  AND player_id = $2
  AND sold = FALSE
FOR UPDATE`

	const settleQuery = `
UPDATE auction_lots
SET sold = TRUE, sold_price_half_m = $1, winner_id = $2
WHERE id = $3`

	for _, settled := range lots {
		var existingID string
		err := tx.GetContext(ctx, &existingID, existingQuery, settled.AuctionID, settled.PlayerID)
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("find unsold lot for player=%d: %w", settled.PlayerID, err)
		}

		if err == nil {
			if _, err := tx.ExecContext(ctx, settleQuery, settled.SoldPriceHalfM, nullString(settled.WinnerID), existingID); err != nil {
				return fmt.Errorf("settle lot in place: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM bids WHERE lot_id = $1`, existingID); err != nil {
				return fmt.Errorf("delete bids for settled lot: %w", err)
			}
			continue
		}

		const insertQuery = `
INSERT INTO auction_lots (id, auction_id, player_id, sold, sold_price_half_m, winner_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.ExecContext(ctx, insertQuery,
			settled.ID, settled.AuctionID, settled.PlayerID, settled.Sold,
			settled.SoldPriceHalfM, nullString(settled.WinnerID), settled.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert settled lot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settled lots tx: %w", err)
	}

	return nil
}

func (r *AuctionRepository) ListBids(ctx context.Context, lotID string) ([]auction.Bid, error) {
	const query = `
SELECT id, lot_id, manager_id, amount_half_m, created_at
FROM bids
WHERE lot_id = $1
ORDER BY created_at, id`

	var rows []bidTableModel
	if err := r.db.SelectContext(ctx, &rows, query, lotID); err != nil {
		return nil, fmt.Errorf("select bids: %w", err)
	}

	out := make([]auction.Bid, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

// InsertBid re-checks the lot state and the leading amount under the lot's
// row lock; the service's pre-checks may be stale by the time we get here.
func (r *AuctionRepository) InsertBid(ctx context.Context, b auction.Bid) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for bid insert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lot, err := lockLot(ctx, tx, b.LotID)
	if err != nil {
		return err
	}
	if lot.Sold {
		return fmt.Errorf("%w: id=%s", auction.ErrLotAlreadySold, b.LotID)
	}

	var leading int64
	err = tx.GetContext(ctx, &leading, `SELECT COALESCE(MAX(amount_half_m), 0) FROM bids WHERE lot_id = $1`, b.LotID)
	if err != nil {
		return fmt.Errorf("get leading bid: %w", err)
	}
	if leading > 0 && b.AmountHalfM <= leading {
		return fmt.Errorf("%w: amount=%d leading=%d", auction.ErrBidTooLow, b.AmountHalfM, leading)
	}

	const insertQuery = `
INSERT INTO bids (id, lot_id, manager_id, amount_half_m, created_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, insertQuery, b.ID, b.LotID, b.ManagerID, b.AmountHalfM, b.CreatedAt); err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bid insert tx: %w", err)
	}

	return nil
}

// ResolveLot executes the whole sale atomically: mark the lot, drop its bids,
// allocate the player to the winner's phase squad and advance the hammer.
// Budget and roster admission are re-validated inside the transaction.
func (r *AuctionRepository) ResolveLot(ctx context.Context, sale auction.Sale) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for lot resolve: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lot, err := lockLot(ctx, tx, sale.LotID)
	if err != nil {
		return err
	}
	if lot.Sold {
		return fmt.Errorf("%w: id=%s", auction.ErrLotAlreadySold, sale.LotID)
	}

	a, err := lockAuction(ctx, tx, sale.AuctionID)
	if err != nil {
		return err
	}

	if sale.WinnerID != nil {
		winnerID := *sale.WinnerID
		if err := r.checkWinnerTx(ctx, tx, sale, winnerID); err != nil {
			return err
		}
	}

	const settleQuery = `
UPDATE auction_lots
SET sold = TRUE, sold_price_half_m = $1, winner_id = $2
WHERE id = $3`
	if _, err := tx.ExecContext(ctx, settleQuery, sale.PriceHalfM, nullString(sale.WinnerID), lot.ID); err != nil {
		return fmt.Errorf("settle lot: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bids WHERE lot_id = $1`, lot.ID); err != nil {
		return fmt.Errorf("delete bids for resolved lot: %w", err)
	}

	if sale.WinnerID != nil {
		squadID, err := r.findOrCreateSquadTx(ctx, tx, *sale.WinnerID, sale.Phase)
		if err != nil {
			return err
		}
		const memberQuery = `
INSERT INTO squad_players (squad_id, player_id, fee_half_m)
VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, memberQuery, squadID, sale.PlayerID, sale.PriceHalfM); err != nil {
			return fmt.Errorf("insert squad player: %w", err)
		}
	}

	next, err := nextLotTx(ctx, tx, a.ID, lot.ID)
	if err != nil {
		return err
	}
	var nextID *string
	if next != nil {
		nextID = &next.ID
	}
	if _, err := tx.ExecContext(ctx, `UPDATE auctions SET current_lot_id = $1 WHERE id = $2`, nullString(nextID), a.ID); err != nil {
		return fmt.Errorf("advance current lot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lot resolve tx: %w", err)
	}

	return nil
}

// ReopenLot reverses a resolution: the squad allocation comes back out, the
// lot returns to unsold and the hammer points at it again.
func (r *AuctionRepository) ReopenLot(ctx context.Context, lotID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for lot reopen: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lot, err := lockLot(ctx, tx, lotID)
	if err != nil {
		return err
	}
	a, err := lockAuction(ctx, tx, lot.AuctionID)
	if err != nil {
		return err
	}

	if lot.Sold && lot.WinnerID != nil {
		const removeQuery = `
DELETE FROM squad_players
USING squads
WHERE squad_players.squad_id = squads.id
  AND squads.manager_id = $1
  AND squads.phase = $2
  AND squad_players.player_id = $3`
		if _, err := tx.ExecContext(ctx, removeQuery, *lot.WinnerID, a.Phase, lot.PlayerID); err != nil {
			return fmt.Errorf("remove squad player: %w", err)
		}
	}

	const resetQuery = `
UPDATE auction_lots
SET sold = FALSE, sold_price_half_m = 0, winner_id = NULL
WHERE id = $1`
	if _, err := tx.ExecContext(ctx, resetQuery, lotID); err != nil {
		return fmt.Errorf("reset lot: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bids WHERE lot_id = $1`, lotID); err != nil {
		return fmt.Errorf("delete bids for reopened lot: %w", err)
	}

	const repointQuery = `
UPDATE auctions
SET current_lot_id = $1, status = $2
WHERE id = $3`
	if _, err := tx.ExecContext(ctx, repointQuery, lotID, string(auction.StatusOpen), a.ID); err != nil {
		return fmt.Errorf("repoint auction at reopened lot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lot reopen tx: %w", err)
	}

	return nil
}

// PurgeAll is the season reset: auction history and squads go, the manager
// accounts, the player catalog and recorded gameweek points stay.
func (r *AuctionRepository) PurgeAll(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for purge: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"bids", "squad_players", "squads", "auction_lots", "auctions"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("purge %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit purge tx: %w", err)
	}

	return nil
}

func lockLot(ctx context.Context, tx *sqlx.Tx, lotID string) (auction.Lot, error) {
	var row lotTableModel
	if err := tx.GetContext(ctx, &row, lotSelectQuery+" WHERE id = $1 FOR UPDATE", lotID); err != nil {
		if isNotFound(err) {
			return auction.Lot{}, fmt.Errorf("%w: id=%s", auction.ErrLotNotFound, lotID)
		}
		return auction.Lot{}, fmt.Errorf("lock lot: %w", err)
	}
	return row.toDomain(), nil
}

func lockAuction(ctx context.Context, tx *sqlx.Tx, auctionID string) (auction.Auction, error) {
	var row auctionTableModel
	if err := tx.GetContext(ctx, &row, auctionSelectQuery+" WHERE id = $1 FOR UPDATE", auctionID); err != nil {
		if isNotFound(err) {
			return auction.Auction{}, fmt.Errorf("%w: id=%s", auction.ErrAuctionNotFound, auctionID)
		}
		return auction.Auction{}, fmt.Errorf("lock auction: %w", err)
	}
	return row.toDomain(), nil
}

// checkWinnerTx re-runs the budget and roster admission checks with the
// winner's manager row locked, so concurrent resolves for the same manager
// on other lots serialize against this one.
func (r *AuctionRepository) checkWinnerTx(ctx context.Context, tx *sqlx.Tx, sale auction.Sale, winnerID string) error {
	var budgetThousandths int64
	err := tx.GetContext(ctx, &budgetThousandths, `SELECT budget_thousandths FROM managers WHERE id = $1 FOR UPDATE`, winnerID)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("manager not found: id=%s", winnerID)
		}
		return fmt.Errorf("lock manager: %w", err)
	}

	const wonQuery = lotSelectQuery + `
WHERE auction_id = $1
  AND sold = TRUE
  AND winner_id = $2`
	var wonRows []lotTableModel
	if err := tx.SelectContext(ctx, &wonRows, wonQuery, sale.AuctionID, winnerID); err != nil {
		return fmt.Errorf("select winner spend: %w", err)
	}
	won := make([]auction.Lot, 0, len(wonRows))
	for _, row := range wonRows {
		won = append(won, row.toDomain())
	}
	breakdown := budget.Compute(budget.StartingHalfUnits(budgetThousandths), won)
	if err := budget.CheckSpend(breakdown, sale.PriceHalfM); err != nil {
		return err
	}

	var position string
	if err := tx.GetContext(ctx, &position, `SELECT position FROM players WHERE id = $1`, sale.PlayerID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("player not found: id=%d", sale.PlayerID)
		}
		return fmt.Errorf("get player position: %w", err)
	}

	const heldQuery = `
SELECT players.position
FROM squad_players
JOIN squads ON squads.id = squad_players.squad_id
JOIN players ON players.id = squad_players.player_id
WHERE squads.manager_id = $1
  AND squads.phase = $2`
	var heldRows []string
	if err := tx.SelectContext(ctx, &heldRows, heldQuery, winnerID, sale.Phase); err != nil {
		return fmt.Errorf("select held positions: %w", err)
	}
	held := make([]player.Position, 0, len(heldRows))
	for _, p := range heldRows {
		held = append(held, player.Position(p))
	}

	return roster.CheckAdmission(held, player.Position(position), r.limits)
}

func (r *AuctionRepository) findOrCreateSquadTx(ctx context.Context, tx *sqlx.Tx, managerID string, phase int) (string, error) {
	var squadID string
	err := tx.GetContext(ctx, &squadID, `SELECT id FROM squads WHERE manager_id = $1 AND phase = $2 FOR UPDATE`, managerID, phase)
	if err == nil {
		return squadID, nil
	}
	if !isNotFound(err) {
		return "", fmt.Errorf("find squad: %w", err)
	}

	squadID = r.newID()
	const insertQuery = `
INSERT INTO squads (id, manager_id, phase, total_points)
VALUES ($1, $2, $3, 0)`
	if _, err := tx.ExecContext(ctx, insertQuery, squadID, managerID, phase); err != nil {
		return "", fmt.Errorf("insert squad: %w", err)
	}

	return squadID, nil
}

// nextLotTx re-derives the lot order from the post-settlement state and
// returns the successor of the just-resolved lot, nil when it was the last.
func nextLotTx(ctx context.Context, tx *sqlx.Tx, auctionID, lotID string) (*auction.Lot, error) {
	var lotRows []lotTableModel
	if err := tx.SelectContext(ctx, &lotRows, lotSelectQuery+" WHERE auction_id = $1 ORDER BY id", auctionID); err != nil {
		return nil, fmt.Errorf("select lots for ordering: %w", err)
	}
	lots := make([]auction.Lot, 0, len(lotRows))
	playerIDs := make([]int64, 0, len(lotRows))
	for _, row := range lotRows {
		lots = append(lots, row.toDomain())
		playerIDs = append(playerIDs, row.PlayerID)
	}

	playersQuery, playersArgs, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.In("id", int64SliceToAny(playerIDs))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select lot players query: %w", err)
	}
	var playerRows []playerTableModel
	if err := tx.SelectContext(ctx, &playerRows, playersQuery, playersArgs...); err != nil {
		return nil, fmt.Errorf("select lot players: %w", err)
	}
	playersByID := make(map[int64]player.Player, len(playerRows))
	for _, row := range playerRows {
		playersByID[row.ID] = row.toDomain()
	}

	ordered := auction.OrderLots(lots, playersByID)
	return auction.NextAfter(ordered, lotID)
}
