package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
)

type auctionTableModel struct {
	ID           string         `db:"id"`
	Status       string         `db:"status"`
	Phase        int            `db:"phase"`
	CurrentLotID sql.NullString `db:"current_lot_id"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (m auctionTableModel) toDomain() auction.Auction {
	a := auction.Auction{
		ID:        m.ID,
		Status:    auction.Status(m.Status),
		Phase:     m.Phase,
		CreatedAt: m.CreatedAt,
	}
	if m.CurrentLotID.Valid {
		lotID := m.CurrentLotID.String
		a.CurrentLotID = &lotID
	}
	return a
}

type lotTableModel struct {
	ID             string         `db:"id"`
	AuctionID      string         `db:"auction_id"`
	PlayerID       int64          `db:"player_id"`
	Sold           bool           `db:"sold"`
	SoldPriceHalfM int64          `db:"sold_price_half_m"`
	WinnerID       sql.NullString `db:"winner_id"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (m lotTableModel) toDomain() auction.Lot {
	lot := auction.Lot{
		ID:             m.ID,
		AuctionID:      m.AuctionID,
		PlayerID:       m.PlayerID,
		Sold:           m.Sold,
		SoldPriceHalfM: m.SoldPriceHalfM,
		CreatedAt:      m.CreatedAt,
	}
	if m.WinnerID.Valid {
		winnerID := m.WinnerID.String
		lot.WinnerID = &winnerID
	}
	return lot
}

type bidTableModel struct {
	ID          string    `db:"id"`
	LotID       string    `db:"lot_id"`
	ManagerID   string    `db:"manager_id"`
	AmountHalfM int64     `db:"amount_half_m"`
	CreatedAt   time.Time `db:"created_at"`
}

func (m bidTableModel) toDomain() auction.Bid {
	return auction.Bid{
		ID:          m.ID,
		LotID:       m.LotID,
		ManagerID:   m.ManagerID,
		AmountHalfM: m.AmountHalfM,
		CreatedAt:   m.CreatedAt,
	}
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
