package postgres

import (
	"time"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/team"
)

type playerTableModel struct {
	ID             int64     `db:"id"`
	TeamID         int64     `db:"team_id"`
	FirstName      string    `db:"first_name"`
	SecondName     string    `db:"second_name"`
	WebName        string    `db:"web_name"`
	Position       string    `db:"position"`
	ListPriceHalfM int64     `db:"list_price_half_m"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:             m.ID,
		TeamID:         m.TeamID,
		FirstName:      m.FirstName,
		SecondName:     m.SecondName,
		WebName:        m.WebName,
		Position:       player.Position(m.Position),
		ListPriceHalfM: m.ListPriceHalfM,
	}
}

type teamTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	ShortName string    `db:"short_name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:        m.ID,
		Name:      m.Name,
		ShortName: m.ShortName,
	}
}
