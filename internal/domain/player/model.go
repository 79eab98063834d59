package player

import "fmt"

// Position represents football position categories used by squad rules.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

// Rank orders positions for the auction lot sequence: GK before DEF before
// MID before FWD. Unknown positions sort last.
func (p Position) Rank() int {
	switch p {
	case PositionGoalkeeper:
		return 0
	case PositionDefender:
		return 1
	case PositionMidfielder:
		return 2
	case PositionForward:
		return 3
	default:
		return 4
	}
}

// PositionFromElementType maps the provider's numeric element type
// (1 GK, 2 DEF, 3 MID, 4 FWD) to a Position.
func PositionFromElementType(elementType int) (Position, error) {
	switch elementType {
	case 1:
		return PositionGoalkeeper, nil
	case 2:
		return PositionDefender, nil
	case 3:
		return PositionMidfielder, nil
	case 4:
		return PositionForward, nil
	default:
		return "", fmt.Errorf("unknown element type: %d", elementType)
	}
}

// Player is one auctionable athlete from the provider catalog. The ID is the
// provider's element id, so catalog re-syncs address the same rows.
type Player struct {
	ID             int64
	TeamID         int64
	FirstName      string
	SecondName     string
	WebName        string
	Position       Position
	ListPriceHalfM int64
}

// DisplayName prefers the short web name the provider publishes.
func (p Player) DisplayName() string {
	if p.WebName != "" {
		return p.WebName
	}
	if p.FirstName == "" {
		return p.SecondName
	}
	return p.FirstName + " " + p.SecondName
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be greater than zero")
	}
	if p.SecondName == "" && p.WebName == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}
	if p.ListPriceHalfM <= 0 {
		return fmt.Errorf("player list price must be greater than zero")
	}

	return nil
}
