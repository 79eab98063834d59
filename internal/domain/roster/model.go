package roster

import (
	"fmt"
	"time"
)

// Squad is one manager's roster for one phase of the season. TotalPoints is
// a cached aggregate maintained by the scoring refresh.
type Squad struct {
	ID          string
	ManagerID   string
	Phase       int
	TotalPoints int64
	CreatedAt   time.Time
}

func (s Squad) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("squad id is required")
	}
	if s.ManagerID == "" {
		return fmt.Errorf("squad manager id is required")
	}
	if s.Phase < 1 || s.Phase > 4 {
		return fmt.Errorf("squad phase must be between 1 and 4")
	}

	return nil
}

// SquadPlayer records one owned player and the fee the manager paid for him.
// These rows are the durable ownership truth: "who owns player P in phase N"
// is answered by querying them, never by a cached owner field on the player.
type SquadPlayer struct {
	SquadID  string
	PlayerID int64
	FeeHalfM int64
}
