package team

import "fmt"

// Team is a real-world club referenced by catalog players.
type Team struct {
	ID        int64
	Name      string
	ShortName string
}

func (t Team) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("team id must be greater than zero")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
