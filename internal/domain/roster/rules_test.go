package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
)

func TestCheckAdmission(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name      string
		held      []player.Position
		candidate player.Position
		wantErr   error
	}{
		{
			name:      "empty squad admits anyone",
			held:      nil,
			candidate: player.PositionGoalkeeper,
		},
		{
			name: "second goalkeeper rejected",
			held: []player.Position{player.PositionGoalkeeper},
			candidate: player.PositionGoalkeeper,
			wantErr:   ErrPositionLimitExceeded,
		},
		{
			name: "fifth defender rejected with open slots remaining",
			held: []player.Position{
				player.PositionDefender, player.PositionDefender,
				player.PositionDefender, player.PositionDefender,
			},
			candidate: player.PositionDefender,
			wantErr:   ErrPositionLimitExceeded,
		},
		{
			name: "fourth defender admitted",
			held: []player.Position{
				player.PositionDefender, player.PositionDefender, player.PositionDefender,
			},
			candidate: player.PositionDefender,
		},
		{
			name: "full squad rejects even an open position",
			held: []player.Position{
				player.PositionGoalkeeper,
				player.PositionDefender, player.PositionDefender, player.PositionDefender, player.PositionDefender,
				player.PositionMidfielder, player.PositionMidfielder, player.PositionMidfielder, player.PositionMidfielder, player.PositionMidfielder,
				player.PositionForward,
			},
			candidate: player.PositionForward,
			wantErr:   ErrSquadFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAdmission(tt.held, tt.candidate, limits)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateAllocations(t *testing.T) {
	limits := DefaultLimits()

	full := []player.Position{
		player.PositionGoalkeeper,
		player.PositionDefender, player.PositionDefender, player.PositionDefender, player.PositionDefender,
		player.PositionMidfielder, player.PositionMidfielder, player.PositionMidfielder, player.PositionMidfielder, player.PositionMidfielder,
		player.PositionForward,
	}
	require.NoError(t, ValidateAllocations(full, limits))

	twelve := append(append([]player.Position(nil), full...), player.PositionForward)
	assert.ErrorIs(t, ValidateAllocations(twelve, limits), ErrTooManyPlayers)

	twoKeepers := []player.Position{player.PositionGoalkeeper, player.PositionGoalkeeper}
	assert.ErrorIs(t, ValidateAllocations(twoKeepers, limits), ErrPositionLimitExceeded)

	// The list replaces the squad, so a partial list is valid on its own.
	assert.NoError(t, ValidateAllocations([]player.Position{player.PositionForward}, limits))
}
