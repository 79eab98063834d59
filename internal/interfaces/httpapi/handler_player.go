package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/usecase"
)

// ListPlayers serves the browsable catalog. Filters come in as query
// parameters: position (GK/DEF/MID/FWD), team_id and q for name search.
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	filter := player.Filter{
		Position: player.Position(r.URL.Query().Get("position")),
		Search:   r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("team_id"); raw != "" {
		teamID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: team_id must be an integer", usecase.ErrInvalidInput))
			return
		}
		filter.TeamID = teamID
	}

	players, err := h.playerService.List(ctx, filter)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	payload := make([]playerDTO, 0, len(players))
	for _, p := range players {
		payload = append(payload, playerToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, payload)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID, err := strconv.ParseInt(r.PathValue("playerID"), 10, 64)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: player id must be an integer", usecase.ErrInvalidInput))
		return
	}

	p, err := h.playerService.Get(ctx, playerID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(p))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.playerService.Teams(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	payload := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		payload = append(payload, teamToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, payload)
}
