package httpapi

import (
	"net/http"
)

type pointsRefreshRequest struct {
	Gameweek int `json:"gameweek" validate:"required,min=1,max=38"`
}

type catalogSyncResponse struct {
	TeamCount    int `json:"teamCount"`
	PlayerCount  int `json:"playerCount"`
	SkippedCount int `json:"skippedCount"`
}

type pointsRefreshResponse struct {
	Gameweek    int `json:"gameweek"`
	Phase       int `json:"phase"`
	PlayerCount int `json:"playerCount"`
	SquadCount  int `json:"squadCount"`
}

// RunCatalogSync pulls the provider bootstrap and upserts teams and players.
// Scheduled callers hit this with the internal job token.
func (h *Handler) RunCatalogSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCatalogSync")
	defer span.End()

	result, err := h.catalogService.Sync(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, catalogSyncResponse{
		TeamCount:    result.TeamCount,
		PlayerCount:  result.PlayerCount,
		SkippedCount: result.SkippedCount,
	})
}

// RunPointsRefresh ingests one gameweek's live points and recomputes squad
// totals for the phase that gameweek belongs to.
func (h *Handler) RunPointsRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPointsRefresh")
	defer span.End()

	var req pointsRefreshRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoringService.RefreshGameweek(ctx, req.Gameweek)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pointsRefreshResponse{
		Gameweek:    result.Gameweek,
		Phase:       result.Phase,
		PlayerCount: result.PlayerCount,
		SquadCount:  result.SquadCount,
	})
}
