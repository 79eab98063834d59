package httpapi

import (
	"net/http"

	"github.com/riskibarqy/squad-auction/internal/usecase"
)

type registerManagerRequest struct {
	Username       string `json:"username" validate:"required,min=3,max=32"`
	DisplayName    string `json:"displayName" validate:"omitempty,max=64"`
	CredentialHash string `json:"credentialHash" validate:"required"`
}

// RegisterManager creates a league account. The caller supplies an already
// hashed credential; this service never sees plaintext secrets.
func (h *Handler) RegisterManager(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterManager")
	defer span.End()

	var req registerManagerRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.managerService.Register(ctx, usecase.RegisterManagerInput{
		Username:       req.Username,
		DisplayName:    req.DisplayName,
		CredentialHash: req.CredentialHash,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, managerToDTO(created))
}

// ListManagers is the public roll: every account with its budget breakdown
// and current-phase squad stats.
func (h *Handler) ListManagers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListManagers")
	defer span.End()

	overviews, err := h.managerService.List(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	payload := make([]managerOverviewDTO, 0, len(overviews))
	for _, overview := range overviews {
		payload = append(payload, managerOverviewDTO{
			managerDTO:      managerToDTO(overview.Manager),
			Budget:          budgetToDTO(overview.Budget),
			SquadSize:       overview.SquadSize,
			SquadValueHalfM: overview.SquadValueHalfM,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, payload)
}

func (h *Handler) GetManager(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetManager")
	defer span.End()

	m, err := h.managerService.Get(ctx, r.PathValue("managerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, managerToDTO(m))
}
