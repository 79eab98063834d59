package httpapi

import (
	"net/http"

	"github.com/riskibarqy/squad-auction/internal/usecase"
)

type allocationEntry struct {
	PlayerID int64 `json:"playerId" validate:"required,gt=0"`
	FeeHalfM int64 `json:"feeHalfM" validate:"min=0"`
}

type bulkAllocateRequest struct {
	ManagerID   string            `json:"managerId" validate:"required"`
	Phase       int               `json:"phase" validate:"required,min=1,max=4"`
	Allocations []allocationEntry `json:"allocations" validate:"required,min=1,dive"`
}

// BulkAllocate replaces a manager's whole squad for a phase in one call,
// settling each entry against the open auction so spend stays consistent
// with hammer sales.
func (h *Handler) BulkAllocate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BulkAllocate")
	defer span.End()

	var req bulkAllocateRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.BulkAllocateInput{
		ManagerID:   req.ManagerID,
		Phase:       req.Phase,
		Allocations: make([]usecase.AllocationInput, 0, len(req.Allocations)),
	}
	for _, entry := range req.Allocations {
		input.Allocations = append(input.Allocations, usecase.AllocationInput{
			PlayerID: entry.PlayerID,
			FeeHalfM: entry.FeeHalfM,
		})
	}

	squad, err := h.allocationService.BulkAllocate(ctx, input)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadToDTO(squad))
}
