package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/squad-auction/internal/usecase"
)

type setBudgetRequest struct {
	BudgetThousandths int64 `json:"budgetThousandths" validate:"required,gt=0"`
}

// GetMyBudget serves the authenticated manager's breakdown. Spend is always
// derived from won lots in the open auction, never stored.
func (h *Handler) GetMyBudget(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyBudget")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	breakdown, err := h.budgetService.Breakdown(ctx, principal.ManagerID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, budgetToDTO(breakdown))
}

func (h *Handler) GetManagerBudget(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetManagerBudget")
	defer span.End()

	breakdown, err := h.budgetService.Breakdown(ctx, r.PathValue("managerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, budgetToDTO(breakdown))
}

// SetManagerBudget overrides one manager's allotment, in thousandths of the
// league currency unit.
func (h *Handler) SetManagerBudget(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetManagerBudget")
	defer span.End()

	var req setBudgetRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.budgetService.SetAllotment(ctx, r.PathValue("managerID"), req.BudgetThousandths)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, managerToDTO(updated))
}
