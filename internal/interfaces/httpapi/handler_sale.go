package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/usecase"
)

type sellLotRequest struct {
	ManagerID  string `json:"managerId" validate:"omitempty"`
	PriceHalfM int64  `json:"priceHalfM" validate:"omitempty,gt=0"`
}

// SellLot hammers a lot down. With an empty body the lot goes to the leading
// bidder at the leading amount; naming a manager and price records a manual
// sale instead.
func (h *Handler) SellLot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SellLot")
	defer span.End()

	var req sellLotRequest
	if err := h.decodeOptionalRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	lotID := r.PathValue("lotID")

	var (
		result usecase.SaleResult
		err    error
	)
	switch {
	case req.ManagerID == "" && req.PriceHalfM == 0:
		result, err = h.saleService.ResolveAuto(ctx, lotID)
	case req.ManagerID != "" && req.PriceHalfM > 0:
		result, err = h.saleService.ResolveManual(ctx, lotID, req.ManagerID, req.PriceHalfM)
	default:
		err = fmt.Errorf("%w: manual sale needs both managerId and priceHalfM", usecase.ErrInvalidInput)
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, saleResultToDTO(ctx, h, result))
}

// MarkLotUnsold passes the lot without a buyer and advances the pointer.
func (h *Handler) MarkLotUnsold(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MarkLotUnsold")
	defer span.End()

	result, err := h.saleService.MarkUnsold(ctx, r.PathValue("lotID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, saleResultToDTO(ctx, h, result))
}

// ReopenLot reverses a resolved lot: ownership and spend come back, the
// pointer repoints to the lot and a closed auction is forced open again.
func (h *Handler) ReopenLot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReopenLot")
	defer span.End()

	lot, err := h.saleService.Reopen(ctx, r.PathValue("lotID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.lotWithPlayer(ctx, lot))
}

func saleResultToDTO(ctx context.Context, h *Handler, result usecase.SaleResult) saleResultDTO {
	return saleResultDTO{
		Lot:       h.lotWithPlayer(ctx, result.Lot),
		NextLotID: result.NextLotID,
	}
}

// lotWithPlayer enriches a lot with its player row for display. A missing
// player degrades to an empty name rather than failing the sale response.
func (h *Handler) lotWithPlayer(ctx context.Context, lot auction.Lot) lotDTO {
	p, err := h.playerService.Get(ctx, lot.PlayerID)
	if err != nil {
		h.logger.WarnContext(ctx, "lot player lookup failed", "lot_id", lot.ID, "player_id", lot.PlayerID, "error", err)
	}

	return lotToDTO(lot, p)
}
