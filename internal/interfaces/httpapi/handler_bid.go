package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/squad-auction/internal/usecase"
)

type placeBidRequest struct {
	AmountHalfM int64 `json:"amountHalfM" validate:"required,gt=0"`
}

type placeBidOnBehalfRequest struct {
	ManagerID   string `json:"managerId" validate:"required"`
	AmountHalfM int64  `json:"amountHalfM" validate:"required,gt=0"`
}

// PlaceBid records an offer by the authenticated manager on a lot.
func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlaceBid")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	var req placeBidRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	bid, err := h.bidService.PlaceBid(ctx, usecase.PlaceBidInput{
		LotID:       r.PathValue("lotID"),
		ManagerID:   principal.ManagerID,
		AmountHalfM: req.AmountHalfM,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, bidToDTO(bid))
}

// PlaceBidOnBehalf lets an admin enter a bid for a named manager, covering
// managers who call their offers out in the room rather than online.
func (h *Handler) PlaceBidOnBehalf(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlaceBidOnBehalf")
	defer span.End()

	var req placeBidOnBehalfRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	bid, err := h.bidService.PlaceBid(ctx, usecase.PlaceBidInput{
		LotID:       r.PathValue("lotID"),
		ManagerID:   req.ManagerID,
		AmountHalfM: req.AmountHalfM,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, bidToDTO(bid))
}

func (h *Handler) ListLotBids(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLotBids")
	defer span.End()

	bids, err := h.bidService.ListBids(ctx, r.PathValue("lotID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	payload := make([]bidDTO, 0, len(bids))
	for _, bid := range bids {
		payload = append(payload, bidToDTO(bid))
	}

	writeSuccess(ctx, w, http.StatusOK, payload)
}
