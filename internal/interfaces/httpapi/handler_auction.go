package httpapi

import (
	"net/http"

	"github.com/riskibarqy/squad-auction/internal/usecase"
)

type startAuctionRequest struct {
	Phase int `json:"phase" validate:"omitempty,min=1,max=4"`
}

// GetCurrentAuction serves the polled room state. A nil auction in the
// payload means no auction is live, which the room UI renders as idle.
func (h *Handler) GetCurrentAuction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentAuction")
	defer span.End()

	view, err := h.auctionService.Current(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, auctionViewToDTO(view))
}

// StartAuction opens a new auction. Phase 0 in the body (or no body at all)
// defaults to the first phase.
func (h *Handler) StartAuction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartAuction")
	defer span.End()

	var req startAuctionRequest
	if err := h.decodeOptionalRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	opened, err := h.auctionService.Start(ctx, req.Phase)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, auctionToDTO(opened))
}

func (h *Handler) EndAuction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EndAuction")
	defer span.End()

	closed, err := h.auctionService.End(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, auctionToDTO(closed))
}

// ClearAuction wipes all auction history, squads and bids, and resets every
// manager's allotment. Catalog and accounts survive.
func (h *Handler) ClearAuction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearAuction")
	defer span.End()

	if err := h.auctionService.Clear(ctx); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) SkipToLot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SkipToLot")
	defer span.End()

	updated, err := h.auctionService.SkipToLot(ctx, r.PathValue("lotID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, auctionToDTO(updated))
}

func auctionViewToDTO(view usecase.AuctionView) auctionViewDTO {
	dto := auctionViewDTO{
		Lots:         make([]lotDTO, 0, len(view.Lots)),
		CurrentIndex: view.CurrentIndex,
		LotCount:     len(view.Lots),
		SoldCount:    view.SoldCount,
	}
	if view.Auction != nil {
		a := auctionToDTO(*view.Auction)
		dto.Auction = &a
	}
	for _, lot := range view.Lots {
		dto.Lots = append(dto.Lots, lotToDTO(lot.Lot, lot.Player))
	}
	if view.CurrentLot != nil {
		current := currentLotDTO{
			lotDTO: lotToDTO(view.CurrentLot.Lot, view.CurrentLot.Player),
			Bids:   make([]bidDTO, 0, len(view.CurrentLot.Bids)),
		}
		for _, bid := range view.CurrentLot.Bids {
			current.Bids = append(current.Bids, bidToDTO(bid))
		}
		dto.CurrentLot = &current
	}

	return dto
}
