package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/domain/budget"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
	"github.com/riskibarqy/squad-auction/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "squad-auction"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(err)
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: err.Error(),
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const msg = "internal server error"

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: msg,
				},
			},
		},
	})
}

// mapError turns a usecase or domain failure into an HTTP status plus a
// stable machine-readable reason. Reasons are part of the API contract: the
// auction room UI switches on them.
func mapError(err error) mappedError {
	switch {
	case errors.Is(err, auction.ErrAuctionAlreadyOpen):
		return badRequest("auctionAlreadyOpen")
	case errors.Is(err, auction.ErrNoOpenAuction):
		return badRequest("noOpenAuction")
	case errors.Is(err, auction.ErrAuctionClosed):
		return badRequest("auctionClosed")
	case errors.Is(err, auction.ErrAuctionNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Reason: "auctionNotFound", Status: "NOT_FOUND"}
	case errors.Is(err, auction.ErrLotNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Reason: "lotNotFound", Status: "NOT_FOUND"}
	case errors.Is(err, auction.ErrLotAlreadySold):
		return conflict("lotAlreadySold")
	case errors.Is(err, auction.ErrBidTooLow):
		return badRequest("bidTooLow")
	case errors.Is(err, auction.ErrPriceBelowListing):
		return badRequest("priceBelowListing")
	case errors.Is(err, budget.ErrInsufficientBudget):
		return badRequest("insufficientBudget")
	case errors.Is(err, roster.ErrSquadFull):
		return badRequest("squadFull")
	case errors.Is(err, roster.ErrPositionLimitExceeded):
		return badRequest("positionLimitExceeded")
	case errors.Is(err, roster.ErrTooManyPlayers):
		return badRequest("tooManyPlayers")
	case errors.Is(err, roster.ErrDuplicatePlayerInRequest):
		return badRequest("duplicatePlayer")
	case errors.Is(err, roster.ErrOwnedByOtherManager):
		return conflict("ownedByOtherManager")
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{HTTPStatus: http.StatusUnauthorized, Reason: "unauthorized", Status: "UNAUTHENTICATED"}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}
	}
}

func badRequest(reason string) mappedError {
	return mappedError{HTTPStatus: http.StatusBadRequest, Reason: reason, Status: "FAILED_PRECONDITION"}
}

func conflict(reason string) mappedError {
	return mappedError{HTTPStatus: http.StatusConflict, Reason: reason, Status: "ABORTED"}
}
