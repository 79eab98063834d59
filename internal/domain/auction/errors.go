package auction

import "errors"

var (
	ErrAuctionAlreadyOpen = errors.New("an auction is already open")
	ErrNoOpenAuction      = errors.New("no open auction")
	ErrAuctionNotFound    = errors.New("auction not found")
	ErrAuctionClosed      = errors.New("auction is closed")
	ErrLotNotFound        = errors.New("lot not found")
	ErrLotAlreadySold     = errors.New("lot already sold")
	ErrBidTooLow          = errors.New("bid too low")
	ErrPriceBelowListing  = errors.New("price below listing")
)
