package auction

import "context"

// Repository describes auction persistence needs from use cases.
//
// InsertBid, ResolveLot and ReopenLot are the per-lot serialization points of
// the engine: implementations must perform their reads, re-validation and
// writes inside one transactional boundary (row locks in SQL, a single mutex
// in memory) so that "check budget, check roster, write" never interleaves
// with a concurrent writer for the same lot or manager. ResolveLot executes
// the whole sale atomically (mark the lot, delete its bids, allocate the
// player to the winner's squad, advance the current-lot pointer) and fails
// with ErrLotAlreadySold when the lot was resolved by a concurrent call.
type Repository interface {
	GetOpen(ctx context.Context) (Auction, bool, error)
	GetByID(ctx context.Context, id string) (Auction, bool, error)
	Create(ctx context.Context, a Auction, lots []Lot) error
	SetCurrentLot(ctx context.Context, auctionID string, lotID *string) error
	SetStatus(ctx context.Context, auctionID string, status Status) error

	GetLot(ctx context.Context, lotID string) (Lot, bool, error)
	ListLots(ctx context.Context, auctionID string) ([]Lot, error)
	ListLotsWonBy(ctx context.Context, auctionID, managerID string) ([]Lot, error)
	// InsertSettledLots records already-sold lots created by bulk phase
	// allocation, keeping budget accounting uniform with live bidding. When
	// the auction already holds an unsold lot for the player, implementations
	// settle that lot in place instead of inserting a duplicate.
	InsertSettledLots(ctx context.Context, lots []Lot) error

	ListBids(ctx context.Context, lotID string) ([]Bid, error)
	InsertBid(ctx context.Context, b Bid) error

	ResolveLot(ctx context.Context, sale Sale) error
	ReopenLot(ctx context.Context, lotID string) error

	// PurgeAll wipes bids, lots, auctions, squads and squad membership in one
	// transaction. Manager budgets are reset separately by the caller.
	PurgeAll(ctx context.Context) error
}
