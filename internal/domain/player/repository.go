package player

import "context"

// Filter narrows catalog listings.
type Filter struct {
	Position Position
	TeamID   int64
	Search   string
}

// Repository describes player catalog persistence needs from use cases.
// Catalog writes come only from the provider sync; ownership is never stored
// here (squad membership is the durable ownership record).
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Player, error)
	GetByID(ctx context.Context, id int64) (Player, bool, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Player, error)
	UpsertMany(ctx context.Context, players []Player) error
}
