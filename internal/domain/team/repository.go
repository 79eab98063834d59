package team

import "context"

// Repository describes team catalog persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Team, error)
	UpsertMany(ctx context.Context, teams []Team) error
}
