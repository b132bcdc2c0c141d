package catalog

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=catalog

// Repository defines the contract for catalog storage.
type Repository interface {
	// Insert stores a new asset and fills ID, CreatedAt and UpdatedAt.
	// A taken external id yields ErrDuplicateExternalID and a missing owner
	// row ErrUnknownOwner.
	Insert(ctx context.Context, a *Asset) error
	// InsertIfAbsent is Insert that treats a taken external id as a no-op.
	InsertIfAbsent(ctx context.Context, a *Asset) (bool, error)
	// Repair applies enrichment to the asset with the given external id if
	// its coordinates are still unknown and something would change.
	Repair(ctx context.Context, externalID string, e Enrichment) (bool, error)
	GetByID(ctx context.Context, id string) (Asset, error)
	// Delete removes the row and returns it as it was.
	Delete(ctx context.Context, id string) (Asset, error)
	// ListPage returns at most q.Limit rows in (created_at, id) order
	// strictly after q.After in the requested direction.
	ListPage(ctx context.Context, q PageQuery) ([]Asset, error)
	// Places counts assets per (country, city) and assets with no usable place.
	Places(ctx context.Context) ([]PlaceCount, int, error)
}
