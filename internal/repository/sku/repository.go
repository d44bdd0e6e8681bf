package sku

import (
	"context"

	"rotazap-backend/internal/domain"
)

// Brief is the short SKU projection used for descriptions and offer grouping.
type Brief struct {
	ID      int64
	Article string
	Brand   string
	Name    string
}

// Repository resolves parts by id and by brand/article cross-references.
type Repository interface {
	// GetBrief returns article, brand and the first catalog name of a part.
	GetBrief(ctx context.Context, skuID int64) (*Brief, error)

	// FindByCrossRefs returns every locally known part matching any of the
	// given brand+article pairs.
	FindByCrossRefs(ctx context.Context, refs []domain.CrossRef) ([]Brief, error)

	// EnsureBrand and EnsureSku upsert dictionary rows for import tooling.
	EnsureBrand(ctx context.Context, name string) (int64, error)
	EnsureSku(ctx context.Context, brandID int64, article, name string) (int64, error)
}
