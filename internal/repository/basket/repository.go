package basket

import (
	"context"

	"rotazap-backend/internal/domain"
)

// Key addresses one basket line.
type Key struct {
	UserID     int64
	SkuID      int64
	SupplierID int64
	Hash       string
}

// AddInput carries one add request together with the price list the offer
// must be resolved against.
type AddInput struct {
	UserID      int64
	SkuID       int64
	SupplierID  int64
	PriceListID int64
	Qty         int
	Hash        string
	Descr       string
}

// Repository persists basket lines. Add and Decrement run their read-validate-
// write cycle inside a single transaction with the basket row locked, so
// concurrent mutations of the same line cannot both pass the quantity checks
// against a stale read.
type Repository interface {
	// Add resolves the offer snapshot and upserts the line, incrementing qty
	// and refreshing the price terms. It returns the stored line and the
	// offer's available quantity. Fails with domain.ErrNotFound when the offer
	// is not visible in the price list, and with *domain.ValidationError on
	// out-of-stock or when the limit would be exceeded.
	Add(ctx context.Context, in AddInput) (*domain.BasketLine, int, error)

	// Decrement lowers the line qty by one, refreshing price terms from the
	// current snapshot; at zero the line is deleted. Missing lines yield
	// domain.ErrNotFound.
	Decrement(ctx context.Context, key Key, priceListID int64) (*domain.BasketLine, int, error)

	// DeleteLine removes one line unconditionally.
	DeleteLine(ctx context.Context, key Key) error

	// Clear removes every line of a user's basket.
	Clear(ctx context.Context, userID int64) error

	// ListByUser returns all lines of a user's basket.
	ListByUser(ctx context.Context, userID int64) ([]domain.BasketLine, error)
}
