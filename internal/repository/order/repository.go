package order

import (
	"context"

	"github.com/shopspring/decimal"
	"rotazap-backend/internal/domain"
)

// LineInput is one position of an order being created. Hash identifies the
// basket line the position came from, so it can be consumed atomically.
type LineInput struct {
	SkuID      int64
	SupplierID int64
	Qty        int
	Price      decimal.Decimal
	Descr      string
	Hash       string
}

// Repository persists orders. Create performs the whole checkout write set in
// one transaction: order + lines + initial status events + stock decrements +
// basket cleanup.
type Repository interface {
	Create(ctx context.Context, userID int64, lines []LineInput, initialStatus string) (*domain.Order, error)

	// ListByUser returns a user's orders, newest first, with lines and each
	// line's status history in descending order.
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}
