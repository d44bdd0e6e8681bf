package offer

import (
	"context"

	"github.com/shopspring/decimal"
	"rotazap-backend/internal/domain"
)

// Repository reads and maintains the supplier-offer ledger and the
// price-list-scoped price records.
type Repository interface {
	// Snapshot resolves one offer for one price list. Missing offer row or
	// missing price row both yield domain.ErrNotFound: without a price in the
	// user's price list the offer does not exist for that user.
	Snapshot(ctx context.Context, key domain.OfferKey, priceListID int64) (*domain.OfferSnapshot, error)

	// Snapshots bulk-resolves offers for one price list. Keys without a price
	// row in that price list are silently omitted from the result.
	Snapshots(ctx context.Context, keys []domain.OfferKey, priceListID int64) (map[domain.OfferKey]domain.OfferSnapshot, error)

	// OffersBySkuIDs returns every supplier offer for the given parts,
	// regardless of price list visibility.
	OffersBySkuIDs(ctx context.Context, skuIDs []int64) ([]domain.Offer, error)

	// PricesBySkuIDs returns the price records of one price list for the
	// given parts.
	PricesBySkuIDs(ctx context.Context, skuIDs []int64, priceListID int64) (map[domain.OfferKey]decimal.Decimal, error)

	// OffersForKeys returns the inventory rows for exact offer keys.
	OffersForKeys(ctx context.Context, keys []domain.OfferKey) (map[domain.OfferKey]domain.Offer, error)

	// PricesForKeys returns every known price (across all price lists) per
	// offer key; used by order validation to detect stale client prices.
	PricesForKeys(ctx context.Context, keys []domain.OfferKey) (map[domain.OfferKey][]decimal.Decimal, error)

	// UpsertOffer and UpsertPrice serve inventory sync and import tooling.
	UpsertOffer(ctx context.Context, o domain.Offer) error
	UpsertPrice(ctx context.Context, priceListID int64, key domain.OfferKey, price decimal.Decimal) error
}
