package domain

import "github.com/shopspring/decimal"

// InHouseSupplierID is the reserved supplier id of the company's own
// warehouse. Its offers sort ahead of all third-party offers regardless of
// price.
const InHouseSupplierID int64 = 0

// OfferKey identifies an offer: one part from one supplier.
type OfferKey struct {
	SkuID      int64 `json:"skuId"`
	SupplierID int64 `json:"supplierId"`
}

// Offer is a supplier's inventory record for a part: base cost, on-hand
// quantity and delivery lead time. Updated by inventory sync and decremented
// at order creation.
type Offer struct {
	SkuID        int64           `json:"skuId"`
	SupplierID   int64           `json:"supplierId"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	Qty          int             `json:"qty"`
	DeliveryDays *int            `json:"deliveryDays"`
}

// OfferSnapshot is a derived point-in-time read of an offer as visible to one
// price list. It is never persisted and recomputed on every read; Price comes
// exclusively from the price-list-scoped price record.
type OfferSnapshot struct {
	Price        decimal.Decimal `json:"price"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	Qty          int             `json:"qty"`
	DeliveryDays *int            `json:"deliveryDays"`
}
