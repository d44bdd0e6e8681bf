package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BasketLine is one selection in a user's basket. The hash distinguishes
// lines holding the same part+supplier at different price/qty terms.
type BasketLine struct {
	UserID       int64           `json:"-"`
	SkuID        int64           `json:"skuId"`
	SupplierID   int64           `json:"supplierId"`
	Hash         string          `json:"hash"`
	Qty          int             `json:"qty"`
	Price        decimal.Decimal `json:"price"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	DeliveryDays *int            `json:"deliveryDays"`
	Descr        string          `json:"descr"`
	Article      string          `json:"article"`
	Brand        string          `json:"brand"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// BasketDiff reports the drift of one client-held basket line against the
// current server truth. Old/new fields are nil when the offer is no longer
// visible in the user's price list at all.
type BasketDiff struct {
	SkuID      int64            `json:"skuId"`
	SupplierID int64            `json:"supplierId"`
	Hash       string           `json:"hash,omitempty"`
	Qty        int              `json:"qty"`
	Price      decimal.Decimal  `json:"price"`
	OldQty     *int             `json:"oldQty,omitempty"`
	NewQty     *int             `json:"newQty,omitempty"`
	OldPrice   *decimal.Decimal `json:"oldPrice,omitempty"`
	NewPrice   *decimal.Decimal `json:"newPrice,omitempty"`
}

// ContentHash fingerprints the full price terms of an offer so that the same
// part+supplier can live in the basket as separate lines when terms differ.
func ContentHash(skuID, supplierID int64, basePrice, price decimal.Decimal, qty, deliveryDays int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d-%d-%s-%s-%d-%d", skuID, supplierID, basePrice.String(), price.String(), qty, deliveryDays)))
	return hex.EncodeToString(sum[:])
}

// DefaultLineHash is the fallback fingerprint used when a client adds a line
// without supplying one.
func DefaultLineHash(skuID, supplierID int64) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d-%d", skuID, supplierID)))
	return hex.EncodeToString(sum[:])
}
