package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order groups the lines a user checked out together. Immutable once created
// except through per-line status progression.
type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"-"`
	CreatedAt time.Time   `json:"createdAt"`
	Lines     []OrderLine `json:"items,omitempty"`
}

// Number renders the user-facing order number.
func (o Order) Number() string {
	return fmt.Sprintf("#RZ-%04d-%d", o.UserID, o.ID)
}

// OrderLine is one part+supplier position of an order with the price terms
// frozen at creation time.
type OrderLine struct {
	ID           int64           `json:"orderLineId"`
	OrderID      int64           `json:"-"`
	SkuID        int64           `json:"skuId"`
	SupplierID   int64           `json:"supplierId"`
	Qty          int             `json:"qty"`
	Price        decimal.Decimal `json:"price"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	DeliveryDays *int            `json:"deliveryDays,omitempty"`
	Descr        string          `json:"descr"`
	Article      string          `json:"article,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Statuses     []StatusEvent   `json:"statuses,omitempty"`
}
