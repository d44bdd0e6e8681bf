package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"rotazap-backend/internal/domain"
)

type offerSeed struct {
	Brand     string
	Article   string
	Name      string
	Supplier  int64
	BasePrice string
	Qty       int
	Price     string
}

// Apply inserts the status dictionary, the default price list, the in-house
// supplier and a few demo offers for manual testing. Idempotent via ON
// CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool, catalog *domain.StatusCatalog) error {
	names := catalog.Chain()
	names = append(names, catalog.Delay())
	names = append(names, catalog.Terminals()...)
	// Informational only: present in the dictionary but outside the chain, so
	// the state machine rejects it on order lines.
	names = append(names, "Sent to supplier")
	for _, name := range names {
		if err := ensureStatus(ctx, pool, name); err != nil {
			return fmt.Errorf("ensure status %q: %w", name, err)
		}
	}

	if _, err := pool.Exec(ctx, `
INSERT INTO price_lists (id, name) VALUES ($1, 'Retail')
ON CONFLICT (id) DO NOTHING
`, domain.DefaultPriceListID); err != nil {
		return fmt.Errorf("ensure default price list: %w", err)
	}

	suppliers := []struct {
		id           int64
		name         string
		deliveryDays *int
	}{
		{domain.InHouseSupplierID, "RotaZap warehouse", nil},
		{2, "AutoTrade", intPtr(3)},
		{5, "PartsLine", intPtr(7)},
	}
	for _, s := range suppliers {
		if _, err := pool.Exec(ctx, `
INSERT INTO suppliers (id, name, delivery_days) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, delivery_days = EXCLUDED.delivery_days
`, s.id, s.name, s.deliveryDays); err != nil {
			return fmt.Errorf("ensure supplier %d: %w", s.id, err)
		}
	}

	offers := []offerSeed{
		{Brand: "Bosch", Article: "0986452041", Name: "Фильтр масляный", Supplier: domain.InHouseSupplierID, BasePrice: "420.00", Qty: 12, Price: "560.00"},
		{Brand: "Bosch", Article: "0986452041", Name: "Фильтр масляный", Supplier: 2, BasePrice: "390.00", Qty: 40, Price: "530.00"},
		{Brand: "Mann", Article: "W6018", Name: "Фильтр масляный Mann", Supplier: 5, BasePrice: "350.00", Qty: 25, Price: "495.00"},
	}
	for _, o := range offers {
		if err := upsertOffer(ctx, pool, o); err != nil {
			return fmt.Errorf("upsert offer %s %s: %w", o.Brand, o.Article, err)
		}
	}

	return nil
}

func ensureStatus(ctx context.Context, pool *pgxpool.Pool, name string) error {
	_, err := pool.Exec(ctx, `
INSERT INTO order_statuses (name) VALUES ($1)
ON CONFLICT (name) DO NOTHING
`, name)
	return err
}

func upsertOffer(ctx context.Context, pool *pgxpool.Pool, o offerSeed) error {
	var brandID int64
	if err := pool.QueryRow(ctx, `
INSERT INTO brands (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id
`, o.Brand).Scan(&brandID); err != nil {
		return err
	}

	var skuID int64
	if err := pool.QueryRow(ctx, `
INSERT INTO skus (brand_id, article) VALUES ($1, $2)
ON CONFLICT (brand_id, article) DO UPDATE SET article = EXCLUDED.article
RETURNING id
`, brandID, o.Article).Scan(&skuID); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
INSERT INTO sku_names (sku_id, name)
SELECT $1, $2
WHERE NOT EXISTS (SELECT 1 FROM sku_names WHERE sku_id = $1 AND name = $2)
`, skuID, o.Name); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
INSERT INTO suppliers_offers (sku_id, supplier_id, base_price, qty)
VALUES ($1, $2, $3, $4)
ON CONFLICT (sku_id, supplier_id) DO UPDATE
SET base_price = EXCLUDED.base_price, qty = EXCLUDED.qty
`, skuID, o.Supplier, o.BasePrice, o.Qty); err != nil {
		return err
	}

	_, err := pool.Exec(ctx, `
INSERT INTO offer_prices (price_list_id, sku_id, supplier_id, price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (price_list_id, sku_id, supplier_id) DO UPDATE
SET price = EXCLUDED.price
`, domain.DefaultPriceListID, skuID, o.Supplier, o.Price)
	return err
}

func intPtr(v int) *int { return &v }
