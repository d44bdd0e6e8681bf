package offer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"rotazap-backend/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Snapshot(ctx context.Context, key domain.OfferKey, priceListID int64) (*domain.OfferSnapshot, error) {
	const offerQuery = `
SELECT so.base_price, so.qty, s.delivery_days
FROM suppliers_offers so
LEFT JOIN suppliers s ON s.id = so.supplier_id
WHERE so.sku_id = $1 AND so.supplier_id = $2
`
	var snap domain.OfferSnapshot
	err := r.pool.QueryRow(ctx, offerQuery, key.SkuID, key.SupplierID).Scan(
		&snap.BasePrice,
		&snap.Qty,
		&snap.DeliveryDays,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const priceQuery = `
SELECT price
FROM offer_prices
WHERE price_list_id = $1 AND sku_id = $2 AND supplier_id = $3
`
	err = r.pool.QueryRow(ctx, priceQuery, priceListID, key.SkuID, key.SupplierID).Scan(&snap.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No price in this price list means the offer is invisible.
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &snap, nil
}

func (r *postgresRepo) Snapshots(ctx context.Context, keys []domain.OfferKey, priceListID int64) (map[domain.OfferKey]domain.OfferSnapshot, error) {
	result := make(map[domain.OfferKey]domain.OfferSnapshot, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	skuIDs, supplierIDs := splitKeys(keys)
	requested := keySet(keys)

	const priceQuery = `
SELECT sku_id, supplier_id, price
FROM offer_prices
WHERE price_list_id = $1 AND sku_id = ANY($2) AND supplier_id = ANY($3)
`
	priceRows, err := r.pool.Query(ctx, priceQuery, priceListID, skuIDs, supplierIDs)
	if err != nil {
		return nil, err
	}
	prices := make(map[domain.OfferKey]decimal.Decimal)
	for priceRows.Next() {
		var key domain.OfferKey
		var price decimal.Decimal
		if err := priceRows.Scan(&key.SkuID, &key.SupplierID, &price); err != nil {
			priceRows.Close()
			return nil, err
		}
		prices[key] = price
	}
	priceRows.Close()
	if err := priceRows.Err(); err != nil {
		return nil, err
	}

	const offerQuery = `
SELECT so.sku_id, so.supplier_id, so.base_price, so.qty, s.delivery_days
FROM suppliers_offers so
LEFT JOIN suppliers s ON s.id = so.supplier_id
WHERE so.sku_id = ANY($1) AND so.supplier_id = ANY($2)
`
	offerRows, err := r.pool.Query(ctx, offerQuery, skuIDs, supplierIDs)
	if err != nil {
		return nil, err
	}
	defer offerRows.Close()

	for offerRows.Next() {
		var key domain.OfferKey
		var snap domain.OfferSnapshot
		if err := offerRows.Scan(&key.SkuID, &key.SupplierID, &snap.BasePrice, &snap.Qty, &snap.DeliveryDays); err != nil {
			return nil, err
		}
		// ANY-filtering matches the cross product of the requested ids; only
		// keys actually asked for belong in the result.
		if _, ok := requested[key]; !ok {
			continue
		}
		price, visible := prices[key]
		if !visible {
			// No price record in this price list: the key is excluded, never
			// substituted with a fallback price.
			continue
		}
		snap.Price = price
		result[key] = snap
	}
	return result, offerRows.Err()
}

func (r *postgresRepo) OffersBySkuIDs(ctx context.Context, skuIDs []int64) ([]domain.Offer, error) {
	if len(skuIDs) == 0 {
		return nil, nil
	}
	const q = `
SELECT so.sku_id, so.supplier_id, so.base_price, so.qty, s.delivery_days
FROM suppliers_offers so
LEFT JOIN suppliers s ON s.id = so.supplier_id
WHERE so.sku_id = ANY($1)
`
	rows, err := r.pool.Query(ctx, q, skuIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(&o.SkuID, &o.SupplierID, &o.BasePrice, &o.Qty, &o.DeliveryDays); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *postgresRepo) PricesBySkuIDs(ctx context.Context, skuIDs []int64, priceListID int64) (map[domain.OfferKey]decimal.Decimal, error) {
	prices := make(map[domain.OfferKey]decimal.Decimal)
	if len(skuIDs) == 0 {
		return prices, nil
	}
	const q = `
SELECT sku_id, supplier_id, price
FROM offer_prices
WHERE price_list_id = $1 AND sku_id = ANY($2)
`
	rows, err := r.pool.Query(ctx, q, priceListID, skuIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key domain.OfferKey
		var price decimal.Decimal
		if err := rows.Scan(&key.SkuID, &key.SupplierID, &price); err != nil {
			return nil, err
		}
		prices[key] = price
	}
	return prices, rows.Err()
}

func (r *postgresRepo) OffersForKeys(ctx context.Context, keys []domain.OfferKey) (map[domain.OfferKey]domain.Offer, error) {
	result := make(map[domain.OfferKey]domain.Offer, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	skuIDs, supplierIDs := splitKeys(keys)
	requested := keySet(keys)

	const q = `
SELECT so.sku_id, so.supplier_id, so.base_price, so.qty, s.delivery_days
FROM suppliers_offers so
LEFT JOIN suppliers s ON s.id = so.supplier_id
WHERE so.sku_id = ANY($1) AND so.supplier_id = ANY($2)
`
	rows, err := r.pool.Query(ctx, q, skuIDs, supplierIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(&o.SkuID, &o.SupplierID, &o.BasePrice, &o.Qty, &o.DeliveryDays); err != nil {
			return nil, err
		}
		key := domain.OfferKey{SkuID: o.SkuID, SupplierID: o.SupplierID}
		if _, ok := requested[key]; !ok {
			continue
		}
		result[key] = o
	}
	return result, rows.Err()
}

func (r *postgresRepo) PricesForKeys(ctx context.Context, keys []domain.OfferKey) (map[domain.OfferKey][]decimal.Decimal, error) {
	result := make(map[domain.OfferKey][]decimal.Decimal, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	skuIDs, supplierIDs := splitKeys(keys)
	requested := keySet(keys)

	const q = `
SELECT sku_id, supplier_id, price
FROM offer_prices
WHERE sku_id = ANY($1) AND supplier_id = ANY($2)
`
	rows, err := r.pool.Query(ctx, q, skuIDs, supplierIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key domain.OfferKey
		var price decimal.Decimal
		if err := rows.Scan(&key.SkuID, &key.SupplierID, &price); err != nil {
			return nil, err
		}
		if _, ok := requested[key]; !ok {
			continue
		}
		result[key] = append(result[key], price)
	}
	return result, rows.Err()
}

func (r *postgresRepo) UpsertOffer(ctx context.Context, o domain.Offer) error {
	const q = `
INSERT INTO suppliers_offers (sku_id, supplier_id, base_price, qty)
VALUES ($1, $2, $3, $4)
ON CONFLICT (sku_id, supplier_id) DO UPDATE
SET base_price = EXCLUDED.base_price,
    qty = EXCLUDED.qty
`
	_, err := r.pool.Exec(ctx, q, o.SkuID, o.SupplierID, o.BasePrice, o.Qty)
	return err
}

func (r *postgresRepo) UpsertPrice(ctx context.Context, priceListID int64, key domain.OfferKey, price decimal.Decimal) error {
	const q = `
INSERT INTO offer_prices (price_list_id, sku_id, supplier_id, price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (price_list_id, sku_id, supplier_id) DO UPDATE
SET price = EXCLUDED.price
`
	_, err := r.pool.Exec(ctx, q, priceListID, key.SkuID, key.SupplierID, price)
	return err
}

func keySet(keys []domain.OfferKey) map[domain.OfferKey]struct{} {
	set := make(map[domain.OfferKey]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func splitKeys(keys []domain.OfferKey) ([]int64, []int64) {
	skuSeen := make(map[int64]struct{}, len(keys))
	supplierSeen := make(map[int64]struct{}, len(keys))
	var skuIDs, supplierIDs []int64
	for _, k := range keys {
		if _, ok := skuSeen[k.SkuID]; !ok {
			skuSeen[k.SkuID] = struct{}{}
			skuIDs = append(skuIDs, k.SkuID)
		}
		if _, ok := supplierSeen[k.SupplierID]; !ok {
			supplierSeen[k.SupplierID] = struct{}{}
			supplierIDs = append(supplierIDs, k.SupplierID)
		}
	}
	return skuIDs, supplierIDs
}
