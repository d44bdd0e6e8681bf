package basket

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

const lineColumns = `
bk.user_id, bk.sku_id, bk.supplier_id, bk.hash, bk.qty, bk.price, bk.base_price,
bk.delivery_days,
COALESCE(NULLIF(btrim(bk.descr), ''),
         (SELECT n.name FROM sku_names n WHERE n.sku_id = bk.sku_id ORDER BY n.id LIMIT 1),
         ''),
s.article, b.name, bk.created_at, bk.updated_at
`

func (r *postgresRepo) Add(ctx context.Context, in AddInput) (*domain.BasketLine, int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	snap, err := snapshotTx(ctx, tx, in.SkuID, in.SupplierID, in.PriceListID)
	if err != nil {
		return nil, 0, err
	}
	if snap.Qty < 1 {
		return nil, 0, domain.Validation("out of stock")
	}

	// Lock the line so concurrent adds serialize on the limit check.
	var existingQty int
	err = tx.QueryRow(ctx, `
SELECT qty
FROM baskets
WHERE user_id = $1 AND sku_id = $2 AND supplier_id = $3 AND hash = $4
FOR UPDATE
`, in.UserID, in.SkuID, in.SupplierID, in.Hash).Scan(&existingQty)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, err
	}

	if existingQty+in.Qty > snap.Qty {
		verr := &domain.ValidationError{}
		verr.Addf("maximum %d available", snap.Qty)
		return nil, 0, verr
	}

	const upsert = `
INSERT INTO baskets (user_id, sku_id, supplier_id, hash, qty, price, base_price, delivery_days, descr)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (user_id, sku_id, supplier_id, hash) DO UPDATE
SET qty = baskets.qty + EXCLUDED.qty,
    price = EXCLUDED.price,
    base_price = EXCLUDED.base_price,
    delivery_days = EXCLUDED.delivery_days,
    descr = EXCLUDED.descr,
    updated_at = now()
`
	if _, err := tx.Exec(ctx, upsert,
		in.UserID, in.SkuID, in.SupplierID, in.Hash,
		in.Qty, snap.Price, snap.BasePrice, snap.DeliveryDays, in.Descr,
	); err != nil {
		return nil, 0, err
	}

	line, err := fetchLineTx(ctx, tx, Key{UserID: in.UserID, SkuID: in.SkuID, SupplierID: in.SupplierID, Hash: in.Hash})
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return line, snap.Qty, nil
}

func (r *postgresRepo) Decrement(ctx context.Context, key Key, priceListID int64) (*domain.BasketLine, int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	snap, err := snapshotTx(ctx, tx, key.SkuID, key.SupplierID, priceListID)
	if err != nil {
		return nil, 0, err
	}

	var qty int
	err = tx.QueryRow(ctx, `
SELECT qty
FROM baskets
WHERE user_id = $1 AND sku_id = $2 AND supplier_id = $3 AND hash = $4
FOR UPDATE
`, key.UserID, key.SkuID, key.SupplierID, key.Hash).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, err
	}

	var line *domain.BasketLine
	if qty > 1 {
		if _, err := tx.Exec(ctx, `
UPDATE baskets
SET qty = qty - 1, price = $5, base_price = $6, updated_at = now()
WHERE user_id = $1 AND sku_id = $2 AND supplier_id = $3 AND hash = $4
`, key.UserID, key.SkuID, key.SupplierID, key.Hash, snap.Price, snap.BasePrice); err != nil {
			return nil, 0, err
		}
		line, err = fetchLineTx(ctx, tx, key)
		if err != nil {
			return nil, 0, err
		}
	} else {
		line, err = fetchLineTx(ctx, tx, key)
		if err != nil {
			return nil, 0, err
		}
		if _, err := tx.Exec(ctx, `
DELETE FROM baskets
WHERE user_id = $1 AND sku_id = $2 AND supplier_id = $3 AND hash = $4
`, key.UserID, key.SkuID, key.SupplierID, key.Hash); err != nil {
			return nil, 0, err
		}
		line.Qty = 0
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return line, snap.Qty, nil
}

func (r *postgresRepo) DeleteLine(ctx context.Context, key Key) error {
	_, err := r.pool.Exec(ctx, `
DELETE FROM baskets
WHERE user_id = $1 AND sku_id = $2 AND supplier_id = $3 AND hash = $4
`, key.UserID, key.SkuID, key.SupplierID, key.Hash)
	return err
}

func (r *postgresRepo) Clear(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM baskets WHERE user_id = $1`, userID)
	return err
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.BasketLine, error) {
	q := `
SELECT ` + lineColumns + `
FROM baskets bk
JOIN skus s ON s.id = bk.sku_id
JOIN brands b ON b.id = s.brand_id
WHERE bk.user_id = $1
ORDER BY bk.created_at ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.BasketLine
	for rows.Next() {
		var line domain.BasketLine
		if err := scanLine(rows, &line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// snapshotTx resolves the price-list-scoped offer snapshot inside the running
// transaction. Missing offer or missing price row → domain.ErrNotFound.
func snapshotTx(ctx context.Context, tx pgx.Tx, skuID, supplierID, priceListID int64) (*domain.OfferSnapshot, error) {
	var snap domain.OfferSnapshot
	err := tx.QueryRow(ctx, `
SELECT so.base_price, so.qty, s.delivery_days
FROM suppliers_offers so
LEFT JOIN suppliers s ON s.id = so.supplier_id
WHERE so.sku_id = $1 AND so.supplier_id = $2
`, skuID, supplierID).Scan(&snap.BasePrice, &snap.Qty, &snap.DeliveryDays)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var price decimal.Decimal
	err = tx.QueryRow(ctx, `
SELECT price
FROM offer_prices
WHERE price_list_id = $1 AND sku_id = $2 AND supplier_id = $3
`, priceListID, skuID, supplierID).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	snap.Price = price
	return &snap, nil
}

func fetchLineTx(ctx context.Context, tx pgx.Tx, key Key) (*domain.BasketLine, error) {
	q := `
SELECT ` + lineColumns + `
FROM baskets bk
JOIN skus s ON s.id = bk.sku_id
JOIN brands b ON b.id = s.brand_id
WHERE bk.user_id = $1 AND bk.sku_id = $2 AND bk.supplier_id = $3 AND bk.hash = $4
`
	var line domain.BasketLine
	row := tx.QueryRow(ctx, q, key.UserID, key.SkuID, key.SupplierID, key.Hash)
	if err := scanLine(row, &line); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

func scanLine(row pgx.Row, line *domain.BasketLine) error {
	return row.Scan(
		&line.UserID,
		&line.SkuID,
		&line.SupplierID,
		&line.Hash,
		&line.Qty,
		&line.Price,
		&line.BasePrice,
		&line.DeliveryDays,
		&line.Descr,
		&line.Article,
		&line.Brand,
		&line.CreatedAt,
		&line.UpdatedAt,
	)
}
