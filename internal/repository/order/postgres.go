package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"rotazap-backend/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, userID int64, lines []LineInput, initialStatus string) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var initialStatusID int64
	err = tx.QueryRow(ctx, `SELECT id FROM order_statuses WHERE name = $1`, initialStatus).Scan(&initialStatusID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("initial status %q is not seeded", initialStatus)
		}
		return nil, err
	}

	var order domain.Order
	order.UserID = userID
	err = tx.QueryRow(ctx, `
INSERT INTO orders (user_id) VALUES ($1)
RETURNING id, created_at
`, userID).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, in := range lines {
		line := domain.OrderLine{
			OrderID:    order.ID,
			SkuID:      in.SkuID,
			SupplierID: in.SupplierID,
			Qty:        in.Qty,
			Price:      in.Price,
			Descr:      in.Descr,
		}

		// Lock the offer row, then decrement guarded by the remaining stock;
		// zero rows affected means a concurrent order won the race.
		err = tx.QueryRow(ctx, `
SELECT so.base_price, s.delivery_days
FROM suppliers_offers so
LEFT JOIN suppliers s ON s.id = so.supplier_id
WHERE so.sku_id = $1 AND so.supplier_id = $2
FOR UPDATE OF so
`, in.SkuID, in.SupplierID).Scan(&line.BasePrice, &line.DeliveryDays)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.Validation(fmt.Sprintf("offer %d/%d not found", in.SkuID, in.SupplierID))
			}
			return nil, err
		}

		cmd, err := tx.Exec(ctx, `
UPDATE suppliers_offers
SET qty = qty - $3
WHERE sku_id = $1 AND supplier_id = $2 AND qty >= $3
`, in.SkuID, in.SupplierID, in.Qty)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			return nil, domain.Validation(fmt.Sprintf("insufficient stock for SKU %d: requested %d", in.SkuID, in.Qty))
		}

		err = tx.QueryRow(ctx, `
INSERT INTO order_lines (order_id, sku_id, supplier_id, qty, price, base_price, delivery_days, descr)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id
`, order.ID, in.SkuID, in.SupplierID, in.Qty, in.Price, line.BasePrice, line.DeliveryDays, in.Descr).Scan(&line.ID)
		if err != nil {
			return nil, err
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO order_lines_status (order_line_id, order_status_id, qty)
VALUES ($1, $2, $3)
`, line.ID, initialStatusID, in.Qty); err != nil {
			return nil, err
		}

		if in.Hash != "" {
			if _, err := tx.Exec(ctx, `
DELETE FROM baskets
WHERE user_id = $1 AND sku_id = $2 AND supplier_id = $3 AND hash = $4
`, userID, in.SkuID, in.SupplierID, in.Hash); err != nil {
				return nil, err
			}
		}

		order.Lines = append(order.Lines, line)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created order id=%d user=%d lines=%d", order.ID, userID, len(lines))
	return &order, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	const ordersQuery = `
SELECT id, user_id, created_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, ordersQuery, userID)
	if err != nil {
		return nil, err
	}
	var orders []domain.Order
	orderIdx := make(map[int64]int)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		orderIdx[o.ID] = len(orders)
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	orderIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}

	const linesQuery = `
SELECT ol.id, ol.order_id, ol.sku_id, ol.supplier_id, ol.qty, ol.price, ol.base_price,
       ol.delivery_days, ol.descr, s.article, b.name
FROM order_lines ol
JOIN skus s ON s.id = ol.sku_id
JOIN brands b ON b.id = s.brand_id
WHERE ol.order_id = ANY($1)
ORDER BY ol.id
`
	lineRows, err := r.pool.Query(ctx, linesQuery, orderIDs)
	if err != nil {
		return nil, err
	}
	type linePos struct{ order, line int }
	lineIdx := make(map[int64]linePos)
	var lineIDs []int64
	for lineRows.Next() {
		var line domain.OrderLine
		if err := lineRows.Scan(
			&line.ID, &line.OrderID, &line.SkuID, &line.SupplierID, &line.Qty,
			&line.Price, &line.BasePrice, &line.DeliveryDays, &line.Descr,
			&line.Article, &line.Brand,
		); err != nil {
			lineRows.Close()
			return nil, err
		}
		oi := orderIdx[line.OrderID]
		orders[oi].Lines = append(orders[oi].Lines, line)
		lineIdx[line.ID] = linePos{order: oi, line: len(orders[oi].Lines) - 1}
		lineIDs = append(lineIDs, line.ID)
	}
	lineRows.Close()
	if err := lineRows.Err(); err != nil {
		return nil, err
	}
	if len(lineIDs) == 0 {
		return orders, nil
	}

	const statusQuery = `
SELECT ols.id, ols.order_line_id, ols.order_status_id, os.name, ols.qty, ols.created_at
FROM order_lines_status ols
JOIN order_statuses os ON os.id = ols.order_status_id
WHERE ols.order_line_id = ANY($1)
ORDER BY ols.created_at DESC, ols.id DESC
`
	statusRows, err := r.pool.Query(ctx, statusQuery, lineIDs)
	if err != nil {
		return nil, err
	}
	defer statusRows.Close()

	for statusRows.Next() {
		var ev domain.StatusEvent
		if err := statusRows.Scan(&ev.ID, &ev.OrderLineID, &ev.StatusID, &ev.StatusName, &ev.Qty, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if pos, ok := lineIdx[ev.OrderLineID]; ok {
			line := &orders[pos.order].Lines[pos.line]
			line.Statuses = append(line.Statuses, ev)
		}
	}
	return orders, statusRows.Err()
}
