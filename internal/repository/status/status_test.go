package status

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"rotazap-backend/internal/domain"
	"rotazap-backend/internal/migrate"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func testCatalog(t *testing.T) *domain.StatusCatalog {
	t.Helper()
	c, err := domain.NewStatusCatalog(
		[]string{"New order", "In progress", "Shipped"},
		[]string{"Customer declined"},
		"Delayed",
	)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

// setup seeds one order line and the status dictionary, returning the line id
// and a name->id map.
func setup(ctx context.Context, t *testing.T, pool *pgxpool.Pool, catalog *domain.StatusCatalog) (int64, map[string]int64) {
	t.Helper()
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE order_lines_status, order_lines, orders, baskets,
offer_prices, suppliers_offers, price_lists, suppliers, sku_names, skus, brands,
password_reset_tokens, users, order_statuses RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	statusIDs := make(map[string]int64)
	names := catalog.Chain()
	names = append(names, catalog.Delay())
	names = append(names, catalog.Terminals()...)
	for _, name := range names {
		var id int64
		if err := pool.QueryRow(ctx, `INSERT INTO order_statuses (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
			t.Fatalf("insert status %q: %v", name, err)
		}
		statusIDs[name] = id
	}

	var userID int64
	if err := pool.QueryRow(ctx, `INSERT INTO users (email, password_hash) VALUES ('b@example.com', 'x') RETURNING id`).Scan(&userID); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	var brandID, skuID int64
	if err := pool.QueryRow(ctx, `INSERT INTO brands (name) VALUES ('Bosch') RETURNING id`).Scan(&brandID); err != nil {
		t.Fatalf("insert brand: %v", err)
	}
	if err := pool.QueryRow(ctx, `INSERT INTO skus (brand_id, article) VALUES ($1, 'A1') RETURNING id`, brandID).Scan(&skuID); err != nil {
		t.Fatalf("insert sku: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO suppliers (id, name) VALUES (2, 'S')`); err != nil {
		t.Fatalf("insert supplier: %v", err)
	}

	var orderID, lineID int64
	if err := pool.QueryRow(ctx, `INSERT INTO orders (user_id) VALUES ($1) RETURNING id`, userID).Scan(&orderID); err != nil {
		t.Fatalf("insert order: %v", err)
	}
	if err := pool.QueryRow(ctx, `INSERT INTO order_lines (order_id, sku_id, supplier_id, qty, price, base_price)
VALUES ($1, $2, 2, 3, '530.00', '390.00') RETURNING id`, orderID, skuID).Scan(&lineID); err != nil {
		t.Fatalf("insert order line: %v", err)
	}
	return lineID, statusIDs
}

func TestPostgres_AppendEnforcesTransitions(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	catalog := testCatalog(t)
	lineID, statusIDs := setup(ctx, t, pool, catalog)
	repo := NewPostgres(pool, catalog)

	// A fresh line must start at the first chain stage.
	if _, err := repo.Append(ctx, AppendInput{OrderLineID: lineID, OrderStatusID: statusIDs["Shipped"], Qty: 3}); err == nil {
		t.Fatal("expected rejection of a mid-chain first status")
	}
	if _, err := repo.Append(ctx, AppendInput{OrderLineID: lineID, OrderStatusID: statusIDs["New order"], Qty: 3}); err != nil {
		t.Fatalf("first status: %v", err)
	}

	// A delay does not advance the chain position.
	if _, err := repo.Append(ctx, AppendInput{OrderLineID: lineID, OrderStatusID: statusIDs["Delayed"], Qty: 3}); err != nil {
		t.Fatalf("delay: %v", err)
	}
	if _, err := repo.Append(ctx, AppendInput{OrderLineID: lineID, OrderStatusID: statusIDs["In progress"], Qty: 3}); err != nil {
		t.Fatalf("advance after delay: %v", err)
	}

	// No skipping, no regression.
	if _, err := repo.Append(ctx, AppendInput{OrderLineID: lineID, OrderStatusID: statusIDs["New order"], Qty: 3}); err == nil {
		t.Fatal("expected regression rejection")
	}

	// Terminal ends the line.
	if _, err := repo.Append(ctx, AppendInput{OrderLineID: lineID, OrderStatusID: statusIDs["Customer declined"], Qty: 3}); err != nil {
		t.Fatalf("terminal: %v", err)
	}
	var terr *domain.TransitionError
	if _, err := repo.Append(ctx, AppendInput{OrderLineID: lineID, OrderStatusID: statusIDs["Shipped"], Qty: 3}); !errors.As(err, &terr) {
		t.Fatalf("expected transition error after terminal, got %v", err)
	}

	history, err := repo.History(ctx, lineID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 events, got %d", len(history))
	}
	if history[3].StatusName != "Customer declined" {
		t.Fatalf("unexpected last event: %+v", history[3])
	}
}

func TestPostgres_AppendUnknownLine(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	catalog := testCatalog(t)
	_, statusIDs := setup(ctx, t, pool, catalog)
	repo := NewPostgres(pool, catalog)

	if _, err := repo.Append(ctx, AppendInput{OrderLineID: 9999, OrderStatusID: statusIDs["New order"], Qty: 1}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
