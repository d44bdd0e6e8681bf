package status

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"rotazap-backend/internal/domain"
)

type postgresRepo struct {
	pool    *pgxpool.Pool
	catalog *domain.StatusCatalog
}

// NewPostgres returns a Repository backed by Postgres. The catalog drives the
// transition validation performed inside Append's transaction.
func NewPostgres(pool *pgxpool.Pool, catalog *domain.StatusCatalog) Repository {
	return &postgresRepo{pool: pool, catalog: catalog}
}

func (r *postgresRepo) ListStatuses(ctx context.Context) ([]domain.OrderStatus, error) {
	const q = `SELECT id, name FROM order_statuses ORDER BY id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []domain.OrderStatus
	for rows.Next() {
		var s domain.OrderStatus
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (r *postgresRepo) GetStatus(ctx context.Context, id int64) (*domain.OrderStatus, error) {
	const q = `SELECT id, name FROM order_statuses WHERE id = $1`
	var s domain.OrderStatus
	if err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) CreateStatus(ctx context.Context, name string) (*domain.OrderStatus, error) {
	const q = `INSERT INTO order_statuses (name) VALUES ($1) RETURNING id, name`
	var s domain.OrderStatus
	if err := r.pool.QueryRow(ctx, q, name).Scan(&s.ID, &s.Name); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) History(ctx context.Context, orderLineID int64) ([]domain.StatusEvent, error) {
	return fetchHistory(ctx, r.pool, orderLineID)
}

func (r *postgresRepo) Append(ctx context.Context, in AppendInput) (*domain.StatusEvent, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the order line so concurrent appends cannot both validate against
	// the same history.
	var lineID int64
	err = tx.QueryRow(ctx, `SELECT id FROM order_lines WHERE id = $1 FOR UPDATE`, in.OrderLineID).Scan(&lineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var statusName string
	err = tx.QueryRow(ctx, `SELECT name FROM order_statuses WHERE id = $1`, in.OrderStatusID).Scan(&statusName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	history, err := fetchHistory(ctx, tx, in.OrderLineID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(history))
	for i, ev := range history {
		names[i] = ev.StatusName
	}

	if err := r.catalog.CheckTransition(names, statusName); err != nil {
		return nil, err
	}

	const insert = `
INSERT INTO order_lines_status (order_line_id, order_status_id, qty, created_at)
VALUES ($1, $2, $3, COALESCE($4, now()))
RETURNING id, order_line_id, order_status_id, qty, created_at
`
	var ev domain.StatusEvent
	err = tx.QueryRow(ctx, insert, in.OrderLineID, in.OrderStatusID, in.Qty, in.CreatedAt).Scan(
		&ev.ID,
		&ev.OrderLineID,
		&ev.StatusID,
		&ev.Qty,
		&ev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	ev.StatusName = statusName

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &ev, nil
}

// queryer lets the history fetch run either on the pool or inside a
// transaction.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func fetchHistory(ctx context.Context, q queryer, orderLineID int64) ([]domain.StatusEvent, error) {
	const query = `
SELECT ols.id, ols.order_line_id, ols.order_status_id, os.name, ols.qty, ols.created_at
FROM order_lines_status ols
JOIN order_statuses os ON os.id = ols.order_status_id
WHERE ols.order_line_id = $1
ORDER BY ols.created_at ASC, ols.id ASC
`
	rows, err := q.Query(ctx, query, orderLineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.StatusEvent
	for rows.Next() {
		var ev domain.StatusEvent
		if err := rows.Scan(&ev.ID, &ev.OrderLineID, &ev.StatusID, &ev.StatusName, &ev.Qty, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
