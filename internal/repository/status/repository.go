package status

import (
	"context"
	"time"

	"rotazap-backend/internal/domain"
)

// AppendInput carries one status-event append request. CreatedAt is optional;
// the database clock is used when nil.
type AppendInput struct {
	OrderLineID   int64
	OrderStatusID int64
	Qty           int
	CreatedAt     *time.Time
}

// Repository owns the status dictionary and the append-only per-line status
// history.
type Repository interface {
	ListStatuses(ctx context.Context) ([]domain.OrderStatus, error)
	GetStatus(ctx context.Context, id int64) (*domain.OrderStatus, error)
	CreateStatus(ctx context.Context, name string) (*domain.OrderStatus, error)

	// History returns a line's events in ascending creation order.
	History(ctx context.Context, orderLineID int64) ([]domain.StatusEvent, error)

	// Append validates the transition against the line's full history and
	// inserts the event, all inside one transaction with the line row locked.
	// Nothing is written when the transition is rejected.
	Append(ctx context.Context, in AppendInput) (*domain.StatusEvent, error)
}
