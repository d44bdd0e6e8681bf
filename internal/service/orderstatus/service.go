// Package orderstatus manages the per-line fulfillment history: the status
// dictionary, appending validated status events and reconstructing the
// timeline shown to buyers.
package orderstatus

import (
	"context"
	"time"

	"rotazap-backend/internal/domain"
	statusrepo "rotazap-backend/internal/repository/status"
)

type statusRepo interface {
	ListStatuses(ctx context.Context) ([]domain.OrderStatus, error)
	GetStatus(ctx context.Context, id int64) (*domain.OrderStatus, error)
	CreateStatus(ctx context.Context, name string) (*domain.OrderStatus, error)
	History(ctx context.Context, orderLineID int64) ([]domain.StatusEvent, error)
	Append(ctx context.Context, in statusrepo.AppendInput) (*domain.StatusEvent, error)
}

type Service struct {
	repo    statusRepo
	catalog *domain.StatusCatalog
}

func New(repo statusRepo, catalog *domain.StatusCatalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// Statuses lists the status dictionary.
func (s *Service) Statuses(ctx context.Context) ([]domain.OrderStatus, error) {
	return s.repo.ListStatuses(ctx)
}

// Status fetches one dictionary entry.
func (s *Service) Status(ctx context.Context, id int64) (*domain.OrderStatus, error) {
	return s.repo.GetStatus(ctx, id)
}

// CreateStatus registers a new dictionary entry. The entry is inert until the
// status configuration references it.
func (s *Service) CreateStatus(ctx context.Context, name string) (*domain.OrderStatus, error) {
	if name == "" {
		return nil, domain.Validation("status name required")
	}
	return s.repo.CreateStatus(ctx, name)
}

// ApplyInput is one status-append request. At is optional backdating.
type ApplyInput struct {
	OrderLineID int64      `json:"orderLineId"`
	StatusID    int64      `json:"orderStatusId"`
	Qty         int        `json:"qty"`
	At          *time.Time `json:"createdAt,omitempty"`
}

// Apply appends a status event to a line after the transition rules pass.
func (s *Service) Apply(ctx context.Context, in ApplyInput) (*domain.StatusEvent, error) {
	if in.Qty < 0 {
		return nil, domain.Validation("qty must not be negative")
	}
	return s.repo.Append(ctx, statusrepo.AppendInput{
		OrderLineID:   in.OrderLineID,
		OrderStatusID: in.StatusID,
		Qty:           in.Qty,
		CreatedAt:     in.At,
	})
}

// History returns a line's raw events in ascending creation order. A line
// with no events does not exist.
func (s *Service) History(ctx context.Context, orderLineID int64) ([]domain.StatusEvent, error) {
	events, err := s.repo.History(ctx, orderLineID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.ErrNotFound
	}
	return events, nil
}

// Timeline reconstructs the buyer-facing progress view of a line from its
// history.
func (s *Service) Timeline(ctx context.Context, orderLineID int64) ([]domain.TimelineStep, error) {
	events, err := s.History(ctx, orderLineID)
	if err != nil {
		return nil, err
	}
	return domain.BuildTimeline(s.catalog, events), nil
}
