package orderstatus

import (
	"context"
	"errors"
	"testing"
	"time"

	"rotazap-backend/internal/domain"
	statusrepo "rotazap-backend/internal/repository/status"
)

type stubStatusRepo struct {
	history    []domain.StatusEvent
	historyErr error
	lastAppend statusrepo.AppendInput
	appended   *domain.StatusEvent
	appendErr  error
}

func (s *stubStatusRepo) ListStatuses(_ context.Context) ([]domain.OrderStatus, error) {
	return nil, nil
}

func (s *stubStatusRepo) GetStatus(_ context.Context, _ int64) (*domain.OrderStatus, error) {
	return nil, domain.ErrNotFound
}

func (s *stubStatusRepo) CreateStatus(_ context.Context, name string) (*domain.OrderStatus, error) {
	return &domain.OrderStatus{ID: 1, Name: name}, nil
}

func (s *stubStatusRepo) History(_ context.Context, _ int64) ([]domain.StatusEvent, error) {
	return s.history, s.historyErr
}

func (s *stubStatusRepo) Append(_ context.Context, in statusrepo.AppendInput) (*domain.StatusEvent, error) {
	s.lastAppend = in
	return s.appended, s.appendErr
}

func testCatalog(t *testing.T) *domain.StatusCatalog {
	t.Helper()
	c, err := domain.NewStatusCatalog(
		[]string{"Processing", "Confirmed", "Shipped", "Delivered"},
		[]string{"Completed", "Cancelled"},
		"Delayed",
	)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func TestHistoryEmptyIsNotFound(t *testing.T) {
	svc := New(&stubStatusRepo{}, testCatalog(t))
	_, err := svc.History(context.Background(), 5)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTimelineFromHistory(t *testing.T) {
	repo := &stubStatusRepo{history: []domain.StatusEvent{
		{StatusName: "Processing", CreatedAt: ts(t, "2026-01-01T10:00:00Z")},
		{StatusName: "Confirmed", CreatedAt: ts(t, "2026-01-02T10:00:00Z")},
	}}
	svc := New(repo, testCatalog(t))

	steps, err := svc.Timeline(context.Background(), 5)
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if len(steps) != 4 {
		t.Fatalf("expected 4 chain steps, got %d", len(steps))
	}
	if !steps[0].Completed || steps[0].Current {
		t.Errorf("step 0 should be completed and not current: %+v", steps[0])
	}
	if !steps[1].Current {
		t.Errorf("step 1 should be current: %+v", steps[1])
	}
	if steps[2].Completed || steps[3].Completed {
		t.Errorf("future steps must not be completed: %+v", steps[2:])
	}
}

func TestApplyForwardsToRepo(t *testing.T) {
	at := ts(t, "2026-01-03T10:00:00Z")
	repo := &stubStatusRepo{appended: &domain.StatusEvent{ID: 9, StatusName: "Confirmed"}}
	svc := New(repo, testCatalog(t))

	ev, err := svc.Apply(context.Background(), ApplyInput{OrderLineID: 5, StatusID: 2, Qty: 3, At: &at})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if ev.ID != 9 {
		t.Errorf("unexpected event: %+v", ev)
	}
	if repo.lastAppend.OrderLineID != 5 || repo.lastAppend.Qty != 3 || repo.lastAppend.CreatedAt == nil {
		t.Errorf("unexpected append input: %+v", repo.lastAppend)
	}
}

func TestApplyRejectsNegativeQty(t *testing.T) {
	svc := New(&stubStatusRepo{}, testCatalog(t))
	_, err := svc.Apply(context.Background(), ApplyInput{OrderLineID: 5, StatusID: 2, Qty: -1})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplySurfacesTransitionError(t *testing.T) {
	repo := &stubStatusRepo{appendErr: &domain.TransitionError{From: "Completed", To: "Shipped", Reason: "no transitions allowed after a terminal status"}}
	svc := New(repo, testCatalog(t))

	_, err := svc.Apply(context.Background(), ApplyInput{OrderLineID: 5, StatusID: 3, Qty: 1})
	var terr *domain.TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected transition error, got %v", err)
	}
}

func TestCreateStatusRequiresName(t *testing.T) {
	svc := New(&stubStatusRepo{}, testCatalog(t))
	if _, err := svc.CreateStatus(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty name")
	}
}
