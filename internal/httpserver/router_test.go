package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"rotazap-backend/internal/catalogapi"
	"rotazap-backend/internal/domain"
	basketsvc "rotazap-backend/internal/service/basket"
	ordersvc "rotazap-backend/internal/service/order"
	statussvc "rotazap-backend/internal/service/orderstatus"
	usersvc "rotazap-backend/internal/service/user"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubBasketService struct {
	line    *basketsvc.Line
	lines   []basketsvc.Line
	diffs   []domain.BasketDiff
	err     error
	cleared bool
}

func (s *stubBasketService) Add(_ context.Context, _ int64, _ basketsvc.AddInput) (*basketsvc.Line, error) {
	return s.line, s.err
}

func (s *stubBasketService) Remove(_ context.Context, _, _, _ int64, _ string) (*basketsvc.Line, error) {
	return s.line, s.err
}

func (s *stubBasketService) Delete(_ context.Context, _, _, _ int64, _ string) error {
	return s.err
}

func (s *stubBasketService) Clear(_ context.Context, _ int64) error {
	s.cleared = true
	return s.err
}

func (s *stubBasketService) Get(_ context.Context, _ int64) ([]basketsvc.Line, error) {
	return s.lines, s.err
}

func (s *stubBasketService) Compare(_ context.Context, _ int64, _ []basketsvc.CompareItem) ([]domain.BasketDiff, error) {
	return s.diffs, s.err
}

type stubOrderService struct {
	order       *domain.Order
	orders      []domain.Order
	validateErr error
	createErr   error
}

func (s *stubOrderService) Validate(_ context.Context, _ []ordersvc.LineInput) error {
	return s.validateErr
}

func (s *stubOrderService) Create(_ context.Context, _ int64, _ []ordersvc.LineInput) (*domain.Order, error) {
	return s.order, s.createErr
}

func (s *stubOrderService) List(_ context.Context, _ int64) ([]domain.Order, error) {
	return s.orders, nil
}

type stubStatusService struct {
	statuses []domain.OrderStatus
	event    *domain.StatusEvent
	history  []domain.StatusEvent
	steps    []domain.TimelineStep
	err      error
}

func (s *stubStatusService) Statuses(_ context.Context) ([]domain.OrderStatus, error) {
	return s.statuses, s.err
}

func (s *stubStatusService) Status(_ context.Context, _ int64) (*domain.OrderStatus, error) {
	if len(s.statuses) == 0 {
		return nil, domain.ErrNotFound
	}
	return &s.statuses[0], nil
}

func (s *stubStatusService) CreateStatus(_ context.Context, name string) (*domain.OrderStatus, error) {
	return &domain.OrderStatus{ID: 1, Name: name}, s.err
}

func (s *stubStatusService) Apply(_ context.Context, _ statussvc.ApplyInput) (*domain.StatusEvent, error) {
	return s.event, s.err
}

func (s *stubStatusService) History(_ context.Context, _ int64) ([]domain.StatusEvent, error) {
	return s.history, s.err
}

func (s *stubStatusService) Timeline(_ context.Context, _ int64) ([]domain.TimelineStep, error) {
	return s.steps, s.err
}

type stubSearchService struct {
	info   *domain.ArticleInfo
	groups []domain.LocalOfferGroup
}

func (s *stubSearchService) ArticleInfo(_ context.Context, _ int64, _, _ string) (*domain.ArticleInfo, error) {
	return s.info, nil
}

func (s *stubSearchService) SearchBrands(_ context.Context, _ string) ([]catalogapi.BrandSuggestion, error) {
	return nil, nil
}

func (s *stubSearchService) SearchTips(_ context.Context, _ string) ([]catalogapi.Tip, error) {
	return nil, nil
}

func (s *stubSearchService) FindInPriceList(_ context.Context, _ int64, _, _ string) ([]domain.LocalOfferGroup, error) {
	return s.groups, nil
}

type stubUserService struct {
	user    *domain.User
	authErr error
}

func (s *stubUserService) Register(_ context.Context, _ usersvc.RegisterInput) (*domain.User, error) {
	return s.user, nil
}

func (s *stubUserService) Authenticate(_ context.Context, _, _ string) (*domain.User, error) {
	return s.user, s.authErr
}

func (s *stubUserService) Get(_ context.Context, _ int64) (*domain.User, error) {
	if s.user == nil {
		return nil, domain.ErrNotFound
	}
	return s.user, nil
}

func (s *stubUserService) Delete(_ context.Context, _ int64) error { return nil }

func (s *stubUserService) UpdateProfile(_ context.Context, _ int64, _ usersvc.ProfileInput) (*domain.User, error) {
	return s.user, nil
}

func (s *stubUserService) UpdateRole(_ context.Context, id int64, role string) (*domain.User, error) {
	return &domain.User{ID: id, Role: role}, nil
}

func (s *stubUserService) InitiatePasswordReset(_ context.Context, _ string) error { return nil }

func (s *stubUserService) ResetPassword(_ context.Context, _, _ string) error { return nil }

func testDeps() Deps {
	return Deps{
		BasketSvc: &stubBasketService{},
		OrderSvc:  &stubOrderService{},
		StatusSvc: &stubStatusService{},
		SearchSvc: &stubSearchService{},
		UserSvc:   &stubUserService{},
	}
}

func serve(t *testing.T, deps Deps, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(t, testDeps(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBasketRequiresUser(t *testing.T) {
	rec := serve(t, testDeps(), httptest.NewRequest(http.MethodGet, "/basket", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestBasketIgnoresMalformedUserHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/basket", nil)
	req.Header.Set(headerUserID, "not-a-number")
	rec := serve(t, testDeps(), req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBasketAdd(t *testing.T) {
	deps := testDeps()
	deps.BasketSvc = &stubBasketService{line: &basketsvc.Line{
		BasketLine:   domain.BasketLine{SkuID: 1, SupplierID: 2, Qty: 3, Price: decimal.RequireFromString("530")},
		AvailableQty: 40,
	}}

	body := `{"action":"add","skuId":1,"supplierId":2,"qty":3}`
	req := httptest.NewRequest(http.MethodPost, "/basket", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerUserID, "7")

	rec := serve(t, deps, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"availableQty":40`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestBasketAddValidationError(t *testing.T) {
	deps := testDeps()
	deps.BasketSvc = &stubBasketService{err: domain.Validation("maximum 5 available")}

	body := `{"action":"add","skuId":1,"supplierId":2,"qty":9}`
	req := httptest.NewRequest(http.MethodPost, "/basket", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerUserID, "7")

	rec := serve(t, deps, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "maximum 5 available") {
		t.Fatalf("violations missing from body: %s", rec.Body.String())
	}
}

func TestBasketUnsupportedAction(t *testing.T) {
	body := `{"action":"frobnicate"}`
	req := httptest.NewRequest(http.MethodPost, "/basket", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerUserID, "7")

	rec := serve(t, testDeps(), req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateOrder(t *testing.T) {
	deps := testDeps()
	deps.OrderSvc = &stubOrderService{order: &domain.Order{ID: 100, UserID: 7}}

	body := `{"items":[{"skuId":1,"supplierId":2,"qty":2,"price":"530"}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerUserID, "7")

	rec := serve(t, deps, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"number":"#RZ-0007-100"`) {
		t.Fatalf("order number missing: %s", rec.Body.String())
	}
}

func TestApplyStatusConflict(t *testing.T) {
	deps := testDeps()
	deps.StatusSvc = &stubStatusService{err: &domain.TransitionError{
		From: "Completed", To: "Shipped", Reason: "no transitions allowed after a terminal status",
	}}

	body := `{"orderLineId":5,"orderStatusId":3,"qty":1}`
	req := httptest.NewRequest(http.MethodPost, "/order-lines-status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerUserID, "7")

	rec := serve(t, deps, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestTimelineNotFound(t *testing.T) {
	deps := testDeps()
	deps.StatusSvc = &stubStatusService{err: domain.ErrNotFound}

	req := httptest.NewRequest(http.MethodGet, "/order-lines-status/99/timeline", nil)
	req.Header.Set(headerUserID, "7")

	rec := serve(t, deps, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateRoleForbiddenForNonAdmin(t *testing.T) {
	deps := testDeps()
	deps.UserSvc = &stubUserService{user: &domain.User{ID: 7, Role: domain.RoleUser}}

	body := `{"role":"user"}`
	req := httptest.NewRequest(http.MethodPatch, "/users/9/role", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerUserID, "7")

	rec := serve(t, deps, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPasswordResetNeverRevealsAccounts(t *testing.T) {
	body := `{"email":"ghost@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/users/password-reset", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(t, testDeps(), req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := serve(t, testDeps(), req)
	if got := rec.Header().Get(headerRequestID); got != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", got)
	}
}
