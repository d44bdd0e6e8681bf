// Package order implements checkout: validating the client's lines against
// live stock and prices, then creating the order atomically.
package order

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"rotazap-backend/internal/domain"
	orderrepo "rotazap-backend/internal/repository/order"
)

type orderRepo interface {
	Create(ctx context.Context, userID int64, lines []orderrepo.LineInput, initialStatus string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

type offerRepo interface {
	OffersForKeys(ctx context.Context, keys []domain.OfferKey) (map[domain.OfferKey]domain.Offer, error)
	PricesForKeys(ctx context.Context, keys []domain.OfferKey) (map[domain.OfferKey][]decimal.Decimal, error)
}

type Service struct {
	repo    orderRepo
	offers  offerRepo
	catalog *domain.StatusCatalog
}

func New(repo orderRepo, offers offerRepo, catalog *domain.StatusCatalog) *Service {
	return &Service{repo: repo, offers: offers, catalog: catalog}
}

// LineInput is one line of a checkout request. Price is what the client last
// saw; it must still exactly match a known price record.
type LineInput struct {
	SkuID      int64           `json:"skuId"`
	SupplierID int64           `json:"supplierId"`
	Qty        int             `json:"qty"`
	Price      decimal.Decimal `json:"price"`
	Descr      string          `json:"descr,omitempty"`
	Hash       string          `json:"hash,omitempty"`
}

// Validate checks every line and collects all violations instead of failing
// on the first. A line passes when the offer exists, has enough stock, and
// the client price exactly matches one of the offer's known price records.
func (s *Service) Validate(ctx context.Context, lines []LineInput) error {
	if len(lines) == 0 {
		return domain.Validation("order has no lines")
	}

	keys := make([]domain.OfferKey, 0, len(lines))
	for _, l := range lines {
		keys = append(keys, domain.OfferKey{SkuID: l.SkuID, SupplierID: l.SupplierID})
	}
	offers, err := s.offers.OffersForKeys(ctx, keys)
	if err != nil {
		return err
	}
	prices, err := s.offers.PricesForKeys(ctx, keys)
	if err != nil {
		return err
	}

	verr := &domain.ValidationError{}
	for _, l := range lines {
		key := domain.OfferKey{SkuID: l.SkuID, SupplierID: l.SupplierID}

		if l.Qty < 1 {
			verr.Addf("sku %d: qty must be positive", l.SkuID)
			continue
		}

		offer, ok := offers[key]
		if !ok {
			verr.Addf("sku %d supplier %d: offer not found", l.SkuID, l.SupplierID)
			continue
		}
		if offer.Qty < l.Qty {
			verr.Addf("sku %d: only %d of %d available", l.SkuID, offer.Qty, l.Qty)
		}

		if !priceKnown(l.Price, prices[key]) {
			verr.Addf("sku %d: price %s is stale, current prices: %s",
				l.SkuID, l.Price.String(), formatPrices(prices[key]))
		}
	}
	if verr.HasViolations() {
		return verr
	}
	return nil
}

// Create validates the lines and creates the order in one transaction: stock
// is decremented with a guard against concurrent checkouts and the matching
// basket lines are consumed.
func (s *Service) Create(ctx context.Context, userID int64, lines []LineInput) (*domain.Order, error) {
	if err := s.Validate(ctx, lines); err != nil {
		return nil, err
	}

	repoLines := make([]orderrepo.LineInput, 0, len(lines))
	for _, l := range lines {
		repoLines = append(repoLines, orderrepo.LineInput{
			SkuID:      l.SkuID,
			SupplierID: l.SupplierID,
			Qty:        l.Qty,
			Price:      l.Price,
			Descr:      l.Descr,
			Hash:       l.Hash,
		})
	}
	return s.repo.Create(ctx, userID, repoLines, s.catalog.First())
}

// List returns the user's orders, newest first, with per-line status history.
func (s *Service) List(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func priceKnown(price decimal.Decimal, known []decimal.Decimal) bool {
	for _, p := range known {
		if p.Equal(price) {
			return true
		}
	}
	return false
}

func formatPrices(known []decimal.Decimal) string {
	if len(known) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(known))
	for _, p := range known {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ", ")
}
