// Package basket implements the basket operations on top of the transactional
// basket repository: add, remove, clear and the client/server drift compare.
package basket

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"rotazap-backend/internal/catalogapi"
	"rotazap-backend/internal/domain"
	basketrepo "rotazap-backend/internal/repository/basket"
	skurepo "rotazap-backend/internal/repository/sku"
)

type basketRepo interface {
	Add(ctx context.Context, in basketrepo.AddInput) (*domain.BasketLine, int, error)
	Decrement(ctx context.Context, key basketrepo.Key, priceListID int64) (*domain.BasketLine, int, error)
	DeleteLine(ctx context.Context, key basketrepo.Key) error
	Clear(ctx context.Context, userID int64) error
	ListByUser(ctx context.Context, userID int64) ([]domain.BasketLine, error)
}

type offerRepo interface {
	Snapshots(ctx context.Context, keys []domain.OfferKey, priceListID int64) (map[domain.OfferKey]domain.OfferSnapshot, error)
}

type skuRepo interface {
	GetBrief(ctx context.Context, skuID int64) (*skurepo.Brief, error)
}

type userRepo interface {
	PriceListID(ctx context.Context, userID int64) (int64, error)
}

type catalogClient interface {
	ArticleInfo(ctx context.Context, brand, number string) (catalogapi.ArticleInfoResponse, error)
}

type Service struct {
	repo    basketRepo
	offers  offerRepo
	skus    skuRepo
	users   userRepo
	catalog catalogClient
}

func New(repo basketRepo, offers offerRepo, skus skuRepo, users userRepo, catalog catalogClient) *Service {
	return &Service{repo: repo, offers: offers, skus: skus, users: users, catalog: catalog}
}

// AddInput is one client add request.
type AddInput struct {
	SkuID      int64  `json:"skuId"`
	SupplierID int64  `json:"supplierId"`
	Qty        int    `json:"qty"`
	Hash       string `json:"hash,omitempty"`
	Descr      string `json:"descr,omitempty"`
}

// Line is a basket line together with the offer's currently available
// quantity.
type Line struct {
	domain.BasketLine
	AvailableQty int `json:"availableQty"`
}

// Add puts qty units of an offer into the user's basket. The line's price
// terms always reflect the current snapshot, never what the client sent.
func (s *Service) Add(ctx context.Context, userID int64, in AddInput) (*Line, error) {
	if in.Qty < 1 {
		return nil, domain.Validation("qty must be positive")
	}
	priceListID, err := s.users.PriceListID(ctx, userID)
	if err != nil {
		return nil, err
	}

	hash := in.Hash
	if hash == "" {
		hash = domain.DefaultLineHash(in.SkuID, in.SupplierID)
	}

	// When the client sends no description, the upstream article card supplies
	// one; the local catalog name covers parts the upstream does not know.
	descr := in.Descr
	if descr == "" {
		brief, err := s.skus.GetBrief(ctx, in.SkuID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if brief != nil {
			descr = brief.Name
			if card, err := s.catalog.ArticleInfo(ctx, brief.Brand, brief.Article); err == nil && card.Descr != "" {
				descr = card.Descr
			}
		}
	}

	line, available, err := s.repo.Add(ctx, basketrepo.AddInput{
		UserID:      userID,
		SkuID:       in.SkuID,
		SupplierID:  in.SupplierID,
		PriceListID: priceListID,
		Qty:         in.Qty,
		Hash:        hash,
		Descr:       descr,
	})
	if err != nil {
		return nil, err
	}
	return &Line{BasketLine: *line, AvailableQty: available}, nil
}

// Remove takes one unit off a line; the last unit deletes the line.
func (s *Service) Remove(ctx context.Context, userID, skuID, supplierID int64, hash string) (*Line, error) {
	priceListID, err := s.users.PriceListID(ctx, userID)
	if err != nil {
		return nil, err
	}
	line, available, err := s.repo.Decrement(ctx, basketrepo.Key{
		UserID:     userID,
		SkuID:      skuID,
		SupplierID: supplierID,
		Hash:       hash,
	}, priceListID)
	if err != nil {
		return nil, err
	}
	return &Line{BasketLine: *line, AvailableQty: available}, nil
}

// Delete drops a whole line regardless of its quantity.
func (s *Service) Delete(ctx context.Context, userID, skuID, supplierID int64, hash string) error {
	return s.repo.DeleteLine(ctx, basketrepo.Key{
		UserID:     userID,
		SkuID:      skuID,
		SupplierID: supplierID,
		Hash:       hash,
	})
}

// Clear empties the user's basket.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}

// Get lists the basket annotated with each offer's current availability.
// Lines whose offer is no longer visible in the price list report zero.
func (s *Service) Get(ctx context.Context, userID int64) ([]Line, error) {
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return []Line{}, nil
	}

	priceListID, err := s.users.PriceListID(ctx, userID)
	if err != nil {
		return nil, err
	}
	keys := make([]domain.OfferKey, 0, len(lines))
	for _, l := range lines {
		keys = append(keys, domain.OfferKey{SkuID: l.SkuID, SupplierID: l.SupplierID})
	}
	snaps, err := s.offers.Snapshots(ctx, keys, priceListID)
	if err != nil {
		return nil, err
	}

	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		available := 0
		if snap, ok := snaps[domain.OfferKey{SkuID: l.SkuID, SupplierID: l.SupplierID}]; ok {
			available = snap.Qty
		}
		out = append(out, Line{BasketLine: l, AvailableQty: available})
	}
	return out, nil
}

// CompareItem is one client-held basket line to check against server truth.
type CompareItem struct {
	SkuID      int64           `json:"skuId"`
	SupplierID int64           `json:"supplierId"`
	Hash       string          `json:"hash,omitempty"`
	Qty        int             `json:"qty"`
	Price      decimal.Decimal `json:"price"`
}

// Compare reports which of the client's lines drifted from the current
// offers. A line whose offer vanished from the price list is echoed back
// without old/new values; a price change or an over-quantity yields a diff
// with the new terms. Unchanged lines produce nothing.
func (s *Service) Compare(ctx context.Context, userID int64, items []CompareItem) ([]domain.BasketDiff, error) {
	if len(items) == 0 {
		return []domain.BasketDiff{}, nil
	}
	priceListID, err := s.users.PriceListID(ctx, userID)
	if err != nil {
		return nil, err
	}
	keys := make([]domain.OfferKey, 0, len(items))
	for _, it := range items {
		keys = append(keys, domain.OfferKey{SkuID: it.SkuID, SupplierID: it.SupplierID})
	}
	snaps, err := s.offers.Snapshots(ctx, keys, priceListID)
	if err != nil {
		return nil, err
	}

	diffs := make([]domain.BasketDiff, 0)
	for _, it := range items {
		snap, ok := snaps[domain.OfferKey{SkuID: it.SkuID, SupplierID: it.SupplierID}]
		if !ok {
			// Fully unavailable: echo the item so the client can drop it.
			diffs = append(diffs, domain.BasketDiff{
				SkuID:      it.SkuID,
				SupplierID: it.SupplierID,
				Hash:       it.Hash,
				Qty:        it.Qty,
				Price:      it.Price,
			})
			continue
		}

		priceChanged := !snap.Price.Equal(it.Price)
		qtyOver := it.Qty > snap.Qty
		if !priceChanged && !qtyOver {
			continue
		}

		// Any drift reports all four old/new values so the client can
		// reconcile in one pass.
		oldPrice := it.Price
		newPrice := snap.Price
		oldQty := it.Qty
		newQty := snap.Qty
		if it.Qty < newQty {
			newQty = it.Qty
		}
		diffs = append(diffs, domain.BasketDiff{
			SkuID:      it.SkuID,
			SupplierID: it.SupplierID,
			Hash:       it.Hash,
			Qty:        it.Qty,
			Price:      it.Price,
			OldPrice:   &oldPrice,
			NewPrice:   &newPrice,
			OldQty:     &oldQty,
			NewQty:     &newQty,
		})
	}
	return diffs, nil
}
