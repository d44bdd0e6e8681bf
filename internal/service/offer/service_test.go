package offer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"rotazap-backend/internal/catalogapi"
	"rotazap-backend/internal/domain"
	skurepo "rotazap-backend/internal/repository/sku"
)

type stubOfferRepo struct {
	offers []domain.Offer
	prices map[domain.OfferKey]decimal.Decimal
}

func (s *stubOfferRepo) OffersBySkuIDs(_ context.Context, _ []int64) ([]domain.Offer, error) {
	return s.offers, nil
}

func (s *stubOfferRepo) PricesBySkuIDs(_ context.Context, _ []int64, _ int64) (map[domain.OfferKey]decimal.Decimal, error) {
	return s.prices, nil
}

func (s *stubOfferRepo) Snapshots(_ context.Context, _ []domain.OfferKey, _ int64) (map[domain.OfferKey]domain.OfferSnapshot, error) {
	return nil, nil
}

type stubSkuRepo struct {
	briefs []skurepo.Brief
	refs   []domain.CrossRef
}

func (s *stubSkuRepo) FindByCrossRefs(_ context.Context, refs []domain.CrossRef) ([]skurepo.Brief, error) {
	s.refs = refs
	return s.briefs, nil
}

type stubUserRepo struct {
	priceList int64
}

func (s *stubUserRepo) PriceListID(_ context.Context, _ int64) (int64, error) {
	return s.priceList, nil
}

type stubCatalog struct {
	info catalogapi.ArticleInfoResponse
	err  error
}

func (s *stubCatalog) ArticleInfo(_ context.Context, _, _ string) (catalogapi.ArticleInfoResponse, error) {
	return s.info, s.err
}

func (s *stubCatalog) SearchBrands(_ context.Context, _ string) ([]catalogapi.BrandSuggestion, error) {
	return nil, nil
}

func (s *stubCatalog) SearchTips(_ context.Context, _ string) ([]catalogapi.Tip, error) {
	return nil, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intp(v int) *int { return &v }

func TestArticleInfoGroupsAndSorts(t *testing.T) {
	offers := &stubOfferRepo{
		offers: []domain.Offer{
			{SkuID: 1, SupplierID: 2, BasePrice: dec("390"), Qty: 40, DeliveryDays: intp(3)},
			{SkuID: 1, SupplierID: domain.InHouseSupplierID, BasePrice: dec("420"), Qty: 12},
			{SkuID: 2, SupplierID: 5, BasePrice: dec("350"), Qty: 25, DeliveryDays: intp(7)},
			{SkuID: 1, SupplierID: 9, BasePrice: dec("100"), Qty: 0},  // out of stock
			{SkuID: 2, SupplierID: 11, BasePrice: dec("90"), Qty: 8}, // no price row
		},
		prices: map[domain.OfferKey]decimal.Decimal{
			{SkuID: 1, SupplierID: 2}:                         dec("530"),
			{SkuID: 1, SupplierID: domain.InHouseSupplierID}: dec("560"),
			{SkuID: 2, SupplierID: 5}:                         dec("495"),
		},
	}
	skus := &stubSkuRepo{briefs: []skurepo.Brief{
		{ID: 1, Article: "0986452041", Brand: "Bosch", Name: "Oil filter"},
		{ID: 2, Article: "W6018", Brand: "Mann", Name: "Oil filter Mann"},
	}}
	catalog := &stubCatalog{info: catalogapi.ArticleInfoResponse{
		Brand:  "Bosch",
		Number: "0986452041",
		Descr:  "Oil filter",
		Crosses: []catalogapi.CrossItem{
			{Brand: "Mann", Number: "W6018", Reliable: true},
		},
	}}

	svc := New(offers, skus, &stubUserRepo{priceList: 1}, catalog)
	info, err := svc.ArticleInfo(context.Background(), 7, "Bosch", "0986452041")
	if err != nil {
		t.Fatalf("ArticleInfo: %v", err)
	}

	if len(info.LocalOffers) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(info.LocalOffers))
	}
	req := info.LocalOffers[0]
	if req.GroupName != RequestedGroup || len(req.Items) != 1 {
		t.Fatalf("unexpected requested section: %+v", req)
	}
	got := req.Items[0].Offers
	if len(got) != 2 {
		t.Fatalf("expected 2 visible offers for requested article, got %d", len(got))
	}
	// In-house first even though it is more expensive.
	if got[0].SupplierID != domain.InHouseSupplierID {
		t.Errorf("in-house offer must sort first, got supplier %d", got[0].SupplierID)
	}
	if got[1].SupplierID != 2 {
		t.Errorf("expected supplier 2 second, got %d", got[1].SupplierID)
	}

	analogs := info.LocalOffers[1]
	if analogs.GroupName != AnalogsGroup || len(analogs.Items) != 1 {
		t.Fatalf("unexpected analogs section: %+v", analogs)
	}
	if analogs.Items[0].Brand != "Mann" || len(analogs.Items[0].Offers) != 1 {
		t.Fatalf("unexpected analog group: %+v", analogs.Items[0])
	}
}

func TestArticleInfoUnknownUpstreamArticle(t *testing.T) {
	svc := New(&stubOfferRepo{}, &stubSkuRepo{}, &stubUserRepo{priceList: 1}, &stubCatalog{})
	info, err := svc.ArticleInfo(context.Background(), 0, "Bosch", "nope")
	if err != nil {
		t.Fatalf("ArticleInfo: %v", err)
	}
	if len(info.LocalOffers) != 0 || len(info.Crosses) != 0 {
		t.Fatalf("expected empty card, got %+v", info)
	}
	if info.Brand != "Bosch" || info.Number != "nope" {
		t.Errorf("requested identity must be echoed back, got %+v", info)
	}
}

func TestFindInPriceList(t *testing.T) {
	offers := &stubOfferRepo{
		offers: []domain.Offer{
			{SkuID: 1, SupplierID: domain.InHouseSupplierID, BasePrice: dec("420"), Qty: 12},
			{SkuID: 1, SupplierID: 2, BasePrice: dec("390"), Qty: 40, DeliveryDays: intp(3)},
			{SkuID: 1, SupplierID: 9, BasePrice: dec("100"), Qty: 4}, // no price row
		},
		prices: map[domain.OfferKey]decimal.Decimal{
			{SkuID: 1, SupplierID: domain.InHouseSupplierID}: dec("560"),
			{SkuID: 1, SupplierID: 2}:                        dec("530"),
		},
	}
	skus := &stubSkuRepo{briefs: []skurepo.Brief{
		{ID: 1, Article: "0986452041", Brand: "Bosch", Name: "Oil filter"},
	}}

	svc := New(offers, skus, &stubUserRepo{priceList: 1}, &stubCatalog{})
	groups, err := svc.FindInPriceList(context.Background(), 7, "Bosch", "0986452041")
	if err != nil {
		t.Fatalf("FindInPriceList: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	got := groups[0].Offers
	if len(got) != 2 {
		t.Fatalf("expected 2 visible offers, got %d", len(got))
	}
	if got[0].SupplierID != domain.InHouseSupplierID || got[1].SupplierID != 2 {
		t.Errorf("unexpected offer order: %+v", got)
	}

	svc = New(offers, &stubSkuRepo{}, &stubUserRepo{priceList: 1}, &stubCatalog{})
	groups, err = svc.FindInPriceList(context.Background(), 7, "Bosch", "unknown")
	if err != nil {
		t.Fatalf("FindInPriceList: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("expected no groups for unknown article, got %+v", groups)
	}
}

func TestPriceListForAnonymous(t *testing.T) {
	svc := New(&stubOfferRepo{}, &stubSkuRepo{}, &stubUserRepo{priceList: 5}, &stubCatalog{})

	id, err := svc.PriceListFor(context.Background(), 0)
	if err != nil {
		t.Fatalf("PriceListFor: %v", err)
	}
	if id != domain.DefaultPriceListID {
		t.Errorf("anonymous price list = %d, want default", id)
	}

	id, err = svc.PriceListFor(context.Background(), 42)
	if err != nil {
		t.Fatalf("PriceListFor: %v", err)
	}
	if id != 5 {
		t.Errorf("user price list = %d, want 5", id)
	}
}
