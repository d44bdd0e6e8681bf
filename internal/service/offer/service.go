// Package offer resolves price-list-visible offers and merges them with the
// upstream catalog data for article lookups.
package offer

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"rotazap-backend/internal/catalogapi"
	"rotazap-backend/internal/domain"
	skurepo "rotazap-backend/internal/repository/sku"
)

// RequestedGroup and AnalogsGroup name the two sections of an article lookup.
const (
	RequestedGroup = "requested article"
	AnalogsGroup   = "analogs"
)

type offerRepo interface {
	OffersBySkuIDs(ctx context.Context, skuIDs []int64) ([]domain.Offer, error)
	PricesBySkuIDs(ctx context.Context, skuIDs []int64, priceListID int64) (map[domain.OfferKey]decimal.Decimal, error)
	Snapshots(ctx context.Context, keys []domain.OfferKey, priceListID int64) (map[domain.OfferKey]domain.OfferSnapshot, error)
}

type skuRepo interface {
	FindByCrossRefs(ctx context.Context, refs []domain.CrossRef) ([]skurepo.Brief, error)
}

type userRepo interface {
	PriceListID(ctx context.Context, userID int64) (int64, error)
}

type catalogClient interface {
	ArticleInfo(ctx context.Context, brand, number string) (catalogapi.ArticleInfoResponse, error)
	SearchBrands(ctx context.Context, number string) ([]catalogapi.BrandSuggestion, error)
	SearchTips(ctx context.Context, query string) ([]catalogapi.Tip, error)
}

type Service struct {
	offers  offerRepo
	skus    skuRepo
	users   userRepo
	catalog catalogClient
}

func New(offers offerRepo, skus skuRepo, users userRepo, catalog catalogClient) *Service {
	return &Service{offers: offers, skus: skus, users: users, catalog: catalog}
}

// PriceListFor resolves the price list an article lookup should be scoped to.
// Anonymous lookups (userID 0) see the default list.
func (s *Service) PriceListFor(ctx context.Context, userID int64) (int64, error) {
	if userID == 0 {
		return domain.DefaultPriceListID, nil
	}
	return s.users.PriceListID(ctx, userID)
}

// Snapshots resolves the price-list-visible snapshots of the given keys.
func (s *Service) Snapshots(ctx context.Context, keys []domain.OfferKey, priceListID int64) (map[domain.OfferKey]domain.OfferSnapshot, error) {
	return s.offers.Snapshots(ctx, keys, priceListID)
}

// FindInPriceList resolves locally stocked offers for one brand+number in the
// caller's price list, without consulting the upstream catalog. Offers with no
// stock or no price there are hidden.
func (s *Service) FindInPriceList(ctx context.Context, userID int64, brand, number string) ([]domain.LocalOfferGroup, error) {
	briefs, err := s.skus.FindByCrossRefs(ctx, []domain.CrossRef{{Brand: brand, Number: number}})
	if err != nil {
		return nil, err
	}
	if len(briefs) == 0 {
		return []domain.LocalOfferGroup{}, nil
	}

	priceListID, err := s.PriceListFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	skuIDs := make([]int64, 0, len(briefs))
	for _, b := range briefs {
		skuIDs = append(skuIDs, b.ID)
	}
	offers, err := s.offers.OffersBySkuIDs(ctx, skuIDs)
	if err != nil {
		return nil, err
	}
	prices, err := s.offers.PricesBySkuIDs(ctx, skuIDs, priceListID)
	if err != nil {
		return nil, err
	}

	groups := make([]domain.LocalOfferGroup, 0, len(briefs))
	for _, section := range buildSections(number, "", briefs, offers, prices) {
		groups = append(groups, section.Items...)
	}
	return groups, nil
}

// SearchBrands proxies the upstream brand lookup for an article number.
func (s *Service) SearchBrands(ctx context.Context, number string) ([]catalogapi.BrandSuggestion, error) {
	return s.catalog.SearchBrands(ctx, number)
}

// SearchTips proxies the upstream typeahead suggestions.
func (s *Service) SearchTips(ctx context.Context, query string) ([]catalogapi.Tip, error) {
	return s.catalog.SearchTips(ctx, query)
}

// ArticleInfo fetches the upstream article card and attaches the locally
// stocked offers, split into the requested article itself and its analogs.
// Offers with no stock or no price in the user's price list are hidden.
func (s *Service) ArticleInfo(ctx context.Context, userID int64, brand, number string) (*domain.ArticleInfo, error) {
	upstream, err := s.catalog.ArticleInfo(ctx, brand, number)
	if err != nil {
		return nil, err
	}

	info := &domain.ArticleInfo{
		Brand:       brand,
		Number:      number,
		Descr:       upstream.Descr,
		Properties:  upstream.Properties,
		Images:      upstream.ImageURLs(),
		Crosses:     make([]domain.CrossRef, 0, len(upstream.Crosses)),
		LocalOffers: []domain.OfferSection{},
	}
	if upstream.Brand != "" {
		info.Brand = upstream.Brand
	}
	for _, c := range upstream.Crosses {
		info.Crosses = append(info.Crosses, domain.CrossRef{
			Brand:     c.Brand,
			Number:    c.Number,
			NumberFix: c.NumberFix,
			CrossType: c.CrossType,
			Reliable:  c.Reliable,
		})
	}

	// Local stock is looked up for the requested article plus every cross
	// reference the upstream reports.
	refs := make([]domain.CrossRef, 0, len(info.Crosses)+1)
	refs = append(refs, domain.CrossRef{Brand: info.Brand, Number: number})
	if upstream.NumberFix != "" && upstream.NumberFix != number {
		refs = append(refs, domain.CrossRef{Brand: info.Brand, Number: upstream.NumberFix})
	}
	refs = append(refs, info.Crosses...)

	briefs, err := s.skus.FindByCrossRefs(ctx, refs)
	if err != nil {
		return nil, err
	}
	if len(briefs) == 0 {
		return info, nil
	}

	priceListID, err := s.PriceListFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	skuIDs := make([]int64, 0, len(briefs))
	for _, b := range briefs {
		skuIDs = append(skuIDs, b.ID)
	}
	offers, err := s.offers.OffersBySkuIDs(ctx, skuIDs)
	if err != nil {
		return nil, err
	}
	prices, err := s.offers.PricesBySkuIDs(ctx, skuIDs, priceListID)
	if err != nil {
		return nil, err
	}

	info.LocalOffers = buildSections(number, upstream.NumberFix, briefs, offers, prices)
	return info, nil
}

// isRequested reports whether a local part is the requested article itself
// rather than an analog.
func isRequested(b skurepo.Brief, number, numberFix string) bool {
	if strings.EqualFold(b.Article, number) {
		return true
	}
	return numberFix != "" && strings.EqualFold(b.Article, numberFix)
}

func buildSections(number, numberFix string, briefs []skurepo.Brief, offers []domain.Offer, prices map[domain.OfferKey]decimal.Decimal) []domain.OfferSection {
	bySku := make(map[int64][]domain.LocalOffer)
	for _, o := range offers {
		if o.Qty <= 0 {
			continue
		}
		price, priced := prices[domain.OfferKey{SkuID: o.SkuID, SupplierID: o.SupplierID}]
		if !priced {
			continue
		}
		days := 0
		if o.DeliveryDays != nil {
			days = *o.DeliveryDays
		}
		bySku[o.SkuID] = append(bySku[o.SkuID], domain.LocalOffer{
			SkuID:        o.SkuID,
			SupplierID:   o.SupplierID,
			Price:        price,
			BasePrice:    o.BasePrice,
			Qty:          o.Qty,
			Hash:         domain.ContentHash(o.SkuID, o.SupplierID, o.BasePrice, price, o.Qty, days),
			DeliveryDays: days,
		})
	}

	var requested []domain.LocalOfferGroup
	var analogs []domain.LocalOfferGroup
	for _, b := range briefs {
		group := domain.LocalOfferGroup{Brand: b.Brand, Number: b.Article, Offers: bySku[b.ID]}
		if len(group.Offers) == 0 {
			continue
		}
		sortOffers(group.Offers)
		if isRequested(b, number, numberFix) {
			requested = append(requested, group)
		} else {
			analogs = append(analogs, group)
		}
	}

	sections := make([]domain.OfferSection, 0, 2)
	if len(requested) > 0 {
		sections = append(sections, domain.OfferSection{GroupName: RequestedGroup, Items: requested})
	}
	if len(analogs) > 0 {
		sections = append(sections, domain.OfferSection{GroupName: AnalogsGroup, Items: analogs})
	}
	return sections
}

// sortOffers puts the in-house warehouse first, then cheapest first.
func sortOffers(offers []domain.LocalOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		a, b := offers[i], offers[j]
		if (a.SupplierID == domain.InHouseSupplierID) != (b.SupplierID == domain.InHouseSupplierID) {
			return a.SupplierID == domain.InHouseSupplierID
		}
		return a.Price.LessThan(b.Price)
	})
}
