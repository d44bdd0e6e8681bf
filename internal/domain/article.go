package domain

import "github.com/shopspring/decimal"

// CrossRef is one cross-reference analog of an article as reported by the
// upstream catalog.
type CrossRef struct {
	Brand     string `json:"brand"`
	Number    string `json:"number"`
	NumberFix string `json:"numberFix,omitempty"`
	CrossType int    `json:"crossType,omitempty"`
	Reliable  bool   `json:"reliable,omitempty"`
}

// LocalOffer is one locally stocked, price-list-visible offer attached to an
// article lookup.
type LocalOffer struct {
	SkuID        int64           `json:"skuId"`
	SupplierID   int64           `json:"supplierId"`
	Price        decimal.Decimal `json:"price"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	Qty          int             `json:"qty"`
	Hash         string          `json:"hash"`
	DeliveryDays int             `json:"deliveryDays"`
}

// LocalOfferGroup collects the offers of a single brand+article.
type LocalOfferGroup struct {
	Brand  string       `json:"brand"`
	Number string       `json:"number"`
	Offers []LocalOffer `json:"offers"`
}

// OfferSection splits local offers into the requested article itself versus
// its cross-reference analogs.
type OfferSection struct {
	GroupName string            `json:"groupName"`
	Items     []LocalOfferGroup `json:"items"`
}

// ArticleInfo merges upstream catalog data with the locally resolved offers
// for one requested article.
type ArticleInfo struct {
	Brand       string            `json:"brand"`
	Number      string            `json:"number"`
	Descr       string            `json:"descr"`
	Properties  map[string]string `json:"properties,omitempty"`
	Images      []string          `json:"images"`
	Crosses     []CrossRef        `json:"crosses"`
	LocalOffers []OfferSection    `json:"localOffers"`
}
