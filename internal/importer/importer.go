// Package importer loads supplier price-list CSV exports into the local
// catalog: brands, parts, stock offers and price-list prices.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"rotazap-backend/internal/domain"
)

// CatalogWriter upserts the brand/part dictionary rows.
type CatalogWriter interface {
	EnsureBrand(ctx context.Context, name string) (int64, error)
	EnsureSku(ctx context.Context, brandID int64, article, name string) (int64, error)
}

// OfferWriter upserts stock offers and their price-list prices.
type OfferWriter interface {
	UpsertOffer(ctx context.Context, o domain.Offer) error
	UpsertPrice(ctx context.Context, priceListID int64, key domain.OfferKey, price decimal.Decimal) error
}

// CSVImporter reads supplier price-list exports and updates the catalog. The
// expected columns are supplier, brand, article, name, base_price, qty and
// optionally price_list and price.
type CSVImporter struct {
	reader  *csv.Reader
	catalog CatalogWriter
	offers  OfferWriter
}

func NewCSVImporter(r io.Reader, catalog CatalogWriter, offers OfferWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:  csvr,
		catalog: catalog,
		offers:  offers,
	}
}

type csvRow struct {
	Supplier  int64
	Brand     string
	Article   string
	Name      string
	BasePrice decimal.Decimal
	Qty       int
	PriceList int64
	Price     decimal.Decimal
	HasPrice  bool
}

// Run parses CSV rows and upserts the catalog entries they describe. It
// returns the number of imported offer rows.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	// Brand ids are stable within one file; avoid re-upserting per row.
	brandIDs := make(map[string]int64)

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if row == nil {
			continue
		}

		if err := i.save(ctx, row, brandIDs); err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow, brandIDs map[string]int64) error {
	brandID, ok := brandIDs[row.Brand]
	if !ok {
		var err error
		brandID, err = i.catalog.EnsureBrand(ctx, row.Brand)
		if err != nil {
			return fmt.Errorf("ensure brand %q: %w", row.Brand, err)
		}
		brandIDs[row.Brand] = brandID
	}

	skuID, err := i.catalog.EnsureSku(ctx, brandID, row.Article, row.Name)
	if err != nil {
		return fmt.Errorf("ensure sku %s %s: %w", row.Brand, row.Article, err)
	}

	key := domain.OfferKey{SkuID: skuID, SupplierID: row.Supplier}
	if err := i.offers.UpsertOffer(ctx, domain.Offer{
		SkuID:      skuID,
		SupplierID: row.Supplier,
		BasePrice:  row.BasePrice,
		Qty:        row.Qty,
	}); err != nil {
		return fmt.Errorf("upsert offer %s %s: %w", row.Brand, row.Article, err)
	}

	if row.HasPrice {
		if err := i.offers.UpsertPrice(ctx, row.PriceList, key, row.Price); err != nil {
			return fmt.Errorf("upsert price %s %s: %w", row.Brand, row.Article, err)
		}
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.ToLower(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	brand := pick(record, index, "brand")
	article := pick(record, index, "article")
	if brand == "" && article == "" {
		return nil, nil
	}
	if brand == "" || article == "" {
		return nil, fmt.Errorf("row needs both brand and article, got brand=%q article=%q", brand, article)
	}

	supplierStr := pick(record, index, "supplier")
	supplier, err := strconv.ParseInt(supplierStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad supplier id %q", supplierStr)
	}

	basePriceStr := pick(record, index, "base_price")
	basePrice, err := decimal.NewFromString(basePriceStr)
	if err != nil {
		return nil, fmt.Errorf("bad base_price %q", basePriceStr)
	}

	qtyStr := pick(record, index, "qty")
	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty < 0 {
		return nil, fmt.Errorf("bad qty %q", qtyStr)
	}

	row := &csvRow{
		Supplier:  supplier,
		Brand:     brand,
		Article:   article,
		Name:      pick(record, index, "name"),
		BasePrice: basePrice,
		Qty:       qty,
	}

	if priceStr := pick(record, index, "price"); priceStr != "" {
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("bad price %q", priceStr)
		}
		row.Price = price
		row.HasPrice = true
		row.PriceList = domain.DefaultPriceListID
		if plStr := pick(record, index, "price_list"); plStr != "" {
			pl, err := strconv.ParseInt(plStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad price_list %q", plStr)
			}
			row.PriceList = pl
		}
	}

	return row, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
