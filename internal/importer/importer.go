package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"cartbuilder/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads a product catalog CSV and upserts each row into a store.
// Required columns are sku, name, price and currency; id is optional.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	storeID     string
	logger      *zap.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, storeID string, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		storeID:     storeID,
		logger:      logger,
	}
}

var requiredColumns = []string{"sku", "name", "price", "currency"}

// Run upserts every non-blank row and returns how many products were written.
// It stops at the first invalid row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		p, err := i.parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if p == nil {
			continue
		}
		saved, err := i.productRepo.Upsert(ctx, *p)
		if err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.SKU, err)
		}
		i.logger.Debug("imported product", zap.String("sku", saved.SKU), zap.String("id", saved.ID))
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) parseRow(record []string, index map[string]int) (*domain.Product, error) {
	sku := pick(record, index, "sku")
	name := pick(record, index, "name")
	price := pick(record, index, "price")
	currency := strings.ToUpper(pick(record, index, "currency"))
	if sku == "" && name == "" && price == "" && currency == "" {
		return nil, nil
	}
	if sku == "" || name == "" || price == "" || currency == "" {
		return nil, fmt.Errorf("sku, name, price and currency are required (sku %q)", sku)
	}

	amount, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q for sku %q", price, sku)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("negative price %q for sku %q", price, sku)
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, fmt.Errorf("price %q for sku %q has more than two decimals", price, sku)
	}

	return &domain.Product{
		ID:         pick(record, index, "id"),
		StoreID:    i.storeID,
		SKU:        sku,
		Name:       name,
		PriceCents: amount.Shift(2).IntPart(),
		Currency:   currency,
	}, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
