package loader

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"alphasim/internal/domain"
)

type csvBar struct {
	Date   string          `csv:"date"`
	Symbol string          `csv:"symbol"`
	Open   decimal.Decimal `csv:"open"`
	High   decimal.Decimal `csv:"high"`
	Low    decimal.Decimal `csv:"low"`
	Close  decimal.Decimal `csv:"close"`
	Volume float64         `csv:"volume"`
}

var csvDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// BarsFromCSV reads OHLCV rows from a csv file. Rows without a symbol
// column fall back to defaultSymbol.
func BarsFromCSV(path, defaultSymbol string) ([]domain.MarketData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	rows := []*csvBar{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	bars := make([]domain.MarketData, 0, len(rows))
	for i, row := range rows {
		ts, err := parseCSVDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		symbol := row.Symbol
		if symbol == "" {
			symbol = defaultSymbol
		}
		bars = append(bars, domain.MarketData{
			Timestamp: ts,
			Symbol:    symbol,
			Open:      row.Open.InexactFloat64(),
			High:      row.High.InexactFloat64(),
			Low:       row.Low.InexactFloat64(),
			Close:     row.Close.InexactFloat64(),
			Volume:    row.Volume,
		})
	}
	return bars, nil
}

func parseCSVDate(raw string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}
