package loader

import (
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"alphasim/internal/domain"
)

// BarsFromYahoo pulls daily bars for a symbol over [start, end] from
// Yahoo Finance.
func BarsFromYahoo(symbol string, start, end time.Time) ([]domain.MarketData, error) {
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	bars := []domain.MarketData{}
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, domain.MarketData{
			Timestamp: time.Unix(int64(b.Timestamp), 0).UTC(),
			Symbol:    symbol,
			Open:      b.Open.InexactFloat64(),
			High:      b.High.InexactFloat64(),
			Low:       b.Low.InexactFloat64(),
			Close:     b.Close.InexactFloat64(),
			Volume:    float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get bars for %s: %w", symbol, err)
	}

	return bars, nil
}
