package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"alphasim/internal/domain"
)

// IntraPeriodChange converts a benchmark price series to cumulative
// percent change from its first observation, one point per price, in
// date order.
func IntraPeriodChange(prices []domain.AssetPrice) []float64 {
	if len(prices) == 0 {
		return []float64{}
	}

	sorted := make([]domain.AssetPrice, len(prices))
	copy(sorted, prices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	base := sorted[0].Price
	out := make([]float64, 0, len(sorted))
	if base.IsZero() {
		for range sorted {
			out = append(out, 0)
		}
		return out
	}

	hundred := decimal.NewFromInt(100)
	for _, p := range sorted {
		change := p.Price.Sub(base).Div(base).Mul(hundred)
		out = append(out, change.InexactFloat64())
	}
	return out
}
