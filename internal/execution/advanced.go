package execution

import (
	"math"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"alphasim/internal/domain"
)

// Compile-time interface check.
var _ Model = (*Advanced)(nil)
var _ BarObserver = (*Advanced)(nil)

const (
	// hard cap on order size relative to trailing average volume
	maxVolumeFraction = 0.10
	// orders over this fraction of trailing average volume get sliced
	twapThresholdFraction = 0.05
	defaultTrailingWindow = 20
)

type trailingState struct {
	volumes []float64
	closes  []float64
}

// Advanced caps order size against trailing average volume, executes
// only the first TWAP slice of oversized orders, and scales slippage
// with trailing historical volatility and the square root of the
// volume ratio.
//
// The remaining TWAP slices are a known simplification: only the first
// slice ever fills.
type Advanced struct {
	commissionRate float64
	slippageRate   float64
	perShareFee    float64
	window         int
	trailing       map[string]*trailingState
}

func NewAdvanced(commissionRate, slippageRate float64) *Advanced {
	return &Advanced{
		commissionRate: commissionRate,
		slippageRate:   slippageRate,
		perShareFee:    defaultPerShareFee,
		window:         defaultTrailingWindow,
		trailing:       map[string]*trailingState{},
	}
}

// ObserveBar folds one bar into the symbol's trailing volume and close
// series.
func (m *Advanced) ObserveBar(bar domain.MarketData) {
	st, ok := m.trailing[bar.Symbol]
	if !ok {
		st = &trailingState{}
		m.trailing[bar.Symbol] = st
	}
	st.volumes = append(st.volumes, bar.Volume)
	if len(st.volumes) > m.window {
		st.volumes = st.volumes[len(st.volumes)-m.window:]
	}
	st.closes = append(st.closes, bar.Close)
	if len(st.closes) > m.window+1 {
		st.closes = st.closes[len(st.closes)-m.window-1:]
	}
}

func (m *Advanced) ExecuteSignal(signal domain.Signal, bar domain.MarketData, portfolio *domain.Portfolio) *domain.Trade {
	if signal.Action == domain.SignalAction_Hold {
		return nil
	}

	price := referencePrice(signal, bar)
	if price <= 0 {
		return nil
	}
	quantity := resolveQuantity(signal, price, portfolio)
	if quantity <= 0 {
		return nil
	}

	avgVolume := m.trailingAverageVolume(bar.Symbol)
	if avgVolume > 0 {
		if sizeCap := maxVolumeFraction * avgVolume; quantity > sizeCap {
			quantity = sizeCap
		}
		if threshold := twapThresholdFraction * avgVolume; quantity > threshold {
			slices := math.Ceil(quantity / threshold)
			quantity = quantity / slices
		}
	}

	perUnitSlippage := m.CalculateSlippage(quantity, bar)

	var side domain.TradeSide
	switch signal.Action {
	case domain.SignalAction_Buy:
		side = domain.TradeSide_Buy
		cost := quantity*(price+perUnitSlippage) + m.CalculateCommission(quantity, price)
		if cost > portfolio.Cash {
			quantity = clipBuyQuantity(portfolio.Cash, price, perUnitSlippage, m.CalculateCommission)
		}
	case domain.SignalAction_Sell:
		side = domain.TradeSide_Sell
		quantity = clipSellQuantity(quantity, signal, portfolio)
	}
	if quantity <= 0 {
		return nil
	}

	return &domain.Trade{
		ID:         uuid.New(),
		Timestamp:  bar.Timestamp,
		Symbol:     signal.Symbol,
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		Commission: m.CalculateCommission(quantity, price),
		Slippage:   perUnitSlippage * quantity,
		StrategyID: signal.StrategyID,
	}
}

// CalculateSlippage scales the base rate by trailing annualized
// volatility and the square root of the order's volume ratio.
func (m *Advanced) CalculateSlippage(quantity float64, bar domain.MarketData) float64 {
	base := m.slippageRate * bar.Close

	volatility := m.trailingVolatility(bar.Symbol)
	scaled := base * (1 + volatility)

	avgVolume := m.trailingAverageVolume(bar.Symbol)
	if avgVolume > 0 && quantity > 0 {
		scaled *= math.Sqrt(quantity / avgVolume)
	}

	return scaled
}

func (m *Advanced) CalculateCommission(quantity, price float64) float64 {
	notional := quantity * price
	variable := math.Min(m.commissionRate*notional, m.perShareFee*quantity)
	return math.Max(minCommission, variable)
}

func (m *Advanced) trailingAverageVolume(symbol string) float64 {
	st, ok := m.trailing[symbol]
	if !ok || len(st.volumes) == 0 {
		return 0
	}
	avg, err := stats.Mean(st.volumes)
	if err != nil {
		return 0
	}
	return avg
}

// trailingVolatility is the annualized sample stdev of log returns
// over the trailing close window.
func (m *Advanced) trailingVolatility(symbol string) float64 {
	st, ok := m.trailing[symbol]
	if !ok || len(st.closes) < 3 {
		return 0
	}

	logReturns := make([]float64, 0, len(st.closes)-1)
	for i := 1; i < len(st.closes); i++ {
		if st.closes[i-1] <= 0 || st.closes[i] <= 0 {
			continue
		}
		logReturns = append(logReturns, math.Log(st.closes[i]/st.closes[i-1]))
	}
	if len(logReturns) < 2 {
		return 0
	}

	stdev, err := stats.StandardDeviationSample(logReturns)
	if err != nil {
		return 0
	}
	return stdev * math.Sqrt(252)
}
