package execution

import (
	"math"

	"github.com/google/uuid"

	"alphasim/internal/domain"
)

// Compile-time interface check.
var _ Model = (*Realistic)(nil)

const (
	minCommission      = 1.0
	defaultPerShareFee = 0.005
	impactCoefficient  = 0.001
	// the order is assumed to trade against roughly 1% of the bar's
	// volume
	participationFraction = 0.01
	openCloseMultiplier   = 1.5
)

// Realistic prices fills with spread- and volatility-scaled slippage,
// a square-root market impact against the bar's volume, and a
// fixed-minimum commission schedule.
type Realistic struct {
	commissionRate float64
	slippageRate   float64
	perShareFee    float64
}

func NewRealistic(commissionRate, slippageRate float64) *Realistic {
	return &Realistic{
		commissionRate: commissionRate,
		slippageRate:   slippageRate,
		perShareFee:    defaultPerShareFee,
	}
}

func (m *Realistic) ExecuteSignal(signal domain.Signal, bar domain.MarketData, portfolio *domain.Portfolio) *domain.Trade {
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

// CalculateSlippage scales the base rate by the bar's spread and
// intrabar volatility, widens it during the first and last trading
// hours, and adds square-root market impact on top.
func (m *Realistic) CalculateSlippage(quantity float64, bar domain.MarketData) float64 {
	base := m.slippageRate * bar.Close

	spreadFraction := 0.0
	if bar.Close > 0 {
		spreadFraction = (bar.High - bar.Low) / bar.Close
	}
	volatilityProxy := 0.0
	if bar.Open > 0 {
		volatilityProxy = math.Abs(bar.Close-bar.Open) / bar.Open
	}

	slippage := base * (1 + 10*spreadFraction + 5*volatilityProxy)
	if isOpenOrCloseHour(bar) {
		slippage *= openCloseMultiplier
	}

	if bar.Volume > 0 && quantity > 0 {
		volumeRatio := quantity / (participationFraction * bar.Volume)
		slippage += bar.Close * impactCoefficient * math.Sqrt(volumeRatio)
	}

	return slippage
}

// CalculateCommission is max(fixed minimum, min(percentage of
// notional, per-share fee)).
func (m *Realistic) CalculateCommission(quantity, price float64) float64 {
	notional := quantity * price
	variable := math.Min(m.commissionRate*notional, m.perShareFee*quantity)
	return math.Max(minCommission, variable)
}

// isOpenOrCloseHour reports whether the bar falls inside 9:30-10:30 or
// 15:00-16:00. Daily bars stamped at midnight match neither.
func isOpenOrCloseHour(bar domain.MarketData) bool {
	minutes := bar.Timestamp.Hour()*60 + bar.Timestamp.Minute()
	firstHour := minutes >= 9*60+30 && minutes < 10*60+30
	lastHour := minutes >= 15*60 && minutes < 16*60
	return firstHour || lastHour
}
