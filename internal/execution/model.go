package execution

import (
	"math"

	"alphasim/internal/domain"
)

// Model turns a strategy signal into a simulated fill. A nil trade
// means the signal produced nothing; insufficient funds or shares are
// never an error, they clip the quantity instead.
type Model interface {
	ExecuteSignal(signal domain.Signal, bar domain.MarketData, portfolio *domain.Portfolio) *domain.Trade
	// CalculateSlippage returns the per-unit price slippage for an
	// order of the given size against the given bar.
	CalculateSlippage(quantity float64, bar domain.MarketData) float64
	CalculateCommission(quantity, price float64) float64
}

// BarObserver is implemented by models that track trailing bar state
// (volume, volatility). The engine feeds every processed bar through
// it, signal or not.
type BarObserver interface {
	ObserveBar(bar domain.MarketData)
}

// referencePrice is the signal's limit price when set, the bar close
// otherwise.
func referencePrice(signal domain.Signal, bar domain.MarketData) float64 {
	if signal.Price > 0 {
		return signal.Price
	}
	return bar.Close
}

// resolveQuantity sizes an under-specified signal: explicit quantity
// wins, then targetWeight against total portfolio value, then the
// default of 10% of available cash for buys or the full held quantity
// for sells.
func resolveQuantity(signal domain.Signal, price float64, portfolio *domain.Portfolio) float64 {
	if signal.Quantity > 0 {
		return signal.Quantity
	}
	if signal.TargetWeight > 0 {
		return signal.TargetWeight * portfolio.TotalValue / price
	}
	if signal.Action == domain.SignalAction_Buy {
		return 0.10 * portfolio.Cash / price
	}
	if position, ok := portfolio.Positions[signal.Symbol]; ok {
		return position.Quantity
	}
	return 0
}

// clipBuyQuantity finds the largest affordable integer quantity given
// commission and per-unit slippage. Returns 0 when nothing is
// affordable.
func clipBuyQuantity(cash, price, perUnitSlippage float64, commission func(quantity, price float64) float64) float64 {
	if price+perUnitSlippage <= 0 {
		return 0
	}
	quantity := math.Floor(cash / (price + perUnitSlippage))
	for quantity > 0 {
		cost := quantity*(price+perUnitSlippage) + commission(quantity, price)
		if cost <= cash {
			break
		}
		quantity--
	}
	return math.Max(0, quantity)
}

// clipSellQuantity clips a sell to the held amount; 0 when nothing is
// held.
func clipSellQuantity(quantity float64, signal domain.Signal, portfolio *domain.Portfolio) float64 {
	position, ok := portfolio.Positions[signal.Symbol]
	if !ok {
		return 0
	}
	return math.Min(quantity, position.Quantity)
}
