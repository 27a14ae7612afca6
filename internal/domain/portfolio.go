package domain

import (
	"sort"
)

// Position is one long-only holding. Quantity never goes negative; the
// engine removes a position from the portfolio the instant quantity
// reaches exactly zero.
type Position struct {
	Symbol        string
	Quantity      float64
	AveragePrice  float64
	MarketValue   float64
	UnrealizedPnL float64
	RealizedPnL   float64
}

func (p Position) DeepCopy() *Position {
	out := p
	return &out
}

// Portfolio is the engine's ledger: cash, open positions keyed by symbol
// and the full ordered trade log. Mutated only inside the engine's
// trade-application step.
type Portfolio struct {
	Cash      float64
	Positions map[string]*Position
	// TotalValue == Cash + sum of position market values, refreshed on
	// every valuation step
	TotalValue float64
	TotalPnL   float64
	Trades     []Trade
}

func NewPortfolio(initialCapital float64) *Portfolio {
	return &Portfolio{
		Cash:       initialCapital,
		Positions:  map[string]*Position{},
		TotalValue: initialCapital,
		Trades:     []Trade{},
	}
}

// Reset reinitializes the portfolio to its pristine state so an engine
// can be re-run without reallocating it.
func (p *Portfolio) Reset(initialCapital float64) {
	p.Cash = initialCapital
	p.Positions = map[string]*Position{}
	p.TotalValue = initialCapital
	p.TotalPnL = 0
	p.Trades = []Trade{}
}

func (p Portfolio) HeldSymbols() []string {
	symbols := []string{}
	for symbol := range p.Positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func (p Portfolio) DeepCopy() *Portfolio {
	newPortfolio := &Portfolio{
		Cash:       p.Cash,
		Positions:  map[string]*Position{},
		TotalValue: p.TotalValue,
		TotalPnL:   p.TotalPnL,
		Trades:     make([]Trade, len(p.Trades)),
	}
	for symbol, position := range p.Positions {
		newPortfolio.Positions[symbol] = position.DeepCopy()
	}
	copy(newPortfolio.Trades, p.Trades)

	return newPortfolio
}

// SortedPositions returns position copies ordered by symbol so snapshot
// diffs are stable across runs.
func (p Portfolio) SortedPositions() []Position {
	out := make([]Position, 0, len(p.Positions))
	for _, symbol := range p.HeldSymbols() {
		out = append(out, *p.Positions[symbol])
	}
	return out
}
