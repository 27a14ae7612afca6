package strategy

import (
	"alphasim/internal/domain"
)

// Strategy turns market bars into trade intents. Implementations read
// the portfolio but never mutate it; all intent flows through the
// returned signals, produced fresh each bar.
type Strategy interface {
	ID() string
	OnBar(bar domain.MarketData, portfolio *domain.Portfolio) ([]domain.Signal, error)
}

// Initializer is an optional hook called once before a run starts.
type Initializer interface {
	Initialize(symbols []string)
}

// TradeObserver is an optional hook called synchronously after each
// fill is applied to the portfolio.
type TradeObserver interface {
	OnTrade(trade domain.Trade, portfolio *domain.Portfolio)
}

// Finalizer is an optional hook called once after the replay loop ends.
type Finalizer interface {
	Finalize(portfolio *domain.Portfolio)
}
