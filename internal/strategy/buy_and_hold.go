package strategy

import (
	"alphasim/internal/domain"
)

// Compile-time interface check.
var _ Strategy = (*BuyAndHold)(nil)
var _ Initializer = (*BuyAndHold)(nil)

// BuyAndHold emits a single buy per symbol the first time it sees the
// symbol without an open position, then never trades again.
type BuyAndHold struct {
	id       string
	signaled map[string]bool
}

func NewBuyAndHold() *BuyAndHold {
	return &BuyAndHold{
		id:       "buy-and-hold",
		signaled: map[string]bool{},
	}
}

func (s *BuyAndHold) ID() string {
	return s.id
}

func (s *BuyAndHold) Initialize(symbols []string) {
	s.signaled = map[string]bool{}
}

func (s *BuyAndHold) OnBar(bar domain.MarketData, portfolio *domain.Portfolio) ([]domain.Signal, error) {
	if s.signaled[bar.Symbol] {
		return nil, nil
	}
	if _, held := portfolio.Positions[bar.Symbol]; held {
		return nil, nil
	}

	s.signaled[bar.Symbol] = true
	return []domain.Signal{{
		Symbol:       bar.Symbol,
		Action:       domain.SignalAction_Buy,
		TargetWeight: 0.95,
		StrategyID:   s.id,
		Confidence:   1,
		Reason:       "initial allocation",
	}}, nil
}
