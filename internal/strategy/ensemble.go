package strategy

import (
	"math"

	"alphasim/internal/domain"
)

// Compile-time interface check.
var _ Strategy = (*Ensemble)(nil)
var _ Initializer = (*Ensemble)(nil)
var _ TradeObserver = (*Ensemble)(nil)
var _ Finalizer = (*Ensemble)(nil)

// VotePolicy decides how the ensemble combines its sub-strategies'
// signals for one bar.
type VotePolicy struct {
	// MinBuyVotes buy signals from distinct sub-strategies are
	// required for a combined buy
	MinBuyVotes int
	// a sell fires when MinSellVotes agree or any single sub-strategy
	// reports confidence over SellConfidenceOverride
	MinSellVotes           int
	SellConfidenceOverride float64
	// cap on the combined buy target weight
	MaxBuyWeight float64
}

func DefaultVotePolicy() VotePolicy {
	return VotePolicy{
		MinBuyVotes:            2,
		MinSellVotes:           2,
		SellConfidenceOverride: 0.8,
		MaxBuyWeight:           0.25,
	}
}

// Ensemble runs several sub-strategies per bar and combines their
// signals by voting.
type Ensemble struct {
	id     string
	subs   []Strategy
	policy VotePolicy
}

func NewEnsemble(id string, policy VotePolicy, subs ...Strategy) *Ensemble {
	return &Ensemble{
		id:     id,
		subs:   subs,
		policy: policy,
	}
}

func (s *Ensemble) ID() string {
	return s.id
}

func (s *Ensemble) Initialize(symbols []string) {
	for _, sub := range s.subs {
		if init, ok := sub.(Initializer); ok {
			init.Initialize(symbols)
		}
	}
}

func (s *Ensemble) OnTrade(trade domain.Trade, portfolio *domain.Portfolio) {
	for _, sub := range s.subs {
		if observer, ok := sub.(TradeObserver); ok {
			observer.OnTrade(trade, portfolio)
		}
	}
}

func (s *Ensemble) Finalize(portfolio *domain.Portfolio) {
	for _, sub := range s.subs {
		if fin, ok := sub.(Finalizer); ok {
			fin.Finalize(portfolio)
		}
	}
}

func (s *Ensemble) OnBar(bar domain.MarketData, portfolio *domain.Portfolio) ([]domain.Signal, error) {
	buys := []domain.Signal{}
	sells := []domain.Signal{}
	for _, sub := range s.subs {
		signals, err := sub.OnBar(bar, portfolio)
		if err != nil {
			return nil, err
		}
		for _, signal := range signals {
			if signal.Symbol != bar.Symbol {
				continue
			}
			switch signal.Action {
			case domain.SignalAction_Buy:
				buys = append(buys, signal)
			case domain.SignalAction_Sell:
				sells = append(sells, signal)
			}
		}
	}

	if combined := s.combineSells(bar, sells); combined != nil {
		return []domain.Signal{*combined}, nil
	}
	if combined := s.combineBuys(bar, buys); combined != nil {
		return []domain.Signal{*combined}, nil
	}
	return nil, nil
}

func (s *Ensemble) combineBuys(bar domain.MarketData, buys []domain.Signal) *domain.Signal {
	if len(buys) < s.policy.MinBuyVotes {
		return nil
	}

	confidenceSum := 0.0
	weightSum := 0.0
	for _, signal := range buys {
		confidenceSum += signal.Confidence
		weightSum += signal.TargetWeight
	}
	n := float64(len(buys))

	return &domain.Signal{
		Symbol:       bar.Symbol,
		Action:       domain.SignalAction_Buy,
		TargetWeight: math.Min(s.policy.MaxBuyWeight, weightSum/n),
		StrategyID:   s.id,
		Confidence:   confidenceSum / n,
		Reason:       "ensemble buy vote",
	}
}

func (s *Ensemble) combineSells(bar domain.MarketData, sells []domain.Signal) *domain.Signal {
	override := false
	for _, signal := range sells {
		if signal.Confidence > s.policy.SellConfidenceOverride {
			override = true
			break
		}
	}
	if len(sells) < s.policy.MinSellVotes && !override {
		return nil
	}

	// the largest requested sell quantity among agreeing sub-signals
	// wins; 0 means "let the execution model size it"
	quantity := 0.0
	confidence := 0.0
	for _, signal := range sells {
		quantity = math.Max(quantity, signal.Quantity)
		confidence = math.Max(confidence, signal.Confidence)
	}

	return &domain.Signal{
		Symbol:     bar.Symbol,
		Action:     domain.SignalAction_Sell,
		Quantity:   quantity,
		StrategyID: s.id,
		Confidence: confidence,
		Reason:     "ensemble sell vote",
	}
}
