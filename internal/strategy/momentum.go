package strategy

import (
	"fmt"
	"math"

	"alphasim/internal/domain"
)

// Compile-time interface check.
var _ Strategy = (*Momentum)(nil)
var _ Initializer = (*Momentum)(nil)

const momentumWeightCap = 0.25

// Momentum buys when the lookback return exceeds the threshold, sized
// proportional to the momentum magnitude and capped, and sells the full
// position when momentum reverses below half the negative threshold.
type Momentum struct {
	id        string
	lookback  int
	threshold float64
	history   *closeHistory
}

func NewMomentum(lookback int, threshold float64) *Momentum {
	return &Momentum{
		id:        fmt.Sprintf("momentum-%d", lookback),
		lookback:  lookback,
		threshold: threshold,
		history:   newCloseHistory(lookback + 1),
	}
}

func (s *Momentum) ID() string {
	return s.id
}

func (s *Momentum) Initialize(symbols []string) {
	s.history.reset()
}

func (s *Momentum) OnBar(bar domain.MarketData, portfolio *domain.Portfolio) ([]domain.Signal, error) {
	series := s.history.push(bar.Symbol, bar.Close)
	if len(series) < s.lookback+1 {
		return nil, nil
	}

	reference := series[0]
	if reference == 0 {
		return nil, nil
	}
	momentum := (bar.Close - reference) / reference

	position, held := portfolio.Positions[bar.Symbol]

	if momentum > s.threshold {
		weight := math.Min(momentumWeightCap, momentum)
		return []domain.Signal{{
			Symbol:       bar.Symbol,
			Action:       domain.SignalAction_Buy,
			TargetWeight: weight,
			StrategyID:   s.id,
			Confidence:   math.Min(1, momentum/s.threshold/2),
			Reason:       fmt.Sprintf("momentum %.4f over threshold", momentum),
		}}, nil
	}

	if momentum < -s.threshold/2 && held {
		return []domain.Signal{{
			Symbol:     bar.Symbol,
			Action:     domain.SignalAction_Sell,
			Quantity:   position.Quantity,
			StrategyID: s.id,
			Confidence: math.Min(1, -momentum/s.threshold),
			Reason:     fmt.Sprintf("momentum reversal %.4f", momentum),
		}}, nil
	}

	return nil, nil
}
