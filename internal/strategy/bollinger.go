package strategy

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"alphasim/internal/domain"
)

// Compile-time interface check.
var _ Strategy = (*BollingerBands)(nil)
var _ Initializer = (*BollingerBands)(nil)

const (
	bollingerWeightCap = 0.25
	// fraction of the middle band considered "reverted" for the
	// partial profit take
	bollingerRevertBand = 0.01
)

// BollingerBands buys at or below the lower band, sized by the
// distance from the middle band, sells the full position at or above
// the upper band, and takes half the position off when price reverts
// to within 1% of the middle band while holding.
type BollingerBands struct {
	id      string
	period  int
	k       float64
	history *closeHistory
}

func NewBollingerBands(period int, k float64) *BollingerBands {
	return &BollingerBands{
		id:      fmt.Sprintf("bollinger-%d", period),
		period:  period,
		k:       k,
		history: newCloseHistory(period),
	}
}

func (s *BollingerBands) ID() string {
	return s.id
}

func (s *BollingerBands) Initialize(symbols []string) {
	s.history.reset()
}

func (s *BollingerBands) OnBar(bar domain.MarketData, portfolio *domain.Portfolio) ([]domain.Signal, error) {
	series := s.history.push(bar.Symbol, bar.Close)
	if len(series) < s.period {
		return nil, nil
	}

	middle := sma(series)
	stdev, err := stats.StandardDeviation(series)
	if err != nil {
		return nil, fmt.Errorf("failed to compute band deviation: %w", err)
	}
	upper := middle + s.k*stdev
	lower := middle - s.k*stdev

	position, held := portfolio.Positions[bar.Symbol]

	if bar.Close <= lower {
		distance := 0.0
		if middle != 0 {
			distance = (middle - bar.Close) / middle
		}
		weight := math.Min(bollingerWeightCap, distance*2)
		return []domain.Signal{{
			Symbol:       bar.Symbol,
			Action:       domain.SignalAction_Buy,
			TargetWeight: weight,
			StrategyID:   s.id,
			Confidence:   math.Min(1, distance*10),
			Reason:       "close at or under lower band",
		}}, nil
	}

	if bar.Close >= upper && held {
		return []domain.Signal{{
			Symbol:     bar.Symbol,
			Action:     domain.SignalAction_Sell,
			Quantity:   position.Quantity,
			StrategyID: s.id,
			Confidence: 0.8,
			Reason:     "close at or over upper band",
		}}, nil
	}

	if held && middle != 0 && math.Abs(bar.Close-middle)/middle <= bollingerRevertBand {
		return []domain.Signal{{
			Symbol:     bar.Symbol,
			Action:     domain.SignalAction_Sell,
			Quantity:   position.Quantity * 0.5,
			StrategyID: s.id,
			Confidence: 0.5,
			Reason:     "partial profit take near middle band",
		}}, nil
	}

	return nil, nil
}
