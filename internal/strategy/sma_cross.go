package strategy

import (
	"fmt"

	"alphasim/internal/domain"
)

// Compile-time interface check.
var _ Strategy = (*SMACross)(nil)
var _ Initializer = (*SMACross)(nil)

// SMACross trades strict moving-average crossovers: a bullish signal
// requires the previous short MA at or below the previous long MA and
// the current short MA strictly above the current long MA. Merely being
// above is not a cross. The exit condition is symmetric.
type SMACross struct {
	id      string
	short   int
	long    int
	history *closeHistory
}

func NewSMACross(short, long int) *SMACross {
	return &SMACross{
		id:    fmt.Sprintf("sma-cross-%d-%d", short, long),
		short: short,
		long:  long,
		// one extra close so the previous-bar MAs are computable
		history: newCloseHistory(long + 1),
	}
}

func (s *SMACross) ID() string {
	return s.id
}

func (s *SMACross) Initialize(symbols []string) {
	s.history.reset()
}

func (s *SMACross) OnBar(bar domain.MarketData, portfolio *domain.Portfolio) ([]domain.Signal, error) {
	series := s.history.push(bar.Symbol, bar.Close)
	if len(series) < s.long+1 {
		return nil, nil
	}

	curShort := sma(series[len(series)-s.short:])
	curLong := sma(series[len(series)-s.long:])
	prev := series[:len(series)-1]
	prevShort := sma(prev[len(prev)-s.short:])
	prevLong := sma(prev[len(prev)-s.long:])

	confidence := 0.0
	if curLong != 0 {
		confidence = (curShort - curLong) / curLong
		if confidence < 0 {
			confidence = -confidence
		}
	}

	bullishCross := prevShort <= prevLong && curShort > curLong
	bearishCross := prevShort >= prevLong && curShort < curLong

	if bullishCross {
		return []domain.Signal{{
			Symbol:     bar.Symbol,
			Action:     domain.SignalAction_Buy,
			StrategyID: s.id,
			Confidence: confidence,
			Reason:     "short MA crossed above long MA",
		}}, nil
	}

	if bearishCross {
		position, held := portfolio.Positions[bar.Symbol]
		if !held {
			return nil, nil
		}
		return []domain.Signal{{
			Symbol:     bar.Symbol,
			Action:     domain.SignalAction_Sell,
			Quantity:   position.Quantity,
			StrategyID: s.id,
			Confidence: confidence,
			Reason:     "short MA crossed below long MA",
		}}, nil
	}

	return nil, nil
}
