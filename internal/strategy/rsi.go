package strategy

import (
	"fmt"

	"alphasim/internal/domain"
)

// Compile-time interface check.
var _ Strategy = (*RSIMeanReversion)(nil)
var _ Initializer = (*RSIMeanReversion)(nil)

type rsiState struct {
	prevClose float64
	haveClose bool
	// deltas observed before the first smoothed averages are seeded
	seedGains  []float64
	seedLosses []float64
	avgGain    float64
	avgLoss    float64
	seeded     bool
}

// RSIMeanReversion buys when the Wilder-smoothed RSI drops under the
// oversold threshold with no position held, and liquidates when RSI
// rises over the overbought threshold.
type RSIMeanReversion struct {
	id         string
	period     int
	oversold   float64
	overbought float64
	state      map[string]*rsiState
}

func NewRSIMeanReversion(period int, oversold, overbought float64) *RSIMeanReversion {
	return &RSIMeanReversion{
		id:         fmt.Sprintf("rsi-%d", period),
		period:     period,
		oversold:   oversold,
		overbought: overbought,
		state:      map[string]*rsiState{},
	}
}

func (s *RSIMeanReversion) ID() string {
	return s.id
}

func (s *RSIMeanReversion) Initialize(symbols []string) {
	s.state = map[string]*rsiState{}
}

func (s *RSIMeanReversion) OnBar(bar domain.MarketData, portfolio *domain.Portfolio) ([]domain.Signal, error) {
	rsi, ok := s.updateRSI(bar.Symbol, bar.Close)
	if !ok {
		return nil, nil
	}

	position, held := portfolio.Positions[bar.Symbol]

	if rsi < s.oversold && !held {
		return []domain.Signal{{
			Symbol:     bar.Symbol,
			Action:     domain.SignalAction_Buy,
			StrategyID: s.id,
			Confidence: (s.oversold - rsi) / s.oversold,
			Reason:     fmt.Sprintf("rsi %.1f under oversold threshold", rsi),
		}}, nil
	}

	if rsi > s.overbought && held {
		return []domain.Signal{{
			Symbol:     bar.Symbol,
			Action:     domain.SignalAction_Sell,
			Quantity:   position.Quantity,
			StrategyID: s.id,
			Confidence: (rsi - s.overbought) / (100 - s.overbought),
			Reason:     fmt.Sprintf("rsi %.1f over overbought threshold", rsi),
		}}, nil
	}

	return nil, nil
}

// updateRSI folds one close into the Wilder smoothing for the symbol.
// The bool is false until enough bars have been seen to seed the
// averages.
func (s *RSIMeanReversion) updateRSI(symbol string, close float64) (float64, bool) {
	st, ok := s.state[symbol]
	if !ok {
		st = &rsiState{}
		s.state[symbol] = st
	}

	if !st.haveClose {
		st.prevClose = close
		st.haveClose = true
		return 0, false
	}

	delta := close - st.prevClose
	st.prevClose = close

	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	if !st.seeded {
		st.seedGains = append(st.seedGains, gain)
		st.seedLosses = append(st.seedLosses, loss)
		if len(st.seedGains) < s.period {
			return 0, false
		}
		st.avgGain = sma(st.seedGains)
		st.avgLoss = sma(st.seedLosses)
		st.seedGains, st.seedLosses = nil, nil
		st.seeded = true
	} else {
		n := float64(s.period)
		st.avgGain = (st.avgGain*(n-1) + gain) / n
		st.avgLoss = (st.avgLoss*(n-1) + loss) / n
	}

	if st.avgLoss == 0 {
		return 100, true
	}
	rs := st.avgGain / st.avgLoss
	return 100 - 100/(1+rs), true
}
