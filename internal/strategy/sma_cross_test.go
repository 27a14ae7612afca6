package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"alphasim/internal/domain"
)

func feedCloses(t *testing.T, strat Strategy, portfolio *domain.Portfolio, closes []float64) []domain.Signal {
	t.Helper()
	var last []domain.Signal
	for day, close := range closes {
		signals, err := strat.OnBar(testBar(day, "SPY", close), portfolio)
		require.NoError(t, err)
		last = signals
	}
	return last
}

func Test_SMACross(t *testing.T) {
	t.Run("strict bullish cross emits a buy", func(t *testing.T) {
		strat := NewSMACross(2, 3)
		portfolio := domain.NewPortfolio(10_000)

		signals := feedCloses(t, strat, portfolio, []float64{10, 10, 10, 10, 12})
		require.Len(t, signals, 1)
		require.Equal(t, domain.SignalAction_Buy, signals[0].Action)
		require.Greater(t, signals[0].Confidence, 0.0)
	})

	t.Run("short MA merely above long MA is not a cross", func(t *testing.T) {
		strat := NewSMACross(2, 3)
		portfolio := domain.NewPortfolio(10_000)

		// the cross happens on the 12 bar; 13 keeps short above long
		feedCloses(t, strat, portfolio, []float64{10, 10, 10, 10, 12})
		signals := feedCloses(t, strat, portfolio, []float64{13})
		require.Empty(t, signals)
	})

	t.Run("bearish cross sells the full position", func(t *testing.T) {
		strat := NewSMACross(2, 3)
		portfolio := domain.NewPortfolio(10_000)
		portfolio.Positions["SPY"] = &domain.Position{Symbol: "SPY", Quantity: 40, AveragePrice: 10}

		feedCloses(t, strat, portfolio, []float64{10, 10, 10, 12, 13})
		signals := feedCloses(t, strat, portfolio, []float64{9})
		require.Len(t, signals, 1)
		require.Equal(t, domain.SignalAction_Sell, signals[0].Action)
		require.Equal(t, 40.0, signals[0].Quantity)
	})

	t.Run("initialize clears the rolling window", func(t *testing.T) {
		strat := NewSMACross(2, 3)
		portfolio := domain.NewPortfolio(10_000)

		feedCloses(t, strat, portfolio, []float64{10, 10, 10, 10})
		strat.Initialize([]string{"SPY"})

		// with stale history the 12 bar would be a bullish cross
		signals := feedCloses(t, strat, portfolio, []float64{12})
		require.Empty(t, signals)
	})

	t.Run("bearish cross without a position stays silent", func(t *testing.T) {
		strat := NewSMACross(2, 3)
		portfolio := domain.NewPortfolio(10_000)

		feedCloses(t, strat, portfolio, []float64{10, 10, 10, 12, 13})
		signals := feedCloses(t, strat, portfolio, []float64{9})
		require.Empty(t, signals)
	})
}
