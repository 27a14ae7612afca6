package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"alphasim/internal/domain"
)

func Test_RSIMeanReversion(t *testing.T) {
	t.Run("stays silent until the averages are seeded", func(t *testing.T) {
		strat := NewRSIMeanReversion(3, 30, 70)
		portfolio := domain.NewPortfolio(10_000)

		signals := feedCloses(t, strat, portfolio, []float64{100, 98, 96})
		require.Empty(t, signals)
	})

	t.Run("oversold with no position buys", func(t *testing.T) {
		strat := NewRSIMeanReversion(2, 30, 70)
		portfolio := domain.NewPortfolio(10_000)

		// straight down, rsi pinned at 0
		signals := feedCloses(t, strat, portfolio, []float64{100, 98, 96})
		require.Len(t, signals, 1)
		require.Equal(t, domain.SignalAction_Buy, signals[0].Action)
	})

	t.Run("oversold while holding stays silent", func(t *testing.T) {
		strat := NewRSIMeanReversion(2, 30, 70)
		portfolio := domain.NewPortfolio(10_000)
		portfolio.Positions["SPY"] = &domain.Position{Symbol: "SPY", Quantity: 10, AveragePrice: 100}

		signals := feedCloses(t, strat, portfolio, []float64{100, 98, 96})
		require.Empty(t, signals)
	})

	t.Run("overbought while holding sells the full position", func(t *testing.T) {
		strat := NewRSIMeanReversion(2, 30, 70)
		portfolio := domain.NewPortfolio(10_000)
		portfolio.Positions["SPY"] = &domain.Position{Symbol: "SPY", Quantity: 10, AveragePrice: 100}

		// straight up, rsi pinned at 100
		signals := feedCloses(t, strat, portfolio, []float64{100, 102, 104})
		require.Len(t, signals, 1)
		require.Equal(t, domain.SignalAction_Sell, signals[0].Action)
		require.Equal(t, 10.0, signals[0].Quantity)
	})

	t.Run("wilder smoothing decays old losses", func(t *testing.T) {
		strat := NewRSIMeanReversion(2, 30, 70)

		// two losses seed the averages, then a string of gains should
		// pull rsi well over 50
		rsi := 0.0
		closes := []float64{100, 98, 96, 98, 100, 102, 104}
		for _, close := range closes {
			rsi, _ = strat.updateRSI("SPY", close)
		}
		require.Greater(t, rsi, 50.0)
	})
}
