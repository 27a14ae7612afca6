package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"alphasim/internal/domain"
)

func Test_BollingerBands(t *testing.T) {
	t.Run("buys at or below the lower band", func(t *testing.T) {
		strat := NewBollingerBands(3, 1)
		portfolio := domain.NewPortfolio(10_000)

		signals := feedCloses(t, strat, portfolio, []float64{100, 104, 90})
		require.Len(t, signals, 1)
		require.Equal(t, domain.SignalAction_Buy, signals[0].Action)
		require.Greater(t, signals[0].TargetWeight, 0.0)
		require.LessOrEqual(t, signals[0].TargetWeight, bollingerWeightCap)
	})

	t.Run("sells the full position at or above the upper band", func(t *testing.T) {
		strat := NewBollingerBands(3, 1)
		portfolio := domain.NewPortfolio(10_000)
		portfolio.Positions["SPY"] = &domain.Position{Symbol: "SPY", Quantity: 20, AveragePrice: 95}

		signals := feedCloses(t, strat, portfolio, []float64{100, 96, 110})
		require.Len(t, signals, 1)
		require.Equal(t, domain.SignalAction_Sell, signals[0].Action)
		require.Equal(t, 20.0, signals[0].Quantity)
	})

	t.Run("takes half off near the middle band while holding", func(t *testing.T) {
		strat := NewBollingerBands(3, 1)
		portfolio := domain.NewPortfolio(10_000)
		portfolio.Positions["SPY"] = &domain.Position{Symbol: "SPY", Quantity: 20, AveragePrice: 95}

		signals := feedCloses(t, strat, portfolio, []float64{98, 104, 100.5})
		require.Len(t, signals, 1)
		require.Equal(t, domain.SignalAction_Sell, signals[0].Action)
		require.Equal(t, 10.0, signals[0].Quantity)
	})

	t.Run("initialize clears the rolling window", func(t *testing.T) {
		strat := NewBollingerBands(3, 1)
		portfolio := domain.NewPortfolio(10_000)

		feedCloses(t, strat, portfolio, []float64{100, 104})
		strat.Initialize([]string{"SPY"})

		// with stale history the 90 bar would be a lower-band buy
		signals := feedCloses(t, strat, portfolio, []float64{90})
		require.Empty(t, signals)
	})

	t.Run("too few closes stays silent", func(t *testing.T) {
		strat := NewBollingerBands(3, 1)
		portfolio := domain.NewPortfolio(10_000)

		signals := feedCloses(t, strat, portfolio, []float64{100, 80})
		require.Empty(t, signals)
	})
}
