package execution

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"alphasim/internal/domain"
	"alphasim/internal/util"
)

func flatBar(close, volume float64) domain.MarketData {
	return domain.MarketData{
		Timestamp: util.NewDate(2020, 6, 1),
		Symbol:    "SPY",
		Open:      close,
		High:      close,
		Low:       close,
		Close:     close,
		Volume:    volume,
	}
}

func Test_Realistic_ExecuteSignal(t *testing.T) {
	model := NewRealistic(0.001, 0.0005)

	t.Run("hold never trades", func(t *testing.T) {
		portfolio := domain.NewPortfolio(10_000)
		trade := model.ExecuteSignal(domain.Signal{
			Symbol: "SPY",
			Action: domain.SignalAction_Hold,
		}, flatBar(100, 1_000_000), portfolio)
		require.Nil(t, trade)
	})

	t.Run("buy costing more than capital clips to zero and yields no trade", func(t *testing.T) {
		portfolio := domain.NewPortfolio(10_000)
		trade := model.ExecuteSignal(domain.Signal{
			Symbol:   "SPY",
			Action:   domain.SignalAction_Buy,
			Quantity: 1,
		}, flatBar(12_000, 1_000_000), portfolio)
		require.Nil(t, trade)
	})

	t.Run("oversized buy clips to the largest affordable integer quantity", func(t *testing.T) {
		portfolio := domain.NewPortfolio(10_000)
		trade := model.ExecuteSignal(domain.Signal{
			Symbol:   "SPY",
			Action:   domain.SignalAction_Buy,
			Quantity: 1000,
		}, flatBar(99, 1_000_000), portfolio)

		require.NotNil(t, trade)
		require.Equal(t, domain.TradeSide_Buy, trade.Side)
		require.Equal(t, trade.Quantity, math.Trunc(trade.Quantity))
		cost := trade.Quantity*trade.Price + trade.Commission + trade.Slippage
		require.LessOrEqual(t, cost, 10_000.0)
		// the next integer up must not have been affordable
		perUnit := trade.Slippage / trade.Quantity
		nextCost := (trade.Quantity+1)*(trade.Price+perUnit) + model.CalculateCommission(trade.Quantity+1, trade.Price)
		require.Greater(t, nextCost, 10_000.0)
	})

	t.Run("affordable buy keeps its requested quantity", func(t *testing.T) {
		portfolio := domain.NewPortfolio(10_000)
		trade := model.ExecuteSignal(domain.Signal{
			Symbol:   "SPY",
			Action:   domain.SignalAction_Buy,
			Quantity: 10,
		}, flatBar(100, 1_000_000), portfolio)

		require.NotNil(t, trade)
		require.Equal(t, 10.0, trade.Quantity)
		require.Equal(t, 100.0, trade.Price)
	})

	t.Run("target weight sizes against total value", func(t *testing.T) {
		portfolio := domain.NewPortfolio(10_000)
		trade := model.ExecuteSignal(domain.Signal{
			Symbol:       "SPY",
			Action:       domain.SignalAction_Buy,
			TargetWeight: 0.5,
		}, flatBar(100, 1_000_000), portfolio)

		require.NotNil(t, trade)
		require.InDelta(t, 50.0, trade.Quantity, 1e-9)
	})

	t.Run("unsized buy defaults to a tenth of cash", func(t *testing.T) {
		portfolio := domain.NewPortfolio(10_000)
		trade := model.ExecuteSignal(domain.Signal{
			Symbol: "SPY",
			Action: domain.SignalAction_Buy,
		}, flatBar(100, 1_000_000), portfolio)

		require.NotNil(t, trade)
		require.InDelta(t, 10.0, trade.Quantity, 1e-9)
	})

	t.Run("sell clips to the held quantity", func(t *testing.T) {
		portfolio := domain.NewPortfolio(10_000)
		portfolio.Positions["SPY"] = &domain.Position{Symbol: "SPY", Quantity: 5, AveragePrice: 90}

		trade := model.ExecuteSignal(domain.Signal{
			Symbol:   "SPY",
			Action:   domain.SignalAction_Sell,
			Quantity: 10,
		}, flatBar(100, 1_000_000), portfolio)

		require.NotNil(t, trade)
		require.Equal(t, domain.TradeSide_Sell, trade.Side)
		require.Equal(t, 5.0, trade.Quantity)
	})

	t.Run("sell with nothing held yields no trade", func(t *testing.T) {
		portfolio := domain.NewPortfolio(10_000)
		trade := model.ExecuteSignal(domain.Signal{
			Symbol:   "SPY",
			Action:   domain.SignalAction_Sell,
			Quantity: 10,
		}, flatBar(100, 1_000_000), portfolio)
		require.Nil(t, trade)
	})
}

func Test_Realistic_CalculateCommission(t *testing.T) {
	model := NewRealistic(0.001, 0.0005)

	t.Run("floors at the fixed minimum", func(t *testing.T) {
		require.Equal(t, 1.0, model.CalculateCommission(10, 100))
	})

	t.Run("takes the cheaper of notional and per-share schedules", func(t *testing.T) {
		// 0.001 * 1_000_000 = 1000 vs 0.005 * 10_000 = 50
		require.Equal(t, 50.0, model.CalculateCommission(10_000, 100))
	})
}

func Test_Realistic_CalculateSlippage(t *testing.T) {
	model := NewRealistic(0.001, 0.0005)

	t.Run("flat bar off-hours is base rate plus impact", func(t *testing.T) {
		bar := flatBar(100, 1_000_000)
		got := model.CalculateSlippage(10, bar)

		base := 0.0005 * 100.0
		impact := 100.0 * impactCoefficient * math.Sqrt(10/(participationFraction*1_000_000))
		require.InDelta(t, base+impact, got, 1e-12)
	})

	t.Run("wide spread scales slippage up", func(t *testing.T) {
		narrow := flatBar(100, 1_000_000)
		wide := narrow
		wide.High = 103
		wide.Low = 97

		require.Greater(t, model.CalculateSlippage(10, wide), model.CalculateSlippage(10, narrow))
	})

	t.Run("open and close hours widen slippage 1.5x", func(t *testing.T) {
		offHours := flatBar(100, 0)
		atOpen := offHours
		atOpen.Timestamp = time.Date(2020, 6, 1, 9, 45, 0, 0, time.UTC)
		atClose := offHours
		atClose.Timestamp = time.Date(2020, 6, 1, 15, 30, 0, 0, time.UTC)

		base := model.CalculateSlippage(10, offHours)
		require.InDelta(t, base*1.5, model.CalculateSlippage(10, atOpen), 1e-12)
		require.InDelta(t, base*1.5, model.CalculateSlippage(10, atClose), 1e-12)
	})
}
