package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"alphasim/internal/domain"
	"alphasim/internal/util"
)

func curvePoint(t time.Time, value float64) domain.EquityPoint {
	return domain.EquityPoint{Timestamp: t, Value: value}
}

func roundTrip(symbol string, buyPrice, sellPrice, quantity, sellCommission float64) []domain.Trade {
	return []domain.Trade{
		{Symbol: symbol, Side: domain.TradeSide_Buy, Quantity: quantity, Price: buyPrice, Commission: 1},
		{Symbol: symbol, Side: domain.TradeSide_Sell, Quantity: quantity, Price: sellPrice, Commission: sellCommission},
	}
}

func Test_CalculateMetrics(t *testing.T) {
	day := func(n int) time.Time { return util.NewDate(2020, 1, 1).AddDate(0, 0, n) }
	someTrade := []domain.Trade{{Symbol: "SPY", Side: domain.TradeSide_Buy, Quantity: 1, Price: 100, Commission: 1}}

	t.Run("empty equity curve zeroes everything", func(t *testing.T) {
		got := CalculateMetrics(nil, someTrade, 0.02)
		require.Equal(t, domain.PerformanceMetrics{}, got)
	})

	t.Run("empty trade list zeroes everything", func(t *testing.T) {
		curve := []domain.EquityPoint{curvePoint(day(0), 100), curvePoint(day(1), 110)}
		got := CalculateMetrics(curve, nil, 0.02)
		require.Equal(t, domain.PerformanceMetrics{}, got)
	})

	t.Run("total and annualized return over exactly one year", func(t *testing.T) {
		start := util.NewDate(2020, 1, 1)
		// 365.25 days later, so elapsed time is exactly one year
		end := start.Add(time.Duration(365.25 * 24 * float64(time.Hour)))
		curve := []domain.EquityPoint{curvePoint(start, 10_000), curvePoint(end, 11_000)}

		got := CalculateMetrics(curve, someTrade, 0.0)

		require.InDelta(t, 0.10, got.TotalReturn, 1e-12)
		require.InDelta(t, 0.10, got.AnnualizedReturn, 1e-9)
	})

	t.Run("monotonic gains mean no drawdown and infinite sortino", func(t *testing.T) {
		curve := []domain.EquityPoint{
			curvePoint(day(0), 100),
			curvePoint(day(1), 102),
			curvePoint(day(2), 103),
			curvePoint(day(3), 107),
		}

		got := CalculateMetrics(curve, someTrade, 0.0)

		require.Equal(t, 0.0, got.MaxDrawdown)
		require.Equal(t, 0.0, got.CalmarRatio)
		require.True(t, math.IsInf(got.SortinoRatio, 1))
		require.Greater(t, got.SharpeRatio, 0.0)
		require.Greater(t, got.Volatility, 0.0)
	})

	t.Run("max drawdown is the worst peak-to-trough fraction", func(t *testing.T) {
		curve := []domain.EquityPoint{
			curvePoint(day(0), 100),
			curvePoint(day(1), 120),
			curvePoint(day(2), 90),
			curvePoint(day(3), 110),
		}

		got := CalculateMetrics(curve, someTrade, 0.0)
		require.InDelta(t, 0.25, got.MaxDrawdown, 1e-12)
	})

	t.Run("flat curve has zero volatility and zero sharpe", func(t *testing.T) {
		curve := []domain.EquityPoint{
			curvePoint(day(0), 100),
			curvePoint(day(1), 100),
			curvePoint(day(2), 100),
		}

		got := CalculateMetrics(curve, someTrade, 0.0)
		require.Equal(t, 0.0, got.Volatility)
		require.Equal(t, 0.0, got.SharpeRatio)
	})

	t.Run("trade stats from reconstructed round trips", func(t *testing.T) {
		curve := []domain.EquityPoint{curvePoint(day(0), 10_000), curvePoint(day(10), 10_200)}
		trades := []domain.Trade{}
		// +99, +198, -101
		trades = append(trades, roundTrip("AAPL", 100, 110, 10, 1)...)
		trades = append(trades, roundTrip("AAPL", 100, 120, 10, 2)...)
		trades = append(trades, roundTrip("AAPL", 100, 90, 10, 1)...)

		got := CalculateMetrics(curve, trades, 0.0)

		require.Equal(t, 6, got.TotalTrades)
		require.InDelta(t, 2.0/3.0, got.WinRate, 1e-12)
		require.InDelta(t, (99.0+198.0-101.0)/3.0, got.AverageTradeReturn, 1e-9)
		require.InDelta(t, (99.0+198.0)/2.0, got.AverageWin, 1e-9)
		require.InDelta(t, -101.0, got.AverageLoss, 1e-9)
		require.InDelta(t, 198.0, got.LargestWin, 1e-9)
		require.InDelta(t, -101.0, got.LargestLoss, 1e-9)
		require.Equal(t, 2, got.ConsecutiveWins)
		require.Equal(t, 1, got.ConsecutiveLosses)
		require.InDelta(t, (99.0+198.0)/101.0, got.ProfitFactor, 1e-9)
	})

	t.Run("profit factor is infinite with only winners", func(t *testing.T) {
		curve := []domain.EquityPoint{curvePoint(day(0), 10_000), curvePoint(day(5), 10_100)}
		got := CalculateMetrics(curve, roundTrip("AAPL", 100, 110, 10, 1), 0.0)
		require.True(t, math.IsInf(got.ProfitFactor, 1))
	})

	t.Run("profit factor is zero with only losers", func(t *testing.T) {
		curve := []domain.EquityPoint{curvePoint(day(0), 10_000), curvePoint(day(5), 9_900)}
		got := CalculateMetrics(curve, roundTrip("AAPL", 100, 90, 10, 1), 0.0)
		require.Equal(t, 0.0, got.ProfitFactor)
	})

	t.Run("partial sell realizes only the matched quantity", func(t *testing.T) {
		curve := []domain.EquityPoint{curvePoint(day(0), 10_000), curvePoint(day(5), 10_100)}
		trades := []domain.Trade{
			{Symbol: "AAPL", Side: domain.TradeSide_Buy, Quantity: 10, Price: 100, Commission: 1},
			{Symbol: "AAPL", Side: domain.TradeSide_Sell, Quantity: 4, Price: 120, Commission: 2},
		}

		got := CalculateMetrics(curve, trades, 0.0)

		// (120-100)*4 - 2
		require.InDelta(t, 78.0, got.LargestWin, 1e-9)
		require.Equal(t, 1.0, got.WinRate)
	})

	t.Run("sells with no prior position realize nothing", func(t *testing.T) {
		curve := []domain.EquityPoint{curvePoint(day(0), 10_000), curvePoint(day(5), 10_000)}
		trades := []domain.Trade{
			{Symbol: "AAPL", Side: domain.TradeSide_Sell, Quantity: 10, Price: 100, Commission: 1},
		}

		got := CalculateMetrics(curve, trades, 0.0)

		require.Equal(t, 1, got.TotalTrades)
		require.Equal(t, 0.0, got.WinRate)
		require.Equal(t, 0.0, got.ProfitFactor)
	})

	t.Run("symbols are replayed independently", func(t *testing.T) {
		curve := []domain.EquityPoint{curvePoint(day(0), 10_000), curvePoint(day(5), 10_100)}
		trades := []domain.Trade{
			{Symbol: "AAPL", Side: domain.TradeSide_Buy, Quantity: 10, Price: 100, Commission: 1},
			{Symbol: "MSFT", Side: domain.TradeSide_Buy, Quantity: 10, Price: 200, Commission: 1},
			{Symbol: "MSFT", Side: domain.TradeSide_Sell, Quantity: 10, Price: 210, Commission: 1},
			{Symbol: "AAPL", Side: domain.TradeSide_Sell, Quantity: 10, Price: 105, Commission: 1},
		}

		got := CalculateMetrics(curve, trades, 0.0)

		// MSFT: (210-200)*10-1 = 99, AAPL: (105-100)*10-1 = 49
		require.InDelta(t, 99.0, got.LargestWin, 1e-9)
		require.Equal(t, 1.0, got.WinRate)
		require.InDelta(t, 74.0, got.AverageTradeReturn, 1e-9)
	})
}
