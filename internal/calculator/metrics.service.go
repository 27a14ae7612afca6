package calculator

import (
	"math"

	"github.com/montanaflynn/stats"

	"alphasim/internal/domain"
	"alphasim/internal/util"
)

const (
	// volatility and the risk-adjusted ratios always assume daily bars
	tradingDaysPerYear = 252
)

// CalculateMetrics derives the standard risk/return metrics from a
// final equity curve and trade list. An empty equity curve or trade
// list yields a fully zeroed metrics object, never an error.
func CalculateMetrics(equityCurve []domain.EquityPoint, trades []domain.Trade, riskFreeRate float64) domain.PerformanceMetrics {
	if len(equityCurve) == 0 || len(trades) == 0 {
		return domain.PerformanceMetrics{}
	}

	metrics := domain.PerformanceMetrics{
		TotalTrades: len(trades),
	}

	startValue := equityCurve[0].Value
	endValue := equityCurve[len(equityCurve)-1].Value
	if startValue != 0 {
		metrics.TotalReturn = (endValue - startValue) / startValue
	}

	years := util.YearsBetween(equityCurve[0].Timestamp, equityCurve[len(equityCurve)-1].Timestamp)
	if years > 0 && startValue > 0 && endValue > 0 {
		metrics.AnnualizedReturn = math.Pow(endValue/startValue, 1/years) - 1
	}

	returns := perBarReturns(equityCurve)
	dailyRiskFree := riskFreeRate / tradingDaysPerYear

	if len(returns) >= 2 {
		meanReturn, _ := stats.Mean(returns)
		stdev, _ := stats.StandardDeviationSample(returns)
		metrics.Volatility = stdev * math.Sqrt(tradingDaysPerYear)

		if metrics.Volatility != 0 {
			metrics.SharpeRatio = (meanReturn - dailyRiskFree) * math.Sqrt(tradingDaysPerYear) / metrics.Volatility
		}
		metrics.SortinoRatio = sortinoRatio(returns, meanReturn, dailyRiskFree)
	}

	metrics.MaxDrawdown = maxDrawdown(equityCurve)
	if metrics.MaxDrawdown != 0 {
		metrics.CalmarRatio = metrics.AnnualizedReturn / metrics.MaxDrawdown
	}

	fillTradeStats(&metrics, tradePnLs(trades))

	return metrics
}

// perBarReturns is the simple percentage delta between consecutive
// equity points.
func perBarReturns(equityCurve []domain.EquityPoint) []float64 {
	returns := make([]float64, 0, len(equityCurve)-1)
	for i := 1; i < len(equityCurve); i++ {
		prev := equityCurve[i-1].Value
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (equityCurve[i].Value-prev)/prev)
	}
	return returns
}

// sortinoRatio penalizes only downside deviation. With no returns
// below the daily risk-free rate it is +Inf, not 0 or NaN.
func sortinoRatio(returns []float64, meanReturn, dailyRiskFree float64) float64 {
	downside := []float64{}
	for _, r := range returns {
		if r < dailyRiskFree {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return math.Inf(1)
	}

	downsideDev := 0.0
	if len(downside) >= 2 {
		downsideDev, _ = stats.StandardDeviationSample(downside)
	}
	downsideDev *= math.Sqrt(tradingDaysPerYear)
	if downsideDev == 0 {
		return 0
	}
	return (meanReturn - dailyRiskFree) * math.Sqrt(tradingDaysPerYear) / downsideDev
}

// maxDrawdown is the largest peak-to-trough fraction over the curve.
func maxDrawdown(equityCurve []domain.EquityPoint) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, point := range equityCurve {
		if point.Value > peak {
			peak = point.Value
		}
		if peak > 0 {
			dd := (peak - point.Value) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// tradePnLs reconstructs realized per-trade P&L from the raw trade
// log. Per symbol it replays trades in order, maintaining a running
// (possibly negative) position and running average price; a sell
// against a positive running position realizes
// (price - avgPrice) * matchedQty - commission.
func tradePnLs(trades []domain.Trade) []float64 {
	type running struct {
		quantity     float64
		averagePrice float64
	}
	state := map[string]*running{}

	pnls := []float64{}
	for _, trade := range trades {
		st, ok := state[trade.Symbol]
		if !ok {
			st = &running{}
			state[trade.Symbol] = st
		}

		switch trade.Side {
		case domain.TradeSide_Buy:
			newQuantity := st.quantity + trade.Quantity
			if newQuantity != 0 {
				st.averagePrice = (st.quantity*st.averagePrice + trade.Quantity*trade.Price) / newQuantity
			}
			st.quantity = newQuantity
		case domain.TradeSide_Sell:
			if st.quantity > 0 {
				matched := math.Min(trade.Quantity, st.quantity)
				pnls = append(pnls, (trade.Price-st.averagePrice)*matched-trade.Commission)
			}
			st.quantity -= trade.Quantity
		}
	}
	return pnls
}

func fillTradeStats(metrics *domain.PerformanceMetrics, pnls []float64) {
	if len(pnls) == 0 {
		return
	}

	var (
		grossProfit, grossLoss float64
		wins, losses           int
		winStreak, lossStreak  int
	)
	for _, pnl := range pnls {
		if pnl > 0 {
			wins++
			grossProfit += pnl
			winStreak++
			lossStreak = 0
			if winStreak > metrics.ConsecutiveWins {
				metrics.ConsecutiveWins = winStreak
			}
			if pnl > metrics.LargestWin {
				metrics.LargestWin = pnl
			}
		} else {
			losses++
			grossLoss += -pnl
			lossStreak++
			winStreak = 0
			if lossStreak > metrics.ConsecutiveLosses {
				metrics.ConsecutiveLosses = lossStreak
			}
			if pnl < metrics.LargestLoss {
				metrics.LargestLoss = pnl
			}
		}
	}

	metrics.WinRate = float64(wins) / float64(len(pnls))
	mean, _ := stats.Mean(pnls)
	metrics.AverageTradeReturn = mean

	if wins > 0 {
		metrics.AverageWin = grossProfit / float64(wins)
	}
	if losses > 0 {
		metrics.AverageLoss = -grossLoss / float64(losses)
	}

	switch {
	case grossLoss == 0 && grossProfit > 0:
		metrics.ProfitFactor = math.Inf(1)
	case grossLoss == 0:
		metrics.ProfitFactor = 0
	default:
		metrics.ProfitFactor = grossProfit / grossLoss
	}
}
