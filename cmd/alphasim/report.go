package main

import (
	"fmt"
	"math"

	"alphasim/internal/domain"
)

func printReport(result *domain.BacktestResult) {
	m := result.Metrics

	fmt.Printf("bars: %d  trades: %d\n", len(result.EquityCurve), len(result.Trades))
	fmt.Printf("final value:       %.2f\n", result.Portfolio.TotalValue)
	fmt.Printf("total return:      %s\n", pct(m.TotalReturn))
	fmt.Printf("annualized return: %s\n", pct(m.AnnualizedReturn))
	fmt.Printf("volatility:        %s\n", pct(m.Volatility))
	fmt.Printf("sharpe:            %.2f\n", m.SharpeRatio)
	fmt.Printf("sortino:           %s\n", ratio(m.SortinoRatio))
	fmt.Printf("max drawdown:      %s\n", pct(m.MaxDrawdown))
	fmt.Printf("calmar:            %.2f\n", m.CalmarRatio)
	fmt.Printf("win rate:          %s\n", pct(m.WinRate))
	fmt.Printf("profit factor:     %s\n", ratio(m.ProfitFactor))
	fmt.Printf("avg trade pnl:     %.2f\n", m.AverageTradeReturn)
	fmt.Printf("largest win/loss:  %.2f / %.2f\n", m.LargestWin, m.LargestLoss)
	fmt.Printf("streaks (w/l):     %d / %d\n", m.ConsecutiveWins, m.ConsecutiveLosses)

	for _, symbol := range result.Portfolio.HeldSymbols() {
		position := result.Portfolio.Positions[symbol]
		fmt.Printf("open %s: %.2f @ %.2f (unrealized %.2f)\n",
			symbol, position.Quantity, position.AveragePrice, position.UnrealizedPnL)
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func ratio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", v)
}
