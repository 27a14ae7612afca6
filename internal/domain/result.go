package domain

import "time"

// EquityPoint is one sample of the portfolio's total value, recorded
// once per processed in-range bar. Drawdown is the fractional decline
// from the running peak.
type EquityPoint struct {
	Timestamp time.Time
	Value     float64
	Drawdown  float64
}

// PositionSnapshot captures the open positions after one bar, sorted by
// symbol for stable diffing.
type PositionSnapshot struct {
	Timestamp time.Time
	Positions []Position
}

type PerformanceMetrics struct {
	TotalReturn        float64
	AnnualizedReturn   float64
	Volatility         float64
	SharpeRatio        float64
	SortinoRatio       float64
	MaxDrawdown        float64
	CalmarRatio        float64
	WinRate            float64
	ProfitFactor       float64
	TotalTrades        int
	AverageTradeReturn float64
	AverageWin         float64
	AverageLoss        float64
	LargestWin         float64
	LargestLoss        float64
	ConsecutiveWins    int
	ConsecutiveLosses  int
}

// BacktestResult is everything a completed (or stopped) run produces.
type BacktestResult struct {
	Config      BacktestConfig
	Portfolio   *Portfolio
	Metrics     PerformanceMetrics
	EquityCurve []EquityPoint
	Trades      []Trade
	Positions   []PositionSnapshot
	// StrategyReturns holds per-series cumulative percent change, keyed
	// by strategy id, plus a "benchmark" series when the config names a
	// benchmark symbol present in the data
	StrategyReturns map[string][]float64
}
