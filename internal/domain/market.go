package domain

import "time"

// MarketData is a single OHLCV bar for one symbol at one timestamp.
// Bars are immutable once produced by a simulator.
type MarketData struct {
	Timestamp time.Time
	Symbol    string
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	// VWAP is 0 when the feed doesn't provide it
	VWAP float64
}

type SignalAction string

const (
	SignalAction_Buy  SignalAction = "buy"
	SignalAction_Sell SignalAction = "sell"
	SignalAction_Hold SignalAction = "hold"
)

// Signal is a strategy's trade intent for one bar. It is produced fresh
// every bar and never persisted by the strategy that emitted it.
//
// Quantity and TargetWeight are both optional (0 = unset); when both are
// set, Quantity wins. Price, StopLoss and TakeProfit are advisory.
type Signal struct {
	Symbol       string
	Action       SignalAction
	Quantity     float64
	TargetWeight float64
	Price        float64
	StopLoss     float64
	TakeProfit   float64
	StrategyID   string
	Confidence   float64
	Reason       string
}
