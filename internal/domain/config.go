package domain

import (
	"fmt"
	"time"
)

// BacktestConfig is the only configuration surface of the engine. It is
// immutable for the life of one engine instance.
type BacktestConfig struct {
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital float64
	Symbols        []string
	// Commission and Slippage are fractional rates, e.g. 0.001 = 10bps
	Commission      float64
	Slippage        float64
	BenchmarkSymbol string
	// RiskFreeRate is annualized, e.g. 0.02
	RiskFreeRate float64
}

func (c BacktestConfig) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %f", c.InitialCapital)
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("backtest config requires at least one symbol")
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("end date %v is before start date %v", c.EndDate, c.StartDate)
	}
	return nil
}
