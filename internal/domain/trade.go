package domain

import (
	"time"

	"github.com/google/uuid"
)

type TradeSide string

const (
	TradeSide_Buy  TradeSide = "buy"
	TradeSide_Sell TradeSide = "sell"
)

// Trade is an append-only audit record of a simulated fill. Once created
// it is never mutated.
type Trade struct {
	ID         uuid.UUID
	Timestamp  time.Time
	Symbol     string
	Side       TradeSide
	Quantity   float64
	Price      float64
	Commission float64
	Slippage   float64
	StrategyID string
}
