package engine

import (
	"time"

	"alphasim/internal/domain"
)

type EventType string

const (
	EventType_Started   EventType = "started"
	EventType_Progress  EventType = "progress"
	EventType_Trade     EventType = "trade"
	EventType_Paused    EventType = "paused"
	EventType_Resumed   EventType = "resumed"
	EventType_Stopped   EventType = "stopped"
	EventType_Completed EventType = "completed"
	EventType_Error     EventType = "error"
)

// Event is one notification from a running engine. Trade events fire
// synchronously in execution order, never batched; progress events fire
// every 1000 processed bars.
type Event struct {
	Type          EventType
	Timestamp     time.Time
	BarsProcessed int
	Trade         *domain.Trade
	Err           error
}

// Listener receives events on the engine's replay goroutine. Keep it
// fast; a slow listener stalls the run.
type Listener func(Event)
