package simulator

import (
	"time"

	"alphasim/internal/domain"
)

// Simulator yields ordered market bars through a single-pass cursor.
// NextBar advances the cursor and is not idempotent; Reset rewinds the
// cursor without reallocating the underlying data.
type Simulator interface {
	HasMoreData() bool
	// NextBar returns nil when the source is exhausted. Errors are
	// fatal to a run and never retried by the engine.
	NextBar() (*domain.MarketData, error)
	CurrentTimestamp() time.Time
	Symbols() []string
	Reset()
}

// Counter is implemented by simulators that know their total bar count
// up front. The engine uses it for percent-complete reporting.
type Counter interface {
	TotalBars() int
}
