package simulator

import (
	"sort"
	"time"

	"alphasim/internal/domain"
)

// Compile-time interface check.
var _ Simulator = (*Historical)(nil)
var _ Counter = (*Historical)(nil)

// Historical replays a fixed bar set in timestamp order.
type Historical struct {
	bars    []domain.MarketData
	symbols []string
	cursor  int
	current time.Time
}

// NewHistorical sorts bars ascending by timestamp and derives the
// symbol universe from them.
func NewHistorical(bars []domain.MarketData) *Historical {
	sorted := make([]domain.MarketData, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	seen := map[string]bool{}
	symbols := []string{}
	for _, b := range sorted {
		if !seen[b.Symbol] {
			seen[b.Symbol] = true
			symbols = append(symbols, b.Symbol)
		}
	}

	return &Historical{
		bars:    sorted,
		symbols: symbols,
	}
}

func (h *Historical) HasMoreData() bool {
	return h.cursor < len(h.bars)
}

func (h *Historical) NextBar() (*domain.MarketData, error) {
	if h.cursor >= len(h.bars) {
		return nil, nil
	}
	bar := h.bars[h.cursor]
	h.cursor++
	h.current = bar.Timestamp
	return &bar, nil
}

func (h *Historical) CurrentTimestamp() time.Time {
	return h.current
}

func (h *Historical) Symbols() []string {
	return h.symbols
}

func (h *Historical) Reset() {
	h.cursor = 0
	h.current = time.Time{}
}

func (h *Historical) TotalBars() int {
	return len(h.bars)
}
