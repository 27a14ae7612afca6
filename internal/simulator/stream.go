package simulator

import (
	"math/rand"
	"sync"
	"time"

	"alphasim/internal/domain"
)

// Compile-time interface check.
var _ Simulator = (*Stream)(nil)

// StreamConfig parameterizes a push-based mock feed that appends one
// bar per symbol on every tick until MaxBars ticks have elapsed.
type StreamConfig struct {
	Symbols     []string
	StartPrices map[string]float64
	Trend       float64
	Volatility  float64
	Interval    time.Duration
	// TickEvery is the wall-clock delay between generated ticks
	TickEvery time.Duration
	MaxBars   int
	Seed      int64
}

// Stream generates bars asynchronously and exposes them through the
// same pull interface as the replay simulators. HasMoreData stays true
// while the generator is running or unread bars remain.
type Stream struct {
	cfg StreamConfig

	mu         sync.Mutex
	cond       *sync.Cond
	bars       []domain.MarketData
	cursor     int
	generating bool
	stopped    bool
	current    time.Time
	stopCh     chan struct{}
}

func NewStream(cfg StreamConfig) *Stream {
	s := &Stream{cfg: cfg}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Start launches the generator goroutine. Calling Start on a running
// stream is a no-op.
func (s *Stream) Start() {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return
	}
	s.generating = true
	s.stopped = false
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	go s.generate()
}

// Stop halts generation; bars already produced remain readable.
// Calling Stop on a stopped stream is a no-op.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.generating || s.stopped {
		return
	}
	s.stopped = true
	close(s.stopCh)
}

func (s *Stream) generate() {
	rng := rand.New(rand.NewSource(s.cfg.Seed))
	dt := yearsPerBar(s.cfg.Interval)

	prevCloses := map[string]float64{}
	for _, symbol := range s.cfg.Symbols {
		prevCloses[symbol] = s.cfg.StartPrices[symbol]
	}

	ticker := time.NewTicker(s.cfg.TickEvery)
	defer ticker.Stop()

	barTime := time.Now().UTC().Truncate(s.cfg.Interval)
	for i := 0; i < s.cfg.MaxBars; i++ {
		select {
		case <-s.stopCh:
			s.finish()
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		for _, symbol := range s.cfg.Symbols {
			bar := nextStreamBar(rng, symbol, prevCloses[symbol], s.cfg.Trend, s.cfg.Volatility, dt, barTime)
			prevCloses[symbol] = bar.Close
			s.bars = append(s.bars, bar)
		}
		s.cond.Broadcast()
		s.mu.Unlock()

		barTime = barTime.Add(s.cfg.Interval)
	}

	s.finish()
}

func (s *Stream) finish() {
	s.mu.Lock()
	s.generating = false
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *Stream) HasMoreData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating || s.cursor < len(s.bars)
}

// NextBar blocks until a bar is available or generation has finished.
func (s *Stream) NextBar() (*domain.MarketData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.cursor >= len(s.bars) && s.generating {
		s.cond.Wait()
	}
	if s.cursor >= len(s.bars) {
		return nil, nil
	}

	bar := s.bars[s.cursor]
	s.cursor++
	s.current = bar.Timestamp
	return &bar, nil
}

func (s *Stream) CurrentTimestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Stream) Symbols() []string {
	return s.cfg.Symbols
}

// Reset rewinds the read cursor over bars generated so far. It does not
// restart generation.
func (s *Stream) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = 0
	s.current = time.Time{}
}

func nextStreamBar(rng *rand.Rand, symbol string, prevClose, trend, volatility, dt float64, ts time.Time) domain.MarketData {
	cfg := GBMConfig{
		Symbol:     symbol,
		StartPrice: prevClose,
		Trend:      trend,
		Volatility: volatility,
		Bars:       1,
		Start:      ts,
	}
	bars := generateGBMWithDt(rng, cfg, dt)
	return bars[0]
}
