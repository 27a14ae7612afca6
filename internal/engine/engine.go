package engine

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"alphasim/internal/calculator"
	"alphasim/internal/domain"
	"alphasim/internal/execution"
	"alphasim/internal/logger"
	"alphasim/internal/simulator"
	"alphasim/internal/strategy"
	"alphasim/internal/util"
)

type State string

const (
	State_Idle      State = "idle"
	State_Running   State = "running"
	State_Paused    State = "paused"
	State_Stopped   State = "stopped"
	State_Completed State = "completed"
	State_Errored   State = "errored"
)

const progressEventEvery = 1000

// Progress is a read-only view of a run for polling callers.
type Progress struct {
	State         State
	BarsProcessed int
	// TotalBars is 0 when the simulator can't count ahead of time
	TotalBars int
	Percent   float64
	Timestamp time.Time
	Elapsed   time.Duration
}

// Engine replays bars from a simulator through a strategy and an
// execution model, mutating a single portfolio strictly in bar order.
// One logical thread of control drives the whole replay; Pause, Resume
// and Stop may be called from other goroutines and are consumed only
// at the top of the loop, so a bar being processed always completes.
type Engine struct {
	config domain.BacktestConfig
	sim    simulator.Simulator
	strat  strategy.Strategy
	exec   execution.Model
	log    *zap.SugaredLogger

	mu             sync.Mutex
	cond           *sync.Cond
	state          State
	pauseRequested bool
	stopRequested  bool
	barsProcessed  int
	currentTime    time.Time
	startedAt      time.Time

	portfolio       *domain.Portfolio
	equityCurve     []domain.EquityPoint
	snapshots       []domain.PositionSnapshot
	benchmarkPrices []domain.AssetPrice
	peak            float64

	listeners []Listener
}

func New(config domain.BacktestConfig, sim simulator.Simulator, strat strategy.Strategy, exec execution.Model) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}

	e := &Engine{
		config:    config,
		sim:       sim,
		strat:     strat,
		exec:      exec,
		log:       logger.New(),
		state:     State_Idle,
		portfolio: domain.NewPortfolio(config.InitialCapital),
	}
	e.cond = sync.NewCond(&e.mu)
	return e, nil
}

// Subscribe registers a listener. Registering mid-run is safe; the
// listener receives events from the next emission on.
func (e *Engine) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Run executes the full replay and returns the result. A stopped run
// returns a valid partial result; simulator or strategy failures
// surface through an error event and the returned error.
func (e *Engine) Run() (*domain.BacktestResult, error) {
	e.mu.Lock()
	if e.state == State_Running || e.state == State_Paused {
		e.mu.Unlock()
		return nil, fmt.Errorf("engine is already running")
	}
	e.resetRunStateLocked()
	e.state = State_Running
	e.startedAt = time.Now()
	e.mu.Unlock()

	profile := domain.NewPerformanceProfile()

	if init, ok := e.strat.(strategy.Initializer); ok {
		init.Initialize(e.sim.Symbols())
	}
	e.sim.Reset()
	e.emit(Event{Type: EventType_Started, Timestamp: time.Now()})

	if err := e.replay(); err != nil {
		e.setState(State_Errored)
		e.emit(Event{Type: EventType_Error, Timestamp: time.Now(), Err: err})
		return nil, err
	}
	profile.Add("replay")

	if fin, ok := e.strat.(strategy.Finalizer); ok {
		fin.Finalize(e.portfolio)
	}

	result := e.buildResult()
	profile.Add("metrics")
	profile.End()

	e.mu.Lock()
	stopped := e.stopRequested
	bars := e.barsProcessed
	e.mu.Unlock()

	e.log.Infow("backtest finished",
		"strategy", e.strat.ID(),
		"bars", bars,
		"trades", len(result.Trades),
		"finalValue", result.Portfolio.TotalValue,
		"totalMs", profile.TotalMs,
	)
	if profileBytes, err := profile.ToJsonBytes(); err == nil {
		e.log.Debugw("performance profile", "profile", string(profileBytes))
	}

	if stopped {
		e.setState(State_Stopped)
		e.emit(Event{Type: EventType_Stopped, Timestamp: time.Now(), BarsProcessed: bars})
	} else {
		e.setState(State_Completed)
		e.emit(Event{Type: EventType_Completed, Timestamp: time.Now(), BarsProcessed: bars})
	}

	return result, nil
}

// Pause requests a cooperative pause; the in-flight bar completes
// first.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != State_Running {
		return
	}
	e.pauseRequested = true
}

func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseRequested = false
	e.cond.Broadcast()
}

// Stop requests termination; Run returns after at most the in-flight
// bar, with a valid partial result.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopRequested = true
	e.cond.Broadcast()
}

func (e *Engine) GetProgress() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()

	progress := Progress{
		State:         e.state,
		BarsProcessed: e.barsProcessed,
		Timestamp:     e.currentTime,
	}
	if counter, ok := e.sim.(simulator.Counter); ok {
		progress.TotalBars = counter.TotalBars()
		if progress.TotalBars > 0 {
			progress.Percent = 100 * float64(e.barsProcessed) / float64(progress.TotalBars)
		}
	}
	if !e.startedAt.IsZero() {
		progress.Elapsed = time.Since(e.startedAt)
	}
	return progress
}

// GetPortfolioSnapshot returns a deep copy; callers can't mutate
// engine state through it.
func (e *Engine) GetPortfolioSnapshot() *domain.Portfolio {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.portfolio.DeepCopy()
}

func (e *Engine) replay() error {
	for {
		if !e.waitWhilePaused() {
			return nil
		}
		if !e.sim.HasMoreData() {
			return nil
		}

		bar, err := e.sim.NextBar()
		if err != nil {
			return fmt.Errorf("data source failed: %w", err)
		}
		if bar == nil {
			return nil
		}
		if !util.InRange(bar.Timestamp, e.config.StartDate, e.config.EndDate) {
			continue
		}

		if err := e.processBar(*bar); err != nil {
			return err
		}

		e.mu.Lock()
		e.barsProcessed++
		e.currentTime = bar.Timestamp
		n := e.barsProcessed
		e.mu.Unlock()

		if n%progressEventEvery == 0 {
			e.emit(Event{Type: EventType_Progress, Timestamp: bar.Timestamp, BarsProcessed: n})
		}
	}
}

// waitWhilePaused blocks while a pause is requested and reports false
// when the run should terminate. No data is consumed while paused.
func (e *Engine) waitWhilePaused() bool {
	e.mu.Lock()
	if e.stopRequested {
		e.mu.Unlock()
		return false
	}
	if !e.pauseRequested {
		e.mu.Unlock()
		return true
	}

	e.state = State_Paused
	e.mu.Unlock()
	e.emit(Event{Type: EventType_Paused, Timestamp: time.Now()})

	e.mu.Lock()
	for e.pauseRequested && !e.stopRequested {
		e.cond.Wait()
	}
	stopped := e.stopRequested
	if !stopped {
		e.state = State_Running
	}
	e.mu.Unlock()

	if stopped {
		return false
	}
	e.emit(Event{Type: EventType_Resumed, Timestamp: time.Now()})
	return true
}

func (e *Engine) processBar(bar domain.MarketData) error {
	e.markToMarket(bar)

	if observer, ok := e.exec.(execution.BarObserver); ok {
		observer.ObserveBar(bar)
	}

	signals, err := e.strat.OnBar(bar, e.portfolio)
	if err != nil {
		return fmt.Errorf("strategy %s failed: %w", e.strat.ID(), err)
	}

	// signals execute strictly in slice order
	for _, signal := range signals {
		trade := e.exec.ExecuteSignal(signal, bar, e.portfolio)
		if trade == nil {
			continue
		}
		applied := e.applyTrade(trade)
		if applied == nil {
			continue
		}
		if observer, ok := e.strat.(strategy.TradeObserver); ok {
			observer.OnTrade(*applied, e.portfolio)
		}
		e.emit(Event{Type: EventType_Trade, Timestamp: bar.Timestamp, Trade: applied})
	}

	e.recordEquity(bar.Timestamp)

	if e.config.BenchmarkSymbol != "" && bar.Symbol == e.config.BenchmarkSymbol {
		e.benchmarkPrices = append(e.benchmarkPrices, domain.AssetPrice{
			Symbol: bar.Symbol,
			Price:  decimal.NewFromFloat(bar.Close),
			Date:   bar.Timestamp,
		})
	}

	return nil
}

// markToMarket revalues only the bar's symbol; other symbols keep
// their market value from their own last bar.
func (e *Engine) markToMarket(bar domain.MarketData) {
	if position, ok := e.portfolio.Positions[bar.Symbol]; ok {
		position.MarketValue = position.Quantity * bar.Close
		position.UnrealizedPnL = (bar.Close - position.AveragePrice) * position.Quantity
	}

	total := e.portfolio.Cash
	for _, position := range e.portfolio.Positions {
		total += position.MarketValue
	}
	e.portfolio.TotalValue = total
	e.portfolio.TotalPnL = total - e.config.InitialCapital
}

// applyTrade mutates the portfolio and returns the trade as applied,
// or nil when clipping reduced it to nothing. Insufficient funds or
// shares never error.
func (e *Engine) applyTrade(trade *domain.Trade) *domain.Trade {
	switch trade.Side {
	case domain.TradeSide_Buy:
		return e.applyBuy(trade)
	case domain.TradeSide_Sell:
		return e.applySell(trade)
	}
	return nil
}

func (e *Engine) applyBuy(trade *domain.Trade) *domain.Trade {
	p := e.portfolio
	applied := *trade

	cost := applied.Quantity*applied.Price + applied.Commission + applied.Slippage
	if cost > p.Cash {
		perUnitSlippage := 0.0
		if applied.Quantity > 0 {
			perUnitSlippage = applied.Slippage / applied.Quantity
		}

		quantity := math.Floor(p.Cash / (applied.Price + perUnitSlippage))
		for quantity > 0 && quantity*(applied.Price+perUnitSlippage)+e.exec.CalculateCommission(quantity, applied.Price) > p.Cash {
			quantity--
		}
		if quantity <= 0 {
			return nil
		}

		applied.Quantity = quantity
		applied.Slippage = perUnitSlippage * quantity
		applied.Commission = e.exec.CalculateCommission(quantity, applied.Price)
		cost = quantity*applied.Price + applied.Commission + applied.Slippage
	}

	p.Cash -= cost

	position, ok := p.Positions[applied.Symbol]
	if !ok {
		p.Positions[applied.Symbol] = &domain.Position{
			Symbol:       applied.Symbol,
			Quantity:     applied.Quantity,
			AveragePrice: applied.Price,
			MarketValue:  applied.Quantity * applied.Price,
		}
	} else {
		// commission is not folded into the cost-basis blend
		newQuantity := position.Quantity + applied.Quantity
		position.AveragePrice = (position.Quantity*position.AveragePrice + applied.Quantity*applied.Price) / newQuantity
		position.Quantity = newQuantity
		position.MarketValue = newQuantity * applied.Price
	}

	p.Trades = append(p.Trades, applied)
	return &applied
}

func (e *Engine) applySell(trade *domain.Trade) *domain.Trade {
	p := e.portfolio
	position, ok := p.Positions[trade.Symbol]
	if !ok {
		return nil
	}

	applied := *trade
	if applied.Quantity > position.Quantity {
		if position.Quantity <= 0 {
			return nil
		}
		scale := position.Quantity / applied.Quantity
		applied.Slippage *= scale
		applied.Commission = e.exec.CalculateCommission(position.Quantity, applied.Price)
		applied.Quantity = position.Quantity
	}

	proceeds := applied.Quantity*applied.Price - applied.Commission - applied.Slippage
	// a sell never debits cash
	if proceeds < 0 {
		proceeds = 0
	}
	p.Cash += proceeds

	position.RealizedPnL += (applied.Price - position.AveragePrice) * applied.Quantity
	position.Quantity -= applied.Quantity
	position.MarketValue = position.Quantity * applied.Price
	if position.Quantity == 0 {
		delete(p.Positions, applied.Symbol)
	}

	p.Trades = append(p.Trades, applied)
	return &applied
}

func (e *Engine) recordEquity(ts time.Time) {
	// revalue after the bar's trades so the equity point reflects the
	// post-trade ledger
	total := e.portfolio.Cash
	for _, position := range e.portfolio.Positions {
		total += position.MarketValue
	}
	e.portfolio.TotalValue = total
	e.portfolio.TotalPnL = total - e.config.InitialCapital

	value := e.portfolio.TotalValue
	if value > e.peak {
		e.peak = value
	}
	drawdown := 0.0
	if e.peak > 0 {
		drawdown = (e.peak - value) / e.peak
	}

	e.equityCurve = append(e.equityCurve, domain.EquityPoint{
		Timestamp: ts,
		Value:     value,
		Drawdown:  drawdown,
	})
	e.snapshots = append(e.snapshots, domain.PositionSnapshot{
		Timestamp: ts,
		Positions: e.portfolio.SortedPositions(),
	})
}

func (e *Engine) buildResult() *domain.BacktestResult {
	equityCurve := make([]domain.EquityPoint, len(e.equityCurve))
	copy(equityCurve, e.equityCurve)
	snapshots := make([]domain.PositionSnapshot, len(e.snapshots))
	copy(snapshots, e.snapshots)

	portfolio := e.portfolio.DeepCopy()
	trades := make([]domain.Trade, len(portfolio.Trades))
	copy(trades, portfolio.Trades)

	strategyReturns := map[string][]float64{
		e.strat.ID(): equityToReturns(equityCurve),
	}
	if len(e.benchmarkPrices) > 0 {
		strategyReturns["benchmark"] = calculator.IntraPeriodChange(e.benchmarkPrices)
	}

	return &domain.BacktestResult{
		Config:          e.config,
		Portfolio:       portfolio,
		Metrics:         calculator.CalculateMetrics(equityCurve, trades, e.config.RiskFreeRate),
		EquityCurve:     equityCurve,
		Trades:          trades,
		Positions:       snapshots,
		StrategyReturns: strategyReturns,
	}
}

// equityToReturns converts the equity curve to cumulative percent
// change from its first point.
func equityToReturns(equityCurve []domain.EquityPoint) []float64 {
	out := make([]float64, 0, len(equityCurve))
	if len(equityCurve) == 0 {
		return out
	}
	base := equityCurve[0].Value
	for _, point := range equityCurve {
		if base == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, 100*(point.Value-base)/base)
	}
	return out
}

func (e *Engine) resetRunStateLocked() {
	e.pauseRequested = false
	e.stopRequested = false
	e.barsProcessed = 0
	e.currentTime = time.Time{}
	e.peak = 0
	e.equityCurve = nil
	e.snapshots = nil
	e.benchmarkPrices = nil
	e.portfolio.Reset(e.config.InitialCapital)
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// emit invokes listeners outside the engine mutex so they can call
// back into GetProgress or GetPortfolioSnapshot.
func (e *Engine) emit(event Event) {
	e.mu.Lock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}
