package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"alphasim/internal/domain"
)

const defaultBaseVolume = 1_000_000

// GBMConfig parameterizes a single-asset geometric-brownian-motion
// series. Trend and Volatility are annualized.
type GBMConfig struct {
	Symbol     string
	StartPrice float64
	Trend      float64
	Volatility float64
	Bars       int
	Start      time.Time
	Interval   time.Duration
	BaseVolume float64
	Seed       int64
}

// GenerateGBM produces an OHLCV series whose close evolves as
// price * exp(trend*dt + volatility*sqrt(dt)*Z) with Z standard normal.
// The series is fully determined by the seed.
func GenerateGBM(cfg GBMConfig) []domain.MarketData {
	rng := rand.New(rand.NewSource(cfg.Seed))
	return generateGBMWithDt(rng, cfg, yearsPerBar(cfg.Interval))
}

func generateGBMWithDt(rng *rand.Rand, cfg GBMConfig, dt float64) []domain.MarketData {
	baseVolume := cfg.BaseVolume
	if baseVolume <= 0 {
		baseVolume = defaultBaseVolume
	}
	bars := make([]domain.MarketData, 0, cfg.Bars)
	prevClose := cfg.StartPrice
	ts := cfg.Start
	for i := 0; i < cfg.Bars; i++ {
		open := prevClose
		z := boxMuller(rng)
		close := open * math.Exp(cfg.Trend*dt+cfg.Volatility*math.Sqrt(dt)*z)

		// high/low widen the open/close extremes by bounded randomness
		high := math.Max(open, close) * (1 + rng.Float64()*0.003)
		low := math.Min(open, close) * (1 - rng.Float64()*0.003)

		// volume tracks the magnitude of the bar's move
		move := math.Abs(close-open) / open
		volume := baseVolume * (1 + 5*move) * (0.75 + rng.Float64()*0.5)

		bars = append(bars, domain.MarketData{
			Timestamp: ts,
			Symbol:    cfg.Symbol,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
			VWAP:      (high + low + close) / 3,
		})

		prevClose = close
		ts = ts.Add(cfg.Interval)
	}

	return bars
}

// CorrelatedConfig parameterizes multi-asset generation where the
// assets' standard-normal draws are correlated via the supplied matrix.
type CorrelatedConfig struct {
	Symbols     []string
	StartPrices []float64
	Correlation [][]float64
	Trend       float64
	Volatility  float64
	Bars        int
	Start       time.Time
	Interval    time.Duration
	BaseVolume  float64
	Seed        int64
}

// GenerateCorrelated applies a Cholesky decomposition of the
// correlation matrix to independent standard-normal draws before
// evolving each asset's price. Mismatched symbol/matrix/price-vector
// dimensions are a fatal configuration error.
func GenerateCorrelated(cfg CorrelatedConfig) (map[string][]domain.MarketData, error) {
	n := len(cfg.Symbols)
	if n == 0 {
		return nil, fmt.Errorf("correlated generation requires at least one symbol")
	}
	if len(cfg.StartPrices) != n {
		return nil, fmt.Errorf("got %d start prices for %d symbols", len(cfg.StartPrices), n)
	}
	if len(cfg.Correlation) != n {
		return nil, fmt.Errorf("correlation matrix has %d rows for %d symbols", len(cfg.Correlation), n)
	}
	for i, row := range cfg.Correlation {
		if len(row) != n {
			return nil, fmt.Errorf("correlation matrix row %d has %d columns, want %d", i, len(row), n)
		}
	}

	chol, err := cholesky(cfg.Correlation)
	if err != nil {
		return nil, err
	}

	baseVolume := cfg.BaseVolume
	if baseVolume <= 0 {
		baseVolume = defaultBaseVolume
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	dt := yearsPerBar(cfg.Interval)

	out := map[string][]domain.MarketData{}
	for _, symbol := range cfg.Symbols {
		out[symbol] = make([]domain.MarketData, 0, cfg.Bars)
	}

	prevCloses := make([]float64, n)
	copy(prevCloses, cfg.StartPrices)

	ts := cfg.Start
	for i := 0; i < cfg.Bars; i++ {
		independent := make([]float64, n)
		for j := range independent {
			independent[j] = boxMuller(rng)
		}
		correlated := applyLower(chol, independent)

		for j, symbol := range cfg.Symbols {
			open := prevCloses[j]
			close := open * math.Exp(cfg.Trend*dt+cfg.Volatility*math.Sqrt(dt)*correlated[j])
			high := math.Max(open, close) * (1 + rng.Float64()*0.003)
			low := math.Min(open, close) * (1 - rng.Float64()*0.003)
			move := math.Abs(close-open) / open
			volume := baseVolume * (1 + 5*move) * (0.75 + rng.Float64()*0.5)

			out[symbol] = append(out[symbol], domain.MarketData{
				Timestamp: ts,
				Symbol:    symbol,
				Open:      open,
				High:      high,
				Low:       low,
				Close:     close,
				Volume:    volume,
				VWAP:      (high + low + close) / 3,
			})
			prevCloses[j] = close
		}
		ts = ts.Add(cfg.Interval)
	}

	return out, nil
}

// CrashConfig parameterizes a three-phase scenario: normal regime,
// high-volatility crash, moderate-volatility recovery.
type CrashConfig struct {
	Symbol       string
	StartPrice   float64
	NormalBars   int
	CrashBars    int
	RecoveryBars int
	Start        time.Time
	Interval     time.Duration
	BaseVolume   float64
	Seed         int64
}

// GenerateCrashScenario concatenates the three phases, each seeded from
// the prior phase's closing price.
func GenerateCrashScenario(cfg CrashConfig) []domain.MarketData {
	rng := rand.New(rand.NewSource(cfg.Seed))

	phases := []struct {
		bars       int
		trend      float64
		volatility float64
	}{
		{cfg.NormalBars, 0.05, 0.15},
		{cfg.CrashBars, -2.0, 0.80},
		{cfg.RecoveryBars, 0.30, 0.30},
	}

	out := []domain.MarketData{}
	price := cfg.StartPrice
	start := cfg.Start
	for _, phase := range phases {
		bars := generateGBMWithDt(rng, GBMConfig{
			Symbol:     cfg.Symbol,
			StartPrice: price,
			Trend:      phase.trend,
			Volatility: phase.volatility,
			Bars:       phase.bars,
			Start:      start,
			Interval:   cfg.Interval,
			BaseVolume: cfg.BaseVolume,
		}, yearsPerBar(cfg.Interval))
		if len(bars) > 0 {
			price = bars[len(bars)-1].Close
			start = bars[len(bars)-1].Timestamp.Add(cfg.Interval)
		}
		out = append(out, bars...)
	}

	return out
}

func yearsPerBar(interval time.Duration) float64 {
	return interval.Hours() / (365.25 * 24)
}

// boxMuller draws one standard-normal sample.
func boxMuller(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// cholesky returns the lower-triangular factor L with L*Lᵀ = m. The
// matrix must be symmetric positive definite.
func cholesky(m [][]float64) ([][]float64, error) {
	n := len(m)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := m[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum <= 0 {
					return nil, fmt.Errorf("correlation matrix is not positive definite")
				}
				l[i][j] = math.Sqrt(sum)
			} else {
				l[i][j] = sum / l[j][j]
			}
		}
	}

	return l, nil
}

func applyLower(l [][]float64, v []float64) []float64 {
	out := make([]float64, len(v))
	for i := range l {
		for j := 0; j <= i; j++ {
			out[i] += l[i][j] * v[j]
		}
	}
	return out
}
