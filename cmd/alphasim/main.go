package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"alphasim/internal/domain"
	"alphasim/internal/engine"
	"alphasim/internal/execution"
	"alphasim/internal/loader"
	"alphasim/internal/simulator"
	"alphasim/internal/strategy"
	"alphasim/pkg/treasury"
)

type runFlags struct {
	csvPath      string
	yahoo        bool
	symbol       string
	start        string
	end          string
	capital      float64
	commission   float64
	slippage     float64
	strategy     string
	benchmark    string
	riskFree     float64
	treasuryRate bool
	advanced     bool
}

func main() {
	root := &cobra.Command{
		Use:   "alphasim",
		Short: "deterministic bar-replay backtesting",
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newSynthCmd())
	root.AddCommand(newCrashCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	flags := runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "backtest a strategy over historical bars from csv or yahoo",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				bars []domain.MarketData
				err  error
			)
			start, end, err := parseRange(flags.start, flags.end)
			if err != nil {
				return err
			}

			if flags.csvPath != "" {
				bars, err = loader.BarsFromCSV(flags.csvPath, flags.symbol)
			} else if flags.yahoo {
				bars, err = loader.BarsFromYahoo(flags.symbol, start, end)
			} else {
				return fmt.Errorf("either --csv or --yahoo is required")
			}
			if err != nil {
				return err
			}

			sim := simulator.NewHistorical(bars)
			return runBacktest(sim, flags, start, end)
		},
	}
	addRunFlags(cmd, &flags)
	cmd.Flags().StringVar(&flags.csvPath, "csv", "", "csv file of ohlcv bars")
	cmd.Flags().BoolVar(&flags.yahoo, "yahoo", false, "load daily bars from yahoo finance")
	return cmd
}

func newSynthCmd() *cobra.Command {
	flags := runFlags{}
	var (
		bars  int
		trend float64
		vol   float64
		price float64
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "backtest a strategy over a synthetic GBM series",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(flags.start, flags.end)
			if err != nil {
				return err
			}
			series := simulator.GenerateGBM(simulator.GBMConfig{
				Symbol:     flags.symbol,
				StartPrice: price,
				Trend:      trend,
				Volatility: vol,
				Bars:       bars,
				Start:      start,
				Interval:   24 * time.Hour,
				Seed:       seed,
			})
			sim := simulator.NewHistorical(series)
			return runBacktest(sim, flags, start, end)
		},
	}
	addRunFlags(cmd, &flags)
	cmd.Flags().IntVar(&bars, "bars", 252, "number of bars to generate")
	cmd.Flags().Float64Var(&trend, "trend", 0.08, "annualized drift")
	cmd.Flags().Float64Var(&vol, "vol", 0.20, "annualized volatility")
	cmd.Flags().Float64Var(&price, "price", 100, "starting price")
	cmd.Flags().Int64Var(&seed, "seed", 42, "rng seed")
	return cmd
}

func newCrashCmd() *cobra.Command {
	flags := runFlags{}
	var (
		price float64
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "crash",
		Short: "backtest a strategy through a synthetic crash scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(flags.start, flags.end)
			if err != nil {
				return err
			}
			series := simulator.GenerateCrashScenario(simulator.CrashConfig{
				Symbol:       flags.symbol,
				StartPrice:   price,
				NormalBars:   120,
				CrashBars:    30,
				RecoveryBars: 100,
				Start:        start,
				Interval:     24 * time.Hour,
				Seed:         seed,
			})
			sim := simulator.NewHistorical(series)
			return runBacktest(sim, flags, start, end)
		},
	}
	addRunFlags(cmd, &flags)
	cmd.Flags().Float64Var(&price, "price", 100, "starting price")
	cmd.Flags().Int64Var(&seed, "seed", 42, "rng seed")
	return cmd
}

func addRunFlags(cmd *cobra.Command, flags *runFlags) {
	cmd.Flags().StringVar(&flags.symbol, "symbol", "SPY", "symbol to trade")
	cmd.Flags().StringVar(&flags.start, "start", "2020-01-01", "backtest start date")
	cmd.Flags().StringVar(&flags.end, "end", "2100-01-01", "backtest end date")
	cmd.Flags().Float64Var(&flags.capital, "capital", 100_000, "initial capital")
	cmd.Flags().Float64Var(&flags.commission, "commission", 0.001, "commission rate")
	cmd.Flags().Float64Var(&flags.slippage, "slippage", 0.0005, "slippage rate")
	cmd.Flags().StringVar(&flags.strategy, "strategy", "sma", "buyhold|sma|rsi|momentum|bollinger|ensemble")
	cmd.Flags().StringVar(&flags.benchmark, "benchmark", "", "benchmark symbol")
	cmd.Flags().Float64Var(&flags.riskFree, "risk-free", 0.02, "annualized risk-free rate")
	cmd.Flags().BoolVar(&flags.treasuryRate, "treasury-rate", false, "fetch the risk-free rate from the treasury yield curve at the start date")
	cmd.Flags().BoolVar(&flags.advanced, "advanced-execution", false, "volume-aware execution model")
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad --start: %w", err)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad --end: %w", err)
	}
	return s, e, nil
}

func buildStrategy(name string) (strategy.Strategy, error) {
	switch name {
	case "buyhold":
		return strategy.NewBuyAndHold(), nil
	case "sma":
		return strategy.NewSMACross(10, 30), nil
	case "rsi":
		return strategy.NewRSIMeanReversion(14, 30, 70), nil
	case "momentum":
		return strategy.NewMomentum(20, 0.05), nil
	case "bollinger":
		return strategy.NewBollingerBands(20, 2), nil
	case "ensemble":
		return strategy.NewEnsemble("ensemble", strategy.DefaultVotePolicy(),
			strategy.NewSMACross(10, 30),
			strategy.NewRSIMeanReversion(14, 30, 70),
			strategy.NewMomentum(20, 0.05),
		), nil
	}
	return nil, fmt.Errorf("unknown strategy %q", name)
}

func runBacktest(sim simulator.Simulator, flags runFlags, start, end time.Time) error {
	strat, err := buildStrategy(flags.strategy)
	if err != nil {
		return err
	}

	if flags.treasuryRate {
		rate, err := treasury.RiskFreeRate(start)
		if err != nil {
			return fmt.Errorf("failed to fetch treasury rate: %w", err)
		}
		flags.riskFree = rate
	}

	config := domain.BacktestConfig{
		StartDate:       start,
		EndDate:         end,
		InitialCapital:  flags.capital,
		Symbols:         sim.Symbols(),
		Commission:      flags.commission,
		Slippage:        flags.slippage,
		BenchmarkSymbol: flags.benchmark,
		RiskFreeRate:    flags.riskFree,
	}

	var model execution.Model
	if flags.advanced {
		model = execution.NewAdvanced(flags.commission, flags.slippage)
	} else {
		model = execution.NewRealistic(flags.commission, flags.slippage)
	}

	eng, err := engine.New(config, sim, strat, model)
	if err != nil {
		return err
	}

	result, err := eng.Run()
	if err != nil {
		return err
	}

	printReport(result)
	return nil
}
