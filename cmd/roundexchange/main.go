package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/efreitasn/roundexchange/internal/config"
	"github.com/efreitasn/roundexchange/internal/logging"
	"github.com/efreitasn/roundexchange/internal/metrics"
	"github.com/efreitasn/roundexchange/internal/report"
	"github.com/efreitasn/roundexchange/internal/scenario"
	"github.com/efreitasn/roundexchange/internal/service"
	"github.com/efreitasn/roundexchange/internal/simulation"
)

func main() {
	envPath := flag.String("env", ".env", "Path to an optional env file")
	scenarioPath := flag.String("scenario", "", "Scenario file (overrides SCENARIO)")
	rounds := flag.Int("rounds", 0, "Number of rounds to run (overrides ROUNDS)")
	seed := flag.Int64("seed", 0, "Random seed, 0 picks one from the clock (overrides SEED)")
	asJSON := flag.Bool("json", false, "Print the report as JSON")
	showMetrics := flag.Bool("metrics", false, "Include counters in the report")
	ordersOf := flag.Int("orders", 0, "Also list the newest orders of this account id")
	flag.Parse()

	if err := run(*envPath, *scenarioPath, *rounds, *seed, *asJSON, *showMetrics, *ordersOf); err != nil {
		fmt.Fprintln(os.Stderr, "roundexchange:", err)
		os.Exit(1)
	}
}

func run(envPath, scenarioPath string, rounds int, seed int64, asJSON, showMetrics bool, ordersOf int) error {
	cfg, err := config.Load(envPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if scenarioPath != "" {
		cfg.Scenario = scenarioPath
	}
	if rounds > 0 {
		cfg.Rounds = rounds
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Scenario == "" {
		return fmt.Errorf("no scenario: pass -scenario or set SCENARIO")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	sc, err := scenario.Load(cfg.Scenario)
	if err != nil {
		return err
	}

	market := simulation.NewMarket()
	traders, err := sc.Populate(market, cfg.Seed)
	if err != nil {
		return fmt.Errorf("populate market: %w", err)
	}

	m := metrics.New()
	sim, err := simulation.New(market, traders, simulation.Config{
		Seed:        cfg.Seed,
		HistorySize: cfg.HistorySize,
		Logger:      logger,
		Metrics:     m,
	})
	if err != nil {
		return err
	}

	logger.Info("scenario loaded",
		zap.String("path", cfg.Scenario),
		zap.Int("traders", len(traders)),
		zap.Int("instruments", len(sc.Listings)),
		zap.Int64("seed", cfg.Seed),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := sim.Run(ctx, cfg.Rounds)
	// An interrupted run still reports the rounds it completed.
	if err != nil && ctx.Err() == nil {
		return err
	}

	b := &report.Builder{
		Market: service.NewMarketService(market.Instruments, market.Accounts, market.Trades,
			market.Books, sim.History(), cfg.VWAPWindow),
		Accounts: service.NewAccountService(market.Accounts, market.Orders),
		Depth:    cfg.BookDepth,
	}
	r, err := b.Build(cfg.Seed, summary)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if ordersOf != 0 {
		if r.Orders, err = b.AccountOrders(ordersOf, 20); err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
	}
	if showMetrics {
		if r.Metrics, err = m.Snapshot(); err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
	}

	if asJSON {
		return report.WriteJSON(os.Stdout, r)
	}
	return report.WriteText(os.Stdout, r)
}
