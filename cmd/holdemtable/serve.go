package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemtable/cmd/holdemtable/shared"
	"github.com/lox/holdemtable/internal/config"
	"github.com/lox/holdemtable/internal/ledger"
	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/internal/server"
	"github.com/lox/holdemtable/internal/table"
)

// ServeCmd runs the WebSocket gateway for the configured tables
type ServeCmd struct {
	Config   string `short:"c" default:"holdemtable.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Address to bind to (overrides config)"`
	LogLevel string `short:"l" enum:",debug,info,warn,error" default:"" help:"Log level (overrides config)"`
	JSONLogs bool   `help:"Emit structured JSON logs"`
	Ledger   string `help:"Chip ledger file (overrides config; empty keeps chips in memory)"`
	Seed     int64  `help:"Deterministic shuffle seed (0 picks one)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Ledger != "" {
		cfg.Server.LedgerPath = c.Ledger
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	debug := shared.IsDebug(cfg.Server.LogLevel)
	logger := shared.SetupLogger(debug)
	if c.JSONLogs {
		logger = shared.SetupStructuredLogger(debug)
	}
	if level, err := zerolog.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	var store ledger.ChipStore = ledger.NewMemoryStore()
	if cfg.Server.LedgerPath != "" {
		fs, err := ledger.OpenFileStore(cfg.Server.LedgerPath, logger)
		if err != nil {
			return err
		}
		store = fs
	}

	_, seed := randutil.NewUnseeded(c.Seed)
	logger.Info().Int64("seed", seed).Msg("Using shuffle seed")

	manager := table.NewManager(logger)
	for i, tc := range cfg.Tables {
		tbl, err := table.New(table.Settings{
			ID:            tc.ID,
			Rules:         tc.EngineConfig(),
			StartingChips: tc.StartingChips,
			AutoStart:     tc.AutoStart,
			NextHandDelay: tc.NextHandDelay(),
			SweepInterval: cfg.SweepInterval(),
		},
			table.WithStore(store),
			table.WithLogger(logger),
			table.WithRNG(randutil.Derive(seed, i)),
		)
		if err != nil {
			return err
		}
		if err := manager.Add(tbl); err != nil {
			return err
		}
	}

	gateway := server.NewServer(manager, shared.SetupCharmLogger(os.Stderr, cfg.Server.LogLevel))

	logger.Info().
		Str("address", cfg.Server.Address).
		Int("tables", len(cfg.Tables)).
		Str("ledger", cfg.Server.LedgerPath).
		Dur("sweep_interval", cfg.SweepInterval()).
		Msg("Starting holdemtable server")

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return manager.Run(ctx) })
	g.Go(func() error { return gateway.ListenAndServe(ctx, cfg.Server.Address) })
	return g.Wait()
}
