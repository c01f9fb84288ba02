package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/needsim/internal/config"
	"github.com/talgya/needsim/internal/engine"
	"github.com/talgya/needsim/internal/persistence"
	"github.com/talgya/needsim/internal/world"
)

var runFlags struct {
	ticks   uint64
	agents  int
	seed    int64
	db      string
	logJSON bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	f := runCmd.Flags()
	f.Uint64Var(&runFlags.ticks, "ticks", 0, "ticks to run (0 = until interrupted; overrides config)")
	f.IntVar(&runFlags.agents, "agents", 0, "population size (overrides config)")
	f.Int64Var(&runFlags.seed, "seed", 0, "world seed (overrides config)")
	f.StringVar(&runFlags.db, "db", "", "journal path; \"-\" disables the journal (overrides config)")
	f.BoolVar(&runFlags.logJSON, "log-json", false, "log as JSON")
}

// loadConfig reads the config file and applies explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("ticks") {
		cfg.Sim.Ticks = runFlags.ticks
	}
	if flags.Changed("agents") {
		cfg.Sim.Agents = runFlags.agents
	}
	if flags.Changed("seed") {
		cfg.Sim.Seed = runFlags.seed
	}
	if flags.Changed("db") {
		cfg.Storage.Path = runFlags.db
		if runFlags.db == "-" {
			cfg.Storage.Path = ""
		}
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = runFlags.logJSON
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Log.JSON {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// simOptions converts the config into simulation options.
func simOptions(cfg *config.Config) (engine.Options, error) {
	step, err := cfg.StepDuration()
	if err != nil {
		return engine.Options{}, err
	}
	nc, err := cfg.NeedsSettings()
	if err != nil {
		return engine.Options{}, err
	}
	weights, err := cfg.PriorityWeights()
	if err != nil {
		return engine.Options{}, err
	}
	gen := world.DefaultGenConfig()
	if cfg.Sim.World == "small" {
		gen = world.SmallTestConfig()
	}
	return engine.Options{
		Seed:        cfg.Sim.Seed,
		Agents:      cfg.Sim.Agents,
		Step:        step,
		Gen:         gen,
		Needs:       nc,
		Weights:     weights,
		MinPriority: cfg.Arbitration.MinPriority,
		Temperature: cfg.Arbitration.Temperature,
		FlushEvery:  cfg.Storage.FlushEvery,
	}, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := setupLogging(cfg); err != nil {
		return err
	}

	// ── Journal ───────────────────────────────────────────────────────
	var db *persistence.DB
	var journal engine.Journal
	if cfg.Storage.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		var err error
		db, err = persistence.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		journal = db
		slog.Info("journal opened", "path", cfg.Storage.Path)
	} else {
		slog.Warn("journal disabled, nothing will be persisted")
	}

	// ── Simulation ────────────────────────────────────────────────────
	opts, err := simOptions(cfg)
	if err != nil {
		return err
	}
	sim, err := engine.NewSimulation(opts, journal)
	if err != nil {
		return err
	}

	eng := engine.NewEngine(opts.Step)
	interval, err := cfg.TickInterval()
	if err != nil {
		return err
	}
	eng.Interval = interval

	if db != nil {
		// Tick numbers stay monotonic across runs sharing a journal.
		last, ok, err := db.LastTick()
		if err != nil {
			return fmt.Errorf("read journal: %w", err)
		}
		if ok {
			eng.Tick = last
			slog.Info("journal continues", "from_tick", humanize.Comma(int64(last)))
		}
		if err := db.SaveMeta("seed", strconv.FormatInt(cfg.Sim.Seed, 10)); err != nil {
			return fmt.Errorf("save meta: %w", err)
		}
	}
	if cfg.Sim.Ticks > 0 {
		eng.MaxTicks = eng.Tick + cfg.Sim.Ticks
	}

	eng.OnTick = sim.TickMinute
	eng.OnHour = sim.TickHour
	eng.OnDay = sim.TickDay

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })
	runErr := g.Wait()
	if errors.Is(runErr, context.Canceled) {
		slog.Info("interrupted, shutting down")
		runErr = nil
	}

	if err := sim.Close(); err != nil {
		slog.Error("final flush failed", "error", err)
	}
	sim.Report(eng.Tick)
	if db != nil {
		summarize(db)
	}
	return runErr
}
