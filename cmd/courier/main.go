// Command courier runs simulated couriers against evolving delivery maps
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/courier/agent"
	"github.com/lixenwraith/courier/config"
	"github.com/lixenwraith/courier/genetic"
	"github.com/lixenwraith/courier/maze"
	"github.com/lixenwraith/courier/persistence"
	"github.com/lixenwraith/courier/render"
	"github.com/lixenwraith/courier/session"
)

// options holds parsed command-line values; zero values leave the config alone
type options struct {
	configPath string
	dumpConfig bool
	iterations int
	seed       uint64
	agents     string
	store      string
	storePath  string
	interval   time.Duration
	view       bool
	showMaps   bool
	debug      bool
	verbose    bool
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	fs.StringVar(&o.configPath, "config", "", "TOML configuration file")
	fs.BoolVar(&o.dumpConfig, "dump-config", false, "Print the effective configuration and exit")
	fs.IntVar(&o.iterations, "iterations", 0, "Simulate/evolve rounds (default from config)")
	fs.Uint64Var(&o.seed, "seed", 0, "Random seed; 0 uses the config seed or a random one")
	fs.StringVar(&o.agents, "agent", "", "Comma-separated agents to run: cautious,balanced,optimal")
	fs.StringVar(&o.store, "store", "", "Record backend: memory, csv, toml, sqlite")
	fs.StringVar(&o.storePath, "store-path", "", "Record directory or database file")
	fs.DurationVar(&o.interval, "interval", 0, "Pause between rounds")
	fs.BoolVar(&o.view, "view", false, "Replay each agent on its final map in the terminal")
	fs.BoolVar(&o.showMaps, "maps", false, "Print the final maps")
	fs.BoolVar(&o.debug, "debug", false, "Write debug logs to logs/courier.log")
	fs.BoolVar(&o.verbose, "v", false, "Log to stderr")
	err := fs.Parse(args)
	return o, err
}

// apply overlays flag values on cfg and revalidates
func (o options) apply(cfg *config.Config) error {
	if o.iterations > 0 {
		cfg.Run.Iterations = o.iterations
	}
	if o.seed != 0 {
		cfg.Run.Seed = o.seed
	}
	if o.agents != "" {
		var names []string
		for _, name := range strings.Split(o.agents, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		cfg.Run.Agents = names
	}
	if o.store != "" {
		cfg.Storage.Kind = o.store
	}
	if o.storePath != "" {
		cfg.Storage.Path = o.storePath
	}
	return cfg.Validate()
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	logger, logFile := setupLogging(opts.debug, opts.verbose)
	if logFile != nil {
		defer logFile.Close()
	}

	if err := run(opts, logger); err != nil {
		fmt.Fprintf(os.Stderr, "courier: %v\n", err)
		if logFile != nil {
			logFile.Close()
		}
		os.Exit(1)
	}
}

func run(opts options, logger *slog.Logger) error {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := opts.apply(&cfg); err != nil {
		return err
	}

	if opts.dumpConfig {
		return cfg.Write(os.Stdout)
	}

	seed := cfg.Run.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	solvers, err := cfg.Solvers()
	if err != nil {
		return err
	}

	sink, err := persistence.NewSink(cfg.Storage.Kind, cfg.Storage.Path)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sink.Init(ctx); err != nil {
		return fmt.Errorf("init %s store: %w", cfg.Storage.Kind, err)
	}
	defer sink.Close()

	generator := maze.NewGenerator(cfg.Policy())
	runner, err := session.NewRunner(rng, session.Options{
		Solvers:           solvers,
		Engine:            genetic.NewEngine(cfg.Genetic(), generator, logger),
		Model:             cfg.Model(),
		Generator:         generator,
		Sink:              sink,
		Logger:            logger,
		MapSize:           cfg.Map.Size,
		InitialDifficulty: cfg.Map.InitialDifficulty,
		Interval:          opts.interval,
	})
	if err != nil {
		return err
	}

	logger.Info("run started", "run_id", runner.RunID(), "seed", seed, "agents", strings.Join(cfg.Run.Agents, ","), "iterations", cfg.Run.Iterations)

	start := time.Now()
	outcomes, runErr := runner.Run(ctx, rng, cfg.Run.Iterations)
	printSummary(os.Stdout, runner, outcomes, time.Since(start))

	if opts.showMaps {
		printMaps(os.Stdout, runner)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logger.Warn("run interrupted", "outcomes", len(outcomes))
			return nil
		}
		return runErr
	}

	if opts.view {
		return view(ctx, runner, solvers, rng)
	}
	return nil
}

// view replays a fresh simulation of every solver on its final map
// The replay is not recorded.
func view(ctx context.Context, runner *session.Runner, solvers []agent.Solver, rng *rand.Rand) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer s.Fini()

	quit := make(chan struct{})
	next := make(chan struct{}, 1)
	go func() {
		for {
			switch ev := s.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					close(quit)
					return
				}
				select {
				case next <- struct{}{}:
				default:
				}
			}
		}
	}()

	viewCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-quit:
			cancel()
		case <-viewCtx.Done():
		}
	}()

	screen := render.NewScreen(s)
	maps := runner.Maps()
	levels := runner.Levels()
	for i, solver := range solvers {
		g := maps[i]
		tel := solver.Simulate(rng, g)

		screen.SetStatus(fmt.Sprintf("%s  difficulty %d  replaying", solver.Name(), levels[i]))
		if err := screen.Animate(viewCtx, g, tel.Trace, 60*time.Millisecond); err != nil {
			return nil
		}
		screen.SetStatus(fmt.Sprintf("%s  difficulty %d  solved=%t  %s  [any key: next, q: quit]",
			solver.Name(), levels[i], tel.Solved, tel.Header()))

		select {
		case <-viewCtx.Done():
			return nil
		case <-next:
		}
	}
	return nil
}
