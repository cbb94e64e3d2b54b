// Command play lets a human courier solve maps that adapt to their play
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/courier/agent"
	"github.com/lixenwraith/courier/audio"
	"github.com/lixenwraith/courier/config"
	"github.com/lixenwraith/courier/genetic"
	"github.com/lixenwraith/courier/input"
	"github.com/lixenwraith/courier/maze"
	"github.com/lixenwraith/courier/persistence"
	"github.com/lixenwraith/courier/render"
	"github.com/lixenwraith/courier/session"
)

var (
	configPath = flag.String("config", "", "TOML configuration file")
	storeKind  = flag.String("store", "", "Record backend: memory, csv, toml, sqlite")
	storePath  = flag.String("store-path", "", "Record directory or database file")
	seedFlag   = flag.Uint64("seed", 0, "Random seed; 0 picks one")
	muteFlag   = flag.Bool("mute", false, "Start with sound muted")
	nameFlag   = flag.String("name", "human", "Player label written to records")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "play: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *storeKind != "" {
		cfg.Storage.Kind = *storeKind
	}
	if *storePath != "" {
		cfg.Storage.Path = *storePath
	}

	seed := *seedFlag
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	sink, err := persistence.NewSink(cfg.Storage.Kind, cfg.Storage.Path)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := sink.Init(ctx); err != nil {
		return fmt.Errorf("init %s store: %w", cfg.Storage.Kind, err)
	}
	defer sink.Close()

	cues := audio.NewCues()
	var audioErr error
	if audioErr = cues.Init(); audioErr == nil {
		defer cues.Close()
	}
	cues.SetMuted(*muteFlag)

	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}

	// Report panics after the deferred Fini has restored the terminal
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n\x1b[31mPLAY CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()
	defer s.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	screen := render.NewScreen(s)
	if audioErr != nil {
		screen.SetStatus(fmt.Sprintf("sound unavailable: %v", audioErr))
	}

	p := &player{screen: screen, events: events, cues: cues, resize: screen.Resize}
	human := &input.Solver{Label: *nameFlag, Play: p.play}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	generator := maze.NewGenerator(cfg.Policy())
	runner, err := session.NewRunner(rng, session.Options{
		Solvers:           []agent.Solver{human},
		Engine:            genetic.NewEngine(cfg.Genetic(), generator, logger),
		Model:             cfg.Model(),
		Generator:         generator,
		Sink:              sink,
		Logger:            logger,
		MapSize:           cfg.Map.Size,
		InitialDifficulty: cfg.Map.InitialDifficulty,
	})
	if err != nil {
		return err
	}

	for i := 0; !p.quit; i++ {
		p.level = runner.Levels()[0]
		if _, err := runner.Step(ctx, rng, i); err != nil {
			return err
		}
	}
	return runner.Finish(ctx)
}
