package genetic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/lixenwraith/courier/difficulty"
	"github.com/lixenwraith/courier/genetic/fitness"
	"github.com/lixenwraith/courier/grid"
	"github.com/lixenwraith/courier/maze"
	"github.com/lixenwraith/courier/parameter"
	"github.com/lixenwraith/courier/tracking"
)

// --- Algorithm Engine ---

// Config holds configuration parameters for the algorithm
type Config struct {
	// PopulationSize is the number of candidate maps in each generation
	PopulationSize int
	// Generations is the number of evaluation rounds
	Generations int
	// CrossoverRate is the probability a reproduction step recombines two parents
	CrossoverRate float64
	// MutationRate is the per-cell mutation probability for every non-elite child
	MutationRate float64
	// Parallelism bounds concurrent fitness evaluations
	Parallelism int
	// MapSize is the side length of every candidate
	MapSize int
	// Selection names the parent selector, see NewSelector
	Selection string
	// TournamentSize is used by tournament selection only
	TournamentSize int

	Weights         fitness.Weights
	MutationWeights TileWeights
}

// DefaultConfig returns a reasonable default configuration.
func DefaultConfig() Config {
	return Config{
		PopulationSize:  parameter.GAPopulationSize,
		Generations:     parameter.GAGenerations,
		CrossoverRate:   parameter.GACrossoverRate,
		MutationRate:    parameter.GAMutationRate,
		Parallelism:     parameter.GAParallelism,
		MapSize:         parameter.DefaultMapSize,
		Selection:       parameter.GASelection,
		TournamentSize:  parameter.GATournamentSize,
		Weights:         fitness.DefaultWeights(),
		MutationWeights: DefaultTileWeights(),
	}
}

// Validate rejects configurations the engine cannot run
func (c Config) Validate() error {
	var errs []error
	if c.PopulationSize < 2 {
		errs = append(errs, fmt.Errorf("population size %d below 2", c.PopulationSize))
	}
	if c.Generations < 1 {
		errs = append(errs, fmt.Errorf("generations %d below 1", c.Generations))
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		errs = append(errs, fmt.Errorf("crossover rate %v outside [0,1]", c.CrossoverRate))
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		errs = append(errs, fmt.Errorf("mutation rate %v outside [0,1]", c.MutationRate))
	}
	if c.MapSize < parameter.MinMapSize {
		errs = append(errs, fmt.Errorf("map size %d below %d", c.MapSize, parameter.MinMapSize))
	}
	if _, err := NewSelector(c.Selection, c.TournamentSize); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Result is the outcome of one Run
type Result struct {
	// Grid is the repaired best map, or a freshly generated one when Fallback is set
	Grid    *grid.Grid
	Fitness float64
	Metrics tracking.MetricBundle
	// History holds one entry per evaluated generation
	History []PoolStats
	Elapsed time.Duration
	// Fallback is set when no evolved candidate survived the final repair
	Fallback bool
}

// Engine is the main genetic algorithm execution engine
// It coordinates all operators and manages the evolution process
type Engine struct {
	generator   *maze.Generator
	aggregator  fitness.Aggregator
	selector    Selector
	combiner    Combiner
	perturbator Perturbator

	config Config
	logger *slog.Logger
}

// NewEngine creates an engine with the configured selection, row-split crossover and tile mutation
func NewEngine(config Config, generator *maze.Generator, logger *slog.Logger) *Engine {
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	if generator == nil {
		generator = maze.NewGenerator(maze.DefaultPolicy())
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	selector, err := NewSelector(config.Selection, config.TournamentSize)
	if err != nil {
		logger.Warn("unknown selection, using uniform", "selection", config.Selection)
		selector = UniformSelector{}
	}

	return &Engine{
		generator:   generator,
		aggregator:  fitness.NewDistanceAggregator(config.Weights),
		selector:    selector,
		combiner:    RowSplitCombiner{},
		perturbator: NewTileMutator(config.MutationWeights),
		config:      config,
		logger:      logger,
	}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// Run evolves maps toward targets
// It always returns a usable map. A cancelled context stops between
// generations; the best map so far is finalised and returned with ctx.Err().
func (e *Engine) Run(ctx context.Context, rng *rand.Rand, targets difficulty.Targets) (Result, error) {
	begin := time.Now()
	tctx := fitness.TargetContext(targets)

	current := e.initializePool(rng, targets)
	history := make([]PoolStats, 0, e.config.Generations)

	var best *Candidate
	var runErr error

	for gen := 0; gen < e.config.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		e.evaluate(current, tctx)
		current.Generation = gen
		current.Stats = calculateStats(current)
		history = append(history, current.Stats)

		roundBest := current.best()
		if best == nil || roundBest.Score > best.Score {
			snapshot := Candidate{
				Grid:    roundBest.Grid.Clone(),
				Score:   roundBest.Score,
				Metrics: roundBest.Metrics.Clone(),
			}
			best = &snapshot
		}

		e.logger.Debug("generation evaluated",
			"generation", gen,
			"best", current.Stats.BestScore,
			"average", current.Stats.AverageScore,
			"worst", current.Stats.WorstScore,
			"repaired", current.Stats.Repaired,
		)

		if gen < e.config.Generations-1 {
			current = e.reproduce(current, roundBest, rng)
		}
	}

	result := e.finalize(best, rng, targets, tctx)
	result.History = history
	result.Elapsed = time.Since(begin)
	return result, runErr
}

// initializePool fills the first generation from the procedural generator
func (e *Engine) initializePool(rng *rand.Rand, targets difficulty.Targets) *Pool {
	members := make([]Candidate, e.config.PopulationSize)
	for i := range members {
		g, _ := e.generator.Generate(rng, e.config.MapSize, targets.PickupCount(), targets.EmptyCount())
		members[i] = Candidate{Grid: g}
	}
	return &Pool{Members: members}
}

// evaluate scores every member concurrently
// Each task owns exactly one slot, and Wait is the barrier before selection.
func (e *Engine) evaluate(p *Pool, tctx fitness.Context) {
	workers := pool.New().WithMaxGoroutines(e.config.Parallelism)
	for i := range p.Members {
		c := &p.Members[i]
		workers.Go(func() {
			c.Score, c.Metrics = e.score(c.Grid, tctx)
		})
	}
	workers.Wait()
}

// score repairs g in place and grades it; unrepairable maps score 0
func (e *Engine) score(g *grid.Grid, tctx fitness.Context) (float64, tracking.MetricBundle) {
	if !maze.Repair(g) {
		return 0, nil
	}
	metrics := fitness.Observe(g)
	return e.aggregator.Calculate(metrics, tctx), metrics
}

// reproduce builds the next generation around an unmutated elite clone
func (e *Engine) reproduce(current *Pool, elite Candidate, rng *rand.Rand) *Pool {
	size := e.config.PopulationSize
	next := make([]Candidate, 0, size)
	next = append(next, Candidate{Grid: elite.Grid.Clone()})

	for len(next) < size {
		parents := e.selector.Select(current, 2, rng)

		var offspring []*grid.Grid
		if rng.Float64() < e.config.CrossoverRate {
			offspring = e.combiner.Combine(parents, rng)
		} else {
			offspring = []*grid.Grid{parents[rng.IntN(len(parents))].Grid.Clone()}
		}

		for _, child := range offspring {
			e.perturbator.Perturb(child, e.config.MutationRate, rng)
			next = append(next, Candidate{Grid: child})
			if len(next) >= size {
				break
			}
		}
	}

	return &Pool{Members: next, Generation: current.Generation + 1}
}

// finalize re-repairs the best-ever map, regenerating when that fails
func (e *Engine) finalize(best *Candidate, rng *rand.Rand, targets difficulty.Targets, tctx fitness.Context) Result {
	if best != nil && best.Score > 0 {
		g := best.Grid.Clone()
		if maze.Repair(g) {
			score, metrics := e.score(g, tctx)
			return Result{Grid: g, Fitness: score, Metrics: metrics}
		}
	}

	g, report := e.generator.Generate(rng, e.config.MapSize, targets.PickupCount(), targets.EmptyCount())
	e.logger.Info("no evolved map survived, using generated map",
		"attempts", report.Attempts,
		"degraded", report.Fallback,
	)

	score, metrics := e.score(g.Clone(), tctx)
	return Result{Grid: g, Fitness: score, Metrics: metrics, Fallback: true}
}

// best returns the highest scoring member; earlier members win ties
func (p *Pool) best() Candidate {
	best := p.Members[0]
	for _, c := range p.Members[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best
}

// calculateStats computes statistical measures for a candidate pool
func calculateStats(p *Pool) PoolStats {
	if len(p.Members) == 0 {
		return PoolStats{Generation: p.Generation}
	}

	stats := PoolStats{
		Generation: p.Generation,
		BestScore:  p.Members[0].Score,
		WorstScore: p.Members[0].Score,
	}

	var total float64
	for _, c := range p.Members {
		stats.BestScore = max(stats.BestScore, c.Score)
		stats.WorstScore = min(stats.WorstScore, c.Score)
		total += c.Score
		if c.Metrics != nil {
			stats.Repaired++
		}
	}
	stats.AverageScore = total / float64(len(p.Members))

	return stats
}
