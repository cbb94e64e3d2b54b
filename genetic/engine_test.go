package genetic

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/courier/difficulty"
	"github.com/lixenwraith/courier/genetic/fitness"
	"github.com/lixenwraith/courier/grid"
	"github.com/lixenwraith/courier/maze"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.PopulationSize = 16
	cfg.Generations = 4
	cfg.MapSize = 8
	cfg.Parallelism = 4
	return cfg
}

func TestEngine_RunProducesRepairedMap(t *testing.T) {
	e := NewEngine(smallConfig(), nil, nil)
	rng := rand.New(rand.NewPCG(1, 1))

	res, err := e.Run(context.Background(), rng, difficulty.TargetsFor(3))
	require.NoError(t, err)
	require.NotNil(t, res.Grid)
	assert.Len(t, res.History, 4)

	if !res.Fallback {
		check := res.Grid.Clone()
		require.True(t, maze.Repair(check))
		assert.True(t, check.Equal(res.Grid))
		assert.Greater(t, res.Fitness, 0.0)
		assert.LessOrEqual(t, res.Fitness, 1.0)
	}
}

func TestEngine_ElitismKeepsBestNonDecreasing(t *testing.T) {
	e := NewEngine(smallConfig(), nil, nil)
	rng := rand.New(rand.NewPCG(21, 21))

	res, err := e.Run(context.Background(), rng, difficulty.TargetsFor(6))
	require.NoError(t, err)

	var peak float64
	for i, s := range res.History {
		assert.GreaterOrEqual(t, s.BestScore, peak, "generation %d regressed", i)
		assert.LessOrEqual(t, s.WorstScore, s.BestScore)
		assert.Equal(t, i, s.Generation)
		peak = max(peak, s.BestScore)
	}
	if !res.Fallback {
		assert.InDelta(t, peak, res.Fitness, 1e-12)
	}
}

func TestEngine_DeterministicUnderParallelism(t *testing.T) {
	cfg := smallConfig()
	a, err := NewEngine(cfg, nil, nil).Run(context.Background(), rand.New(rand.NewPCG(8, 8)), difficulty.TargetsFor(5))
	require.NoError(t, err)
	b, err := NewEngine(cfg, nil, nil).Run(context.Background(), rand.New(rand.NewPCG(8, 8)), difficulty.TargetsFor(5))
	require.NoError(t, err)

	assert.True(t, a.Grid.Equal(b.Grid))
	assert.Equal(t, a.Fitness, b.Fitness)
}

func TestEngine_CancelledContextStillReturnsMap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEngine(smallConfig(), nil, nil)
	res, err := e.Run(ctx, rand.New(rand.NewPCG(2, 2)), difficulty.TargetsFor(2))

	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, res.Grid)
	assert.True(t, res.Fallback)
	assert.Empty(t, res.History)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.PopulationSize = 1
	bad.CrossoverRate = 1.5
	bad.MapSize = 3
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "population")
	assert.Contains(t, err.Error(), "crossover")
	assert.Contains(t, err.Error(), "map size")
}

func TestRowSplitCombiner_Rows(t *testing.T) {
	a := grid.MustParse("OSOOO", "O###O", "O###O", "O###O", "OOEOO")
	b := grid.MustParse("OOOSO", "OPPPO", "OPPPO", "OPPPO", "OOOEO")
	rng := rand.New(rand.NewPCG(4, 4))

	for range 20 {
		children := RowSplitCombiner{}.Combine([]Candidate{{Grid: a}, {Grid: b}}, rng)
		require.Len(t, children, 2)

		rowsA, rowsB := a.Rows(), b.Rows()
		c0, c1 := children[0].Rows(), children[1].Rows()

		split := 0
		for split < 5 && c0[split] == rowsA[split] {
			split++
		}
		assert.GreaterOrEqual(t, split, 1)
		assert.LessOrEqual(t, split, 3)
		for y := 0; y < 5; y++ {
			if y < split {
				assert.Equal(t, rowsA[y], c0[y])
				assert.Equal(t, rowsB[y], c1[y])
			} else {
				assert.Equal(t, rowsB[y], c0[y])
				assert.Equal(t, rowsA[y], c1[y])
			}
		}
		assert.Equal(t, 1, children[0].Count(grid.Start))
		assert.Equal(t, 1, children[0].Count(grid.End))
	}

	// Parents are untouched
	assert.Equal(t, grid.Empty, a.At(grid.Point{X: 1, Y: 1}))
}

func TestCrossoverRepairRoundTrip(t *testing.T) {
	gen := maze.NewGenerator(maze.DefaultPolicy())
	rng := rand.New(rand.NewPCG(13, 13))
	mut := NewTileMutator(DefaultTileWeights())
	e := NewEngine(smallConfig(), gen, nil)
	tctx := fitness.TargetContext(difficulty.TargetsFor(5))

	for range 30 {
		a, _ := gen.Generate(rng, 8, 2, 8)
		b, _ := gen.Generate(rng, 8, 3, 6)

		for _, child := range (RowSplitCombiner{}).Combine([]Candidate{{Grid: a}, {Grid: b}}, rng) {
			mut.Perturb(child, 0.2, rng)
			score, metrics := e.score(child, tctx)
			if metrics == nil {
				assert.Equal(t, 0.0, score)
				continue
			}
			assert.Greater(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestTileMutator_RespectsGatesAndBorder(t *testing.T) {
	g := maze.Fallback(6)
	before := g.Clone()

	m := NewTileMutator(TileWeights{Obstacle: 1})
	m.Perturb(g, 1, rand.New(rand.NewPCG(1, 1)))

	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			p := grid.Point{X: x, Y: y}
			if g.IsBorder(p) {
				assert.Equal(t, before.At(p), g.At(p), "border %v changed", p)
			} else {
				assert.Equal(t, grid.Obstacle, g.At(p), "interior %v", p)
			}
		}
	}
}

func TestTileMutator_NeverProducesPath(t *testing.T) {
	g := maze.Fallback(10)
	m := NewTileMutator(DefaultTileWeights())
	rng := rand.New(rand.NewPCG(6, 6))

	for range 10 {
		m.Perturb(g, 0.5, rng)
		assert.Equal(t, 0, g.Count(grid.Path))
	}
	assert.Equal(t, 1, g.Count(grid.Start))
	assert.Equal(t, 1, g.Count(grid.End))
}

func TestSelectors(t *testing.T) {
	p := &Pool{Members: []Candidate{{Score: 0.1}, {Score: 0.9}, {Score: 0.5}}}
	rng := rand.New(rand.NewPCG(3, 3))

	assert.Len(t, UniformSelector{}.Select(p, 5, rng), 5)

	ts := &TournamentSelector{TournamentSize: 3}
	for _, c := range ts.Select(p, 10, rng) {
		assert.GreaterOrEqual(t, c.Score, 0.1)
	}
}

func TestNewEngine_SelectionFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.IsType(t, UniformSelector{}, NewEngine(cfg, nil, nil).selector)

	cfg.Selection = SelectionTournament
	cfg.TournamentSize = 4
	e := NewEngine(cfg, nil, nil)
	require.IsType(t, &TournamentSelector{}, e.selector)
	assert.Equal(t, 4, e.selector.(*TournamentSelector).TournamentSize)

	cfg.Selection = "roulette"
	assert.Error(t, cfg.Validate())
	assert.IsType(t, UniformSelector{}, NewEngine(cfg, nil, nil).selector)
}

func TestNewSelector(t *testing.T) {
	s, err := NewSelector("", 0)
	require.NoError(t, err)
	assert.IsType(t, UniformSelector{}, s)

	_, err = NewSelector(SelectionTournament, 0)
	assert.Error(t, err)
}
