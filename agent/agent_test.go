package agent

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/courier/grid"
	"github.com/lixenwraith/courier/maze"
)

// corridor has exactly one route: down the left column past both tasks
func corridor() *grid.Grid {
	return grid.MustParse(
		"OSOOO",
		"O#POO",
		"O#OOO",
		"O#DOO",
		"OEOOO",
	)
}

func exact(planner Planner) *Agent {
	p := Defaults(Optimal)
	p.ErrorRate = 0
	p.BacktrackChance = 0
	p.Planner = planner
	return &Agent{Kind: Optimal, Params: p}
}

func TestSimulate_ErrorFreeNeverBacktracks(t *testing.T) {
	for _, planner := range []Planner{PlannerBFS, PlannerAStar} {
		t.Run(planner.String(), func(t *testing.T) {
			tel := exact(planner).Simulate(rand.New(rand.NewPCG(1, 1)), corridor())

			assert.True(t, tel.Solved)
			assert.Equal(t, 0, tel.Backtracks)
			assert.Equal(t, 1, tel.Attempts)
			assert.Equal(t, 0, tel.Resets)
			assert.Equal(t, 4, tel.Steps)
			assert.Equal(t, []grid.Point{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 1, Y: 3}, {X: 1, Y: 4}}, tel.Trace)
			assert.InDelta(t, 4*Defaults(Optimal).TimePerStep, tel.TimeTaken, 1e-9)
		})
	}
}

func TestSimulate_WinOnLastAllowedStep(t *testing.T) {
	a := exact(PlannerBFS)
	a.Params.MaxSteps = 4
	tel := a.Simulate(rand.New(rand.NewPCG(1, 1)), corridor())

	assert.True(t, tel.Solved)
	assert.Equal(t, 4, tel.Steps)
	assert.Equal(t, 0, tel.NearSolves)
	assert.Equal(t, grid.Point{X: 1, Y: 4}, tel.Trace[len(tel.Trace)-1])
}

func TestSimulate_CeilingOneStepShort(t *testing.T) {
	a := exact(PlannerBFS)
	a.Params.MaxSteps = 3
	tel := a.Simulate(rand.New(rand.NewPCG(1, 1)), corridor())

	// Both pairs delivered, only End missing
	assert.False(t, tel.Solved)
	assert.Equal(t, 3, tel.Steps)
	assert.Equal(t, 1, tel.NearSolves)
}

func TestSimulate_GivesUpAfterMaxResets(t *testing.T) {
	// Start opens onto a single dead-end cell
	g := grid.MustParse(
		"OSOOOO",
		"O#OPDO",
		"OOOPDO",
		"OOOOOO",
		"OOOOOO",
		"OOOOEO",
	)

	a := New(Cautious)
	a.Params.MaxResets = 3
	tel := a.Simulate(rand.New(rand.NewPCG(5, 5)), g)

	assert.False(t, tel.Solved)
	assert.Equal(t, 4, tel.Resets)
	assert.Equal(t, 5, tel.Attempts)
	assert.LessOrEqual(t, tel.Steps, a.Params.MaxSteps)
	assert.Equal(t, 0, tel.NearSolves, "both tasks outstanding is not a near solve")
}

func TestSimulate_StepCeiling(t *testing.T) {
	g := grid.MustParse(
		"OSOOO",
		"O##OO",
		"O#PDO",
		"OOOOO",
		"OOEOO",
	)

	a := New(Balanced)
	a.Params.Patience = 1 << 20
	a.Params.MaxResets = 1 << 20
	a.Params.MaxSteps = 200
	tel := a.Simulate(rand.New(rand.NewPCG(9, 9)), g)

	assert.False(t, tel.Solved)
	assert.Equal(t, 200, tel.Steps)
	assert.Equal(t, 0, tel.Resets)
	assert.InDelta(t, 200*a.Params.TimePerStep, tel.TimeTaken, 1e-9)
}

func TestSimulate_NearSolveWhenOnlyEndIsMissing(t *testing.T) {
	// Both tasks can be served but End is walled off
	g := grid.MustParse(
		"OSOOO",
		"O#POO",
		"O#DOO",
		"OOOOO",
		"OOEOO",
	)

	a := exact(PlannerBFS)
	a.Params.Patience = 10
	a.Params.MaxResets = 2
	tel := a.Simulate(rand.New(rand.NewPCG(2, 2)), g)

	assert.False(t, tel.Solved)
	assert.Equal(t, 3, tel.Resets)
	assert.Equal(t, 4, tel.Attempts)
	assert.Equal(t, 3, tel.NearSolves)
}

func TestSimulate_MissingGates(t *testing.T) {
	tel := New(Optimal).Simulate(rand.New(rand.NewPCG(1, 1)), grid.NewBordered(5))
	assert.False(t, tel.Solved)
	assert.Equal(t, 1, tel.Attempts)
	assert.Equal(t, 0, tel.Steps)
	assert.Equal(t, "optimal", tel.Agent)
}

func TestSimulate_AllKindsTerminateOnGeneratedMaps(t *testing.T) {
	gen := maze.NewGenerator(maze.DefaultPolicy())

	for seed := uint64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed))
		g, _ := gen.Generate(rng, 10, 3, 10)
		before := g.Clone()

		for _, kind := range Kinds {
			a := New(kind)
			tel := a.Simulate(rng, g)

			require.LessOrEqual(t, tel.Steps, a.Params.MaxSteps, "%s seed %d", kind, seed)
			assert.LessOrEqual(t, tel.Resets, a.Params.MaxResets+1)
			assert.Equal(t, tel.Resets+1, tel.Attempts)
			assert.NotEmpty(t, tel.Trace)
			assert.Equal(t, before.Rows(), g.Rows(), "simulation must not modify the grid")
		}
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	g := maze.Fallback(8)
	a := New(Cautious)

	t1 := a.Simulate(rand.New(rand.NewPCG(11, 11)), g)
	t2 := a.Simulate(rand.New(rand.NewPCG(11, 11)), g)
	assert.Equal(t, t1, t2)
}

func TestReset_DecaysErrorRate(t *testing.T) {
	p := Defaults(Balanced)
	r := newRun(p, rand.New(rand.NewPCG(1, 1)), corridor())
	r.start, _ = r.g.First(grid.Start)
	r.beginAttempt()

	r.reset()
	assert.InDelta(t, p.ErrorRate*p.ErrorDecay, r.errorRate, 1e-12)
	assert.Equal(t, r.start, r.pos)
	assert.Len(t, r.pickups, 1)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("reckless")
	assert.Error(t, err)

	pl, err := ParsePlanner("AStar")
	require.NoError(t, err)
	assert.Equal(t, PlannerAStar, pl)
}
