package agent

import (
	"math/rand/v2"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/lixenwraith/courier/grid"
	"github.com/lixenwraith/courier/navigation"
	"github.com/lixenwraith/courier/parameter"
	"github.com/lixenwraith/courier/tracking"
)

// run is the state of one Simulate call
type run struct {
	p   Params
	rng *rand.Rand
	g   *grid.Grid

	start, end  grid.Point
	allPickups  []grid.Point
	allDropoffs []grid.Point
	needed      int

	// Attempt state, restored on reset
	pos       grid.Point
	carrying  bool
	delivered int
	pickups   []grid.Point
	dropoffs  []grid.Point
	visited   mapset.Set[grid.Point]
	trail     []grid.Point
	idle      int
	errorRate float64

	tel tracking.Telemetry
}

func newRun(p Params, rng *rand.Rand, g *grid.Grid) *run {
	pickups := g.Find(grid.Pickup)
	dropoffs := g.Find(grid.Dropoff)
	return &run{
		p:           p,
		rng:         rng,
		g:           g,
		allPickups:  pickups,
		allDropoffs: dropoffs,
		needed:      min(len(pickups), len(dropoffs)),
		errorRate:   p.ErrorRate,
	}
}

func (r *run) play() tracking.Telemetry {
	var okStart, okEnd bool
	r.start, okStart = r.g.First(grid.Start)
	r.end, okEnd = r.g.First(grid.End)

	r.tel.Attempts = 1
	if !okStart || !okEnd {
		return r.tel
	}

	r.beginAttempt()

	for {
		if r.settle() {
			r.tel.Solved = true
			break
		}
		if r.tel.Steps >= r.p.MaxSteps {
			break
		}

		if r.idle > r.p.Patience {
			if r.reset() {
				break
			}
			continue
		}

		legal := r.legalMoves()
		if len(legal) == 0 {
			if r.reset() {
				break
			}
			continue
		}

		r.step(r.chooseMove(legal))
	}

	// A run cut off by the step ceiling ends a failed attempt
	if !r.tel.Solved && r.tel.Steps >= r.p.MaxSteps && r.nearSolved() {
		r.tel.NearSolves++
	}

	r.tel.TimeTaken = float64(r.tel.Steps) * r.p.TimePerStep
	return r.tel
}

// settle serves adjacent tasks and reports a win
func (r *run) settle() bool {
	r.interact()
	return r.delivered == r.needed && r.pos == r.end
}

// beginAttempt places the agent on Start with every task outstanding
func (r *run) beginAttempt() {
	r.pos = r.start
	r.carrying = false
	r.delivered = 0
	r.pickups = slices.Clone(r.allPickups)
	r.dropoffs = slices.Clone(r.allDropoffs)
	r.visited = mapset.New[grid.Point]()
	r.visited.Put(r.start)
	r.trail = []grid.Point{r.start}
	r.idle = 0
	r.tel.Trace = append(r.tel.Trace, r.start)
}

// reset ends a failed attempt; returns true when the run gives up
func (r *run) reset() bool {
	if r.nearSolved() {
		r.tel.NearSolves++
	}
	r.tel.Resets++
	r.tel.Attempts++
	r.errorRate *= r.p.ErrorDecay

	if r.tel.Resets > r.p.MaxResets {
		return true
	}
	r.beginAttempt()
	return false
}

// nearSolved reports whether at most a couple of task interactions remain
func (r *run) nearSolved() bool {
	return tracking.Outstanding(r.needed, r.delivered, r.carrying) <= parameter.AgentNearSolveOutstanding
}

// interact picks up or delivers from the current cell; progress refreshes patience
func (r *run) interact() {
	if !r.carrying && r.delivered < r.needed {
		if i := grid.AdjacentIndex(r.pos, r.pickups); i >= 0 {
			r.pickups = slices.Delete(r.pickups, i, i+1)
			r.carrying = true
			r.idle = 0
		}
	}
	if r.carrying {
		if i := grid.AdjacentIndex(r.pos, r.dropoffs); i >= 0 {
			r.dropoffs = slices.Delete(r.dropoffs, i, i+1)
			r.carrying = false
			r.delivered++
			r.idle = 0
		}
	}
}

// goals returns the cells the agent is currently heading for
func (r *run) goals() []grid.Point {
	var task grid.Point
	switch {
	case r.carrying && len(r.dropoffs) > 0:
		task, _ = navigation.Nearest(r.pos, r.dropoffs)
	case !r.carrying && r.delivered < r.needed && len(r.pickups) > 0:
		task, _ = navigation.Nearest(r.pos, r.pickups)
	default:
		return []grid.Point{r.end}
	}

	goals := make([]grid.Point, 0, 4)
	for _, n := range r.g.Neighbours(task) {
		if r.g.At(n).Walkable() {
			goals = append(goals, n)
		}
	}
	return goals
}

// ideal returns the first step of the planned route toward the current goals
func (r *run) ideal() (grid.Point, bool) {
	goals := r.goals()
	passable := navigation.Walkable(r.g)

	var route []grid.Point
	var ok bool
	if r.p.Planner == PlannerAStar {
		route, ok = navigation.AStar(r.g, r.pos, goals, passable, func(p grid.Point) int {
			if r.visited.Has(p) {
				return r.p.RevisitPenalty
			}
			return 0
		})
	} else {
		route, ok = navigation.BFS(r.g, r.pos, goals, passable)
	}

	if !ok || len(route) == 0 {
		return grid.Point{}, false
	}
	return route[0], true
}

func (r *run) legalMoves() []grid.Point {
	moves := make([]grid.Point, 0, 4)
	for _, n := range r.g.Neighbours(r.pos) {
		if r.g.At(n).Walkable() {
			moves = append(moves, n)
		}
	}
	return moves
}

// chooseMove applies the error and backtrack policy around the ideal step
func (r *run) chooseMove(legal []grid.Point) grid.Point {
	best, ok := r.ideal()
	if !ok {
		return legal[r.rng.IntN(len(legal))]
	}

	if r.errorRate > 0 && r.rng.Float64() < r.errorRate {
		alternatives := make([]grid.Point, 0, len(legal))
		for _, m := range legal {
			if m != best {
				alternatives = append(alternatives, m)
			}
		}
		if len(alternatives) > 0 {
			return alternatives[r.rng.IntN(len(alternatives))]
		}
		return best
	}

	if r.p.BacktrackChance > 0 && len(r.trail) > 1 && r.rng.Float64() < r.p.BacktrackChance {
		return r.trail[len(r.trail)-2]
	}

	return best
}

func (r *run) step(next grid.Point) {
	r.tel.Steps++
	r.idle++

	if r.visited.Has(next) {
		r.tel.Backtracks++
	}
	r.visited.Put(next)

	r.pos = next
	r.trail = append(r.trail, next)
	r.tel.Trace = append(r.tel.Trace, next)
}
