// Package genetic evolves delivery maps toward structural difficulty targets
package genetic

import (
	"fmt"
	"math/rand/v2"

	"github.com/lixenwraith/courier/grid"
	"github.com/lixenwraith/courier/parameter"
)

// --- Concrete Operator Implementations ---

// Selection operator names
const (
	SelectionUniform    = "uniform"
	SelectionTournament = "tournament"
)

// NewSelector resolves a selection name; empty means uniform
func NewSelector(name string, tournamentSize int) (Selector, error) {
	switch name {
	case "", SelectionUniform:
		return UniformSelector{}, nil
	case SelectionTournament:
		if tournamentSize < 1 {
			return nil, fmt.Errorf("tournament size %d below 1", tournamentSize)
		}
		return &TournamentSelector{TournamentSize: tournamentSize}, nil
	default:
		return nil, fmt.Errorf("unknown selection %q", name)
	}
}

// UniformSelector samples parents uniformly with replacement
// Fitness pressure comes from the elite and best-ever tracking, not selection.
type UniformSelector struct{}

// Select implements the Selector interface
func (UniformSelector) Select(pool *Pool, size int, rng *rand.Rand) []Candidate {
	selected := make([]Candidate, size)
	for i := range selected {
		selected[i] = pool.Members[rng.IntN(len(pool.Members))]
	}
	return selected
}

// TournamentSelector implements tournament selection
// Randomly samples small groups and selects the best from each group
type TournamentSelector struct {
	// TournamentSize is the number of candidates to compete in each tournament
	TournamentSize int
}

// Select implements the Selector interface using tournament selection
func (ts *TournamentSelector) Select(pool *Pool, size int, rng *rand.Rand) []Candidate {
	selected := make([]Candidate, 0, size)
	poolSize := len(pool.Members)

	tournSize := min(max(ts.TournamentSize, 1), poolSize)

	for len(selected) < size {
		winner := pool.Members[rng.IntN(poolSize)]
		for i := 1; i < tournSize; i++ {
			if c := pool.Members[rng.IntN(poolSize)]; c.Score > winner.Score {
				winner = c
			}
		}
		selected = append(selected, winner)
	}

	return selected
}

// RowSplitCombiner performs one-point crossover on whole rows
// The split row is drawn from [1, size-2]; the first child takes rows above
// the split from parent A and the rest from parent B, the second mirrors it.
type RowSplitCombiner struct{}

// Combine creates two offspring using row-split crossover
func (RowSplitCombiner) Combine(parents []Candidate, rng *rand.Rand) []*grid.Grid {
	if len(parents) < 2 {
		if len(parents) == 1 {
			return []*grid.Grid{parents[0].Grid.Clone()}
		}
		return nil
	}

	a, b := parents[0].Grid, parents[1].Grid
	size := a.Size()
	if b.Size() != size || size < 3 {
		return []*grid.Grid{a.Clone(), b.Clone()}
	}

	split := 1 + rng.IntN(size-2)

	childA := a.Clone()
	childA.CopyRows(b, split, size)

	childB := b.Clone()
	childB.CopyRows(a, split, size)

	return []*grid.Grid{childA, childB}
}

// TileWeights are the relative odds of each tile a mutated cell becomes
type TileWeights struct {
	Empty    float64 `toml:"empty"`
	Obstacle float64 `toml:"obstacle"`
	Pickup   float64 `toml:"pickup"`
	Dropoff  float64 `toml:"dropoff"`
}

// DefaultTileWeights favours open space over walls over tasks
func DefaultTileWeights() TileWeights {
	return TileWeights{
		Empty:    parameter.GAMutationWeightEmpty,
		Obstacle: parameter.GAMutationWeightObstacle,
		Pickup:   parameter.GAMutationWeightPickup,
		Dropoff:  parameter.GAMutationWeightDropoff,
	}
}

// TileMutator rewrites interior cells to a weighted random tile
// Start, End and the border ring are never touched and Path is never produced.
type TileMutator struct {
	tiles  [4]grid.Tile
	cumsum [4]float64
}

// NewTileMutator builds a mutator; all-zero weights fall back to the defaults
func NewTileMutator(w TileWeights) *TileMutator {
	if w.Empty <= 0 && w.Obstacle <= 0 && w.Pickup <= 0 && w.Dropoff <= 0 {
		w = DefaultTileWeights()
	}
	m := &TileMutator{
		tiles: [4]grid.Tile{grid.Empty, grid.Obstacle, grid.Pickup, grid.Dropoff},
	}
	var total float64
	for i, v := range [4]float64{w.Empty, w.Obstacle, w.Pickup, w.Dropoff} {
		total += max(v, 0)
		m.cumsum[i] = total
	}
	return m
}

// Perturb implements the Perturbator interface
func (m *TileMutator) Perturb(g *grid.Grid, rate float64, rng *rand.Rand) {
	if rate <= 0 {
		return
	}
	size := g.Size()
	for y := 1; y < size-1; y++ {
		for x := 1; x < size-1; x++ {
			p := grid.Point{X: x, Y: y}
			if t := g.At(p); t == grid.Start || t == grid.End {
				continue
			}
			if rng.Float64() < rate {
				g.Set(p, m.pick(rng))
			}
		}
	}
}

func (m *TileMutator) pick(rng *rand.Rand) grid.Tile {
	r := rng.Float64() * m.cumsum[len(m.cumsum)-1]
	for i, c := range m.cumsum {
		if r < c {
			return m.tiles[i]
		}
	}
	return m.tiles[0]
}
