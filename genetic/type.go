package genetic

import (
	"math/rand/v2"

	"github.com/lixenwraith/courier/grid"
	"github.com/lixenwraith/courier/tracking"
)

// --- Core Data Structures ---

// Candidate is a map under evaluation with its quality score
type Candidate struct {
	// Grid holds the encoded map; evaluation repairs it in place
	Grid *grid.Grid
	// Score is the fitness in [0,1] (higher = better, 0 = unrepairable)
	Score float64
	// Metrics are the observed structural metrics, nil when unrepairable
	Metrics tracking.MetricBundle
}

// Pool represents a collection of candidates
// This is the working set of maps at any given generation
type Pool struct {
	// Members contains all candidates in this pool
	Members []Candidate
	// Generation tracks the iteration number this pool represents
	Generation int
	// Stats holds statistical information about this pool
	Stats PoolStats
}

// PoolStats contains statistical information about a candidate pool
type PoolStats struct {
	Generation   int
	BestScore    float64
	WorstScore   float64
	AverageScore float64
	// Repaired is the number of members the weaver accepted
	Repaired int
}

// --- Core Operators as Interfaces ---

// Selector defines the selection operator for choosing candidates for reproduction
type Selector interface {
	// Select chooses size candidates from the pool
	Select(pool *Pool, size int, rng *rand.Rand) []Candidate
}

// Combiner defines the recombination operator for creating new maps
type Combiner interface {
	// Combine creates offspring from parent maps; parents are not modified
	Combine(parents []Candidate, rng *rand.Rand) []*grid.Grid
}

// Perturbator defines the mutation operator for introducing variation
type Perturbator interface {
	// Perturb modifies a map in-place
	// The rate parameter is the per-cell mutation probability (0-1)
	Perturb(g *grid.Grid, rate float64, rng *rand.Rand)
}
