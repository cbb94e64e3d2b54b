package fitness

import (
	"maps"
	"math"
	"slices"

	"github.com/lixenwraith/courier/parameter"
	"github.com/lixenwraith/courier/tracking"
)

// Weights holds the relative importance of each map metric
type Weights struct {
	PathLength        float64 `toml:"path_length"`
	Corners           float64 `toml:"corners"`
	EmptySpace        float64 `toml:"empty_space"`
	Pickups           float64 `toml:"pickups"`
	OrthogonalPickups float64 `toml:"orthogonal_pickups"`
}

// DefaultWeights weighs every metric equally
func DefaultWeights() Weights {
	return Weights{
		PathLength:        parameter.GAFitnessWeightPathLength,
		Corners:           parameter.GAFitnessWeightCorners,
		EmptySpace:        parameter.GAFitnessWeightEmptySpace,
		Pickups:           parameter.GAFitnessWeightPickups,
		OrthogonalPickups: parameter.GAFitnessWeightOrthogonalPickups,
	}
}

// Map keys the weights by metric name
func (w Weights) Map() map[string]float64 {
	return map[string]float64{
		tracking.MetricPathLength:        w.PathLength,
		tracking.MetricCorners:           w.Corners,
		tracking.MetricEmptySpace:        w.EmptySpace,
		tracking.MetricPickups:           w.Pickups,
		tracking.MetricOrthogonalPickups: w.OrthogonalPickups,
	}
}

// WeightedAggregator calculates fitness as weighted mean of metric scores
// With a Context carrying targets, each metric scores by its distance to the
// target: Σ wᵢ·N(|targetᵢ-observedᵢ|) / Σ wᵢ. Without targets the raw
// (optionally normalized) metric is used. A zero total weight falls back to
// unit weights.
type WeightedAggregator struct {
	Weights     map[string]float64
	Normalizers map[string]NormalizeFunc
}

// NewDistanceAggregator scores maps by inverse distance to the targets
func NewDistanceAggregator(w Weights) *WeightedAggregator {
	weights := w.Map()
	normalizers := make(map[string]NormalizeFunc, len(weights))
	for key := range weights {
		normalizers[key] = NormalizeInverse(1)
	}
	return &WeightedAggregator{Weights: weights, Normalizers: normalizers}
}

func (a *WeightedAggregator) Calculate(metrics tracking.MetricBundle, ctx Context) float64 {
	// Sum in key order so equal inputs give bit-identical scores
	keys := slices.Sorted(maps.Keys(a.Weights))

	var total float64
	for _, key := range keys {
		total += max(a.Weights[key], 0)
	}
	unit := total <= 0

	var fitness, used float64
	for _, key := range keys {
		weight := a.Weights[key]
		raw, ok := metrics[key]
		if !ok {
			continue
		}
		if unit {
			weight = 1
		}
		weight = max(weight, 0)

		if ctx != nil {
			if target, ok := ctx.Get(key); ok {
				raw = math.Abs(target - raw)
			}
		}

		normalized := raw
		if normalizer, ok := a.Normalizers[key]; ok && normalizer != nil {
			normalized = normalizer(raw)
		}

		fitness += weight * normalized
		used += weight
	}

	if used <= 0 {
		return 0
	}
	return fitness / used
}
