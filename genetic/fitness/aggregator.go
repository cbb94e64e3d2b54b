package fitness

import "github.com/lixenwraith/courier/tracking"

// Aggregator calculates fitness score from collected metrics
type Aggregator interface {
	Calculate(metrics tracking.MetricBundle, ctx Context) float64
}

// NormalizeFunc converts a raw metric to a 0-1 score
type NormalizeFunc func(raw float64) float64

// NormalizeInverse creates an inverse normalizer: 1 / (1 + raw/scale)
func NormalizeInverse(scale float64) NormalizeFunc {
	if scale <= 0 {
		scale = 1
	}
	return func(raw float64) float64 {
		return 1.0 / (1.0 + raw/scale)
	}
}
