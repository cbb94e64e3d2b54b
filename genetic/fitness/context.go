package fitness

import (
	"github.com/lixenwraith/courier/difficulty"
	"github.com/lixenwraith/courier/tracking"
)

// Context provides additional information for fitness calculation
type Context interface {
	Get(key string) (float64, bool)
}

// MapContext is a simple map-based Context implementation
type MapContext map[string]float64

func (c MapContext) Get(key string) (float64, bool) {
	v, ok := c[key]
	return v, ok
}

// TargetContext exposes difficulty targets under the map metric keys
func TargetContext(t difficulty.Targets) MapContext {
	return MapContext{
		tracking.MetricPathLength:        t.PathLength,
		tracking.MetricCorners:           t.Corners,
		tracking.MetricEmptySpace:        t.EmptySpace,
		tracking.MetricPickups:           t.Pickups,
		tracking.MetricOrthogonalPickups: t.OrthogonalPickups,
	}
}
