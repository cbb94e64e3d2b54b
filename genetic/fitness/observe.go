package fitness

import (
	"github.com/lixenwraith/courier/grid"
	"github.com/lixenwraith/courier/tracking"
)

// Observe measures the structural metrics of a repaired grid
func Observe(g *grid.Grid) tracking.MetricBundle {
	return tracking.MetricBundle{
		tracking.MetricPathLength:        float64(g.Count(grid.Path)),
		tracking.MetricCorners:           float64(Corners(g)),
		tracking.MetricEmptySpace:        float64(g.Count(grid.Empty)),
		tracking.MetricPickups:           float64(g.Count(grid.Pickup)),
		tracking.MetricOrthogonalPickups: float64(OrthogonalPickups(g)),
	}
}

// Corners counts Path cells where the route turns: exactly two route
// neighbours (Path, Start or End) that are not opposite each other
func Corners(g *grid.Grid) int {
	n := 0
	for _, p := range g.Find(grid.Path) {
		var links []grid.Point
		for _, d := range grid.Directions {
			if onRoute(g.At(p.Add(d))) {
				links = append(links, d)
			}
		}
		if len(links) == 2 && links[0].X != links[1].X && links[0].Y != links[1].Y {
			n++
		}
	}
	return n
}

// OrthogonalPickups counts pickups sharing a row or column with any dropoff
func OrthogonalPickups(g *grid.Grid) int {
	dropoffs := g.Find(grid.Dropoff)
	n := 0
	for _, p := range g.Find(grid.Pickup) {
		for _, d := range dropoffs {
			if p.X == d.X || p.Y == d.Y {
				n++
				break
			}
		}
	}
	return n
}

func onRoute(t grid.Tile) bool {
	return t == grid.Path || t == grid.Start || t == grid.End
}
