package difficulty

import (
	"math"

	"github.com/lixenwraith/courier/parameter"
	"github.com/lixenwraith/courier/tracking"
)

// Targets are the structural metrics a map at a given difficulty should exhibit
type Targets struct {
	PathLength        float64
	Corners           float64
	EmptySpace        float64
	Pickups           float64
	OrthogonalPickups float64
}

// PickupCount is the pair count requested from the generator
func (t Targets) PickupCount() int {
	return int(math.Round(t.Pickups))
}

// EmptyCount is the empty cell budget requested from the generator
func (t Targets) EmptyCount() int {
	return int(math.Round(t.EmptySpace))
}

// Clamp bounds d to the supported difficulty range
func Clamp(d int) int {
	return min(max(d, parameter.DifficultyMin), parameter.DifficultyMax)
}

// TargetsFor interpolates every target linearly between the difficulty endpoints
func TargetsFor(d int) Targets {
	t := float64(Clamp(d)-parameter.DifficultyMin) / float64(parameter.DifficultyMax-parameter.DifficultyMin)

	return Targets{
		PathLength:        lerp(parameter.TargetPathLengthMin, parameter.TargetPathLengthMax, t),
		Corners:           lerp(parameter.TargetCornersMin, parameter.TargetCornersMax, t),
		EmptySpace:        lerp(parameter.TargetEmptySpaceMin, parameter.TargetEmptySpaceMax, t),
		Pickups:           lerp(parameter.TargetPickupsMin, parameter.TargetPickupsMax, t),
		OrthogonalPickups: lerp(parameter.TargetOrthogonalPickupsMin, parameter.TargetOrthogonalPickupsMax, t),
	}
}

// Model turns solver telemetry into a difficulty adjustment
// The score rewards moderate struggle: counts below a threshold add their
// distance from the anchor, counts at or above it subtract themselves.
type Model struct {
	MaxAttempts int

	BacktrackThreshold int
	BacktrackAnchor    int
	NearSolveThreshold int
	NearSolveAnchor    int
	ResetThreshold     int
	ResetAnchor        int

	WeightBacktracks float64
	WeightNearSolves float64
	WeightResets     float64
	WeightTime       float64

	RaiseAbove float64
	LowerBelow float64
}

// DefaultModel returns the standard score shape
func DefaultModel() Model {
	return Model{
		MaxAttempts:        parameter.DifficultyMaxAttempts,
		BacktrackThreshold: parameter.DifficultyBacktrackThreshold,
		BacktrackAnchor:    parameter.DifficultyBacktrackAnchor,
		NearSolveThreshold: parameter.DifficultyNearSolveThreshold,
		NearSolveAnchor:    parameter.DifficultyNearSolveAnchor,
		ResetThreshold:     parameter.DifficultyResetThreshold,
		ResetAnchor:        parameter.DifficultyResetAnchor,
		WeightBacktracks:   parameter.DifficultyWeightBacktracks,
		WeightNearSolves:   parameter.DifficultyWeightNearSolves,
		WeightResets:       parameter.DifficultyWeightResets,
		WeightTime:         parameter.DifficultyWeightTime,
		RaiseAbove:         parameter.DifficultyRaiseAbove,
		LowerBelow:         parameter.DifficultyLowerBelow,
	}
}

// Score computes the soft score of a run
func (m Model) Score(t tracking.Telemetry) float64 {
	var s float64
	s += term(t.Backtracks-1, m.BacktrackThreshold, m.BacktrackAnchor, m.WeightBacktracks)
	s += term(t.NearSolves, m.NearSolveThreshold, m.NearSolveAnchor, m.WeightNearSolves)
	s += term(t.Resets, m.ResetThreshold, m.ResetAnchor, m.WeightResets)
	s -= t.TimeTaken * m.WeightTime
	return s
}

// Suggest returns the next difficulty for a solver currently at current
// Exceeding MaxAttempts backs off by one without consulting the score.
func (m Model) Suggest(t tracking.Telemetry, current int) int {
	if t.Attempts > m.MaxAttempts {
		return max(parameter.DifficultyMin, current-1)
	}

	s := m.Score(t)
	switch {
	case s > m.RaiseAbove:
		return min(parameter.DifficultyMax, current+1)
	case s < m.LowerBelow:
		return max(parameter.DifficultyMin, current-1)
	default:
		return current
	}
}

// SuggestDifficulty applies the default model with a custom attempt limit
func SuggestDifficulty(t tracking.Telemetry, current, maxAttempts int) int {
	m := DefaultModel()
	m.MaxAttempts = maxAttempts
	return m.Suggest(t, current)
}

func term(v, threshold, anchor int, weight float64) float64 {
	if v < threshold {
		return math.Abs(float64(anchor-v)) * weight
	}
	return -float64(v) * weight
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
