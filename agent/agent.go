package agent

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/lixenwraith/courier/grid"
	"github.com/lixenwraith/courier/parameter"
	"github.com/lixenwraith/courier/tracking"
)

// Solver plays one map and reports how it went
type Solver interface {
	Name() string
	Simulate(rng *rand.Rand, g *grid.Grid) tracking.Telemetry
}

// Kind selects a parameter preset
type Kind int

const (
	Cautious Kind = iota
	Balanced
	Optimal
)

// Kinds lists every preset in a stable order
var Kinds = []Kind{Cautious, Balanced, Optimal}

func (k Kind) String() string {
	switch k {
	case Cautious:
		return "cautious"
	case Balanced:
		return "balanced"
	case Optimal:
		return "optimal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts a preset name, case-insensitive
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown agent kind %q", s)
}

// Planner selects the route search used for the ideal step
type Planner int

const (
	PlannerBFS Planner = iota
	PlannerAStar
)

func (p Planner) String() string {
	if p == PlannerAStar {
		return "astar"
	}
	return "bfs"
}

// ParsePlanner accepts "bfs" or "astar"
func ParsePlanner(s string) (Planner, error) {
	switch strings.ToLower(s) {
	case "bfs", "":
		return PlannerBFS, nil
	case "astar", "a*":
		return PlannerAStar, nil
	default:
		return PlannerBFS, fmt.Errorf("unknown planner %q", s)
	}
}

// Params are the behavioural knobs shared by every agent
type Params struct {
	// ErrorRate is the chance of taking a non-ideal neighbour
	ErrorRate float64
	// ErrorDecay multiplies ErrorRate after each reset; 1 disables learning
	ErrorDecay float64
	// Patience is the step budget of one attempt without progress
	Patience int
	// BacktrackChance is the chance of stepping back along the trail
	BacktrackChance float64
	// RevisitPenalty is the A* extra cost of re-entering a visited cell
	RevisitPenalty int
	// TimePerStep converts steps to TimeTaken
	TimePerStep float64
	// MaxSteps aborts the run regardless of patience
	MaxSteps int
	// MaxResets aborts the run once exceeded
	MaxResets int
	Planner   Planner
}

// Defaults returns the preset for a kind
func Defaults(k Kind) Params {
	switch k {
	case Cautious:
		return Params{
			ErrorRate:       parameter.AgentCautiousErrorRate,
			ErrorDecay:      parameter.AgentCautiousErrorDecay,
			Patience:        parameter.AgentCautiousPatience,
			BacktrackChance: parameter.AgentCautiousBacktrackChance,
			RevisitPenalty:  parameter.AgentCautiousRevisitPenalty,
			TimePerStep:     parameter.AgentCautiousTimePerStep,
			MaxSteps:        parameter.AgentCautiousMaxSteps,
			MaxResets:       parameter.AgentCautiousMaxResets,
			Planner:         PlannerBFS,
		}
	case Optimal:
		return Params{
			ErrorRate:       parameter.AgentOptimalErrorRate,
			ErrorDecay:      parameter.AgentOptimalErrorDecay,
			Patience:        parameter.AgentOptimalPatience,
			BacktrackChance: parameter.AgentOptimalBacktrackChance,
			RevisitPenalty:  parameter.AgentOptimalRevisitPenalty,
			TimePerStep:     parameter.AgentOptimalTimePerStep,
			MaxSteps:        parameter.AgentOptimalMaxSteps,
			MaxResets:       parameter.AgentOptimalMaxResets,
			Planner:         PlannerAStar,
		}
	default:
		return Params{
			ErrorRate:       parameter.AgentBalancedErrorRate,
			ErrorDecay:      parameter.AgentBalancedErrorDecay,
			Patience:        parameter.AgentBalancedPatience,
			BacktrackChance: parameter.AgentBalancedBacktrackChance,
			RevisitPenalty:  parameter.AgentBalancedRevisitPenalty,
			TimePerStep:     parameter.AgentBalancedTimePerStep,
			MaxSteps:        parameter.AgentBalancedMaxSteps,
			MaxResets:       parameter.AgentBalancedMaxResets,
			Planner:         PlannerBFS,
		}
	}
}

// Agent is a simulated solver; kinds differ only in Params
type Agent struct {
	Kind   Kind
	Params Params
}

// New creates an agent with the preset for kind
func New(kind Kind) *Agent {
	return &Agent{Kind: kind, Params: Defaults(kind)}
}

// Name returns the preset name
func (a *Agent) Name() string {
	return a.Kind.String()
}

// Simulate plays g once; the grid is only read
func (a *Agent) Simulate(rng *rand.Rand, g *grid.Grid) tracking.Telemetry {
	r := newRun(a.Params, rng, g)
	tel := r.play()
	tel.Agent = a.Name()
	return tel
}
