package input

import (
	"math/rand/v2"
	"time"

	"github.com/lixenwraith/courier/grid"
	"github.com/lixenwraith/courier/tracking"
)

// PlayFunc drives a session until it is done or abandoned and returns the
// wall time spent
type PlayFunc func(s *Session) time.Duration

// Solver presents a human, or a recorded human, as a solver
// It satisfies agent.Solver so the session loop can adjust difficulty for it.
type Solver struct {
	Label string
	Play  PlayFunc
}

// Name returns the player label
func (s *Solver) Name() string {
	return s.Label
}

// Simulate plays g through Play; rng is unused
func (s *Solver) Simulate(_ *rand.Rand, g *grid.Grid) tracking.Telemetry {
	sess := NewSession(g)
	elapsed := s.Play(sess)
	tel := sess.Telemetry(elapsed)
	tel.Agent = s.Label
	return tel
}

// Replay returns a PlayFunc that applies actions in order, stopping early
// once the session is done or a quit action is reached. Each applied action
// is billed perAction of play time.
func Replay(actions []Action, perAction time.Duration) PlayFunc {
	return func(s *Session) time.Duration {
		var elapsed time.Duration
		for _, a := range actions {
			if s.Done() || a.Intent == IntentQuit {
				break
			}
			s.Apply(a)
			elapsed += perAction
		}
		return elapsed
	}
}
