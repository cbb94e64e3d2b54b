package input

import (
	"slices"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/lixenwraith/courier/grid"
	"github.com/lixenwraith/courier/parameter"
	"github.com/lixenwraith/courier/tracking"
)

// Session is a human play of one map
// Interaction follows the simulated agents: a pickup or dropoff is served by
// standing orthogonally next to it, and the map is solved on End once every
// pair is delivered. The grid is only read.
type Session struct {
	g *grid.Grid

	start, end  grid.Point
	allPickups  []grid.Point
	allDropoffs []grid.Point
	needed      int
	playable    bool

	// Attempt state, restored on reset
	pos       grid.Point
	carrying  bool
	delivered int
	pickups   []grid.Point
	dropoffs  []grid.Point
	visited   mapset.Set[grid.Point]
	trail     []grid.Point

	done bool
	tel  tracking.Telemetry
}

// NewSession starts the first attempt on g
// A map without Start or End is immediately done and unsolved.
func NewSession(g *grid.Grid) *Session {
	pickups := g.Find(grid.Pickup)
	dropoffs := g.Find(grid.Dropoff)
	s := &Session{
		g:           g,
		allPickups:  pickups,
		allDropoffs: dropoffs,
		needed:      min(len(pickups), len(dropoffs)),
	}
	s.tel.Attempts = 1

	var okStart, okEnd bool
	s.start, okStart = g.First(grid.Start)
	s.end, okEnd = g.First(grid.End)
	s.playable = okStart && okEnd
	if !s.playable {
		s.done = true
		return s
	}

	s.beginAttempt()
	return s
}

// Apply dispatches a key action; quit and mute are left to the caller
func (s *Session) Apply(a Action) EventType {
	switch a.Intent {
	case IntentMove:
		return s.Move(a.Dir)
	case IntentUndo:
		return s.Undo()
	case IntentReset:
		return s.Reset()
	default:
		return EventNone
	}
}

// Move steps one cell in dir when the target is walkable
func (s *Session) Move(dir grid.Point) EventType {
	if s.done {
		return EventNone
	}
	next := s.pos.Add(dir)
	if !s.pos.Adjacent(next) || !s.g.At(next).Walkable() {
		return EventBlocked
	}
	s.step(next)
	s.trail = append(s.trail, next)
	return s.settle()
}

// Undo steps back along the current attempt; it counts as a backtrack
func (s *Session) Undo() EventType {
	if s.done || len(s.trail) < 2 {
		return EventNone
	}
	s.trail = s.trail[:len(s.trail)-1]
	s.step(s.trail[len(s.trail)-1])
	return s.settle()
}

// Reset abandons the attempt and returns to Start with every task outstanding
func (s *Session) Reset() EventType {
	if s.done {
		return EventNone
	}
	if o := s.outstanding(); o > 0 && o <= parameter.AgentNearSolveOutstanding {
		s.tel.NearSolves++
	}
	s.tel.Resets++
	s.tel.Attempts++
	s.beginAttempt()
	return EventReset
}

// Done reports whether the map is solved or unplayable
func (s *Session) Done() bool {
	return s.done
}

// Solved reports whether End was reached with every pair delivered
func (s *Session) Solved() bool {
	return s.tel.Solved
}

// Grid returns the map being played
func (s *Session) Grid() *grid.Grid {
	return s.g
}

// Position returns the courier cell
func (s *Session) Position() grid.Point {
	return s.pos
}

// Carrying reports whether a parcel is held
func (s *Session) Carrying() bool {
	return s.carrying
}

// Progress returns delivered and required pair counts
func (s *Session) Progress() (delivered, needed int) {
	return s.delivered, s.needed
}

// Trail returns the cells of the current attempt, Start first
func (s *Session) Trail() []grid.Point {
	return slices.Clone(s.trail)
}

// Telemetry returns the counters so far with elapsed wall time
func (s *Session) Telemetry(elapsed time.Duration) tracking.Telemetry {
	tel := s.tel
	tel.TimeTaken = elapsed.Seconds()
	tel.Trace = slices.Clone(s.tel.Trace)
	return tel
}

func (s *Session) beginAttempt() {
	s.pos = s.start
	s.carrying = false
	s.delivered = 0
	s.pickups = slices.Clone(s.allPickups)
	s.dropoffs = slices.Clone(s.allDropoffs)
	s.visited = mapset.New[grid.Point]()
	s.visited.Put(s.start)
	s.trail = []grid.Point{s.start}
	s.tel.Trace = append(s.tel.Trace, s.start)
	s.settle()
}

func (s *Session) step(next grid.Point) {
	s.tel.Steps++
	if s.visited.Has(next) {
		s.tel.Backtracks++
	}
	s.visited.Put(next)
	s.pos = next
	s.tel.Trace = append(s.tel.Trace, next)
}

// settle serves adjacent tasks and checks for the win
func (s *Session) settle() EventType {
	event := EventStep

	if !s.carrying && s.delivered < s.needed {
		if i := grid.AdjacentIndex(s.pos, s.pickups); i >= 0 {
			s.pickups = slices.Delete(s.pickups, i, i+1)
			s.carrying = true
			event = EventPickup
		}
	}
	if s.carrying {
		if i := grid.AdjacentIndex(s.pos, s.dropoffs); i >= 0 {
			s.dropoffs = slices.Delete(s.dropoffs, i, i+1)
			s.carrying = false
			s.delivered++
			event = EventDropoff
		}
	}

	if s.delivered == s.needed && s.pos == s.end {
		s.tel.Solved = true
		s.done = true
		event = EventWin
	}
	return event
}

func (s *Session) outstanding() int {
	return tracking.Outstanding(s.needed, s.delivered, s.carrying)
}
