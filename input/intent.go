// Package input turns key presses into courier moves and tracks a human play
package input

import "github.com/lixenwraith/courier/grid"

// IntentType discriminates semantic actions
type IntentType uint8

const (
	IntentNone IntentType = iota

	// System-level intents
	IntentQuit       // Esc, q, Ctrl+C
	IntentToggleMute // m

	// Play intents
	IntentMove  // WASD, arrows
	IntentUndo  // Backspace, u
	IntentReset // r
)

func (t IntentType) String() string {
	switch t {
	case IntentQuit:
		return "quit"
	case IntentToggleMute:
		return "mute"
	case IntentMove:
		return "move"
	case IntentUndo:
		return "undo"
	case IntentReset:
		return "reset"
	default:
		return "none"
	}
}

// Action is a resolved key press; Dir is set only for IntentMove
type Action struct {
	Intent IntentType
	Dir    grid.Point
}

// Movement directions, matching grid.Directions
var (
	DirUp    = grid.Directions[0]
	DirDown  = grid.Directions[1]
	DirLeft  = grid.Directions[2]
	DirRight = grid.Directions[3]
)

// Move builds a move action
func Move(dir grid.Point) Action {
	return Action{Intent: IntentMove, Dir: dir}
}

// EventType reports what an applied action did to the session
type EventType uint8

const (
	EventNone    EventType = iota
	EventBlocked           // move into a wall or off the map
	EventStep
	EventPickup
	EventDropoff
	EventWin
	EventReset
)
