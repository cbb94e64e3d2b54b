package input

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// KeyTable maps keys to actions
type KeyTable struct {
	// Special keys (Ctrl+*, arrows, Esc, Backspace)
	SpecialKeys map[tcell.Key]Action

	// Rune bindings, matched case-insensitively
	Runes map[rune]Action
}

// DefaultKeyTable returns the default key bindings
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		SpecialKeys: map[tcell.Key]Action{
			tcell.KeyUp:         Move(DirUp),
			tcell.KeyDown:       Move(DirDown),
			tcell.KeyLeft:       Move(DirLeft),
			tcell.KeyRight:      Move(DirRight),
			tcell.KeyBackspace:  {Intent: IntentUndo},
			tcell.KeyBackspace2: {Intent: IntentUndo},
			tcell.KeyEscape:     {Intent: IntentQuit},
			tcell.KeyCtrlC:      {Intent: IntentQuit},
		},
		Runes: map[rune]Action{
			'w': Move(DirUp),
			's': Move(DirDown),
			'a': Move(DirLeft),
			'd': Move(DirRight),
			'u': {Intent: IntentUndo},
			'r': {Intent: IntentReset},
			'm': {Intent: IntentToggleMute},
			'q': {Intent: IntentQuit},
		},
	}
}

// Lookup resolves a key; unbound keys return IntentNone
func (kt *KeyTable) Lookup(key tcell.Key, r rune) Action {
	if key == tcell.KeyRune {
		return kt.Runes[unicode.ToLower(r)]
	}
	return kt.SpecialKeys[key]
}

var defaultKeys = DefaultKeyTable()

// KeyAction resolves a key event with the default bindings
func KeyAction(ev *tcell.EventKey) Action {
	return defaultKeys.Lookup(ev.Key(), ev.Rune())
}
