package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/courier/audio"
	"github.com/lixenwraith/courier/input"
	"github.com/lixenwraith/courier/render"
)

// player drives human sessions from terminal events
type player struct {
	screen *render.Screen
	events <-chan tcell.Event
	cues   *audio.Cues
	resize func()

	level int
	quit  bool
}

// play runs one session until it is done or the player quits
func (p *player) play(s *input.Session) time.Duration {
	start := time.Now()
	p.draw(s, "")

	for !s.Done() {
		ev, ok := <-p.events
		if !ok {
			p.quit = true
			break
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			if p.resize != nil {
				p.resize()
			}
			p.draw(s, "")
		case *tcell.EventKey:
			a := input.KeyAction(ev)
			switch a.Intent {
			case input.IntentQuit:
				p.quit = true
				return time.Since(start)
			case input.IntentToggleMute:
				muted := p.cues.ToggleMute()
				p.draw(s, fmt.Sprintf("muted=%t", muted))
			case input.IntentNone:
			default:
				result := s.Apply(a)
				if c, ok := cueFor(result); ok {
					p.cues.Play(c)
				}
				p.draw(s, eventNote(result))
			}
		}
	}

	elapsed := time.Since(start)
	if s.Solved() {
		p.draw(s, fmt.Sprintf("delivered in %.1fs, building the next map...", elapsed.Seconds()))
	}
	return elapsed
}

func (p *player) draw(s *input.Session, note string) {
	delivered, needed := s.Progress()
	tel := s.Telemetry(0)
	status := fmt.Sprintf("difficulty %d  delivered %d/%d  carrying=%t  steps %d  resets %d",
		p.level, delivered, needed, s.Carrying(), tel.Steps, tel.Resets)
	if note != "" {
		status += "  " + note
	}
	p.screen.DrawFrame(s.Grid(), s.Trail(), s.Position(), status)
}

// cueFor maps a session event to its tone
func cueFor(ev input.EventType) (audio.Cue, bool) {
	switch ev {
	case input.EventPickup:
		return audio.CuePickup, true
	case input.EventDropoff:
		return audio.CueDropoff, true
	case input.EventWin:
		return audio.CueWin, true
	case input.EventReset:
		return audio.CueReset, true
	case input.EventBlocked:
		return audio.CueBlocked, true
	default:
		return 0, false
	}
}

func eventNote(ev input.EventType) string {
	switch ev {
	case input.EventPickup:
		return "picked up"
	case input.EventDropoff:
		return "delivered"
	case input.EventWin:
		return "solved"
	case input.EventReset:
		return "reset"
	case input.EventBlocked:
		return "blocked"
	default:
		return ""
	}
}
