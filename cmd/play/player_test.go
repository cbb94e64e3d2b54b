package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/courier/audio"
	"github.com/lixenwraith/courier/grid"
	"github.com/lixenwraith/courier/input"
	"github.com/lixenwraith/courier/render"
)

func corridor() *grid.Grid {
	return grid.MustParse(
		"OSOOO",
		"O#POO",
		"O#OOO",
		"O#DOO",
		"OEOOO",
	)
}

func newPlayer(t *testing.T, events ...tcell.Event) *player {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, sim.Init())
	sim.SetSize(40, 10)
	t.Cleanup(sim.Fini)

	ch := make(chan tcell.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)

	return &player{screen: render.NewScreen(sim), events: ch, cues: audio.NewCues()}
}

func key(r rune) tcell.Event {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestPlayer_SolvesWithKeys(t *testing.T) {
	p := newPlayer(t, key('s'), key('m'), key('s'), key('S'), key('s'))
	s := input.NewSession(corridor())

	p.play(s)
	assert.True(t, s.Solved())
	assert.False(t, p.quit)
	assert.True(t, p.cues.Muted())
}

func TestPlayer_QuitStopsSession(t *testing.T) {
	p := newPlayer(t, key('s'), tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), key('s'))
	s := input.NewSession(corridor())

	p.play(s)
	assert.True(t, p.quit)
	assert.False(t, s.Done())
	assert.Equal(t, 1, s.Telemetry(0).Steps)
}

func TestPlayer_ClosedEventsQuit(t *testing.T) {
	p := newPlayer(t)
	p.play(input.NewSession(corridor()))
	assert.True(t, p.quit)
}

func TestCueFor(t *testing.T) {
	c, ok := cueFor(input.EventDropoff)
	assert.True(t, ok)
	assert.Equal(t, audio.CueDropoff, c)

	_, ok = cueFor(input.EventStep)
	assert.False(t, ok)
}
