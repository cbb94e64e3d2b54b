// Package audio plays short tones for courier events
// A missing or busy sound device is not an error for callers; cues are then
// silently dropped.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)

	// Master cue volume, linear
	cueVolume = 0.4
)

// Cue identifies an event tone
type Cue uint8

const (
	CuePickup Cue = iota
	CueDropoff
	CueWin
	CueReset
	CueBlocked
)

func (c Cue) String() string {
	switch c {
	case CuePickup:
		return "pickup"
	case CueDropoff:
		return "dropoff"
	case CueWin:
		return "win"
	case CueReset:
		return "reset"
	case CueBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// note is one tone of a cue
type note struct {
	freq float64
	dur  time.Duration
}

var cueNotes = map[Cue][]note{
	CuePickup:  {{freq: 660, dur: 60 * time.Millisecond}, {freq: 880, dur: 80 * time.Millisecond}},
	CueDropoff: {{freq: 880, dur: 60 * time.Millisecond}, {freq: 1320, dur: 120 * time.Millisecond}},
	CueWin: {
		{freq: 523.25, dur: 90 * time.Millisecond},
		{freq: 659.25, dur: 90 * time.Millisecond},
		{freq: 783.99, dur: 90 * time.Millisecond},
		{freq: 1046.5, dur: 240 * time.Millisecond},
	},
	CueReset: {{freq: 440, dur: 80 * time.Millisecond}, {freq: 330, dur: 80 * time.Millisecond}, {freq: 220, dur: 140 * time.Millisecond}},
}

// Cues owns the speaker and a mixer that cue tones are added to
type Cues struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	muted       bool
}

// NewCues creates an idle player; call Init to open the device
func NewCues() *Cues {
	return &Cues{
		mixer: &beep.Mixer{},
	}
}

// Init opens the speaker and starts the mixer; repeated calls are no-ops
func (c *Cues) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Close drops pending tones and releases the device
func (c *Cues) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}

	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()

	speaker.Clear()
	speaker.Close()
	c.initialized = false
}

// SetMuted enables or disables playback
func (c *Cues) SetMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted
	c.mu.Unlock()
}

// ToggleMute flips the mute state and returns the new one
func (c *Cues) ToggleMute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = !c.muted
	return c.muted
}

// Muted reports the mute state
func (c *Cues) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Play queues the tone for cue; dropped when muted or without a device
func (c *Cues) Play(cue Cue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized || c.muted {
		return
	}

	s := Render(cue)
	if s == nil {
		return
	}

	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// Render builds the finite stream for cue at the package sample rate
func Render(cue Cue) beep.Streamer {
	if cue == CueBlocked {
		d := 70 * time.Millisecond
		return newVolume(fade(beep.Take(sampleRate.N(d), NewBuzzGenerator(sampleRate, 120)), d, 5*time.Millisecond, 30*time.Millisecond), cueVolume)
	}

	notes, ok := cueNotes[cue]
	if !ok {
		return nil
	}

	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		tone, err := generators.SineTone(sampleRate, n.freq)
		if err != nil {
			continue
		}
		shaped := fade(beep.Take(sampleRate.N(n.dur), tone), n.dur, 5*time.Millisecond, n.dur/2)
		parts = append(parts, shaped)
	}
	if len(parts) == 0 {
		return nil
	}
	return newVolume(beep.Seq(parts...), cueVolume)
}

// newVolume scales s by a linear factor; zero or less is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
