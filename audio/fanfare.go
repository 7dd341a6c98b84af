// Package audio plays the celebration fanfare. Sound is optional: any device
// failure disables it without affecting playback.
package audio

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// note is one step of the fanfare
type note struct {
	freq     float64
	duration time.Duration
}

// fanfareNotes is a rising C major arpeggio (C6, E6, G6, C7 held)
var fanfareNotes = []note{
	{1046.50, 110 * time.Millisecond},
	{1318.51, 110 * time.Millisecond},
	{1567.98, 110 * time.Millisecond},
	{2093.00, 420 * time.Millisecond},
}

const (
	noteAttack  = 5 * time.Millisecond
	noteRelease = 60 * time.Millisecond
	onsetLength = 20 * time.Millisecond // square-wave strike at each note start
)

// Chime builds the fanfare stream at rate and volume [0,1]
func Chime(rate beep.SampleRate, volume float64) beep.Streamer {
	steps := make([]beep.Streamer, 0, len(fanfareNotes))
	for _, n := range fanfareNotes {
		fund := NewEnvelope(NewOscillator(n.freq, n.duration, WaveTriangle, rate), n.duration, noteAttack, noteRelease, rate)
		over := NewEnvelope(NewOscillator(n.freq*2, n.duration, WaveSine, rate), n.duration, noteAttack, n.duration/2, rate)
		onset := NewEnvelope(NewOscillator(n.freq, onsetLength, WaveSquare, rate), onsetLength, time.Millisecond, onsetLength/2, rate)
		steps = append(steps, beep.Mix(newVolume(fund, 0.65), newVolume(over, 0.25), newVolume(onset, 0.08)))
	}
	return newVolume(beep.Seq(steps...), volume)
}

// Fanfare owns the speaker; safe for concurrent use
type Fanfare struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
	disabled    bool

	initSpeaker func(beep.SampleRate, int) error
	playSpeaker func(...beep.Streamer)
}

// NewFanfare creates an uninitialized fanfare player
func NewFanfare(volume float64) *Fanfare {
	return &Fanfare{
		mixer:       &beep.Mixer{},
		volume:      volume,
		initSpeaker: speaker.Init,
		playSpeaker: speaker.Play,
	}
}

// Initialize opens the audio device; a failure disables sound for good
func (f *Fanfare) Initialize() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.initialized || f.disabled {
		return nil
	}
	if err := f.initSpeaker(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		f.disabled = true
		log.Printf("audio: disabled: %v", err)
		return err
	}
	f.playSpeaker(f.mixer)
	f.initialized = true
	return nil
}

// Enabled reports whether sound will be heard
func (f *Fanfare) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initialized && !f.disabled
}

// Play queues the fanfare, a no-op when audio is unavailable
func (f *Fanfare) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized || f.volume <= 0 {
		return
	}
	speaker.Lock()
	f.mixer.Add(Chime(sampleRate, f.volume))
	speaker.Unlock()
}

// Close silences queued sounds
func (f *Fanfare) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized {
		return
	}
	speaker.Lock()
	f.mixer.Clear()
	speaker.Unlock()
	f.initialized = false
}
