// Package audio synthesizes the game's cue, success and failure tones
// with beep. No audio backend is required: initialization failure
// degrades to silence, never to an error.
package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog/log"
)

const sampleRate = beep.SampleRate(48000)

// Tone frequencies and durations
const (
	cueFreq      = 600.0
	successFreqA = 800.0
	successFreqB = 1000.0
	failFreq     = 200.0

	cueDuration     = 200 * time.Millisecond
	successDuration = 100 * time.Millisecond
	failDuration    = 300 * time.Millisecond

	toneGain = 0.3 // Master scaling applied on top of the volume setting
)

// Player plays the three game tones through the system speaker
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	disabled    atomic.Bool

	volume float64
	muted  atomic.Bool
}

// NewPlayer creates a player with the given volume in [0, 1]
func NewPlayer(volume float64) *Player {
	return &Player{
		mixer:  &beep.Mixer{},
		volume: clampVolume(volume),
	}
}

// Init opens the speaker. On failure the player is permanently disabled
// and every Play call becomes a no-op.
func (p *Player) Init() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || p.disabled.Load() {
		return
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		log.Warn().Err(err).Msg("audio backend unavailable, playing silently")
		p.disabled.Store(true)
		return
	}
	speaker.Play(p.mixer)
	p.initialized = true
}

// Close stops playback
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

// PlayCue plays the "now!" signal tone
func (p *Player) PlayCue() {
	p.play(tone(WaveTriangle, cueFreq, cueDuration, p.gain()))
}

// PlaySuccess plays the rising two-note success chime
func (p *Player) PlaySuccess() {
	g := p.gain()
	p.play(beep.Seq(
		tone(WaveSine, successFreqA, successDuration, g),
		tone(WaveSine, successFreqB, successDuration, g),
	))
}

// PlayFailure plays the false-start buzz
func (p *Player) PlayFailure() {
	p.play(tone(WaveSawtooth, failFreq, failDuration, p.gain()))
}

// SetVolume sets playback volume, clamped to [0, 1]
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clampVolume(v)
}

// SetMuted silences or restores playback
func (p *Player) SetMuted(muted bool) {
	p.muted.Store(muted)
}

// IsMuted reports the mute state
func (p *Player) IsMuted() bool {
	return p.muted.Load()
}

func (p *Player) play(streamer beep.Streamer) {
	if p.disabled.Load() || p.muted.Load() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Add(streamer)
	speaker.Unlock()
}

func (p *Player) gain() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume * toneGain
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
