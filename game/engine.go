package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Phase identifies the timing engine state within one round
type Phase int

const (
	PhaseIdle     Phase = iota // Waiting for the round to begin
	PhaseArmed                 // Cue scheduled, not yet shown
	PhaseSignaled              // Cue shown, reaction timer running
	PhaseSuccess               // Clicked after the cue
	PhaseFailure               // Clicked before the cue (false start)
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseArmed:
		return "armed"
	case PhaseSignaled:
		return "signaled"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ClickOutcome classifies what a click did to the engine
type ClickOutcome int

const (
	ClickIgnored    ClickOutcome = iota // Round already resolved, click dropped
	ClickStarted                        // Click-to-begin from Idle
	ClickFalseStart                     // Clicked while Armed
	ClickSuccess                        // Clicked while Signaled, reaction measured
)

// EngineConfig holds the cue scheduling interval
type EngineConfig struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// DefaultEngineConfig returns the stock 2-5 second cue interval
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MinDelay: 2 * time.Second,
		MaxDelay: 5 * time.Second,
	}
}

// Engine is the reaction-timing state machine. One instance serves one
// player; all transitions are serialized under its mutex. Reaction time
// is measured against the clock's monotonic reading, never wall time.
type Engine struct {
	mu    sync.Mutex
	clock clockwork.Clock
	rng   *rand.Rand
	cfg   EngineConfig

	phase      Phase
	round      uint64 // Incremented on Start and Reset; stale timers check it
	signaledAt time.Time
	reactionMs int

	onSignal func()
}

// NewEngine creates an engine in the Idle phase
func NewEngine(cfg EngineConfig, clock clockwork.Clock, rng *rand.Rand) *Engine {
	if cfg.MinDelay <= 0 || cfg.MaxDelay < cfg.MinDelay {
		cfg = DefaultEngineConfig()
	}
	return &Engine{
		clock: clock,
		rng:   rng,
		cfg:   cfg,
		phase: PhaseIdle,
	}
}

// SetSignalHandler registers the cue callback, invoked outside the
// engine lock when the scheduled timer fires
func (e *Engine) SetSignalHandler(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSignal = fn
}

// Phase returns the current phase
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// ReactionMs returns the measured reaction time of the last successful
// round, or 0 if the round did not resolve successfully
func (e *Engine) ReactionMs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reactionMs
}

// Start arms the engine and schedules the cue after a delay drawn
// uniformly from [MinDelay, MaxDelay]. Only legal from Idle; calling it
// while Armed or Signaled has no effect.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseIdle {
		return false
	}

	e.phase = PhaseArmed
	e.round++
	e.reactionMs = 0
	e.signaledAt = time.Time{}

	token := e.round
	timer := e.clock.NewTimer(e.randomDelay())
	go func() {
		<-timer.Chan()
		e.signal(token)
	}()
	return true
}

// signal transitions Armed to Signaled when the cue timer fires.
// A timer from a previous round, or one firing after the round resolved,
// is a safe no-op: the round token and phase guard it.
func (e *Engine) signal(token uint64) {
	e.mu.Lock()
	if e.round != token || e.phase != PhaseArmed {
		e.mu.Unlock()
		return
	}
	e.phase = PhaseSignaled
	e.signaledAt = e.clock.Now()
	fn := e.onSignal
	e.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// RegisterClick processes a player click according to the current phase.
// From Idle it starts a round; while Armed it is a false start; while
// Signaled it resolves the round and reports the reaction time in
// milliseconds. Clicks after resolution are ignored until Reset.
func (e *Engine) RegisterClick() (ClickOutcome, int) {
	e.mu.Lock()

	switch e.phase {
	case PhaseIdle:
		e.mu.Unlock()
		e.Start()
		return ClickStarted, 0

	case PhaseArmed:
		e.phase = PhaseFailure
		e.mu.Unlock()
		return ClickFalseStart, 0

	case PhaseSignaled:
		elapsed := e.clock.Now().Sub(e.signaledAt)
		e.reactionMs = int(elapsed.Round(time.Millisecond) / time.Millisecond)
		e.phase = PhaseSuccess
		ms := e.reactionMs
		e.mu.Unlock()
		return ClickSuccess, ms

	default:
		e.mu.Unlock()
		return ClickIgnored, 0
	}
}

// Reset returns the engine to Idle from any phase. Always legal and
// idempotent; a pending cue timer is invalidated by the round token
// rather than cancelled.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.phase = PhaseIdle
	e.round++
	e.signaledAt = time.Time{}
	e.reactionMs = 0
}

// randomDelay draws the cue delay uniformly from [MinDelay, MaxDelay].
// Caller holds the lock.
func (e *Engine) randomDelay() time.Duration {
	span := e.cfg.MaxDelay - e.cfg.MinDelay
	if span <= 0 {
		return e.cfg.MinDelay
	}
	return e.cfg.MinDelay + time.Duration(e.rng.Int63n(int64(span)+1))
}
