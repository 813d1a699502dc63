package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

const signalWait = 2 * time.Second

func newTestEngine(t *testing.T, cfg EngineConfig) (*Engine, *clockwork.FakeClock, chan struct{}) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	engine := NewEngine(cfg, clock, rand.New(rand.NewSource(1)))

	signaled := make(chan struct{}, 1)
	engine.SetSignalHandler(func() {
		signaled <- struct{}{}
	})
	return engine, clock, signaled
}

func awaitSignal(t *testing.T, signaled chan struct{}) {
	t.Helper()
	select {
	case <-signaled:
	case <-time.After(signalWait):
		t.Fatal("cue never fired")
	}
}

func TestStartSchedulesCueWithinInterval(t *testing.T) {
	cfg := EngineConfig{MinDelay: 2 * time.Second, MaxDelay: 5 * time.Second}
	engine, clock, signaled := newTestEngine(t, cfg)

	if !engine.Start() {
		t.Fatal("Start from Idle should succeed")
	}
	if engine.Phase() != PhaseArmed {
		t.Fatalf("Expected phase armed, got %s", engine.Phase())
	}

	// Wait for the cue timer to be registered before advancing
	clock.BlockUntil(1)

	// The cue never fires before MinDelay
	clock.Advance(cfg.MinDelay - time.Millisecond)
	select {
	case <-signaled:
		t.Fatal("cue fired before MinDelay")
	case <-time.After(50 * time.Millisecond):
	}
	if engine.Phase() != PhaseArmed {
		t.Fatalf("Expected phase armed before MinDelay, got %s", engine.Phase())
	}

	// By MaxDelay it must have fired
	clock.Advance(cfg.MaxDelay - cfg.MinDelay + 2*time.Millisecond)
	awaitSignal(t, signaled)

	if engine.Phase() != PhaseSignaled {
		t.Fatalf("Expected phase signaled, got %s", engine.Phase())
	}
}

func TestRandomDelayStaysWithinBounds(t *testing.T) {
	cfg := EngineConfig{MinDelay: 100 * time.Millisecond, MaxDelay: 350 * time.Millisecond}
	engine, _, _ := newTestEngine(t, cfg)

	for i := 0; i < 1000; i++ {
		d := engine.randomDelay()
		if d < cfg.MinDelay || d > cfg.MaxDelay {
			t.Fatalf("delay %s outside [%s, %s]", d, cfg.MinDelay, cfg.MaxDelay)
		}
	}
}

func TestStartIsIdempotentWhileArmed(t *testing.T) {
	engine, clock, _ := newTestEngine(t, DefaultEngineConfig())

	engine.Start()
	clock.BlockUntil(1)

	if engine.Start() {
		t.Error("Start while armed should have no effect")
	}
	if engine.Phase() != PhaseArmed {
		t.Errorf("Expected phase armed, got %s", engine.Phase())
	}
}

func TestClickBeforeCueIsFalseStart(t *testing.T) {
	engine, clock, signaled := newTestEngine(t, DefaultEngineConfig())

	engine.Start()
	clock.BlockUntil(1)

	outcome, ms := engine.RegisterClick()
	if outcome != ClickFalseStart {
		t.Fatalf("Expected false start, got %d", outcome)
	}
	if ms != 0 || engine.ReactionMs() != 0 {
		t.Error("false start must not record a reaction time")
	}
	if engine.Phase() != PhaseFailure {
		t.Fatalf("Expected phase failure, got %s", engine.Phase())
	}

	// The scheduled timer fires into the resolved state: safe no-op
	clock.Advance(10 * time.Second)
	select {
	case <-signaled:
		t.Fatal("cue must not fire after the round resolved")
	case <-time.After(50 * time.Millisecond):
	}
	if engine.Phase() != PhaseFailure {
		t.Errorf("Expected phase failure after stale timer, got %s", engine.Phase())
	}
}

func TestClickAfterCueMeasuresReaction(t *testing.T) {
	engine, clock, signaled := newTestEngine(t, DefaultEngineConfig())

	engine.Start()
	clock.BlockUntil(1)
	clock.Advance(5 * time.Second)
	awaitSignal(t, signaled)

	clock.Advance(237 * time.Millisecond)

	outcome, ms := engine.RegisterClick()
	if outcome != ClickSuccess {
		t.Fatalf("Expected success, got %d", outcome)
	}
	if ms != 237 {
		t.Errorf("Expected 237 ms, got %d", ms)
	}
	if engine.ReactionMs() != 237 {
		t.Errorf("Expected stored reaction 237 ms, got %d", engine.ReactionMs())
	}
	if engine.Phase() != PhaseSuccess {
		t.Errorf("Expected phase success, got %s", engine.Phase())
	}
}

func TestClickFromIdleStartsRound(t *testing.T) {
	engine, _, _ := newTestEngine(t, DefaultEngineConfig())

	outcome, _ := engine.RegisterClick()
	if outcome != ClickStarted {
		t.Fatalf("Expected click-to-begin, got %d", outcome)
	}
	if engine.Phase() != PhaseArmed {
		t.Errorf("Expected phase armed, got %s", engine.Phase())
	}
}

func TestClicksAfterResolutionAreIgnored(t *testing.T) {
	engine, clock, signaled := newTestEngine(t, DefaultEngineConfig())

	engine.Start()
	clock.BlockUntil(1)
	clock.Advance(5 * time.Second)
	awaitSignal(t, signaled)
	clock.Advance(150 * time.Millisecond)
	engine.RegisterClick()

	outcome, _ := engine.RegisterClick()
	if outcome != ClickIgnored {
		t.Errorf("Expected late click ignored, got %d", outcome)
	}
	if engine.ReactionMs() != 150 {
		t.Errorf("late click must not overwrite the reaction time, got %d", engine.ReactionMs())
	}
}

func TestResetIsIdempotent(t *testing.T) {
	engine, clock, _ := newTestEngine(t, DefaultEngineConfig())

	engine.Start()
	clock.BlockUntil(1)

	engine.Reset()
	engine.Reset()

	if engine.Phase() != PhaseIdle {
		t.Errorf("Expected phase idle after double reset, got %s", engine.Phase())
	}
	if engine.ReactionMs() != 0 {
		t.Error("reset must clear the reaction time")
	}
}

func TestTimerFiringAfterResetIsNoOp(t *testing.T) {
	engine, clock, signaled := newTestEngine(t, DefaultEngineConfig())

	engine.Start()
	clock.BlockUntil(1)
	engine.Reset()

	clock.Advance(10 * time.Second)
	select {
	case <-signaled:
		t.Fatal("stale cue fired after reset")
	case <-time.After(50 * time.Millisecond):
	}
	if engine.Phase() != PhaseIdle {
		t.Errorf("Expected phase idle, got %s", engine.Phase())
	}

	// A fresh round still works after the stale timer was invalidated
	if !engine.Start() {
		t.Error("Start after reset should succeed")
	}
}
