package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yomikakisan/imada/ranking"
	"github.com/yomikakisan/imada/validate"
)

// Display is the presentation collaborator. Implementations own all
// rendering; the controller only calls these methods and never touches
// presentation state itself.
type Display interface {
	ShowIdle()
	ShowArmed()
	ShowSignaled()
	ShowSuccess(reactionMs int, grade string)
	ShowFailure()
	ShowHighScorePrompt()
	ShowRank(rank, reactionMs int)
	ShowError(message string)
	RenderRanking(entries []ranking.DisplayEntry)
	SetMuted(muted bool)
}

// Audio is the tone playback collaborator. All calls are fire-and-forget.
type Audio interface {
	PlayCue()
	PlaySuccess()
	PlayFailure()
	SetVolume(v float64)
	SetMuted(muted bool)
}

// Controller wires player input to the timing engine and successful
// outcomes to the ranking store, driving the display and audio
// collaborators along the way
type Controller struct {
	mu      sync.Mutex
	engine  *Engine
	store   *ranking.Store
	display Display
	audio   Audio

	muted          bool
	lastReactionMs int
	awaitingName   bool
}

// NewController composes the engine, store and collaborators, and hooks
// the engine's cue signal to the display and audio
func NewController(engine *Engine, store *ranking.Store, display Display, audio Audio, muted bool) *Controller {
	c := &Controller{
		engine:  engine,
		store:   store,
		display: display,
		audio:   audio,
		muted:   muted,
	}
	engine.SetSignalHandler(func() {
		c.display.ShowSignaled()
		c.audio.PlayCue()
	})
	audio.SetMuted(muted)
	return c
}

// Init renders the initial screen and the current leaderboard
func (c *Controller) Init(ctx context.Context) {
	c.display.RenderRanking(c.store.DisplaySlice(ctx))
	c.display.ShowIdle()
	c.display.SetMuted(c.muted)
}

// OnInput handles a click or tap. From Idle it starts a round; during a
// round it resolves it. Qualification is checked on success and, when
// met, the display is asked to collect a name.
func (c *Controller) OnInput(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	outcome, reactionMs := c.engine.RegisterClick()
	switch outcome {
	case ClickStarted:
		c.awaitingName = false
		c.display.ShowArmed()

	case ClickFalseStart:
		c.audio.PlayFailure()
		c.display.ShowFailure()

	case ClickSuccess:
		c.lastReactionMs = reactionMs
		c.audio.PlaySuccess()
		c.display.ShowSuccess(reactionMs, Evaluation(reactionMs))
		if c.store.IsQualifying(ctx, reactionMs) {
			c.awaitingName = true
			c.display.ShowHighScorePrompt()
		}

	case ClickIgnored:
		// Round already resolved; wait for reset
	}
}

// OnSubmitName submits the pending high score under the given name and
// re-renders the leaderboard. Validation and duplicate rejections are
// reported through the display.
func (c *Controller) OnSubmitName(ctx context.Context, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.awaitingName {
		return
	}

	result, err := c.store.Submit(ctx, name, c.lastReactionMs)
	if err != nil {
		c.display.ShowError(submitErrorMessage(err))
		return
	}
	c.awaitingName = false

	c.display.RenderRanking(c.store.DisplaySlice(ctx))
	if result.IsHighScore {
		c.display.ShowRank(result.Rank, c.lastReactionMs)
	} else {
		c.display.ShowSuccess(c.lastReactionMs, Evaluation(c.lastReactionMs))
	}
}

// OnReset abandons the current round and returns to the idle screen
func (c *Controller) OnReset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.awaitingName = false
	c.engine.Reset()
	c.display.ShowIdle()
}

// OnToggleMute flips the mute state and reports the new state
func (c *Controller) OnToggleMute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.muted = !c.muted
	c.audio.SetMuted(c.muted)
	c.display.SetMuted(c.muted)
	return c.muted
}

// AwaitingName reports whether the display should be collecting a
// high-score name
func (c *Controller) AwaitingName() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.awaitingName
}

// RoundInFlight reports whether a round is between start and resolution.
// The reset key is inert during that window; resolving the round first
// is the only way out.
func (c *Controller) RoundInFlight() bool {
	phase := c.engine.Phase()
	return phase == PhaseArmed || phase == PhaseSignaled
}

func submitErrorMessage(err error) string {
	switch {
	case errors.Is(err, validate.ErrNameEmpty):
		return "名前を入力してください"
	case errors.Is(err, validate.ErrNameTooLong):
		return fmt.Sprintf("名前は%d文字以内で入力してください", validate.MaxNameLength)
	case errors.Is(err, ranking.ErrInvalidName):
		return "名前に使用できない文字が含まれています"
	case errors.Is(err, ranking.ErrInvalidScore):
		return "無効なスコアです"
	case errors.Is(err, ranking.ErrDuplicateSubmission):
		return "同じスコアが短時間で複数回登録されています"
	case errors.Is(err, ranking.ErrPersistFailure):
		return "スコアの保存に失敗しました"
	default:
		return "スコア登録に失敗しました"
	}
}
