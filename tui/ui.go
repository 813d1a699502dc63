// Package tui renders the game in the terminal with tcell and owns the
// input loop. It is a pure consumer of controller results; game rules
// live in the game and ranking packages.
package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/yomikakisan/imada/game"
	"github.com/yomikakisan/imada/ranking"
)

// screenState selects what the main panel is showing
type screenState int

const (
	stateIdle screenState = iota
	stateArmed
	stateSignaled
	stateSuccess
	stateFailure
	stateRank
)

// UI implements game.Display on a tcell screen. All drawing is
// serialized under the mutex; the cue signal arrives from a timer
// goroutine.
type UI struct {
	mu     sync.Mutex
	screen tcell.Screen

	state      screenState
	reactionMs int
	grade      string
	rank       int
	errMsg     string
	prompting  bool
	nameBuf    []rune
	muted      bool
	entries    []ranking.DisplayEntry
}

// New initializes the terminal screen
func New() (*UI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	screen.EnableMouse()
	return &UI{screen: screen}, nil
}

// Fini restores the terminal
func (u *UI) Fini() {
	u.screen.Fini()
}

// ShowIdle implements game.Display
func (u *UI) ShowIdle() {
	u.set(func() {
		u.state = stateIdle
		u.errMsg = ""
		u.prompting = false
		u.nameBuf = nil
	})
}

// ShowArmed implements game.Display
func (u *UI) ShowArmed() {
	u.set(func() { u.state = stateArmed })
}

// ShowSignaled implements game.Display
func (u *UI) ShowSignaled() {
	u.set(func() { u.state = stateSignaled })
}

// ShowSuccess implements game.Display
func (u *UI) ShowSuccess(reactionMs int, grade string) {
	u.set(func() {
		u.state = stateSuccess
		u.reactionMs = reactionMs
		u.grade = grade
		u.prompting = false
	})
}

// ShowFailure implements game.Display
func (u *UI) ShowFailure() {
	u.set(func() { u.state = stateFailure })
}

// ShowHighScorePrompt implements game.Display
func (u *UI) ShowHighScorePrompt() {
	u.set(func() {
		u.prompting = true
		u.nameBuf = nil
		u.errMsg = ""
	})
}

// ShowRank implements game.Display
func (u *UI) ShowRank(rank, reactionMs int) {
	u.set(func() {
		u.state = stateRank
		u.rank = rank
		u.reactionMs = reactionMs
		u.prompting = false
	})
}

// ShowError implements game.Display
func (u *UI) ShowError(message string) {
	u.set(func() { u.errMsg = message })
}

// RenderRanking implements game.Display
func (u *UI) RenderRanking(entries []ranking.DisplayEntry) {
	u.set(func() { u.entries = entries })
}

// SetMuted implements game.Display
func (u *UI) SetMuted(muted bool) {
	u.set(func() { u.muted = muted })
}

func (u *UI) set(apply func()) {
	u.mu.Lock()
	defer u.mu.Unlock()
	apply()
	u.draw()
}

// Run processes input events until the player quits. Space or a click
// drives the round, R resets, M toggles mute, Q or Ctrl+C quits. While
// the high-score prompt is open, typed runes build the name and Enter
// submits it.
func (u *UI) Run(ctx context.Context, ctrl *game.Controller) {
	for {
		ev := u.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			u.set(func() {})
			u.screen.Sync()

		case *tcell.EventMouse:
			if ev.Buttons()&tcell.Button1 != 0 && !ctrl.AwaitingName() {
				ctrl.OnInput(ctx)
			}

		case *tcell.EventKey:
			if ctrl.AwaitingName() {
				if u.handlePromptKey(ctx, ctrl, ev) {
					continue
				}
			}
			switch {
			case ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape:
				return
			case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
				return
			case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
				ctrl.OnInput(ctx)
			case ev.Key() == tcell.KeyRune && (ev.Rune() == 'r' || ev.Rune() == 'R'):
				if !ctrl.RoundInFlight() {
					ctrl.OnReset()
				}
			case ev.Key() == tcell.KeyRune && (ev.Rune() == 'm' || ev.Rune() == 'M'):
				ctrl.OnToggleMute()
			}
		}
	}
}

// handlePromptKey consumes a key press while the name prompt is open.
// Returns true if the key was consumed.
func (u *UI) handlePromptKey(ctx context.Context, ctrl *game.Controller, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEnter:
		u.mu.Lock()
		name := string(u.nameBuf)
		u.mu.Unlock()
		ctrl.OnSubmitName(ctx, name)
		return true
	case tcell.KeyEscape:
		ctrl.OnReset()
		return true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		u.set(func() {
			if len(u.nameBuf) > 0 {
				u.nameBuf = u.nameBuf[:len(u.nameBuf)-1]
			}
		})
		return true
	case tcell.KeyRune:
		u.set(func() { u.nameBuf = append(u.nameBuf, ev.Rune()) })
		return true
	}
	return false
}

// draw repaints the whole screen; caller holds the lock
func (u *UI) draw() {
	u.screen.Clear()
	width, height := u.screen.Size()

	title, body, style := u.mainPanel()
	u.drawCentered(width, height/3-1, title, style.Bold(true))
	u.drawCentered(width, height/3+1, body, style)

	if u.prompting {
		u.drawCentered(width, height/3+3, "ハイスコア！名前を入力してEnter:", styleDefault)
		u.drawCentered(width, height/3+4, string(u.nameBuf)+"_", styleDefault.Bold(true))
	}
	if u.errMsg != "" {
		u.drawCentered(width, height/3+6, u.errMsg, styleError)
	}

	u.drawRanking(width, height)
	u.drawStatusBar(width, height)
	u.screen.Show()
}

var (
	styleDefault  = tcell.StyleDefault
	styleError    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleArmed    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleSignaled = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorRed)
	styleSuccess  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

func (u *UI) mainPanel() (title, body string, style tcell.Style) {
	switch u.state {
	case stateArmed:
		return "・・・", "合図を待て（早いとフライング）", styleArmed
	case stateSignaled:
		return "今だ！", "クリック！", styleSignaled
	case stateSuccess:
		return fmt.Sprintf("%d ms", u.reactionMs), u.grade, styleSuccess
	case stateFailure:
		return "フライング！", "Rでリセットして再挑戦", styleError
	case stateRank:
		return fmt.Sprintf("%d位にランクイン！", u.rank), fmt.Sprintf("%d ms %s", u.reactionMs, game.Evaluation(u.reactionMs)), styleSuccess
	default:
		return "今だ！チャレンジ", "スペースかクリックでスタート", styleDefault
	}
}

func (u *UI) drawRanking(width, height int) {
	top := height * 2 / 3
	u.drawCentered(width, top, "── ランキング ──", styleDim)
	for i, e := range u.entries {
		line := fmt.Sprintf("%s %d位 %s  %d ms", e.Medal, e.Rank, e.Name, e.Score)
		u.drawCentered(width, top+1+i, line, styleDefault)
	}
	if len(u.entries) == 0 {
		u.drawCentered(width, top+1, "まだ記録がありません", styleDim)
	}
}

func (u *UI) drawStatusBar(width, height int) {
	mute := "M:ミュート"
	if u.muted {
		mute = "M:ミュート中"
	}
	bar := "Space:クリック  R:リセット  " + mute + "  Q:終了"
	u.drawCentered(width, height-1, bar, styleDim)
}

// drawCentered centers on terminal cells, not runes: CJK runes occupy
// two cells each
func (u *UI) drawCentered(width, y int, text string, style tcell.Style) {
	x := (width - runewidth.StringWidth(text)) / 2
	if x < 0 {
		x = 0
	}
	for _, r := range text {
		u.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}
