package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yomikakisan/imada/audio"
	"github.com/yomikakisan/imada/config"
	"github.com/yomikakisan/imada/game"
	"github.com/yomikakisan/imada/ranking"
	"github.com/yomikakisan/imada/tui"
)

var (
	configFlag = flag.String("config", "", "Path to YAML config file")
	muteFlag   = flag.Bool("mute", false, "Start with audio muted")
	localFlag  = flag.Bool("local", false, "Disable the shared ranking, local cache only")
	debugFlag  = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	var ui *tui.UI

	// Restore the terminal before printing a crash, or the trace is lost
	// in the alternate screen
	defer func() {
		if r := recover(); r != nil {
			if ui != nil {
				ui.Fini()
			}
			fmt.Fprintf(os.Stderr, "imada crashed: %v\n", r)
			fmt.Fprintf(os.Stderr, "%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	stateDir := resolveStateDir()
	setupLogging(stateDir, *debugFlag)

	rcfg := rankingConfig(cfg, stateDir)

	var remote *ranking.RemoteClient
	if !*localFlag && cfg.Remote.URL != "" {
		remote = ranking.NewRemoteClient(cfg.Remote.URL, config.RemoteToken(), cfg.RemoteTimeout())
	}

	clock := clockwork.NewRealClock()
	store := ranking.NewStore(rcfg, remote, clock)

	engine := game.NewEngine(game.EngineConfig{
		MinDelay: cfg.MinDelay(),
		MaxDelay: cfg.MaxDelay(),
	}, clock, rand.New(rand.NewSource(time.Now().UnixNano())))

	player := audio.NewPlayer(cfg.Audio.Volume)
	player.Init()
	defer player.Close()

	ui, err = tui.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	defer ui.Fini()

	muted := cfg.Audio.Muted || *muteFlag
	ctrl := game.NewController(engine, store, ui, player, muted)

	ctx := context.Background()
	ctrl.Init(ctx)
	ui.Run(ctx, ctrl)
}

// resolveStateDir picks where the cache, sync stamp and log live
func resolveStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	dir := filepath.Join(base, "imada")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "."
	}
	return dir
}

// rankingConfig maps the loaded configuration onto the ranking store,
// resolving relative cache paths under the state directory
func rankingConfig(cfg config.Config, stateDir string) ranking.Config {
	rcfg := ranking.Config{
		MaxRecords:      cfg.Ranking.MaxRecords,
		DisplayCount:    cfg.Ranking.DisplayCount,
		MinScore:        cfg.Game.MinValidScore,
		MaxScore:        cfg.Game.MaxValidScore,
		CacheTTL:        cfg.CacheTTL(),
		RetryBackoff:    cfg.RetryBackoff(),
		DuplicateWindow: cfg.DuplicateWindow(),
		ScoreTolerance:  cfg.Ranking.ScoreToleranceMs,
		MaxDataBytes:    cfg.Ranking.MaxDataBytes,
		CacheFile:       cfg.Ranking.CacheFile,
		SyncFile:        cfg.Ranking.SyncFile,
	}
	if !filepath.IsAbs(rcfg.CacheFile) {
		rcfg.CacheFile = filepath.Join(stateDir, rcfg.CacheFile)
	}
	if !filepath.IsAbs(rcfg.SyncFile) {
		rcfg.SyncFile = filepath.Join(stateDir, rcfg.SyncFile)
	}
	return rcfg
}

// setupLogging sends diagnostics to a file; the terminal belongs to the
// game
func setupLogging(stateDir string, debugEnabled bool) {
	level := zerolog.WarnLevel
	if debugEnabled {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = io.Discard
	f, err := os.OpenFile(filepath.Join(stateDir, "imada.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err == nil {
		w = f
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
