package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trophic/config"
	"github.com/pthm-cable/trophic/game"
	"github.com/pthm-cable/trophic/server"
	"github.com/pthm-cable/trophic/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics, starting immediately")
	serve := flag.Bool("serve", false, "Stream frames to browsers over WebSocket instead of opening a window")
	addr := flag.String("addr", "", "Listen address for -serve (empty = use config)")
	logStats := flag.Bool("log-stats", false, "Output trial and perf stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, snapshots and config")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N total ticks (0 = unlimited)")
	maxTrials := flag.Int("max-trials", 0, "Stop after N completed trials (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster runs)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Config:         cfg,
		Seed:           rngSeed,
		OutputDir:      *outputDir,
		LogStats:       *logStats,
		StepsPerUpdate: *stepsPerUpdate,
		MaxTrials:      *maxTrials,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limitReached := func(g *game.Game) bool {
		if g.Done() {
			return true
		}
		if *maxTicks > 0 && g.TotalTicks() >= *maxTicks {
			slog.Info("max ticks reached", "total_ticks", g.TotalTicks())
			return true
		}
		return false
	}

	switch {
	case *headless:
		// Pure CPU simulation, no raylib needed
		g, err := game.NewGameWithOptions(opts)
		if err != nil {
			slog.Error("failed to create game", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"max_ticks", *maxTicks,
			"max_trials", *maxTrials,
			"steps_per_update", g.StepsPerUpdate(),
		)
		g.Begin()

		for ctx.Err() == nil && !limitReached(g) {
			g.UpdateHeadless()
		}

	case *serve:
		g, err := game.NewGameWithOptions(opts)
		if err != nil {
			slog.Error("failed to create game", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		serverCfg := cfg.Server
		if *addr != "" {
			serverCfg.Addr = *addr
		}
		hub := server.NewHub(serverCfg, g.Species())
		g.AddSink(hub)

		errCh := make(chan error, 1)
		go func() { errCh <- hub.ListenAndServe(ctx) }()

		fps := max(cfg.Screen.TargetFPS, 1)
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()

		for !limitReached(g) {
			select {
			case <-ctx.Done():
				<-errCh
				return
			case err := <-errCh:
				if err != nil {
					slog.Error("server failed", "error", err)
				}
				return
			case <-ticker.C:
				hub.Drain(g)
				g.Update()
			}
		}
		stop()
		<-errCh

	default:
		// Graphical mode
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Trophic")
		defer rl.CloseWindow()

		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		g, err := game.NewGameWithOptions(opts)
		if err != nil {
			slog.Error("failed to create game", "error", err)
			return
		}
		defer g.Unload()

		window := ui.NewWindow(g.Species())
		g.AddSink(window)

		for !rl.WindowShouldClose() && ctx.Err() == nil {
			for _, cmd := range window.Draw() {
				if err := g.Apply(cmd); err != nil {
					slog.Warn("command rejected", "kind", cmd.Kind.String(), "error", err)
				}
			}
			g.Update()

			if limitReached(g) {
				break
			}
		}
	}
}
