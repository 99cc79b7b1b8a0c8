package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/pthm-cable/sparkles/config"
	"github.com/pthm-cable/sparkles/game"
)

func init() {
	// GLFW and raylib need the main OS thread.
	runtime.LockOSThread()
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics (same as -backend headless)")
	backend := flag.String("backend", "", "Render backend: raylib, gl or headless (empty = use config)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	statePath := flag.String("state", "", "State file to load at startup and save to (empty = use config)")
	preset := flag.String("preset", "", "Starting preset (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	backendName := cfg.Render.Backend
	if *backend != "" {
		backendName = *backend
	}
	if *headless {
		backendName = game.BackendHeadless
	}

	opts := game.Options{
		Seed:           rngSeed,
		Preset:         *preset,
		StatePath:      *statePath,
		OutputDir:      *outputDir,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		MaxFrames:      *maxFrames,
	}

	slog.Info("starting sparkles",
		"backend", backendName,
		"seed", rngSeed,
		"preset", opts.Preset,
		"state", opts.StatePath,
		"max_frames", opts.MaxFrames,
	)

	if err := game.Run(cfg, backendName, opts); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}
