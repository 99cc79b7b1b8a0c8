// Frame dump tool - runs a sandbox for a number of frames in a hidden
// window and writes the last frame to a PNG file for inspection.
//
// Usage: go run ./cmd/framedump -preset firework -frames 240 -out frame.png
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sparkles/config"
	"github.com/pthm-cable/sparkles/game"
	"github.com/pthm-cable/sparkles/render/rlbackend"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	statePath := flag.String("state", "", "State file to render (empty = preset)")
	preset := flag.String("preset", "", "Preset to render (empty = use config)")
	frames := flag.Int("frames", 120, "Frames to simulate before capture")
	fps := flag.Float64("fps", 60, "Simulated frames per second")
	seed := flag.Int64("seed", 1, "RNG seed")
	outPath := flag.String("out", "frame.png", "Output PNG path")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *frames < 1 || *fps <= 0 {
		fmt.Fprintln(os.Stderr, "-frames and -fps must be positive")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.State.Autosave = false

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Frame Dump")
	defer rl.CloseWindow()

	g, err := game.NewGame(cfg, rlbackend.New(), game.Options{
		Seed:      *seed,
		Preset:    *preset,
		StatePath: *statePath,
		MaxFrames: int64(*frames),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build sandbox: %v\n", err)
		os.Exit(1)
	}
	defer g.Unload()

	dt := float32(1 / *fps)
	var img *rl.Image
	for !g.Done() {
		rl.BeginDrawing()
		if err := g.Step(dt); err != nil {
			rl.EndDrawing()
			fmt.Fprintf(os.Stderr, "Frame failed: %v\n", err)
			os.Exit(1)
		}
		if g.Done() {
			img = rl.LoadImageFromScreen()
		}
		rl.EndDrawing()
	}

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		st := g.Sandbox().Last
		fmt.Printf("Frame %d rendered to: %s (%dx%d, %d live particles)\n",
			g.Frame(), *outPath, cfg.Screen.Width, cfg.Screen.Height, st.Live)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
