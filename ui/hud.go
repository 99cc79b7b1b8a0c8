package ui

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Preset     string
	FPS        int32
	Frame      int64
	Live       int
	Capacity   int
	Emitters   int
	Attractors int
	Zoom       float32
	Paused     bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// StatusLines returns the HUD text lines for data.
func StatusLines(data HUDData) []string {
	lines := []string{
		fmt.Sprintf("Particles: %d / %d | Emitters: %d | Attractors: %d",
			data.Live, data.Capacity, data.Emitters, data.Attractors),
		fmt.Sprintf("Frame: %d | FPS: %d | Zoom: %.1fx | Preset: %s",
			data.Frame, data.FPS, data.Zoom, data.Preset),
	}
	if data.Paused {
		lines = append(lines, "PAUSED")
	}
	return lines
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	y := int32(35)
	for i, line := range StatusLines(data) {
		color := rl.LightGray
		if i == 2 {
			color = rl.Yellow
		}
		rl.DrawText(line, 10, y, 16, color)
		y += 20
	}
}

// DrawStarvationWarning shows the starvation message centered on screen.
func (h *HUD) DrawStarvationWarning(screenW, screenH int32) {
	const size = 24
	lines := strings.Split(sandbox.StarvationMessage, "\n")
	y := screenH/2 - int32(len(lines))*size/2
	for _, line := range lines {
		line = strings.TrimSpace(line)
		w := rl.MeasureText(line, size)
		rl.DrawText(line, (screenW-w)/2, y, size, h.renderer.Theme.WarningColor)
		y += size + 4
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders frame phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %dus  Max: %dus  FPS: %.0f",
		stats.AvgFrame.Microseconds(), stats.MaxFrame.Microseconds(), stats.FPS),
		x, y, 14, rl.Yellow)
	y += 16

	for phase := range telemetry.NumPhases {
		pct := stats.Share(phase)
		avg := stats.Phase[phase]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-12s %6dus %5.1f%%", phase, avg.Microseconds(), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
