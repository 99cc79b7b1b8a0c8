// Light mask preview tool - interactive visualization of the light texture
// presets with sliders.
//
// Usage: go run ./cmd/lightpreview
package main

import (
	"fmt"
	"image/color"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sparkles/render"
)

const (
	windowWidth  = 1000
	windowHeight = 620
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// LightParams holds the mask parameters.
type LightParams struct {
	Size      int
	Cutoff    float32
	Sharpness float32
}

func defaultParams() LightParams {
	return LightParams{
		Size:      render.LightMaskSize,
		Cutoff:    render.LightCutoff,
		Sharpness: render.LightSharpness[render.TextureSharpLight],
	}
}

// maskStats summarizes the alpha channel of a mask.
type maskStats struct {
	Coverage  float32 // share of pixels with any alpha
	MeanAlpha float32
	MaxAlpha  uint8
}

func computeStats(pixels []byte) maskStats {
	var s maskStats
	n := len(pixels) / 4
	if n == 0 {
		return s
	}
	var lit, sum int
	for i := 3; i < len(pixels); i += 4 {
		a := pixels[i]
		if a > 0 {
			lit++
		}
		sum += int(a)
		if a > s.MaxAlpha {
			s.MaxAlpha = a
		}
	}
	s.Coverage = float32(lit) / float32(n)
	s.MeanAlpha = float32(sum) / float32(n) / 255
	return s
}

// toColors reinterprets RGBA8 bytes for raylib.
func toColors(pixels []byte) []color.RGBA {
	out := make([]color.RGBA, len(pixels)/4)
	for i := range out {
		out[i] = color.RGBA{R: pixels[i*4], G: pixels[i*4+1], B: pixels[i*4+2], A: pixels[i*4+3]}
	}
	return out
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Light Mask Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()

	var texture rl.Texture2D
	var stats maskStats
	loadedSize := 0
	needsRegen := true
	tint := true

	defer func() {
		if loadedSize > 0 {
			rl.UnloadTexture(texture)
		}
	}()

	for !rl.WindowShouldClose() {
		if needsRegen {
			pixels := render.LightMask(params.Size, params.Size, params.Cutoff, params.Sharpness)
			stats = computeStats(pixels)
			if loadedSize != params.Size {
				if loadedSize > 0 {
					rl.UnloadTexture(texture)
				}
				img := rl.GenImageColor(params.Size, params.Size, rl.Blank)
				texture = rl.LoadTextureFromImage(img)
				rl.UnloadImage(img)
				loadedSize = params.Size
			}
			rl.UpdateTexture(texture, toColors(pixels))
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Preview on the sandbox's default dark background, blended the
		// way textured particles are.
		rl.DrawRectangle(10, 10, previewSize, previewSize, rl.Black)
		tintColor := rl.White
		if tint {
			tintColor = rl.NewColor(255, 160, 60, 255)
		}
		rl.BeginBlendMode(rl.BlendAdditive)
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(params.Size), Height: float32(params.Size)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			tintColor,
		)
		rl.EndBlendMode()
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Coverage: %.1f%%  Mean alpha: %.3f  Max alpha: %d",
			stats.Coverage*100, stats.MeanAlpha, stats.MaxAlpha), 15, statsY, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Light Mask Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Size (pixels per side)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSize := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"8", "256",
			float32(params.Size), 8, 256,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Size), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newSize) != params.Size {
			params.Size = int(newSize)
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Sharpness (falloff exponent)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSharpness := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "20",
			params.Sharpness, 0, 20,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Sharpness), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newSharpness != params.Sharpness {
			params.Sharpness = newSharpness
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Cutoff (alpha cleared below)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newCutoff := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "0.5",
			params.Cutoff, 0, 0.5,
		)
		rl.DrawText(fmt.Sprintf("%.3f", params.Cutoff), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newCutoff != params.Cutoff {
			params.Cutoff = newCutoff
			needsRegen = true
		}
		panelY += 45

		// Preset buttons
		rl.DrawText("Presets", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for t := render.TextureBlurryLight; t < render.NumTexturePresets; t++ {
			x := panelX + float32(t-render.TextureBlurryLight)*145
			if gui.Button(rl.Rectangle{X: x, Y: panelY, Width: 135, Height: 30}, render.TexturePresetNames[t]) {
				params = defaultParams()
				params.Sharpness = render.LightSharpness[t]
				needsRegen = true
			}
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 135, Height: 30}, toggleText(tint, "White", "Tinted")) {
			tint = !tint
		}
		panelY += 55

		rl.DrawText("Go:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		call := fmt.Sprintf("render.LightMask(%d, %d, %.3f, %.2f)", params.Size, params.Size, params.Cutoff, params.Sharpness)
		rl.DrawText(call, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy the call to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(call)
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
