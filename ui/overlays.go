package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sparkles/camera"
	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/sim"
	"github.com/pthm-cable/sparkles/vecmath"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayEditor     OverlayID = "editor"
	OverlayInspector  OverlayID = "inspector"
	OverlayPerf       OverlayID = "perf"
	OverlayEmitters   OverlayID = "emitters"
	OverlayAttractors OverlayID = "attractors"
	OverlayHUD        OverlayID = "hud"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "S", "V")
	Category    string      // Grouping (e.g., "panels", "markers")
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
	Default     bool        // Enabled at startup
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
	order       []OverlayID
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayHUD,
		Name:        "HUD",
		Description: "Particle counts and frame info",
		Key:         rl.KeyH,
		KeyLabel:    "H",
		Category:    "panels",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayEditor,
		Name:        "Editor",
		Description: "Emitter and physics controls",
		Key:         rl.KeyTab,
		KeyLabel:    "Tab",
		Category:    "panels",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayInspector,
		Name:        "Inspector",
		Description: "Selected emitter details",
		Key:         rl.KeyI,
		KeyLabel:    "I",
		Category:    "panels",
		Exclusive:   []OverlayID{OverlayPerf},
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Performance",
		Description: "Frame phase timings",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "panels",
		Exclusive:   []OverlayID{OverlayInspector},
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayEmitters,
		Name:        "Emitters",
		Description: "Emitter position markers",
		Key:         rl.KeyE,
		KeyLabel:    "E",
		Category:    "markers",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayAttractors,
		Name:        "Attractors",
		Description: "Attractor positions and radii",
		Key:         rl.KeyA,
		KeyLabel:    "A",
		Category:    "markers",
		Default:     true,
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.SetEnabled(id, !r.enabled[id])
	return r.enabled[id]
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	// If enabling, disable exclusive overlays
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}

// EnabledOverlays returns a list of currently enabled overlay IDs.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var result []OverlayID
	for _, id := range r.order {
		if r.enabled[id] {
			result = append(result, id)
		}
	}
	return result
}

var (
	markerColor   = rl.Color{R: 120, G: 200, B: 255, A: 200}
	selectedColor = rl.Color{R: 255, G: 220, B: 80, A: 255}
	inactiveColor = rl.Color{R: 110, G: 110, B: 110, A: 160}
	pullColor     = rl.Color{R: 120, G: 255, B: 160, A: 120}
	pushColor     = rl.Color{R: 255, G: 120, B: 120, A: 120}
)

// DrawEmitterMarkers draws a cross at each emitter, highlighting selected.
func DrawEmitterMarkers(cam *camera.Camera, st *sandbox.State, selected int) {
	for i := range st.Emitters {
		em := &st.Emitters[i]
		p := cam.SpaceToScreen(em.Position)
		color := markerColor
		switch {
		case i == selected:
			color = selectedColor
		case !em.Active:
			color = inactiveColor
		}
		x, y := int32(p[0]), int32(p[1])
		rl.DrawLine(x-6, y, x+6, y, color)
		rl.DrawLine(x, y-6, x, y+6, color)
	}
}

// DrawAttractorMarkers outlines each attractor's radius. Attracting
// factors draw green, repelling ones red.
func DrawAttractorMarkers(cam *camera.Camera, phys *sim.Physics, selected int) {
	for i := range phys.Attractors {
		a := &phys.Attractors[i]
		if !cam.IsVisible(a.Position, a.Radius) {
			continue
		}
		center := cam.SpaceToScreen(a.Position)
		edge := cam.SpaceToScreen(a.Position.Add(vecmath.Vec2{a.Radius, 0}))
		radius := edge[0] - center[0]

		color := pullColor
		if a.Factor < 0 {
			color = pushColor
		}
		if !a.Active {
			color = inactiveColor
		}
		if i == selected {
			color.A = 255
		}
		rl.DrawCircleLines(int32(center[0]), int32(center[1]), radius, color)
		rl.DrawCircle(int32(center[0]), int32(center[1]), 3, color)
	}
}
