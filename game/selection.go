package game

import (
	"github.com/pthm-cable/sparkles/vecmath"
)

// pickRadius is how close, in pixels, a click must land to a marker.
const pickRadius = 12

// nearest returns the index of the point closest to target within maxDist,
// or -1.
func nearest(points []vecmath.Vec2, target vecmath.Vec2, maxDist float32) int {
	best := -1
	bestDist := maxDist * maxDist
	for i, p := range points {
		d := p.Sub(target)
		if dist := d.Dot(d); dist <= bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

// emitterAt returns the emitter whose marker is under the screen point.
func (g *Game) emitterAt(screen vecmath.Vec2) int {
	st := &g.sb.State
	points := make([]vecmath.Vec2, len(st.Emitters))
	for i := range st.Emitters {
		points[i] = g.camera.SpaceToScreen(st.Emitters[i].Position)
	}
	return nearest(points, screen, pickRadius)
}

// attractorAt returns the attractor whose center is under the screen point.
func (g *Game) attractorAt(screen vecmath.Vec2) int {
	as := g.sb.State.Physics.Attractors
	points := make([]vecmath.Vec2, len(as))
	for i := range as {
		points[i] = g.camera.SpaceToScreen(as[i].Position)
	}
	return nearest(points, screen, pickRadius)
}

// selectAt selects the emitter or, failing that, the attractor under the
// screen point. It reports whether anything was hit.
func (g *Game) selectAt(screen vecmath.Vec2) bool {
	if i := g.emitterAt(screen); i >= 0 {
		g.ui.editor.Selected = i
		return true
	}
	if i := g.attractorAt(screen); i >= 0 {
		g.ui.editor.SelectedAttractor = i
		return true
	}
	return false
}

// moveSelectedEmitter puts the selected emitter at the screen point.
func (g *Game) moveSelectedEmitter(screen vecmath.Vec2) {
	if i := g.ui.editor.Selected; i >= 0 && i < len(g.sb.State.Emitters) {
		g.sb.State.Emitters[i].Position = g.camera.ScreenToSpace(screen)
	}
}

// moveSelectedAttractor puts the selected attractor at the screen point.
func (g *Game) moveSelectedAttractor(screen vecmath.Vec2) {
	as := g.sb.State.Physics.Attractors
	if i := g.ui.editor.SelectedAttractor; i >= 0 && i < len(as) {
		as[i].Position = g.camera.ScreenToSpace(screen)
	}
}
