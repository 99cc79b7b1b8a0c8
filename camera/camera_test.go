package camera

import (
	"math"
	"testing"

	"github.com/pthm-cable/sparkles/vecmath"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, 16, 9)

	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected camera at origin, got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestSpaceToScreenCorners(t *testing.T) {
	cam := New(1280, 720, 16, 9)

	tests := []struct {
		name   string
		space  vecmath.Vec2
		screen vecmath.Vec2
	}{
		{"center", vecmath.Vec2{0, 0}, vecmath.Vec2{640, 360}},
		{"top-left", vecmath.Vec2{-8, 4.5}, vecmath.Vec2{0, 0}},
		{"bottom-right", vecmath.Vec2{8, -4.5}, vecmath.Vec2{1280, 720}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cam.SpaceToScreen(tt.space)
			if !near(got[0], tt.screen[0]) || !near(got[1], tt.screen[1]) {
				t.Errorf("SpaceToScreen(%v) = %v, want %v", tt.space, got, tt.screen)
			}
		})
	}
}

func TestScreenToSpaceRoundtrip(t *testing.T) {
	cam := New(1280, 720, 16, 9)
	cam.SetZoom(2)
	cam.Pan(100, -50)

	for _, s := range []vecmath.Vec2{{640, 360}, {100, 100}, {1200, 600}} {
		p := cam.ScreenToSpace(s)
		back := cam.SpaceToScreen(p)
		if !near(back[0], s[0]) || !near(back[1], s[1]) {
			t.Errorf("roundtrip %v -> %v -> %v", s, p, back)
		}
	}
}

func TestProjectionMatchesSpaceAtRest(t *testing.T) {
	cam := New(1280, 720, 16, 9)
	want := vecmath.Orthographic(-8, 8, 4.5, -4.5, -1, 1)
	if got := cam.Projection(); !got.ApproxEqual(want) {
		t.Errorf("Projection() = %v, want %v", got, want)
	}

	// visible corners land on clip-space corners
	cam.SetZoom(4)
	minX, minY, maxX, maxY := cam.VisibleBounds()
	lo := vecmath.Transform(cam.Projection(), vecmath.Vec3{minX, minY, 0})
	hi := vecmath.Transform(cam.Projection(), vecmath.Vec3{maxX, maxY, 0})
	if !near(lo[0], -1) || !near(lo[1], -1) || !near(hi[0], 1) || !near(hi[1], 1) {
		t.Errorf("clip corners = %v, %v", lo, hi)
	}
}

func TestZoomClamping(t *testing.T) {
	cam := New(1280, 720, 16, 9)

	cam.SetZoom(0.1)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("zoom = %f, want min %f", cam.Zoom, cam.MinZoom)
	}
	cam.SetZoom(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("zoom = %f, want max %f", cam.Zoom, cam.MaxZoom)
	}
}

func TestPanStaysInsideSpace(t *testing.T) {
	cam := New(1280, 720, 16, 9)

	// at zoom 1 the whole space is visible, so panning does nothing
	cam.Pan(500, 500)
	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("pan at zoom 1 moved camera to (%f, %f)", cam.X, cam.Y)
	}

	cam.SetZoom(2)
	cam.Pan(-100000, 0)
	minX, _, _, _ := cam.VisibleBounds()
	if !near(minX, -8) {
		t.Errorf("left edge = %f, want -8", minX)
	}
}

func TestZoomAtKeepsCursorPoint(t *testing.T) {
	cam := New(1280, 720, 16, 9)
	cursor := vecmath.Vec2{800, 300}
	before := cam.ScreenToSpace(cursor)

	cam.ZoomAt(cursor, 2)
	after := cam.ScreenToSpace(cursor)
	if !near(before[0], after[0]) || !near(before[1], after[1]) {
		t.Errorf("point under cursor moved from %v to %v", before, after)
	}
}

func TestSetSpaceReclamps(t *testing.T) {
	cam := New(1280, 720, 16, 9)
	cam.SetZoom(2)
	cam.Pan(10000, 0)

	cam.SetSpace(4, 9)
	_, _, maxX, _ := cam.VisibleBounds()
	if !near(maxX, 2) {
		t.Errorf("right edge = %f, want 2", maxX)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 16, 9)
	cam.SetZoom(4) // shows [-2,2] x [-1.125,1.125]

	if !cam.IsVisible(vecmath.Vec2{0, 0}, 0) {
		t.Error("origin should be visible")
	}
	if cam.IsVisible(vecmath.Vec2{5, 0}, 0.5) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(vecmath.Vec2{2.3, 0}, 0.5) {
		t.Error("circle overlapping edge should be visible")
	}
}
