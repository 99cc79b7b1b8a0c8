// Package camera provides a 2D camera over the particle space.
package camera

import "github.com/pthm-cable/sparkles/vecmath"

// Camera controls the viewport into the particle space.
// The space is centered on the origin with y pointing up; screen
// coordinates are pixels with y pointing down.
type Camera struct {
	// Position is the camera center in space coordinates
	X, Y float32

	// Zoom level (1.0 shows the whole space)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Space dimensions
	SpaceW, SpaceH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera showing the whole space.
func New(viewportW, viewportH, spaceW, spaceH float32) *Camera {
	return &Camera{
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		SpaceW:    spaceW,
		SpaceH:    spaceH,
		MinZoom:   1.0,
		MaxZoom:   8.0,
	}
}

// scale returns pixels per space unit on each axis.
func (c *Camera) scale() (sx, sy float32) {
	return c.ViewportW / c.SpaceW * c.Zoom, c.ViewportH / c.SpaceH * c.Zoom
}

// SpaceToScreen converts space coordinates to screen pixels.
func (c *Camera) SpaceToScreen(p vecmath.Vec2) vecmath.Vec2 {
	kx, ky := c.scale()
	return vecmath.Vec2{
		c.ViewportW/2 + (p[0]-c.X)*kx,
		c.ViewportH/2 - (p[1]-c.Y)*ky,
	}
}

// ScreenToSpace converts screen pixels to space coordinates.
func (c *Camera) ScreenToSpace(s vecmath.Vec2) vecmath.Vec2 {
	kx, ky := c.scale()
	return vecmath.Vec2{
		c.X + (s[0]-c.ViewportW/2)/kx,
		c.Y - (s[1]-c.ViewportH/2)/ky,
	}
}

// Projection returns the orthographic projection of the visible region.
// At zoom 1 centered on the origin it matches the state's own projection.
func (c *Camera) Projection() vecmath.Mat4 {
	minX, minY, maxX, maxY := c.VisibleBounds()
	return vecmath.Orthographic(minX, maxX, maxY, minY, -1, 1)
}

// IsVisible returns true if a circle at p with the given radius could be
// on screen.
func (c *Camera) IsVisible(p vecmath.Vec2, radius float32) bool {
	minX, minY, maxX, maxY := c.VisibleBounds()
	return p[0]+radius >= minX && p[0]-radius <= maxX &&
		p[1]+radius >= minY && p[1]-radius <= maxY
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// SetSpace changes the space dimensions, keeping the center inside them.
func (c *Camera) SetSpace(spaceW, spaceH float32) {
	if spaceW == c.SpaceW && spaceH == c.SpaceH {
		return
	}
	c.SpaceW = spaceW
	c.SpaceH = spaceH
	c.clampCenter()
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	kx, ky := c.scale()
	c.X += dx / kx
	c.Y -= dy / ky
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = vecmath.Clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor keeping the space point under the screen
// position s fixed (until clamping moves it).
func (c *Camera) ZoomAt(s vecmath.Vec2, factor float32) {
	before := c.ScreenToSpace(s)
	c.Zoom = vecmath.Clamp(c.Zoom*factor, c.MinZoom, c.MaxZoom)
	after := c.ScreenToSpace(s)
	c.X += before[0] - after[0]
	c.Y += before[1] - after[1]
	c.clampCenter()
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X, c.Y = 0, 0
	c.Zoom = 1.0
}

// VisibleBounds returns the space-coordinate bounds of the visible area.
func (c *Camera) VisibleBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.SpaceW / (2 * c.Zoom)
	halfH := c.SpaceH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// clampCenter keeps the visible region inside the space.
func (c *Camera) clampCenter() {
	limX := c.SpaceW/2 - c.SpaceW/(2*c.Zoom)
	limY := c.SpaceH/2 - c.SpaceH/(2*c.Zoom)
	c.X = vecmath.Clamp(c.X, -limX, limX)
	c.Y = vecmath.Clamp(c.Y, -limY, limY)
}
