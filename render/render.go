// Package render defines the contract between particle systems and a GPU
// backend: resource handles, per-draw render state, and the
// upload-then-draw protocol for instanced particles.
package render

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/sparkles/particle"
	"github.com/pthm-cable/sparkles/vecmath"
)

var (
	ErrNoBuffer      = errors.New("render: particle system has no instance buffer")
	ErrBufferSize    = errors.New("render: instance buffer does not match system capacity")
	ErrForeignHandle = errors.New("render: handle was not created by this backend")
	ErrMeshCapacity  = errors.New("render: mesh data exceeds allocated size")
	ErrPixelSize     = errors.New("render: pixel data does not match texture size")
	ErrFormat        = errors.New("render: unsupported texture format")
	ErrClosed        = errors.New("render: backend closed")
)

// ShaderStage is the pipeline stage a shader runs in.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StagePixel
)

func (s ShaderStage) String() string {
	if s == StagePixel {
		return "pixel"
	}
	return "vertex"
}

// TextureFormat is the pixel layout of textures and render targets.
type TextureFormat uint8

const (
	FormatNone TextureFormat = iota
	FormatRGBA8
	FormatRGBA16F
)

// BytesPerPixel returns the pixel size, or 0 for FormatNone.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA8:
		return 4
	case FormatRGBA16F:
		return 8
	default:
		return 0
	}
}

// BlendMode selects how fragments combine with the target.
type BlendMode uint8

const (
	BlendAlpha BlendMode = iota
	BlendAdditive
)

// Rect is a viewport rectangle in pixels.
type Rect struct {
	X, Y, W, H float32
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Mesh is a backend mesh handle.
type Mesh interface {
	VertexCount() int
	IndexCount() int
}

// Texture is a backend texture handle.
type Texture interface {
	Width() int
	Height() int
	Format() TextureFormat
}

// Shader is a backend shader handle.
type Shader interface {
	Stage() ShaderStage
}

// RenderTarget is an offscreen color target.
type RenderTarget interface {
	Width() int
	Height() int
	// Texture returns the color attachment for sampling after rendering.
	Texture() Texture
}

// RenderState is the per-draw pipeline state. Nil shaders select the
// backend defaults, a nil Target the default framebuffer, an empty Viewport
// the full target.
type RenderState struct {
	VertexShader Shader
	PixelShader  Shader
	Target       RenderTarget
	Texture      Texture
	Viewport     Rect
	Projection   vecmath.Mat4
	Blend        BlendMode
}

// DefaultRenderState uses the identity projection and the default framebuffer.
func DefaultRenderState() RenderState {
	return RenderState{Projection: vecmath.Identity()}
}

// Backend is implemented by GPU backends.
type Backend interface {
	particle.BufferAllocator

	CreateMesh(vertexCount, indexCount int, vertices []Vertex, indices []uint32) (Mesh, error)
	UploadMesh(m Mesh, vertices []Vertex, indices []uint32) error
	CreateShader(stage ShaderStage, source string) (Shader, error)
	CreateTexture(format TextureFormat, width, height int, pixels []byte) (Texture, error)
	CreateRenderTarget(format TextureFormat, width, height int) (RenderTarget, error)

	Clear(target RenderTarget, color vecmath.Vec4)
	// UploadInstances copies particles into buf.
	UploadInstances(buf particle.Buffer, particles []particle.Particle) error
	// DrawInstanced draws instances copies of mesh, one per slot of buf.
	DrawInstanced(mesh Mesh, buf particle.Buffer, instances int, state *RenderState) error
	// DrawMesh draws mesh once, used for blits.
	DrawMesh(mesh Mesh, state *RenderState) error

	// Close releases every resource the backend created.
	Close() error
}

// UploadAndRender streams every slot of sys, dead ones included, into its
// instance buffer and issues one instanced draw of mesh.
func UploadAndRender(b Backend, sys *particle.System, mesh Mesh, state *RenderState) error {
	buf := sys.Buffer()
	if buf == nil {
		return ErrNoBuffer
	}
	if buf.Capacity() != sys.Count() {
		return fmt.Errorf("%w: buffer %d, system %d", ErrBufferSize, buf.Capacity(), sys.Count())
	}
	if err := b.UploadInstances(buf, sys.Particles()); err != nil {
		return fmt.Errorf("uploading instances: %w", err)
	}
	if err := b.DrawInstanced(mesh, buf, sys.Count(), state); err != nil {
		return fmt.Errorf("drawing instances: %w", err)
	}
	return nil
}

// BlitState returns the state that draws a unit quad covering a
// width x height viewport with src.
func BlitState(src Texture, width, height int) RenderState {
	return RenderState{
		Texture:    src,
		Viewport:   Rect{W: float32(width), H: float32(height)},
		Projection: vecmath.Orthographic(-0.5, 0.5, 0.5, -0.5, -1, 1),
	}
}

// CheckPixels validates a pixel slice for a texture. Nil pixels are allowed.
func CheckPixels(format TextureFormat, width, height int, pixels []byte) error {
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("%w: %d", ErrFormat, format)
	}
	if pixels != nil && len(pixels) != width*height*bpp {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrPixelSize, len(pixels), width*height*bpp)
	}
	return nil
}
