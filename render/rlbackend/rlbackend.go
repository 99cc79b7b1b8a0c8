// Package rlbackend implements render.Backend on raylib's rlgl batch.
//
// rlgl has no per-instance attributes, so instance data is kept CPU side
// and each draw expands mesh x instances into the active batch. Custom
// shaders therefore see already-transformed vertices and must use
// raylib's attribute names.
package rlbackend

import (
	"fmt"
	"image/color"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sparkles/particle"
	"github.com/pthm-cable/sparkles/render"
	"github.com/pthm-cable/sparkles/vecmath"
)

type instanceBuffer struct {
	data []particle.Particle
}

func (b *instanceBuffer) Capacity() int { return len(b.data) }

type mesh struct {
	vertices []render.Vertex
	indices  []uint32
	vcap     int
	icap     int
}

func (m *mesh) VertexCount() int { return len(m.vertices) }
func (m *mesh) IndexCount() int  { return len(m.indices) }

type texture struct {
	tex    rl.Texture2D
	format render.TextureFormat
}

func (t *texture) Width() int                   { return int(t.tex.Width) }
func (t *texture) Height() int                  { return int(t.tex.Height) }
func (t *texture) Format() render.TextureFormat { return t.format }

type shader struct {
	source string
	stage  render.ShaderStage
}

func (s *shader) Stage() render.ShaderStage { return s.stage }

type target struct {
	rt  rl.RenderTexture2D
	tex *texture
}

func (t *target) Width() int              { return t.tex.Width() }
func (t *target) Height() int             { return t.tex.Height() }
func (t *target) Texture() render.Texture { return t.tex }

// Backend draws through raylib. It must be used between InitWindow and
// CloseWindow, from the main thread.
type Backend struct {
	programs map[[2]string]rl.Shader
	textures []*texture
	targets  []*target
	closed   bool
	warned   bool
}

// New returns a backend for the current raylib window.
func New() *Backend {
	return &Backend{programs: make(map[[2]string]rl.Shader)}
}

func (b *Backend) CreateParticleBuffer(capacity int) (particle.Buffer, error) {
	if b.closed {
		return nil, render.ErrClosed
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", particle.ErrCapacity, capacity)
	}
	return &instanceBuffer{data: make([]particle.Particle, capacity)}, nil
}

func (b *Backend) CreateMesh(vertexCount, indexCount int, vertices []render.Vertex, indices []uint32) (render.Mesh, error) {
	if b.closed {
		return nil, render.ErrClosed
	}
	m := &mesh{vcap: vertexCount, icap: indexCount}
	if err := b.UploadMesh(m, vertices, indices); err != nil {
		return nil, err
	}
	return m, nil
}

func (b *Backend) UploadMesh(h render.Mesh, vertices []render.Vertex, indices []uint32) error {
	m, ok := h.(*mesh)
	if !ok {
		return render.ErrForeignHandle
	}
	if len(vertices) > m.vcap || len(indices) > m.icap {
		return fmt.Errorf("%w: %d/%d vertices, %d/%d indices",
			render.ErrMeshCapacity, len(vertices), m.vcap, len(indices), m.icap)
	}
	for _, ix := range indices {
		if int(ix) >= len(vertices) {
			return fmt.Errorf("%w: index %d with %d vertices", render.ErrMeshCapacity, ix, len(vertices))
		}
	}
	m.vertices = append(m.vertices[:0], vertices...)
	m.indices = append(m.indices[:0], indices...)
	return nil
}

// CreateShader stores the source; programs are linked lazily per
// vertex/pixel pair on first draw.
func (b *Backend) CreateShader(stage render.ShaderStage, source string) (render.Shader, error) {
	if b.closed {
		return nil, render.ErrClosed
	}
	return &shader{source: source, stage: stage}, nil
}

func (b *Backend) CreateTexture(format render.TextureFormat, width, height int, pixels []byte) (render.Texture, error) {
	if b.closed {
		return nil, render.ErrClosed
	}
	if err := render.CheckPixels(format, width, height, pixels); err != nil {
		return nil, err
	}
	if format != render.FormatRGBA8 {
		return nil, fmt.Errorf("%w: raylib textures are RGBA8 only", render.ErrFormat)
	}
	if pixels == nil {
		pixels = make([]byte, width*height*4)
	}
	img := rl.NewImage(pixels, int32(width), int32(height), 1, rl.UncompressedR8g8b8a8)
	t := &texture{tex: rl.LoadTextureFromImage(img), format: format}
	rl.SetTextureFilter(t.tex, rl.FilterBilinear)
	b.textures = append(b.textures, t)
	return t, nil
}

// CreateRenderTarget allocates an RGBA8 render texture. raylib cannot
// allocate half-float targets, so FormatRGBA16F falls back to RGBA8.
func (b *Backend) CreateRenderTarget(format render.TextureFormat, width, height int) (render.RenderTarget, error) {
	if b.closed {
		return nil, render.ErrClosed
	}
	if err := render.CheckPixels(format, width, height, nil); err != nil {
		return nil, err
	}
	if format == render.FormatRGBA16F && !b.warned {
		slog.Warn("raylib backend has no half-float targets, using RGBA8")
		b.warned = true
	}
	rt := rl.LoadRenderTexture(int32(width), int32(height))
	t := &target{rt: rt, tex: &texture{tex: rt.Texture, format: render.FormatRGBA8}}
	b.targets = append(b.targets, t)
	return t, nil
}

func (b *Backend) Clear(rt render.RenderTarget, c vecmath.Vec4) {
	col := toColor(c)
	if rt == nil {
		rl.ClearBackground(col)
		return
	}
	t, ok := rt.(*target)
	if !ok {
		return
	}
	rl.BeginTextureMode(t.rt)
	rl.ClearBackground(col)
	rl.EndTextureMode()
}

func (b *Backend) UploadInstances(h particle.Buffer, particles []particle.Particle) error {
	buf, ok := h.(*instanceBuffer)
	if !ok {
		return render.ErrForeignHandle
	}
	if len(particles) > len(buf.data) {
		return fmt.Errorf("%w: %d particles, capacity %d", render.ErrBufferSize, len(particles), len(buf.data))
	}
	copy(buf.data, particles)
	return nil
}

func (b *Backend) DrawInstanced(h render.Mesh, hb particle.Buffer, instances int, state *render.RenderState) error {
	buf, ok := hb.(*instanceBuffer)
	if !ok {
		return render.ErrForeignHandle
	}
	if instances > len(buf.data) {
		return fmt.Errorf("%w: %d instances, capacity %d", render.ErrBufferSize, instances, len(buf.data))
	}
	m, ok := h.(*mesh)
	if !ok {
		return render.ErrForeignHandle
	}
	return b.draw(state, func() {
		for i := 0; i < instances; i++ {
			p := &buf.data[i]
			if p.Scale == 0 {
				continue
			}
			emit(m, p.Position, p.Scale, p.Color)
		}
	})
}

func (b *Backend) DrawMesh(h render.Mesh, state *render.RenderState) error {
	m, ok := h.(*mesh)
	if !ok {
		return render.ErrForeignHandle
	}
	return b.draw(state, func() {
		emit(m, vecmath.Vec3{}, 1, vecmath.Vec4{1, 1, 1, 1})
	})
}

// draw applies state around body and restores raylib's matrices after.
func (b *Backend) draw(state *render.RenderState, body func()) error {
	var rt *target
	if state.Target != nil {
		t, ok := state.Target.(*target)
		if !ok {
			return render.ErrForeignHandle
		}
		rt = t
	}
	var texID uint32
	if state.Texture != nil {
		t, ok := state.Texture.(*texture)
		if !ok {
			return render.ErrForeignHandle
		}
		texID = t.tex.ID
	}
	sh, err := b.program(state)
	if err != nil {
		return err
	}

	if rt != nil {
		rl.BeginTextureMode(rt.rt)
	}
	rl.DrawRenderBatchActive()
	proj, view := rl.GetMatrixProjection(), rl.GetMatrixModelview()
	if !state.Viewport.Empty() {
		vp := state.Viewport
		rl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.W), int32(vp.H))
	}
	rl.SetMatrixProjection(toMatrix(state.Projection))
	rl.SetMatrixModelview(rl.MatrixIdentity())
	if sh != nil {
		rl.BeginShaderMode(*sh)
	}
	if state.Blend == render.BlendAdditive {
		rl.BeginBlendMode(rl.BlendAdditive)
	} else {
		rl.BeginBlendMode(rl.BlendAlpha)
	}

	rl.SetTexture(texID)
	body()
	rl.SetTexture(0)

	rl.EndBlendMode()
	if sh != nil {
		rl.EndShaderMode()
	}
	rl.DrawRenderBatchActive()
	rl.SetMatrixProjection(proj)
	rl.SetMatrixModelview(view)
	if rt != nil {
		rl.EndTextureMode()
	} else if !state.Viewport.Empty() {
		rl.Viewport(0, 0, int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
	}
	return nil
}

// program returns the linked shader for the state, or nil for raylib's
// default.
func (b *Backend) program(state *render.RenderState) (*rl.Shader, error) {
	var key [2]string
	if s, ok := state.VertexShader.(*shader); ok {
		key[0] = s.source
	} else if state.VertexShader != nil {
		return nil, render.ErrForeignHandle
	}
	if s, ok := state.PixelShader.(*shader); ok {
		key[1] = s.source
	} else if state.PixelShader != nil {
		return nil, render.ErrForeignHandle
	}
	if key[0] == "" && key[1] == "" {
		return nil, nil
	}
	if sh, ok := b.programs[key]; ok {
		return &sh, nil
	}
	sh := rl.LoadShaderFromMemory(key[0], key[1])
	if !rl.IsShaderValid(sh) {
		return nil, fmt.Errorf("link program: raylib rejected shader pair")
	}
	b.programs[key] = sh
	return &sh, nil
}

// emit pushes one transformed copy of m into the batch.
func emit(m *mesh, offset vecmath.Vec3, scale float32, tint vecmath.Vec4) {
	rl.CheckRenderBatchLimit(int32(len(m.indices)))
	rl.Begin(rl.Triangles)
	for _, ix := range m.indices {
		v := &m.vertices[ix]
		c := vecmath.MulVec4(v.Color, tint)
		p := v.Position.Mul(scale).Add(offset)
		rl.Color4f(c[0], c[1], c[2], c[3])
		rl.TexCoord2f(v.UV[0], v.UV[1])
		rl.Vertex3f(p[0], p[1], p[2])
	}
	rl.End()
}

// Close unloads every raylib resource the backend created.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	for _, sh := range b.programs {
		rl.UnloadShader(sh)
	}
	for _, t := range b.targets {
		rl.UnloadRenderTexture(t.rt)
	}
	for _, t := range b.textures {
		rl.UnloadTexture(t.tex)
	}
	b.programs, b.targets, b.textures = nil, nil, nil
	b.closed = true
	return nil
}

// toMatrix converts a column-major matrix to raylib's layout, whose M0..M3
// hold the first column.
func toMatrix(m vecmath.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

func toColor(c vecmath.Vec4) color.RGBA {
	return rl.ColorFromNormalized(rl.NewVector4(c[0], c[1], c[2], c[3]))
}

var _ render.Backend = (*Backend)(nil)
