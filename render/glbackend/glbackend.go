// Package glbackend implements render.Backend on OpenGL 4.1 core.
// Every method must run on the thread that owns the GL context.
package glbackend

import (
	"fmt"
	"log/slog"
	"slices"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/pthm-cable/sparkles/particle"
	"github.com/pthm-cable/sparkles/render"
	"github.com/pthm-cable/sparkles/vecmath"
)

type instanceBuffer struct {
	vbo      uint32
	capacity int
}

func (b *instanceBuffer) Capacity() int { return b.capacity }

type mesh struct {
	vao, vbo, ebo uint32
	vcap, icap    int
	vcount        int
	icount        int
}

func (m *mesh) VertexCount() int { return m.vcount }
func (m *mesh) IndexCount() int  { return m.icount }

type texture struct {
	id     uint32
	w, h   int
	format render.TextureFormat
}

func (t *texture) Width() int                   { return t.w }
func (t *texture) Height() int                  { return t.h }
func (t *texture) Format() render.TextureFormat { return t.format }

type shader struct {
	id    uint32
	stage render.ShaderStage
}

func (s *shader) Stage() render.ShaderStage { return s.stage }

type target struct {
	fbo uint32
	tex *texture
}

func (t *target) Width() int              { return t.tex.w }
func (t *target) Height() int             { return t.tex.h }
func (t *target) Texture() render.Texture { return t.tex }

// Backend draws with OpenGL.
type Backend struct {
	width, height int

	defaultVS, defaultFS *shader
	programs             map[[2]uint32]*program

	buffers  []*instanceBuffer
	meshes   []*mesh
	textures []*texture
	shaders  []*shader
	targets  []*target
	closed   bool
}

// New initializes GL function pointers on the current context and compiles
// the default shaders. width and height size the default framebuffer.
func New(width, height int) (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	b := &Backend{width: width, height: height, programs: make(map[[2]uint32]*program)}

	vs, err := b.CreateShader(render.StageVertex, DefaultVertexSource)
	if err != nil {
		return nil, err
	}
	fs, err := b.CreateShader(render.StagePixel, DefaultPixelSource)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.defaultVS, b.defaultFS = vs.(*shader), fs.(*shader)
	return b, nil
}

func (b *Backend) CreateParticleBuffer(capacity int) (particle.Buffer, error) {
	if b.closed {
		return nil, render.ErrClosed
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", particle.ErrCapacity, capacity)
	}
	buf := &instanceBuffer{capacity: capacity}
	gl.GenBuffers(1, &buf.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, capacity*particle.Stride, nil, gl.STREAM_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	b.buffers = append(b.buffers, buf)
	return buf, nil
}

func (b *Backend) CreateMesh(vertexCount, indexCount int, vertices []render.Vertex, indices []uint32) (render.Mesh, error) {
	if b.closed {
		return nil, render.ErrClosed
	}
	if err := checkMeshSize(vertexCount, indexCount, vertices, indices); err != nil {
		return nil, err
	}
	m := &mesh{vcap: vertexCount, icap: indexCount}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.GenBuffers(1, &m.ebo)

	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, max(vertexCount, 1)*render.VertexStride, nil, gl.STATIC_DRAW)
	for _, a := range render.VertexAttributes {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, a.Components, gl.FLOAT, false, render.VertexStride, uintptr(a.Offset))
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, max(indexCount, 1)*4, nil, gl.STATIC_DRAW)
	gl.BindVertexArray(0)

	if err := b.UploadMesh(m, vertices, indices); err != nil {
		deleteMesh(m)
		return nil, err
	}
	b.meshes = append(b.meshes, m)
	return m, nil
}

// checkMeshSize reports whether the data fits a mesh of the given capacity.
func checkMeshSize(vcap, icap int, vertices []render.Vertex, indices []uint32) error {
	if len(vertices) > vcap || len(indices) > icap {
		return fmt.Errorf("%w: %d/%d vertices, %d/%d indices",
			render.ErrMeshCapacity, len(vertices), vcap, len(indices), icap)
	}
	return nil
}

func deleteMesh(m *mesh) {
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteVertexArrays(1, &m.vao)
}

// forget drops v from a tracked list after its GL object was deleted.
func forget[T comparable](list []T, v T) []T {
	if i := slices.Index(list, v); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}

func (b *Backend) UploadMesh(h render.Mesh, vertices []render.Vertex, indices []uint32) error {
	m, ok := h.(*mesh)
	if !ok {
		return render.ErrForeignHandle
	}
	if err := checkMeshSize(m.vcap, m.icap, vertices, indices); err != nil {
		return err
	}
	if len(vertices) > 0 {
		gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*render.VertexStride, unsafe.Pointer(&vertices[0]))
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	}
	if len(indices) > 0 {
		gl.BindVertexArray(m.vao)
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, len(indices)*4, unsafe.Pointer(&indices[0]))
		gl.BindVertexArray(0)
	}
	m.vcount, m.icount = len(vertices), len(indices)
	return nil
}

func (b *Backend) CreateShader(stage render.ShaderStage, source string) (render.Shader, error) {
	if b.closed {
		return nil, render.ErrClosed
	}
	kind := uint32(gl.VERTEX_SHADER)
	if stage == render.StagePixel {
		kind = gl.FRAGMENT_SHADER
	}
	id, err := compileShader(source, kind)
	if err != nil {
		slog.Error("compile shader", "stage", stage.String(), "error", err)
		return nil, fmt.Errorf("%s shader: %w", stage, err)
	}
	s := &shader{id: id, stage: stage}
	b.shaders = append(b.shaders, s)
	return s, nil
}

func glFormat(f render.TextureFormat) (internal int32, xtype uint32) {
	if f == render.FormatRGBA16F {
		return gl.RGBA16F, gl.HALF_FLOAT
	}
	return gl.RGBA8, gl.UNSIGNED_BYTE
}

func (b *Backend) newTexture(format render.TextureFormat, width, height int, pixels []byte) *texture {
	t := &texture{w: width, h: height, format: format}
	internal, xtype := glFormat(format)
	var data unsafe.Pointer
	if len(pixels) > 0 {
		data = unsafe.Pointer(&pixels[0])
	}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(width), int32(height), 0, gl.RGBA, xtype, data)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	b.textures = append(b.textures, t)
	return t
}

func (b *Backend) CreateTexture(format render.TextureFormat, width, height int, pixels []byte) (render.Texture, error) {
	if b.closed {
		return nil, render.ErrClosed
	}
	if err := render.CheckPixels(format, width, height, pixels); err != nil {
		return nil, err
	}
	return b.newTexture(format, width, height, pixels), nil
}

func (b *Backend) CreateRenderTarget(format render.TextureFormat, width, height int) (render.RenderTarget, error) {
	if b.closed {
		return nil, render.ErrClosed
	}
	if err := render.CheckPixels(format, width, height, nil); err != nil {
		return nil, err
	}
	t := &target{tex: b.newTexture(format, width, height, nil)}
	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.tex.id, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &t.fbo)
		gl.DeleteTextures(1, &t.tex.id)
		b.textures = forget(b.textures, t.tex)
		slog.Error("create render target", "width", width, "height", height, "status", fmt.Sprintf("0x%x", status))
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	b.targets = append(b.targets, t)
	return t, nil
}

func (b *Backend) bindTarget(rt render.RenderTarget) (w, h int, err error) {
	if rt == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return b.width, b.height, nil
	}
	t, ok := rt.(*target)
	if !ok {
		return 0, 0, render.ErrForeignHandle
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	return t.tex.w, t.tex.h, nil
}

func (b *Backend) Clear(rt render.RenderTarget, color vecmath.Vec4) {
	w, h, err := b.bindTarget(rt)
	if err != nil {
		return
	}
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (b *Backend) UploadInstances(h particle.Buffer, particles []particle.Particle) error {
	buf, ok := h.(*instanceBuffer)
	if !ok {
		return render.ErrForeignHandle
	}
	if len(particles) > buf.capacity {
		return fmt.Errorf("%w: %d particles, capacity %d", render.ErrBufferSize, len(particles), buf.capacity)
	}
	if len(particles) == 0 {
		return nil
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(particles)*particle.Stride, unsafe.Pointer(&particles[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// bind applies state and returns the mesh to draw.
func (b *Backend) bind(h render.Mesh, state *render.RenderState, instanced bool) (*mesh, error) {
	m, ok := h.(*mesh)
	if !ok {
		return nil, render.ErrForeignHandle
	}
	prog, err := b.program(state)
	if err != nil {
		return nil, err
	}
	w, hgt, err := b.bindTarget(state.Target)
	if err != nil {
		return nil, err
	}
	vp := state.Viewport
	if vp.Empty() {
		vp = render.Rect{W: float32(w), H: float32(hgt)}
	}
	gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.W), int32(vp.H))

	gl.Enable(gl.BLEND)
	if state.Blend == render.BlendAdditive {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	} else {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}

	gl.UseProgram(prog.id)
	proj := state.Projection
	gl.UniformMatrix4fv(prog.projection, 1, false, &proj[0])
	gl.Uniform1i(prog.instanced, boolInt(instanced))

	textured := int32(0)
	if state.Texture != nil {
		t, ok := state.Texture.(*texture)
		if !ok {
			return nil, render.ErrForeignHandle
		}
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, t.id)
		gl.Uniform1i(prog.texture, 0)
		textured = 1
	}
	gl.Uniform1i(prog.textured, textured)

	gl.BindVertexArray(m.vao)
	return m, nil
}

func (b *Backend) program(state *render.RenderState) (*program, error) {
	vs, fs := b.defaultVS, b.defaultFS
	if state.VertexShader != nil {
		s, ok := state.VertexShader.(*shader)
		if !ok {
			return nil, render.ErrForeignHandle
		}
		vs = s
	}
	if state.PixelShader != nil {
		s, ok := state.PixelShader.(*shader)
		if !ok {
			return nil, render.ErrForeignHandle
		}
		fs = s
	}
	key := [2]uint32{vs.id, fs.id}
	if p, ok := b.programs[key]; ok {
		return p, nil
	}
	p, err := newProgram(vs.id, fs.id)
	if err != nil {
		slog.Error("link program", "vertex", vs.id, "pixel", fs.id, "error", err)
		return nil, err
	}
	b.programs[key] = p
	return p, nil
}

func (b *Backend) DrawInstanced(h render.Mesh, hb particle.Buffer, instances int, state *render.RenderState) error {
	buf, ok := hb.(*instanceBuffer)
	if !ok {
		return render.ErrForeignHandle
	}
	if instances > buf.capacity {
		return fmt.Errorf("%w: %d instances, capacity %d", render.ErrBufferSize, instances, buf.capacity)
	}
	m, err := b.bind(h, state, true)
	if err != nil {
		return err
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	for _, a := range render.InstanceAttributes {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, a.Components, gl.FLOAT, false, particle.Stride, uintptr(a.Offset))
		gl.VertexAttribDivisor(a.Location, 1)
	}
	gl.DrawElementsInstanced(gl.TRIANGLES, int32(m.icount), gl.UNSIGNED_INT, nil, int32(instances))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return nil
}

func (b *Backend) DrawMesh(h render.Mesh, state *render.RenderState) error {
	m, err := b.bind(h, state, false)
	if err != nil {
		return err
	}
	for _, a := range render.InstanceAttributes {
		gl.DisableVertexAttribArray(a.Location)
	}
	gl.DrawElements(gl.TRIANGLES, int32(m.icount), gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
	return nil
}

// Close deletes every GL object the backend created.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	for _, p := range b.programs {
		gl.DeleteProgram(p.id)
	}
	for _, s := range b.shaders {
		gl.DeleteShader(s.id)
	}
	for _, t := range b.targets {
		gl.DeleteFramebuffers(1, &t.fbo)
	}
	for _, t := range b.textures {
		gl.DeleteTextures(1, &t.id)
	}
	for _, m := range b.meshes {
		deleteMesh(m)
	}
	for _, buf := range b.buffers {
		gl.DeleteBuffers(1, &buf.vbo)
	}
	b.programs = nil
	b.shaders, b.targets, b.textures, b.meshes, b.buffers = nil, nil, nil, nil, nil
	b.closed = true
	return nil
}

func boolInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

var _ render.Backend = (*Backend)(nil)
