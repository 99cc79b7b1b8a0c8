package render

import (
	"fmt"

	"github.com/pthm-cable/sparkles/particle"
	"github.com/pthm-cable/sparkles/vecmath"
)

// Recorder is a Backend that keeps everything in memory and records the
// calls it receives. It drives headless runs and tests.
type Recorder struct {
	Clears  []ClearCall
	Draws   []DrawCall
	Uploads int

	buffers  []*RecordedBuffer
	meshes   []*RecordedMesh
	textures []*RecordedTexture
	shaders  []*RecordedShader
	targets  []*RecordedTarget
	closed   bool
}

// ClearCall records a Clear. Target is nil for the default framebuffer.
type ClearCall struct {
	Target RenderTarget
	Color  vecmath.Vec4
}

// DrawCall records a draw. Instances is 0 for DrawMesh; Particles holds a
// copy of the instance data that was bound.
type DrawCall struct {
	Mesh      Mesh
	Instances int
	State     RenderState
	Particles []particle.Particle
}

// Live counts the drawn instances with nonzero scale.
func (d *DrawCall) Live() int {
	n := 0
	for i := range d.Particles {
		if d.Particles[i].Scale != 0 {
			n++
		}
	}
	return n
}

type RecordedBuffer struct {
	Data []particle.Particle
}

func (b *RecordedBuffer) Capacity() int { return len(b.Data) }

type RecordedMesh struct {
	Vertices []Vertex
	Indices  []uint32
	vcap     int
	icap     int
}

func (m *RecordedMesh) VertexCount() int { return len(m.Vertices) }
func (m *RecordedMesh) IndexCount() int  { return len(m.Indices) }

type RecordedTexture struct {
	Pixels []byte
	w, h   int
	format TextureFormat
}

func (t *RecordedTexture) Width() int            { return t.w }
func (t *RecordedTexture) Height() int           { return t.h }
func (t *RecordedTexture) Format() TextureFormat { return t.format }

type RecordedShader struct {
	Source string
	stage  ShaderStage
}

func (s *RecordedShader) Stage() ShaderStage { return s.stage }

type RecordedTarget struct {
	tex *RecordedTexture
}

func (r *RecordedTarget) Width() int       { return r.tex.w }
func (r *RecordedTarget) Height() int      { return r.tex.h }
func (r *RecordedTarget) Texture() Texture { return r.tex }

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// CreateParticleBuffer implements particle.BufferAllocator.
func (r *Recorder) CreateParticleBuffer(capacity int) (particle.Buffer, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", particle.ErrCapacity, capacity)
	}
	b := &RecordedBuffer{Data: make([]particle.Particle, capacity)}
	r.buffers = append(r.buffers, b)
	return b, nil
}

func (r *Recorder) CreateMesh(vertexCount, indexCount int, vertices []Vertex, indices []uint32) (Mesh, error) {
	if r.closed {
		return nil, ErrClosed
	}
	m := &RecordedMesh{vcap: vertexCount, icap: indexCount}
	if err := r.UploadMesh(m, vertices, indices); err != nil {
		return nil, err
	}
	r.meshes = append(r.meshes, m)
	return m, nil
}

func (r *Recorder) UploadMesh(m Mesh, vertices []Vertex, indices []uint32) error {
	rm, ok := m.(*RecordedMesh)
	if !ok {
		return ErrForeignHandle
	}
	if len(vertices) > rm.vcap || len(indices) > rm.icap {
		return fmt.Errorf("%w: %d/%d vertices, %d/%d indices",
			ErrMeshCapacity, len(vertices), rm.vcap, len(indices), rm.icap)
	}
	rm.Vertices = append(rm.Vertices[:0], vertices...)
	rm.Indices = append(rm.Indices[:0], indices...)
	return nil
}

func (r *Recorder) CreateShader(stage ShaderStage, source string) (Shader, error) {
	if r.closed {
		return nil, ErrClosed
	}
	s := &RecordedShader{Source: source, stage: stage}
	r.shaders = append(r.shaders, s)
	return s, nil
}

func (r *Recorder) CreateTexture(format TextureFormat, width, height int, pixels []byte) (Texture, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if err := CheckPixels(format, width, height, pixels); err != nil {
		return nil, err
	}
	t := &RecordedTexture{Pixels: append([]byte(nil), pixels...), w: width, h: height, format: format}
	r.textures = append(r.textures, t)
	return t, nil
}

func (r *Recorder) CreateRenderTarget(format TextureFormat, width, height int) (RenderTarget, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if err := CheckPixels(format, width, height, nil); err != nil {
		return nil, err
	}
	t := &RecordedTarget{tex: &RecordedTexture{w: width, h: height, format: format}}
	r.targets = append(r.targets, t)
	return t, nil
}

func (r *Recorder) Clear(target RenderTarget, color vecmath.Vec4) {
	r.Clears = append(r.Clears, ClearCall{Target: target, Color: color})
}

func (r *Recorder) UploadInstances(buf particle.Buffer, particles []particle.Particle) error {
	rb, ok := buf.(*RecordedBuffer)
	if !ok {
		return ErrForeignHandle
	}
	if len(particles) > len(rb.Data) {
		return fmt.Errorf("%w: %d particles, capacity %d", ErrBufferSize, len(particles), len(rb.Data))
	}
	copy(rb.Data, particles)
	r.Uploads++
	return nil
}

func (r *Recorder) DrawInstanced(mesh Mesh, buf particle.Buffer, instances int, state *RenderState) error {
	rb, ok := buf.(*RecordedBuffer)
	if !ok {
		return ErrForeignHandle
	}
	if _, ok := mesh.(*RecordedMesh); !ok {
		return ErrForeignHandle
	}
	if instances > len(rb.Data) {
		return fmt.Errorf("%w: %d instances, capacity %d", ErrBufferSize, instances, len(rb.Data))
	}
	r.Draws = append(r.Draws, DrawCall{
		Mesh:      mesh,
		Instances: instances,
		State:     *state,
		Particles: append([]particle.Particle(nil), rb.Data[:instances]...),
	})
	return nil
}

func (r *Recorder) DrawMesh(mesh Mesh, state *RenderState) error {
	if _, ok := mesh.(*RecordedMesh); !ok {
		return ErrForeignHandle
	}
	r.Draws = append(r.Draws, DrawCall{Mesh: mesh, State: *state})
	return nil
}

// Reset drops recorded calls but keeps resources.
func (r *Recorder) Reset() {
	r.Clears = r.Clears[:0]
	r.Draws = r.Draws[:0]
	r.Uploads = 0
}

// Resources returns the number of live resources.
func (r *Recorder) Resources() int {
	return len(r.buffers) + len(r.meshes) + len(r.textures) + len(r.shaders) + len(r.targets)
}

func (r *Recorder) Close() error {
	r.buffers, r.meshes, r.textures, r.shaders, r.targets = nil, nil, nil, nil, nil
	r.closed = true
	return nil
}

var _ Backend = (*Recorder)(nil)
