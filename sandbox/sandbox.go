// Package sandbox drives the particle editor: it owns the editable State,
// one particle system per emitter, and runs emission, simulation and
// rendering once per frame.
package sandbox

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sparkles/emission"
	"github.com/pthm-cable/sparkles/particle"
	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/render"
	"github.com/pthm-cable/sparkles/telemetry"
	"github.com/pthm-cable/sparkles/vecmath"
)

// Track ties an emitter entity to the particle system it spawns into.
type Track struct {
	System *particle.System
}

// PhaseTimer receives phase boundaries; telemetry.PerfCollector
// implements it.
type PhaseTimer interface {
	EnterPhase(ph telemetry.Phase)
}

// Viewer supplies the view projection; camera.Camera implements it.
type Viewer interface {
	Projection() vecmath.Mat4
}

// Options configures rendering.
type Options struct {
	// Width and Height are the framebuffer size in pixels.
	Width, Height int
	// HDR renders particles into a half-float target blitted at the end
	// of the frame.
	HDR bool
	// AdditiveTextures blends textured emitters additively.
	AdditiveTextures bool
	ClearColor       vecmath.Vec4
}

// FrameStats totals one frame.
type FrameStats struct {
	Spawned          int
	Starved          int
	StarvationEvents int
	Bursts           int
	Live             int
	ActiveEmitters   int
	ActiveAttractors int
}

// Sandbox is the frame driver.
type Sandbox struct {
	State  State
	Limits Limits

	Starvation *StarvationMonitor
	Last       FrameStats
	Paused     bool

	backend render.Backend
	rng     *random.Generator
	opts    Options
	perf    PhaseTimer
	viewer  Viewer

	presets *render.Presets
	hdr     render.RenderTarget

	world  *ecs.World
	tracks *ecs.Map2[emission.Scheduler, Track]
	filter *ecs.Filter2[emission.Scheduler, Track]
	// order holds one entity per emitter, parallel to State.Emitters.
	order []ecs.Entity
	// free holds particle systems released by removed emitters.
	free []*particle.System
}

// New creates a sandbox. Init must be called before Frame.
func New(backend render.Backend, state State, limits Limits, rng *random.Generator, opts Options) *Sandbox {
	world := ecs.NewWorld()
	return &Sandbox{
		State:      state,
		Limits:     limits,
		Starvation: &StarvationMonitor{},
		backend:    backend,
		rng:        rng,
		opts:       opts,
		world:      world,
		tracks:     ecs.NewMap2[emission.Scheduler, Track](world),
		filter:     ecs.NewFilter2[emission.Scheduler, Track](world),
	}
}

// SetViewer installs a view; nil shows the whole space.
func (s *Sandbox) SetViewer(v Viewer) {
	s.viewer = v
}

// SetPhaseTimer installs a phase timer; nil disables timing.
func (s *Sandbox) SetPhaseTimer(p PhaseTimer) {
	s.perf = p
}

// Init loads the preset resources, the HDR target and one particle system
// per emitter.
func (s *Sandbox) Init() error {
	if err := s.State.Validate(s.Limits); err != nil {
		return fmt.Errorf("initial state: %w", err)
	}
	presets, err := render.LoadPresets(s.backend)
	if err != nil {
		return fmt.Errorf("loading presets: %w", err)
	}
	s.presets = presets

	if s.opts.HDR {
		s.hdr, err = s.backend.CreateRenderTarget(render.FormatRGBA16F, s.opts.Width, s.opts.Height)
		if err != nil {
			return fmt.Errorf("creating hdr target: %w", err)
		}
	}

	for range s.State.Emitters {
		if err := s.attach(); err != nil {
			return err
		}
	}
	slog.Info("sandbox initialized", "state", s.State, "hdr", s.opts.HDR)
	return nil
}

// attach appends an entity for a new trailing emitter.
func (s *Sandbox) attach() error {
	var sys *particle.System
	if n := len(s.free); n > 0 {
		sys = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		var err error
		sys, err = particle.NewSystem(s.Limits.ParticlesPerEmitter, s.backend)
		if err != nil {
			return fmt.Errorf("creating particle system: %w", err)
		}
	}
	sched := emission.NewScheduler()
	e := s.tracks.NewEntity(&sched, &Track{System: sys})
	s.order = append(s.order, e)
	return nil
}

// detach removes the entity of emitter i and pools its system.
func (s *Sandbox) detach(i int) {
	e := s.order[i]
	_, track := s.tracks.Get(e)
	track.System.Reset()
	s.free = append(s.free, track.System)
	s.world.RemoveEntity(e)
	s.order = append(s.order[:i], s.order[i+1:]...)
}

// Frame advances every active emitter by dt and renders it. A paused
// sandbox only renders.
func (s *Sandbox) Frame(dt float32) error {
	s.Last = FrameStats{ActiveAttractors: s.State.Physics.ActiveAttractors()}
	events := s.Starvation.Events

	s.backend.Clear(s.hdr, s.opts.ClearColor)
	proj := s.State.Projection()
	if s.viewer != nil {
		proj = s.viewer.Projection()
	}

	for i, e := range s.order {
		em := &s.State.Emitters[i]
		if !em.Active {
			continue
		}
		s.Last.ActiveEmitters++
		sched, track := s.tracks.Get(e)

		if !s.Paused {
			s.phase(telemetry.PhaseEmission)
			res, err := sched.Advance(dt, em, track.System, s.rng, s.Starvation)
			if err != nil {
				return fmt.Errorf("emitter %d: %w", i, err)
			}
			s.Last.Spawned += res.Spawned
			s.Last.Starved += res.Starved
			s.Last.Bursts += res.Bursts

			s.phase(telemetry.PhaseSimulation)
			s.State.Physics.StepAll(track.System.Particles(), dt)
		}

		s.phase(telemetry.PhaseRender)
		state := render.RenderState{
			Target:     s.hdr,
			Texture:    s.presets.Texture(em.Texture),
			Projection: proj,
			Blend:      render.BlendFor(em.Texture, s.opts.AdditiveTextures),
		}
		if err := render.UploadAndRender(s.backend, track.System, s.presets.Mesh(em.Mesh), &state); err != nil {
			return fmt.Errorf("emitter %d: %w", i, err)
		}
	}

	if s.hdr != nil {
		s.phase(telemetry.PhaseRender)
		s.backend.Clear(nil, vecmath.Vec4{0, 0, 0, 1})
		blit := render.BlitState(s.hdr.Texture(), s.opts.Width, s.opts.Height)
		if err := s.backend.DrawMesh(s.presets.Blit, &blit); err != nil {
			return fmt.Errorf("hdr blit: %w", err)
		}
	}

	if !s.Paused {
		s.Starvation.Tick(dt)
	}
	s.Last.StarvationEvents = s.Starvation.Events - events
	s.Last.Live = s.LiveParticles()
	return nil
}

func (s *Sandbox) phase(ph telemetry.Phase) {
	if s.perf != nil {
		s.perf.EnterPhase(ph)
	}
}

// LiveParticles counts live particles across all emitters.
func (s *Sandbox) LiveParticles() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		_, track := query.Get()
		n += track.System.Live()
	}
	return n
}

// Presets returns the loaded render presets.
func (s *Sandbox) Presets() *render.Presets {
	return s.presets
}

// AddEmitter adds an emitter copied from the last one.
func (s *Sandbox) AddEmitter() (int, error) {
	i, err := s.State.AddEmitter(s.Limits)
	if err != nil {
		return -1, err
	}
	if err := s.attach(); err != nil {
		s.State.Emitters = s.State.Emitters[:i]
		return -1, err
	}
	return i, nil
}

// RemoveEmitter removes emitter i and kills its particles.
func (s *Sandbox) RemoveEmitter(i int) error {
	if err := s.State.RemoveEmitter(i); err != nil {
		return err
	}
	s.detach(i)
	return nil
}

func (s *Sandbox) AddAttractor() (int, error) { return s.State.AddAttractor(s.Limits) }

func (s *Sandbox) RemoveAttractor(i int) error { return s.State.RemoveAttractor(i) }

func (s *Sandbox) AddColor(emitter int) (int, error) { return s.State.AddColor(emitter, s.Limits) }

func (s *Sandbox) RemoveColor(emitter, color int) error {
	return s.State.RemoveColor(emitter, color)
}

// LoadState validates st and, only if it is valid, replaces the current
// state and restarts every emitter with empty systems.
func (s *Sandbox) LoadState(st State) error {
	if err := st.Validate(s.Limits); err != nil {
		return err
	}
	if err := s.reserve(len(st.Emitters)); err != nil {
		return err
	}
	for i := len(s.order) - 1; i >= 0; i-- {
		s.detach(i)
	}
	s.State = st.Clone()
	for range s.State.Emitters {
		if err := s.attach(); err != nil {
			return err
		}
	}
	slog.Info("state loaded", "state", s.State)
	return nil
}

// reserve grows the free pool so that n emitters can be attached once the
// current ones are detached. Systems created before a failure stay pooled.
func (s *Sandbox) reserve(n int) error {
	for len(s.free)+len(s.order) < n {
		sys, err := particle.NewSystem(s.Limits.ParticlesPerEmitter, s.backend)
		if err != nil {
			return fmt.Errorf("creating particle system: %w", err)
		}
		s.free = append(s.free, sys)
	}
	return nil
}

// Scheduler returns the scheduler of emitter i.
func (s *Sandbox) Scheduler(i int) *emission.Scheduler {
	sched, _ := s.tracks.Get(s.order[i])
	return sched
}

// System returns the particle system of emitter i.
func (s *Sandbox) System(i int) *particle.System {
	_, track := s.tracks.Get(s.order[i])
	return track.System
}
