package emission

import (
	"fmt"

	"github.com/pthm-cable/sparkles/particle"
	"github.com/pthm-cable/sparkles/random"
)

// StarvationNotifier is told how many particles a burst could not spawn
// because the system had no dead slots left.
type StarvationNotifier interface {
	NotifyStarvation(remaining int)
}

// NotifierFunc adapts a function to StarvationNotifier.
type NotifierFunc func(remaining int)

// NotifyStarvation calls f.
func (f NotifierFunc) NotifyStarvation(remaining int) { f(remaining) }

// Scheduler is the per-emitter timing state.
type Scheduler struct {
	Timer float32
	// NextInterval is negative until the first burst.
	NextInterval float32

	pending float32
}

// NewScheduler returns a scheduler that bursts on its first Advance.
func NewScheduler() Scheduler {
	return Scheduler{NextInterval: -1}
}

// Reset returns s to its unscheduled state.
func (s *Scheduler) Reset() {
	*s = NewScheduler()
}

// Result summarizes one Advance.
type Result struct {
	Bursts  int
	Spawned int
	Starved int
}

// Advance moves the emitter's clock by dt and spawns into sys when due.
func (s *Scheduler) Advance(dt float32, e *Emitter, sys *particle.System, g *random.Generator, sink StarvationNotifier) (Result, error) {
	if e.Rate > 0 {
		return s.advanceRate(dt, e, sys, g, sink)
	}

	var res Result
	s.Timer += dt
	if s.NextInterval >= 0 && s.Timer < s.NextInterval {
		return res, nil
	}

	count, err := g.Scalar(e.PerEmission)
	if err != nil {
		return res, fmt.Errorf("particles per emission: %w", err)
	}
	want := int(count)
	if want < 0 {
		want = 0
	}

	origin := e.Position
	if e.Burst != nil {
		jitter, err := g.Vec2(e.Burst)
		if err != nil {
			return res, fmt.Errorf("burst origin: %w", err)
		}
		origin = origin.Add(jitter)
	}

	sp := e.SpawnParams(origin)
	spawned, err := Fill(sys, &sp, want, g)
	res.Bursts = 1
	res.Spawned = spawned
	if err != nil {
		return res, err
	}
	if remaining := want - spawned; remaining > 0 {
		res.Starved = remaining
		if sink != nil {
			sink.NotifyStarvation(remaining)
		}
	}

	next, err := g.Scalar(e.Interval)
	if err != nil {
		return res, fmt.Errorf("emission interval: %w", err)
	}
	s.NextInterval = next
	s.Timer = 0
	return res, nil
}

func (s *Scheduler) advanceRate(dt float32, e *Emitter, sys *particle.System, g *random.Generator, sink StarvationNotifier) (Result, error) {
	var res Result
	s.pending += e.Rate * dt
	want := int(s.pending)
	if want == 0 {
		return res, nil
	}
	s.pending -= float32(want)

	sp := e.SpawnParams(e.Position)
	spawned, err := Fill(sys, &sp, want, g)
	res.Spawned = spawned
	if err != nil {
		return res, err
	}
	if remaining := want - spawned; remaining > 0 {
		res.Starved = remaining
		if sink != nil {
			sink.NotifyStarvation(remaining)
		}
	}
	return res, nil
}

// Fill scans sys from the first slot and spawns into up to n dead slots.
// It returns how many were spawned.
func Fill(sys *particle.System, sp *particle.SpawnParams, n int, g *random.Generator) (int, error) {
	ps := sys.Particles()
	spawned := 0
	for i := 0; i < len(ps) && spawned < n; i++ {
		p := &ps[i]
		if !p.Dead() {
			continue
		}
		if err := particle.Spawn(p, sp, g); err != nil {
			return spawned, fmt.Errorf("spawning slot %d: %w", i, err)
		}
		spawned++
	}
	return spawned, nil
}
