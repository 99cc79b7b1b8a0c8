// Package random samples declarative value ranges: scalars, 2D/3D/4D vectors
// in several coordinate systems, and colors.
//
// A Generator owns its source; construct one per simulation and pass it
// down. It is not safe for concurrent use.
package random

import (
	"errors"
	"math/rand"
	"time"
)

var (
	// ErrUnsupportedDistribution is returned for distribution tags that have
	// no sampler.
	ErrUnsupportedDistribution = errors.New("random: unsupported distribution")
	// ErrUnsupportedCoordinates is returned for an unknown or nil vector variant.
	ErrUnsupportedCoordinates = errors.New("random: unsupported coordinate system")
	// ErrUnsupportedColorSystem is returned for an unknown or nil color variant.
	ErrUnsupportedColorSystem = errors.New("random: unsupported color system")
)

// Generator draws uniform numbers from an injectable source.
type Generator struct {
	rng *rand.Rand
}

// New returns a generator seeded with seed, or with the wall clock when seed is 0.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewWithSource(rand.NewSource(seed))
}

// NewWithSource returns a generator reading from src.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// Uniform returns a number in [0, 1).
func (g *Generator) Uniform() float32 {
	return g.rng.Float32()
}
