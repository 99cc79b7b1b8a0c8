package main

import (
	"github.com/pthm-cable/sparkles/emission"
)

// ParamSpec defines a single optimizable emitter parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Starting value, taken from the emitter

	get func(em *emission.Emitter) float64
	set func(em *emission.Emitter, v float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// scalarMid and setScalarMid treat a range as its midpoint, keeping its
// relative spread.
func scalarMid(min, max float32) float64 {
	return float64(min+max) / 2
}

func scaleRange(min, max *float32, mid float64) {
	old := (*min + *max) / 2
	if old <= 0 {
		*min, *max = float32(mid), float32(mid)
		return
	}
	k := float32(mid) / old
	*min *= k
	*max *= k
}

// NewParamVector creates the parameters for em. Continuous emitters tune
// their rate; burst emitters tune interval and burst size. Both tune life.
func NewParamVector(em *emission.Emitter) *ParamVector {
	var specs []ParamSpec
	if em.Rate > 0 {
		specs = append(specs, ParamSpec{
			Name: "rate", Min: 10, Max: 5000,
			get: func(e *emission.Emitter) float64 { return float64(e.Rate) },
			set: func(e *emission.Emitter, v float64) { e.Rate = float32(v) },
		})
	} else {
		specs = append(specs,
			ParamSpec{
				Name: "interval", Min: 0.02, Max: 3,
				get: func(e *emission.Emitter) float64 { return scalarMid(e.Interval.Min, e.Interval.Max) },
				set: func(e *emission.Emitter, v float64) { scaleRange(&e.Interval.Min, &e.Interval.Max, v) },
			},
			ParamSpec{
				Name: "per_emission", Min: 1, Max: 2000,
				get: func(e *emission.Emitter) float64 { return scalarMid(e.PerEmission.Min, e.PerEmission.Max) },
				set: func(e *emission.Emitter, v float64) { scaleRange(&e.PerEmission.Min, &e.PerEmission.Max, v) },
			},
		)
	}
	specs = append(specs, ParamSpec{
		Name: "life", Min: 0.1, Max: 10,
		get: func(e *emission.Emitter) float64 { return scalarMid(e.Life.Min, e.Life.Max) },
		set: func(e *emission.Emitter, v float64) { scaleRange(&e.Life.Min, &e.Life.Max, v) },
	})

	pv := &ParamVector{Specs: specs}
	defaults := pv.Extract(em)
	clamped := pv.Clamp(defaults)
	for i := range pv.Specs {
		pv.Specs[i].Default = clamped[i]
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// Apply writes clamped parameter values into em.
func (pv *ParamVector) Apply(em *emission.Emitter, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(em, v)
	}
}

// Extract reads the current parameter values from em.
func (pv *ParamVector) Extract(em *emission.Emitter) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(em)
	}
	return v
}
