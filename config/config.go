// Package config provides configuration loading and access for the sandbox.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/sim"
	"github.com/pthm-cable/sparkles/vecmath"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Time      TimeConfig      `yaml:"time"`
	Render    RenderConfig    `yaml:"render"`
	Sandbox   SandboxConfig   `yaml:"sandbox"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Incidents IncidentsConfig `yaml:"incidents"`
	State     StateConfig     `yaml:"state"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// TimeConfig bounds the frame delta handed to the sandbox.
type TimeConfig struct {
	MinDT float64 `yaml:"min_dt"`
	MaxDT float64 `yaml:"max_dt"`
}

// RenderConfig selects the backend and render options.
type RenderConfig struct {
	Backend          string    `yaml:"backend"` // raylib, gl or headless
	HDR              bool      `yaml:"hdr"`
	AdditiveTextures bool      `yaml:"additive_textures"`
	ClearColor       []float64 `yaml:"clear_color,flow"` // RGBA, 0..1
}

// SandboxConfig holds the starting preset, space overrides and caps.
type SandboxConfig struct {
	Preset              string  `yaml:"preset"`
	SpaceWidth          float64 `yaml:"space_width"`  // 0 = preset value
	SpaceHeight         float64 `yaml:"space_height"` // 0 = preset value
	ParticlesPerEmitter int     `yaml:"particles_per_emitter"`
	MaxEmitters         int     `yaml:"max_emitters"`
	MaxColors           int     `yaml:"max_colors"`
	MaxAttractors       int     `yaml:"max_attractors"`
}

// PhysicsConfig holds simulation options.
type PhysicsConfig struct {
	FrictionMode string `yaml:"friction_mode"` // per_step or exponential
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	IncidentHistorySize int     `yaml:"incident_history_size"`
}

// IncidentsConfig holds incident detection thresholds.
type IncidentsConfig struct {
	SustainedStarvation SustainedStarvationConfig `yaml:"sustained_starvation"`
	Saturation          SaturationConfig          `yaml:"saturation"`
	Drain               DrainConfig               `yaml:"drain"`
	SteadyState         SteadyStateConfig         `yaml:"steady_state"`
}

// SustainedStarvationConfig flags windows that keep starving.
type SustainedStarvationConfig struct {
	MinEvents  int `yaml:"min_events"`  // starvation events per window
	MinWindows int `yaml:"min_windows"` // consecutive windows
}

// SaturationConfig flags windows where live particles approach capacity.
type SaturationConfig struct {
	Fraction float64 `yaml:"fraction"` // live p90 / capacity
}

// DrainConfig flags a sharp drop in live particles.
type DrainConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int     `yaml:"min_drop"`
}

// SteadyStateConfig flags a stable live count.
type SteadyStateConfig struct {
	MinLive       int     `yaml:"min_live"`
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// StateConfig holds state file options.
type StateConfig struct {
	Path     string `yaml:"path"`
	Autosave bool   `yaml:"autosave"` // save on exit
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MinDT32      float32
	MaxDT32      float32
	ScreenW32    float32
	ScreenH32    float32
	ClearColor   vecmath.Vec4
	FrictionMode sim.FrictionMode
	Limits       sandbox.Limits
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	switch c.Render.Backend {
	case "raylib", "gl", "headless":
	default:
		return fmt.Errorf("render.backend %q: want raylib, gl or headless", c.Render.Backend)
	}
	if c.Time.MinDT > c.Time.MaxDT {
		return fmt.Errorf("time.min_dt %v exceeds time.max_dt %v", c.Time.MinDT, c.Time.MaxDT)
	}
	mode, err := sim.ParseFrictionMode(c.Physics.FrictionMode)
	if err != nil {
		return fmt.Errorf("physics.friction_mode: %w", err)
	}

	c.Derived.MinDT32 = float32(c.Time.MinDT)
	c.Derived.MaxDT32 = float32(c.Time.MaxDT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.FrictionMode = mode

	c.Derived.ClearColor = vecmath.Vec4{0, 0, 0, 1}
	for i := 0; i < len(c.Render.ClearColor) && i < 4; i++ {
		c.Derived.ClearColor[i] = float32(c.Render.ClearColor[i])
	}

	c.Derived.Limits = sandbox.DefaultLimits()
	if c.Sandbox.ParticlesPerEmitter > 0 {
		c.Derived.Limits.ParticlesPerEmitter = c.Sandbox.ParticlesPerEmitter
	}
	if c.Sandbox.MaxEmitters > 0 {
		c.Derived.Limits.MaxEmitters = c.Sandbox.MaxEmitters
	}
	if c.Sandbox.MaxColors > 0 {
		c.Derived.Limits.MaxColors = c.Sandbox.MaxColors
	}
	if c.Sandbox.MaxAttractors > 0 {
		c.Derived.Limits.MaxAttractors = c.Sandbox.MaxAttractors
	}
	return nil
}

// InitialState builds the starting sandbox state from the configured
// preset and overrides.
func (c *Config) InitialState() (sandbox.State, error) {
	st, err := sandbox.Preset(c.Sandbox.Preset)
	if err != nil {
		return sandbox.State{}, err
	}
	if c.Sandbox.SpaceWidth > 0 {
		st.SpaceWidth = float32(c.Sandbox.SpaceWidth)
	}
	if c.Sandbox.SpaceHeight > 0 {
		st.SpaceHeight = float32(c.Sandbox.SpaceHeight)
	}
	st.Physics.FrictionMode = c.Derived.FrictionMode
	return st, nil
}

// ClampDT limits a frame delta to [min_dt, max_dt].
func (c *Config) ClampDT(dt float32) float32 {
	return vecmath.Clamp(dt, c.Derived.MinDT32, c.Derived.MaxDT32)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
