package statefile

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sparkles/emission"
	"github.com/pthm-cable/sparkles/random"
	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/sim"
	"github.com/pthm-cable/sparkles/vecmath"
)

// Document is the YAML form of a state.
type Document struct {
	Version     uint32       `yaml:"version"`
	SpaceWidth  float32      `yaml:"space_width"`
	SpaceHeight float32      `yaml:"space_height"`
	Physics     PhysicsDoc   `yaml:"physics"`
	Emitters    []EmitterDoc `yaml:"emitters"`
}

type PhysicsDoc struct {
	Gravity      vecmath.Vec2   `yaml:"gravity,flow"`
	Friction     float32        `yaml:"friction"`
	FrictionMode string         `yaml:"friction_mode"`
	Attractors   []AttractorDoc `yaml:"attractors,omitempty"`
}

type AttractorDoc struct {
	Active       bool         `yaml:"active"`
	Position     vecmath.Vec2 `yaml:"position,flow"`
	Law          string       `yaml:"law"`
	Radius       float32      `yaml:"radius"`
	Factor       float32      `yaml:"factor"`
	MagnitudeCap float32      `yaml:"magnitude_cap"`
}

type EmitterDoc struct {
	Active      bool           `yaml:"active"`
	Position    vecmath.Vec2   `yaml:"position,flow"`
	Interval    random.Scalar  `yaml:"interval,flow"`
	PerEmission random.Scalar  `yaml:"per_emission,flow"`
	Rate        float32        `yaml:"rate,omitempty"`
	Burst       *Vec2Doc       `yaml:"burst,omitempty"`
	Mesh        int            `yaml:"mesh"`
	Texture     int            `yaml:"texture"`
	Offset      *Vec2Doc       `yaml:"offset"`
	Velocity    *Vec2Doc       `yaml:"velocity"`
	Size        random.Scalar  `yaml:"size,flow"`
	Life        random.Scalar  `yaml:"life,flow"`
	Palette     random.Palette `yaml:"palette"`
}

// Vec2Doc names its coordinate system explicitly.
type Vec2Doc struct {
	Coordinates string         `yaml:"coordinates"`
	X           *random.Scalar `yaml:"x,omitempty,flow"`
	Y           *random.Scalar `yaml:"y,omitempty,flow"`
	Angle       *random.Scalar `yaml:"angle,omitempty,flow"`
	Radius      *random.Scalar `yaml:"radius,omitempty,flow"`
}

func vec2Doc(v random.Vec2) (*Vec2Doc, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case random.Cartesian:
		return &Vec2Doc{Coordinates: "cartesian", X: &c.X, Y: &c.Y}, nil
	case random.Polar:
		return &Vec2Doc{Coordinates: "polar", Angle: &c.Angle, Radius: &c.Radius}, nil
	}
	return nil, fmt.Errorf("%w: %T", random.ErrUnsupportedCoordinates, v)
}

func (d *Vec2Doc) vec2() (random.Vec2, error) {
	if d == nil {
		return nil, nil
	}
	switch d.Coordinates {
	case "cartesian":
		if d.X == nil || d.Y == nil {
			return nil, fmt.Errorf("cartesian vector needs x and y")
		}
		return random.Cartesian{X: *d.X, Y: *d.Y}, nil
	case "polar":
		if d.Angle == nil || d.Radius == nil {
			return nil, fmt.Errorf("polar vector needs angle and radius")
		}
		return random.Polar{Angle: *d.Angle, Radius: *d.Radius}, nil
	}
	return nil, fmt.Errorf("%w: %q", random.ErrUnsupportedCoordinates, d.Coordinates)
}

func parseLaw(s string) (sim.ForceLaw, error) {
	for _, l := range []sim.ForceLaw{sim.Linear, sim.Inverse, sim.InverseSquared} {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown force law %q", s)
}

// ToDocument converts st to its YAML form.
func ToDocument(st *sandbox.State) (Document, error) {
	doc := Document{
		Version:     st.Version,
		SpaceWidth:  st.SpaceWidth,
		SpaceHeight: st.SpaceHeight,
		Physics: PhysicsDoc{
			Gravity:      st.Physics.Gravity,
			Friction:     st.Physics.Friction,
			FrictionMode: st.Physics.FrictionMode.String(),
		},
	}
	for _, a := range st.Physics.Attractors {
		doc.Physics.Attractors = append(doc.Physics.Attractors, AttractorDoc{
			Active:       a.Active,
			Position:     a.Position,
			Law:          a.Law.String(),
			Radius:       a.Radius,
			Factor:       a.Factor,
			MagnitudeCap: a.MagnitudeCap,
		})
	}
	for i := range st.Emitters {
		em := &st.Emitters[i]
		ed := EmitterDoc{
			Active:      em.Active,
			Position:    em.Position,
			Interval:    em.Interval,
			PerEmission: em.PerEmission,
			Rate:        em.Rate,
			Mesh:        em.Mesh,
			Texture:     em.Texture,
			Size:        em.Size,
			Life:        em.Life,
			Palette:     em.Palette,
		}
		var err error
		if ed.Burst, err = vec2Doc(em.Burst); err != nil {
			return Document{}, fmt.Errorf("emitter %d burst: %w", i, err)
		}
		if ed.Offset, err = vec2Doc(em.Offset); err != nil {
			return Document{}, fmt.Errorf("emitter %d offset: %w", i, err)
		}
		if ed.Velocity, err = vec2Doc(em.Velocity); err != nil {
			return Document{}, fmt.Errorf("emitter %d velocity: %w", i, err)
		}
		doc.Emitters = append(doc.Emitters, ed)
	}
	return doc, nil
}

// State converts the document back to a state.
func (doc *Document) State() (sandbox.State, error) {
	mode, err := sim.ParseFrictionMode(doc.Physics.FrictionMode)
	if err != nil {
		return sandbox.State{}, err
	}
	st := sandbox.State{
		Version:     doc.Version,
		SpaceWidth:  doc.SpaceWidth,
		SpaceHeight: doc.SpaceHeight,
		Physics: sim.Physics{
			Gravity:      doc.Physics.Gravity,
			Friction:     doc.Physics.Friction,
			FrictionMode: mode,
		},
	}
	for i, a := range doc.Physics.Attractors {
		law, err := parseLaw(a.Law)
		if err != nil {
			return sandbox.State{}, fmt.Errorf("attractor %d: %w", i, err)
		}
		st.Physics.Attractors = append(st.Physics.Attractors, sim.Attractor{
			Active:       a.Active,
			Position:     a.Position,
			Law:          law,
			Radius:       a.Radius,
			Factor:       a.Factor,
			MagnitudeCap: a.MagnitudeCap,
		})
	}
	for i := range doc.Emitters {
		ed := &doc.Emitters[i]
		em := emission.Emitter{
			Active:      ed.Active,
			Position:    ed.Position,
			Interval:    ed.Interval,
			PerEmission: ed.PerEmission,
			Rate:        ed.Rate,
			Mesh:        ed.Mesh,
			Texture:     ed.Texture,
			Size:        ed.Size,
			Life:        ed.Life,
			Palette:     append(random.Palette(nil), ed.Palette...),
		}
		if em.Burst, err = ed.Burst.vec2(); err != nil {
			return sandbox.State{}, fmt.Errorf("emitter %d burst: %w", i, err)
		}
		if em.Offset, err = ed.Offset.vec2(); err != nil {
			return sandbox.State{}, fmt.Errorf("emitter %d offset: %w", i, err)
		}
		if em.Velocity, err = ed.Velocity.vec2(); err != nil {
			return sandbox.State{}, fmt.Errorf("emitter %d velocity: %w", i, err)
		}
		st.Emitters = append(st.Emitters, em)
	}
	return st, nil
}

// WriteYAML writes st as YAML.
func WriteYAML(w io.Writer, st *sandbox.State) error {
	doc, err := ToDocument(st)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// ReadYAML parses a YAML state. The result is not validated.
func ReadYAML(r io.Reader) (sandbox.State, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return sandbox.State{}, fmt.Errorf("parsing yaml: %w", err)
	}
	return doc.State()
}
