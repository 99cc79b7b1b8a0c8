package random

import "fmt"

// Distribution selects how a Scalar is sampled between Min and Max.
type Distribution uint32

const (
	// Uniform gives every value in the range the same chance.
	Uniform Distribution = iota
)

func (d Distribution) String() string {
	switch d {
	case Uniform:
		return "uniform"
	default:
		return fmt.Sprintf("distribution(%d)", uint32(d))
	}
}

// Scalar is a random number description. Min > Max is allowed and simply
// reverses the interpolation.
type Scalar struct {
	Distribution Distribution `yaml:"distribution"`
	Min          float32      `yaml:"min"`
	Max          float32      `yaml:"max"`
}

// Range returns a uniform scalar over [min, max].
func Range(min, max float32) Scalar {
	return Scalar{Distribution: Uniform, Min: min, Max: max}
}

// Constant returns a scalar that always samples v.
func Constant(v float32) Scalar {
	return Range(v, v)
}

// Validate reports whether s can be sampled.
func (s Scalar) Validate() error {
	if s.Distribution != Uniform {
		return fmt.Errorf("%w: %s", ErrUnsupportedDistribution, s.Distribution)
	}
	return nil
}

// Scalar samples s.
func (g *Generator) Scalar(s Scalar) (float32, error) {
	switch s.Distribution {
	case Uniform:
		return s.Min + g.Uniform()*(s.Max-s.Min), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedDistribution, s.Distribution)
	}
}
