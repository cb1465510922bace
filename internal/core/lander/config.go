package lander

import (
	"math"

	"github.com/pkg/errors"
)

// Standard world parameters.
const (
	StandardGravity = -0.2
	StandardXMin    = 0.
	StandardXMax    = 100.
	StandardYMin    = 0.
	StandardYMax    = 50.
	StandardVMax    = 4.
	StandardAngMax  = math.Pi / 4.
	StandardAngInc  = math.Pi / 20.

	// StandardMainThrust is the strong thrust of the standard action pair.
	StandardMainThrust = 0.32
)

// Config is the immutable set of world parameters shared by every episode
// played in the same world. The zero value is not useful; build one with
// Standard or NewConfig.
type Config struct {
	xmin, xmax float64
	ymin, ymax float64
	gravity    float64
	vmax       float64
	angmax     float64
	anginc     float64
	thrusts    []float64
}

// Option configures a Config under construction.
type Option func(*Config)

// WithGravity sets the world-frame y acceleration applied on every step.
func WithGravity(g float64) Option {
	return func(c *Config) { c.gravity = g }
}

// WithBounds sets the world rectangle.
func WithBounds(xmin, xmax, ymin, ymax float64) Option {
	return func(c *Config) {
		c.xmin, c.xmax = xmin, xmax
		c.ymin, c.ymax = ymin, ymax
	}
}

// WithVMax sets the symmetric cap applied to each velocity component.
func WithVMax(vmax float64) Option {
	return func(c *Config) { c.vmax = vmax }
}

// WithAngles sets the symmetric orientation cap and the per-turn increment.
func WithAngles(angmax, anginc float64) Option {
	return func(c *Config) {
		c.angmax = angmax
		c.anginc = anginc
	}
}

// WithThrusts replaces the ordered thrust magnitudes. Index i becomes the
// action Thrust(i).
func WithThrusts(thrusts ...float64) Option {
	return func(c *Config) { c.thrusts = append([]float64(nil), thrusts...) }
}

// AddThrust appends one more thrust magnitude after the ones already set.
func AddThrust(t float64) Option {
	return func(c *Config) { c.thrusts = append(c.thrusts, t) }
}

// Standard returns the classic lander world: gravity -0.2, a 100x50 world,
// velocity cap 4, orientation cap pi/4 in pi/20 steps, and the thrust pair
// {0.32, 0.2} where the second thrust exactly cancels gravity.
func Standard() Config {
	return Config{
		xmin:    StandardXMin,
		xmax:    StandardXMax,
		ymin:    StandardYMin,
		ymax:    StandardYMax,
		gravity: StandardGravity,
		vmax:    StandardVMax,
		angmax:  StandardAngMax,
		anginc:  StandardAngInc,
		thrusts: []float64{StandardMainThrust, -StandardGravity},
	}
}

// NewConfig starts from the standard parameters without thrusts and applies
// opts in order. If no thrust ends up configured, the standard pair is
// installed using the final gravity, so the second thrust still hovers.
func NewConfig(opts ...Option) Config {
	c := Standard()
	c.thrusts = nil
	for _, opt := range opts {
		opt(&c)
	}
	if len(c.thrusts) == 0 {
		c.thrusts = []float64{StandardMainThrust, -c.gravity}
	}
	return c
}

func (c Config) XMin() float64    { return c.xmin }
func (c Config) XMax() float64    { return c.xmax }
func (c Config) YMin() float64    { return c.ymin }
func (c Config) YMax() float64    { return c.ymax }
func (c Config) Gravity() float64 { return c.gravity }
func (c Config) VMax() float64    { return c.vmax }
func (c Config) AngMax() float64  { return c.angmax }
func (c Config) AngInc() float64  { return c.anginc }

// Thrusts returns a copy of the configured thrust magnitudes.
func (c Config) Thrusts() []float64 {
	return append([]float64(nil), c.thrusts...)
}

// Thrust returns the magnitude behind Thrust(i).
func (c Config) Thrust(i int) (float64, error) {
	if i < 0 || i >= len(c.thrusts) {
		return 0, errors.Wrapf(ErrInvalidArgument, "thrust index %d outside [0,%d)", i, len(c.thrusts))
	}
	return c.thrusts[i], nil
}

// Validate checks the parameter relations the engine silently relies on.
// The engine never calls it; loaders and front-ends do.
func (c Config) Validate() error {
	switch {
	case !(c.xmin < c.xmax):
		return errors.Wrapf(ErrInvalidConfig, "xmin %g must be below xmax %g", c.xmin, c.xmax)
	case !(c.ymin < c.ymax):
		return errors.Wrapf(ErrInvalidConfig, "ymin %g must be below ymax %g", c.ymin, c.ymax)
	case !(c.vmax > 0):
		return errors.Wrapf(ErrInvalidConfig, "vmax %g must be positive", c.vmax)
	case !(c.angmax > 0):
		return errors.Wrapf(ErrInvalidConfig, "angmax %g must be positive", c.angmax)
	case !(c.anginc > 0):
		return errors.Wrapf(ErrInvalidConfig, "anginc %g must be positive", c.anginc)
	case len(c.thrusts) == 0:
		return errors.Wrap(ErrInvalidConfig, "at least one thrust is required")
	}
	for i, t := range c.thrusts {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return errors.Wrapf(ErrInvalidConfig, "thrust %d is not finite", i)
		}
	}
	return nil
}
