package lander

import "github.com/pkg/errors"

// Agent is the kinematic state of the lander. Angle is measured in radians
// from vertical; 0 means thrust pushes straight toward +y.
type Agent struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	VX    float64 `json:"vx" yaml:"vx"`
	VY    float64 `json:"vy" yaml:"vy"`
	Angle float64 `json:"angle" yaml:"angle"`
}

// Rect is a static axis-aligned rectangle with Left <= Right and Bottom <= Top.
type Rect struct {
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Top    float64 `json:"top" yaml:"top"`
}

// Valid reports whether the rectangle edges are ordered.
func (r Rect) Valid() bool { return r.Left <= r.Right && r.Bottom <= r.Top }

// Width and Height of the rectangle.
func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Top - r.Bottom }

// overlaps is the half-open membership test used by collision resolution:
// open in x, closed at the bottom, open at the top.
func (r Rect) overlaps(x, y float64) bool {
	return x > r.Left && x < r.Right && y >= r.Bottom && y < r.Top
}

// Obstacle is a solid rectangle that blocks the lander.
type Obstacle Rect

// Pad is a landing target rectangle.
type Pad Rect

// Snapshot is the complete mutable state of one episode. Pads[0] is the
// primary target used by collision resolution.
type Snapshot struct {
	Agent     Agent      `json:"agent" yaml:"agent"`
	Obstacles []Obstacle `json:"obstacles" yaml:"obstacles"`
	Pads      []Pad      `json:"pads" yaml:"pads"`
}

// Clone returns a deep copy that shares nothing with s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	return &Snapshot{
		Agent:     s.Agent,
		Obstacles: append([]Obstacle(nil), s.Obstacles...),
		Pads:      append([]Pad(nil), s.Pads...),
	}
}

// Obstacle returns the i-th obstacle.
func (s *Snapshot) Obstacle(i int) (Obstacle, error) {
	if i < 0 || i >= len(s.Obstacles) {
		return Obstacle{}, errors.Wrapf(ErrInvalidArgument, "obstacle %d does not exist (have %d)", i, len(s.Obstacles))
	}
	return s.Obstacles[i], nil
}

// Pad returns the i-th pad.
func (s *Snapshot) Pad(i int) (Pad, error) {
	if i < 0 || i >= len(s.Pads) {
		return Pad{}, errors.Wrapf(ErrInvalidArgument, "pad %d does not exist (have %d)", i, len(s.Pads))
	}
	return s.Pads[i], nil
}

// Primary returns the primary pad.
func (s *Snapshot) Primary() (Pad, error) { return s.Pad(0) }

// InBounds reports whether the agent satisfies the world invariants of c.
func (a Agent) InBounds(c Config) bool {
	return a.X >= c.xmin && a.X <= c.xmax &&
		a.Y >= c.ymin && a.Y <= c.ymax &&
		a.VX >= -c.vmax && a.VX <= c.vmax &&
		a.VY >= -c.vmax && a.VY <= c.vmax &&
		a.Angle >= -c.angmax && a.Angle <= c.angmax
}
