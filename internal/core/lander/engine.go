package lander

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Contact is a bitmask of the boundary and collision rules that fired
// during one step.
type Contact uint8

const (
	ContactGround Contact = 1 << iota
	ContactCeiling
	ContactWall
	ContactObstacle
	ContactPad
)

var contactNames = [...]string{"ground", "ceiling", "wall", "obstacle", "pad"}

// Has reports whether every flag in f is set.
func (c Contact) Has(f Contact) bool { return c&f == f }

// Kinds lists the set flags by name, in bit order.
func (c Contact) Kinds() []string {
	var out []string
	for i, name := range contactNames {
		if c&(1<<i) != 0 {
			out = append(out, name)
		}
	}
	return out
}

func (c Contact) String() string {
	if c == 0 {
		return "none"
	}
	return strings.Join(c.Kinds(), "|")
}

// stepDuration is the fixed integration interval.
const stepDuration = 1.

// Engine applies actions to snapshots. It holds only the immutable world
// configuration, so a single Engine may serve any number of episodes
// concurrently as long as each episode owns its snapshot.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config { return e.cfg }

// Step applies a to s in place and returns s.
func (e *Engine) Step(s *Snapshot, a Action) (*Snapshot, error) {
	if _, err := e.Apply(s, a); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply is Step that also reports which rules fired.
func (e *Engine) Apply(s *Snapshot, a Action) (Contact, error) {
	if s == nil {
		return 0, errors.Wrap(ErrInvalidArgument, "nil snapshot")
	}
	if len(s.Pads) == 0 {
		return 0, errors.Wrap(ErrInvalidArgument, "snapshot has no landing pad")
	}

	switch a.Kind {
	case KindIdle:
		return e.updateMotion(s, 0), nil
	case KindTurnLeft:
		e.turn(&s.Agent, -1)
		return e.updateMotion(s, 0), nil
	case KindTurnRight:
		e.turn(&s.Agent, 1)
		return e.updateMotion(s, 0), nil
	case KindThrust:
		thrust, err := e.cfg.Thrust(a.Index)
		if err != nil {
			return 0, err
		}
		return e.updateMotion(s, thrust), nil
	default:
		return 0, errors.Wrapf(ErrUnknownAction, "kind %d", a.Kind)
	}
}

func (e *Engine) turn(a *Agent, dir float64) {
	ang := a.Angle + dir*e.cfg.anginc
	if ang > e.cfg.angmax {
		ang = e.cfg.angmax
	} else if ang < -e.cfg.angmax {
		ang = -e.cfg.angmax
	}
	a.Angle = ang
}

// motion carries the post-integration values while the clamps and
// collision rules rewrite them.
type motion struct {
	x, y, vx, vy, ang float64
}

func (e *Engine) updateMotion(s *Snapshot, thrust float64) Contact {
	const (
		ti = stepDuration
		tt = ti * ti
	)
	prev := s.Agent

	worldAngle := math.Pi/2. - prev.Angle
	ax := math.Cos(worldAngle) * thrust
	ay := math.Sin(worldAngle)*thrust + e.cfg.gravity

	m := motion{
		x:   prev.X + prev.VX*ti + 0.5*ax*tt,
		y:   prev.Y + prev.VY*ti + 0.5*ay*tt,
		vx:  prev.VX + ax*ti,
		vy:  prev.VY + ay*ti,
		ang: prev.Angle,
	}

	var contact Contact

	if m.y > e.cfg.ymax {
		m.y = e.cfg.ymax
		m.vy = 0
		contact |= ContactCeiling
	} else if m.y <= e.cfg.ymin {
		// touching the ground levels and halts the lander
		m.y = e.cfg.ymin
		m.vy = 0
		m.vx = 0
		m.ang = 0
		contact |= ContactGround
	}

	if m.x > e.cfg.xmax {
		m.x = e.cfg.xmax
		m.vx = 0
		contact |= ContactWall
	} else if m.x < e.cfg.xmin {
		m.x = e.cfg.xmin
		m.vx = 0
		contact |= ContactWall
	}

	m.vx = clamp(m.vx, -e.cfg.vmax, e.cfg.vmax)
	m.vy = clamp(m.vy, -e.cfg.vmax, e.cfg.vmax)

	// only the first overlapping obstacle is resolved
	for _, o := range s.Obstacles {
		if Rect(o).overlaps(m.x, m.y) {
			m.resolve(Rect(o), prev)
			contact |= ContactObstacle
			break
		}
	}

	if pad := Rect(s.Pads[0]); pad.overlaps(m.x, m.y) {
		m.resolve(pad, prev)
		contact |= ContactPad
	}

	s.Agent = Agent{X: m.x, Y: m.y, VX: m.vx, VY: m.vy, Angle: m.ang}
	return contact
}

// resolve pushes the lander back to the face of r it came through, judged
// by the pre-step position. Both axes may be corrected in one step.
func (m *motion) resolve(r Rect, prev Agent) {
	if prev.X <= r.Left {
		m.x = r.Left
		m.vx = 0
	} else if prev.X >= r.Right {
		m.x = r.Right
		m.vx = 0
	}

	if prev.Y <= r.Bottom {
		m.y = r.Bottom
		m.vy = 0
	} else if prev.Y >= r.Top {
		// landed on top
		m.y = r.Top
		m.vy = 0
		m.vx = 0
		m.ang = 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}
