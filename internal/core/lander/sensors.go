package lander

import "strconv"

// Predicate names as exposed to reward and termination logic.
const (
	PredOnPad           = "onLandingPad"
	PredTouchingPad     = "touchingLandingPad"
	PredTouchingSurface = "touchingSurface"
	PredOnGround        = "onGround"
)

// The interval conventions below differ on purpose and must not be unified:
// OnPad is open in x with exact top contact, TouchingPad is [l,r)x[b,t] and
// TouchingSurface is fully closed.

// OnPad reports a flush landing on the top surface of p.
func OnPad(a Agent, p Pad) bool {
	return a.X > p.Left && a.X < p.Right && a.Y == p.Top
}

// TouchingPad reports whether the agent is anywhere on or inside p.
func TouchingPad(a Agent, p Pad) bool {
	return a.X >= p.Left && a.X < p.Right && a.Y >= p.Bottom && a.Y <= p.Top
}

// TouchingSurface reports whether the agent is on or inside o.
func TouchingSurface(a Agent, o Obstacle) bool {
	return a.X >= o.Left && a.X <= o.Right && a.Y >= o.Bottom && a.Y <= o.Top
}

// OnGround reports exact contact with the world floor.
func OnGround(a Agent, c Config) bool {
	return a.Y == c.ymin
}

// OnPadAt evaluates OnPad against the pad with index i.
func (s *Snapshot) OnPadAt(i int) (bool, error) {
	p, err := s.Pad(i)
	if err != nil {
		return false, err
	}
	return OnPad(s.Agent, p), nil
}

// TouchingPadAt evaluates TouchingPad against the pad with index i.
func (s *Snapshot) TouchingPadAt(i int) (bool, error) {
	p, err := s.Pad(i)
	if err != nil {
		return false, err
	}
	return TouchingPad(s.Agent, p), nil
}

// TouchingSurfaceAt evaluates TouchingSurface against the obstacle with index i.
func (s *Snapshot) TouchingSurfaceAt(i int) (bool, error) {
	o, err := s.Obstacle(i)
	if err != nil {
		return false, err
	}
	return TouchingSurface(s.Agent, o), nil
}

// Readings is every predicate evaluated once for a snapshot: the pad
// predicates against the primary pad and TouchingSurface per obstacle.
type Readings struct {
	OnPad           bool   `json:"onLandingPad"`
	TouchingPad     bool   `json:"touchingLandingPad"`
	OnGround        bool   `json:"onGround"`
	TouchingSurface []bool `json:"touchingSurface"`
}

// Sense evaluates all predicates. A snapshot without pads reports false
// for the pad predicates.
func Sense(s *Snapshot, c Config) Readings {
	r := Readings{
		OnGround:        OnGround(s.Agent, c),
		TouchingSurface: make([]bool, len(s.Obstacles)),
	}
	if len(s.Pads) > 0 {
		r.OnPad = OnPad(s.Agent, s.Pads[0])
		r.TouchingPad = TouchingPad(s.Agent, s.Pads[0])
	}
	for i, o := range s.Obstacles {
		r.TouchingSurface[i] = TouchingSurface(s.Agent, o)
	}
	return r
}

// AnySurface reports whether any obstacle is touched.
func (r Readings) AnySurface() bool {
	for _, t := range r.TouchingSurface {
		if t {
			return true
		}
	}
	return false
}

// Active lists the true predicates, e.g. "touchingSurface(obstacle1)".
func (r Readings) Active() []string {
	var out []string
	if r.OnPad {
		out = append(out, PredOnPad)
	}
	if r.TouchingPad {
		out = append(out, PredTouchingPad)
	}
	for i, t := range r.TouchingSurface {
		if t {
			out = append(out, PredTouchingSurface+"(obstacle"+strconv.Itoa(i)+")")
		}
	}
	if r.OnGround {
		out = append(out, PredOnGround)
	}
	return out
}
