package lander

import (
	"sort"

	"github.com/pkg/errors"
)

// CleanSnapshot returns a snapshot with the agent at rest at the origin,
// one zero-sized pad and n zero-sized obstacles, ready to be filled in with
// SetAgent, SetPad and SetObstacle.
func CleanSnapshot(n int) *Snapshot {
	if n < 0 {
		n = 0
	}
	return &Snapshot{
		Obstacles: make([]Obstacle, n),
		Pads:      make([]Pad, 1),
	}
}

// SetAgent places the agent at rest with the given orientation.
func (s *Snapshot) SetAgent(angle, x, y float64) {
	s.SetAgentMoving(angle, x, y, 0, 0)
}

// SetAgentMoving places the agent with an initial velocity.
func (s *Snapshot) SetAgentMoving(angle, x, y, vx, vy float64) {
	s.Agent = Agent{X: x, Y: y, VX: vx, VY: vy, Angle: angle}
}

// SetObstacle overwrites obstacle i.
func (s *Snapshot) SetObstacle(i int, l, r, b, t float64) error {
	if i < 0 || i >= len(s.Obstacles) {
		return errors.Wrapf(ErrInvalidArgument, "obstacle %d does not exist (have %d)", i, len(s.Obstacles))
	}
	s.Obstacles[i] = Obstacle{Left: l, Right: r, Bottom: b, Top: t}
	return nil
}

// SetPad overwrites pad i.
func (s *Snapshot) SetPad(i int, l, r, b, t float64) error {
	if i < 0 || i >= len(s.Pads) {
		return errors.Wrapf(ErrInvalidArgument, "pad %d does not exist (have %d)", i, len(s.Pads))
	}
	s.Pads[i] = Pad{Left: l, Right: r, Bottom: b, Top: t}
	return nil
}

// Named task layouts for the standard world. Every task starts the lander
// on the ground at x=5 facing up.
const (
	TaskStandard = "standard"
	TaskNarrow   = "narrow"
	TaskWide     = "wide"
)

type taskLayout struct {
	obstacle Obstacle
	pad      Pad
}

var tasks = map[string]taskLayout{
	TaskStandard: {
		obstacle: Obstacle{Left: 20, Right: 50, Bottom: 0, Top: 20},
		pad:      Pad{Left: 80, Right: 95, Bottom: 0, Top: 10},
	},
	TaskNarrow: {
		obstacle: Obstacle{Left: 30, Right: 45, Bottom: 0, Top: 20},
		pad:      Pad{Left: 75, Right: 95, Bottom: 0, Top: 10},
	},
	TaskWide: {
		obstacle: Obstacle{Left: 20, Right: 40, Bottom: 0, Top: 20},
		pad:      Pad{Left: 65, Right: 85, Bottom: 0, Top: 10},
	},
}

// Task builds a fresh snapshot for a named layout.
func Task(name string) (*Snapshot, error) {
	t, ok := tasks[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTask, "%q (have %v)", name, TaskNames())
	}
	s := CleanSnapshot(1)
	s.SetAgent(0, 5, 0)
	s.Obstacles[0] = t.obstacle
	s.Pads[0] = t.pad
	return s, nil
}

// TaskNames lists the known layouts in sorted order.
func TaskNames() []string {
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
