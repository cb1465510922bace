package scenario

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/lander/internal/core/lander"
)

var (
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrUnknownFormat   = errors.New("unknown scenario format")
)

// Scenario describes a world and its starting layout in JSON or YAML. Every
// section is optional: an empty scenario is the standard task.
type Scenario struct {
	Task      string     `json:"task,omitempty" yaml:"task,omitempty"`
	World     World      `json:"world" yaml:"world"`
	Agent     *AgentSpec `json:"agent,omitempty" yaml:"agent,omitempty"`
	Obstacles []RectSpec `json:"obstacles,omitempty" yaml:"obstacles,omitempty"`
	Pads      []RectSpec `json:"pads,omitempty" yaml:"pads,omitempty"`
	StepLimit int        `json:"step_limit,omitempty" yaml:"step_limit,omitempty"`
}

// World overrides the physical parameters of the standard world.
type World struct {
	Gravity *float64  `json:"gravity,omitempty" yaml:"gravity,omitempty"`
	Bounds  *Bounds   `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	VMax    *float64  `json:"vmax,omitempty" yaml:"vmax,omitempty"`
	AngMax  *float64  `json:"angmax,omitempty" yaml:"angmax,omitempty"`
	AngInc  *float64  `json:"anginc,omitempty" yaml:"anginc,omitempty"`
	Thrusts []float64 `json:"thrusts,omitempty" yaml:"thrusts,omitempty"`
}

type Bounds struct {
	XMin float64 `json:"xmin" yaml:"xmin"`
	XMax float64 `json:"xmax" yaml:"xmax"`
	YMin float64 `json:"ymin" yaml:"ymin"`
	YMax float64 `json:"ymax" yaml:"ymax"`
}

type AgentSpec struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	VX    float64 `json:"vx,omitempty" yaml:"vx,omitempty"`
	VY    float64 `json:"vy,omitempty" yaml:"vy,omitempty"`
	Angle float64 `json:"angle,omitempty" yaml:"angle,omitempty"`
}

type RectSpec struct {
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Top    float64 `json:"top" yaml:"top"`
}

// LoadJSON loads a scenario from a JSON reader.
func LoadJSON(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode json scenario")
	}
	return &s, nil
}

// LoadYAML loads a scenario from a YAML reader.
func LoadYAML(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode yaml scenario")
	}
	return &s, nil
}

// LoadFile picks the decoder from the file extension.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open scenario")
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	case ".json":
		return LoadJSON(f)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%s", path)
	}
}

// Build turns the scenario into a validated configuration and layout.
func (s *Scenario) Build() (lander.Config, *lander.Snapshot, error) {
	cfg := lander.NewConfig(s.World.options()...)
	if err := cfg.Validate(); err != nil {
		return lander.Config{}, nil, errors.Wrap(err, "scenario world")
	}

	task := s.Task
	if task == "" {
		task = lander.TaskStandard
	}
	snap, err := lander.Task(task)
	if err != nil {
		return lander.Config{}, nil, err
	}

	if s.Agent != nil {
		a := s.Agent
		snap.SetAgentMoving(a.Angle, a.X, a.Y, a.VX, a.VY)
	}
	if s.Obstacles != nil {
		snap.Obstacles = make([]lander.Obstacle, len(s.Obstacles))
		for i, r := range s.Obstacles {
			snap.Obstacles[i] = lander.Obstacle(r.rect())
		}
	}
	if s.Pads != nil {
		snap.Pads = make([]lander.Pad, len(s.Pads))
		for i, r := range s.Pads {
			snap.Pads[i] = lander.Pad(r.rect())
		}
	}

	if err = validate(cfg, snap); err != nil {
		return lander.Config{}, nil, err
	}
	if s.StepLimit < 0 {
		return lander.Config{}, nil, errors.Wrapf(ErrInvalidScenario, "step limit %d", s.StepLimit)
	}
	return cfg, snap, nil
}

func validate(cfg lander.Config, s *lander.Snapshot) error {
	if len(s.Pads) == 0 {
		return errors.Wrap(ErrInvalidScenario, "at least one pad is required")
	}
	for i, o := range s.Obstacles {
		if !lander.Rect(o).Valid() {
			return errors.Wrapf(ErrInvalidScenario, "obstacle %d is inverted", i)
		}
	}
	for i, p := range s.Pads {
		if !lander.Rect(p).Valid() {
			return errors.Wrapf(ErrInvalidScenario, "pad %d is inverted", i)
		}
	}
	if !s.Agent.InBounds(cfg) {
		return errors.Wrapf(ErrInvalidScenario, "agent (%g, %g) outside the world", s.Agent.X, s.Agent.Y)
	}
	return nil
}

func (w World) options() []lander.Option {
	var opts []lander.Option
	if w.Gravity != nil {
		opts = append(opts, lander.WithGravity(*w.Gravity))
	}
	if b := w.Bounds; b != nil {
		opts = append(opts, lander.WithBounds(b.XMin, b.XMax, b.YMin, b.YMax))
	}
	if w.VMax != nil {
		opts = append(opts, lander.WithVMax(*w.VMax))
	}
	if w.AngMax != nil || w.AngInc != nil {
		angmax, anginc := lander.StandardAngMax, lander.StandardAngInc
		if w.AngMax != nil {
			angmax = *w.AngMax
		}
		if w.AngInc != nil {
			anginc = *w.AngInc
		}
		opts = append(opts, lander.WithAngles(angmax, anginc))
	}
	if len(w.Thrusts) > 0 {
		opts = append(opts, lander.WithThrusts(w.Thrusts...))
	}
	return opts
}

func (r RectSpec) rect() lander.Rect {
	return lander.Rect{Left: r.Left, Right: r.Right, Bottom: r.Bottom, Top: r.Top}
}
