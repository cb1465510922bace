package episode

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zeusync/lander/internal/core/events/bus"
	"github.com/zeusync/lander/internal/core/lander"
	"github.com/zeusync/lander/internal/core/observability/log"
	"github.com/zeusync/lander/internal/core/observability/metrics"
)

var (
	ErrEpisodeOver = errors.New("episode is over, reset first")
	ErrNoLayout    = errors.New("episode layout needs at least one pad")
)

// Event types published on the bus.
const (
	EventReset   = "episode.reset"
	EventStep    = "episode.step"
	EventContact = "episode.contact"
	EventLanded  = "episode.landed"
	EventEnded   = "episode.ended"
)

// Outcome is the bookkeeping state of an episode.
type Outcome uint8

const (
	Running Outcome = iota
	Landed
	Timeout
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Landed:
		return "landed"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Transition describes one applied step.
type Transition struct {
	Episode  string          `json:"episode"`
	Step     int             `json:"step"`
	Action   lander.Action   `json:"action"`
	Agent    lander.Agent    `json:"agent"`
	Contact  lander.Contact  `json:"-"`
	Contacts []string        `json:"contacts,omitempty"`
	Readings lander.Readings `json:"readings"`
	Outcome  Outcome         `json:"outcome"`
}

type Option func(*Episode)

func WithLogger(l log.Log) Option {
	return func(e *Episode) { e.logger = l }
}

func WithBus(b bus.EventBus) Option {
	return func(e *Episode) { e.bus = b }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(e *Episode) { e.recorder = r }
}

// WithStepLimit ends the episode with Timeout after n steps. Zero means
// no limit.
func WithStepLimit(n int) Option {
	return func(e *Episode) { e.limit = n }
}

// WithSource names the publisher on bus events.
func WithSource(src string) Option {
	return func(e *Episode) { e.source = src }
}

// Episode drives one lander through a world: it owns the snapshot, applies
// actions through the engine and keeps episode bookkeeping. An Episode is
// not safe for concurrent use; the engine and catalog it holds are.
type Episode struct {
	engine  *lander.Engine
	catalog *lander.Catalog
	layout  *lander.Snapshot

	state   *lander.Snapshot
	id      string
	steps   int
	outcome Outcome
	limit   int

	logger   log.Log
	bus      bus.EventBus
	recorder metrics.Recorder
	source   string
}

// New prepares an episode over a private copy of layout and resets it.
func New(cfg lander.Config, layout *lander.Snapshot, opts ...Option) (*Episode, error) {
	if layout == nil {
		return nil, ErrNoLayout
	}
	if _, err := layout.Primary(); err != nil {
		return nil, errors.Wrap(ErrNoLayout, err.Error())
	}
	e := &Episode{
		engine:   lander.NewEngine(cfg),
		catalog:  lander.NewCatalog(cfg),
		layout:   layout.Clone(),
		logger:   log.Provide(),
		recorder: metrics.Nop{},
		source:   "episode",
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e, nil
}

// Reset restores the layout under a fresh episode id.
func (e *Episode) Reset() {
	e.state = e.layout.Clone()
	e.id = uuid.NewString()
	e.steps = 0
	e.outcome = Running
	e.publish(EventReset, e.state.Clone())
	e.logger.Debug("episode reset",
		log.String("episode", e.id),
		log.Float64("x", e.state.Agent.X),
		log.Float64("y", e.state.Agent.Y))
}

// Step applies a single action.
func (e *Episode) Step(a lander.Action) (Transition, error) {
	if e.outcome != Running {
		return Transition{}, errors.Wrapf(ErrEpisodeOver, "episode %s %s", e.id, e.outcome)
	}
	contact, err := e.engine.Apply(e.state, a)
	if err != nil {
		return Transition{}, errors.Wrapf(err, "episode %s step %d", e.id, e.steps+1)
	}
	e.steps++

	readings := lander.Sense(e.state, e.engine.Config())
	switch {
	case readings.OnPad:
		e.outcome = Landed
	case e.limit > 0 && e.steps >= e.limit:
		e.outcome = Timeout
	}

	tr := Transition{
		Episode:  e.id,
		Step:     e.steps,
		Action:   a,
		Agent:    e.state.Agent,
		Contact:  contact,
		Contacts: contact.Kinds(),
		Readings: readings,
		Outcome:  e.outcome,
	}

	e.recorder.Step(a.String(), tr.Contacts)
	e.publish(EventStep, tr)
	if contact != 0 {
		e.publish(EventContact, tr)
	}
	e.logger.Debug("step",
		log.String("episode", e.id),
		log.Int("step", e.steps),
		log.String("action", a.String()),
		log.Float64("x", tr.Agent.X),
		log.Float64("y", tr.Agent.Y),
		log.Float64("vx", tr.Agent.VX),
		log.Float64("vy", tr.Agent.VY),
		log.Float64("angle", tr.Agent.Angle),
		log.Strings("contacts", tr.Contacts))

	if e.outcome != Running {
		if e.outcome == Landed {
			e.publish(EventLanded, tr)
		}
		e.recorder.EpisodeEnded(e.outcome.String(), e.steps)
		e.publish(EventEnded, tr)
		e.logger.Info("episode ended",
			log.String("episode", e.id),
			log.String("outcome", e.outcome.String()),
			log.Int("steps", e.steps))
	}
	return tr, nil
}

// StepNamed resolves a canonical action name through the catalog.
func (e *Episode) StepNamed(name string) (Transition, error) {
	a, err := e.catalog.Lookup(name)
	if err != nil {
		return Transition{}, err
	}
	return e.Step(a)
}

// Snapshot returns a copy of the current state.
func (e *Episode) Snapshot() *lander.Snapshot { return e.state.Clone() }

// Readings evaluates the predicates on the current state.
func (e *Episode) Readings() lander.Readings {
	return lander.Sense(e.state, e.engine.Config())
}

func (e *Episode) ID() string               { return e.id }
func (e *Episode) Steps() int               { return e.steps }
func (e *Episode) Outcome() Outcome         { return e.outcome }
func (e *Episode) Done() bool               { return e.outcome != Running }
func (e *Episode) Catalog() *lander.Catalog { return e.catalog }
func (e *Episode) Config() lander.Config    { return e.engine.Config() }

func (e *Episode) publish(typ string, data any) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(bus.NewEvent(typ, e.source, data)); err != nil {
		e.logger.Warn("event handler failed",
			log.String("episode", e.id),
			log.String("event", typ),
			log.Error(err))
	}
}
