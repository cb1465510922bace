package rollout

import (
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/zeusync/lander/internal/core/lander"
)

// Policy chooses the next action from the current state. Implementations
// need not be safe for concurrent use; the runner builds one per episode.
type Policy interface {
	Act(s *lander.Snapshot) lander.Action
}

// Factory builds the policy for the episode with the given index.
type Factory func(episode int) Policy

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(s *lander.Snapshot) lander.Action

func (f PolicyFunc) Act(s *lander.Snapshot) lander.Action { return f(s) }

// RandomPolicy picks uniformly from a catalog.
type RandomPolicy struct {
	actions []lander.Action
	rng     *rand.Rand
}

// NewRandomPolicy is deterministic for a given (seed, stream) pair.
func NewRandomPolicy(c *lander.Catalog, seed, stream uint64) *RandomPolicy {
	return &RandomPolicy{
		actions: c.Actions(),
		rng:     rand.New(rand.NewPCG(seed, stream)),
	}
}

func (p *RandomPolicy) Act(*lander.Snapshot) lander.Action {
	return p.actions[p.rng.IntN(len(p.actions))]
}

// ScriptPolicy plays a fixed action list and then repeats the last entry.
type ScriptPolicy struct {
	script []lander.Action
	next   int
}

func NewScriptPolicy(script ...lander.Action) *ScriptPolicy {
	if len(script) == 0 {
		script = []lander.Action{lander.Idle()}
	}
	return &ScriptPolicy{script: append([]lander.Action(nil), script...)}
}

func (p *ScriptPolicy) Act(*lander.Snapshot) lander.Action {
	a := p.script[p.next]
	if p.next < len(p.script)-1 {
		p.next++
	}
	return a
}

// HoverPolicy always fires the second thruster, which the standard world
// sizes to cancel gravity.
type HoverPolicy struct{}

func (HoverPolicy) Act(*lander.Snapshot) lander.Action { return lander.Thrust(1) }

// Policy names accepted by NewFactory.
const (
	PolicyRandom = "random"
	PolicyHover  = "hover"
	PolicyIdle   = "idle"
)

// NewFactory resolves a policy by name. Random policies draw episode i
// from stream i of seed.
func NewFactory(name string, c *lander.Catalog, seed uint64) (Factory, error) {
	switch name {
	case PolicyRandom:
		return func(i int) Policy { return NewRandomPolicy(c, seed, uint64(i)) }, nil
	case PolicyHover:
		if !c.Contains(lander.Thrust(1)) {
			return nil, errors.Wrap(ErrUnknownPolicy, "hover needs a second thruster")
		}
		return func(int) Policy { return HoverPolicy{} }, nil
	case PolicyIdle:
		return func(int) Policy { return PolicyFunc(func(*lander.Snapshot) lander.Action { return lander.Idle() }) }, nil
	default:
		return nil, errors.Wrapf(ErrUnknownPolicy, "%q", name)
	}
}
