package lander

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind discriminates the closed set of lander actions.
type Kind uint8

const (
	KindIdle Kind = iota
	KindTurnLeft
	KindTurnRight
	KindThrust
)

// Canonical action names, used by text front-ends and the wire protocol.
const (
	NameIdle      = "idle"
	NameTurnLeft  = "turnLeft"
	NameTurnRight = "turnRight"
	NameThrust    = "thrust"
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return NameIdle
	case KindTurnLeft:
		return NameTurnLeft
	case KindTurnRight:
		return NameTurnRight
	case KindThrust:
		return NameThrust
	default:
		return "unknown"
	}
}

// Action selects one step of control. Index is only meaningful for
// KindThrust and names the configured thrust magnitude.
type Action struct {
	Kind  Kind
	Index int
}

func Idle() Action        { return Action{Kind: KindIdle} }
func TurnLeft() Action    { return Action{Kind: KindTurnLeft} }
func TurnRight() Action   { return Action{Kind: KindTurnRight} }
func Thrust(i int) Action { return Action{Kind: KindThrust, Index: i} }

// String returns the canonical name: idle, turnLeft, turnRight or thrust<i>.
func (a Action) String() string {
	if a.Kind == KindThrust {
		return NameThrust + strconv.Itoa(a.Index)
	}
	return a.Kind.String()
}

// ParseAction maps a canonical name back to an action. Thrust indexes are
// not checked against any configuration here.
func ParseAction(name string) (Action, error) {
	switch name {
	case NameIdle:
		return Idle(), nil
	case NameTurnLeft:
		return TurnLeft(), nil
	case NameTurnRight:
		return TurnRight(), nil
	}
	if rest, ok := strings.CutPrefix(name, NameThrust); ok && rest != "" {
		i, err := strconv.Atoi(rest)
		if err == nil && i >= 0 {
			return Thrust(i), nil
		}
	}
	return Action{}, errors.Wrapf(ErrUnknownAction, "%q", name)
}

func (a Action) MarshalText() ([]byte, error) {
	if a.Kind > KindThrust {
		return nil, errors.Wrapf(ErrUnknownAction, "kind %d", a.Kind)
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Catalog is the fixed, ordered action set of one configuration:
// idle, turnLeft, turnRight, then thrust0..thrustN-1.
type Catalog struct {
	actions []Action
	byName  map[string]int
}

// NewCatalog builds the catalog once for c.
func NewCatalog(c Config) *Catalog {
	actions := make([]Action, 0, 3+len(c.thrusts))
	actions = append(actions, Idle(), TurnLeft(), TurnRight())
	for i := range c.thrusts {
		actions = append(actions, Thrust(i))
	}
	byName := make(map[string]int, len(actions))
	for i, a := range actions {
		byName[a.String()] = i
	}
	return &Catalog{actions: actions, byName: byName}
}

// Actions returns a copy of the ordered action list.
func (c *Catalog) Actions() []Action { return append([]Action(nil), c.actions...) }

func (c *Catalog) Len() int { return len(c.actions) }

// At returns the i-th action of the catalog.
func (c *Catalog) At(i int) (Action, error) {
	if i < 0 || i >= len(c.actions) {
		return Action{}, errors.Wrapf(ErrInvalidArgument, "action index %d outside [0,%d)", i, len(c.actions))
	}
	return c.actions[i], nil
}

// Lookup resolves a canonical action name.
func (c *Catalog) Lookup(name string) (Action, error) {
	i, ok := c.byName[name]
	if !ok {
		return Action{}, errors.Wrapf(ErrUnknownAction, "%q", name)
	}
	return c.actions[i], nil
}

// Contains reports whether a is selectable in this catalog.
func (c *Catalog) Contains(a Action) bool {
	_, ok := c.byName[a.String()]
	return ok
}

// Names lists the canonical names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.actions))
	for i, a := range c.actions {
		names[i] = a.String()
	}
	return names
}
