package explorer

import (
	"strings"

	"github.com/zeusync/lander/internal/core/lander"
)

type command uint8

const (
	cmdStep command = iota
	cmdReset
	cmdQuit
	cmdHelp
)

// Shorthand keys shared by both explorers.
var shorthands = map[string]string{
	"a": "turnLeft",
	"d": "turnRight",
	"w": "thrust0",
	"s": "thrust1",
	"x": "idle",
}

// resolve maps one line or key of input to a command. Full action names
// are accepted as well as the shorthands.
func resolve(input string, c *lander.Catalog) (command, lander.Action, error) {
	input = strings.TrimSpace(input)
	switch input {
	case "reset", "r":
		return cmdReset, lander.Action{}, nil
	case "quit", "exit", "q":
		return cmdQuit, lander.Action{}, nil
	case "help", "?":
		return cmdHelp, lander.Action{}, nil
	}
	if name, ok := shorthands[input]; ok {
		input = name
	}
	a, err := c.Lookup(input)
	if err != nil {
		return cmdStep, lander.Action{}, err
	}
	return cmdStep, a, nil
}

const helpText = `keys: a=turnLeft d=turnRight w=thrust0 s=thrust1 x=idle
      any action name (idle, turnLeft, turnRight, thrustN)
      r/reset  q/quit  ?/help`
