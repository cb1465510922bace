package lander

import "errors"

// Simulator errors. All of them signal caller misuse; the engine itself
// never fails on in-range input.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidConfig   = errors.New("invalid world configuration")
	ErrUnknownAction   = errors.New("unknown action")
	ErrUnknownTask     = errors.New("unknown task")
)
