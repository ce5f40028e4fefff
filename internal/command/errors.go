package command

import "errors"

// ErrValidation is returned when an up/down sequence, or an individual
// command, fails structural validation (wrong shape, missing required
// fields). It always terminates the migration run.
var ErrValidation = errors.New("validation error")

// ErrUnknownCommand is returned when a command map's single key does not
// match any supported dispatch key.
var ErrUnknownCommand = errors.New("don't know how to process command")
