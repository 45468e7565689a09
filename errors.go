package tabletop

import "errors"

// Validation errors. Operations wrap these with context; test with errors.Is.
var (
	ErrOutOfRange       = errors.New("tabletop: value out of range")
	ErrInvalidBounds    = errors.New("tabletop: lower bound exceeds upper bound")
	ErrInvalidValue     = errors.New("tabletop: invalid value")
	ErrAlreadyContained = errors.New("tabletop: component already contained in this container")
	ErrHasParent        = errors.New("tabletop: component already has a parent")
	ErrIndexOutOfRange  = errors.New("tabletop: index out of range")
	ErrCycle            = errors.New("tabletop: adding component would create a cycle")
)
