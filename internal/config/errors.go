package config

import "errors"

var (
	ErrUnknownShell     = errors.New("unknown shell kind")
	ErrConflictingModes = errors.New("yolo and unsafe are mutually exclusive")
	ErrBoundsViolation  = errors.New("config value out of bounds")
)
