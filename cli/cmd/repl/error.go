package repl

import (
	"errors"

	"github.com/ardnew/tup/lang"
)

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")

	ErrNoSource      = lang.NewError("no source")
	ErrNoContext     = lang.NewError("no such context")
	ErrUnknownAction = lang.NewError("unknown command")
)
