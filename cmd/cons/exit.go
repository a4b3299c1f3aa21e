package main

import (
	"errors"

	"cons/internal/model"
)

// exitCodeFor maps an error back to the process exit code: 1 for user
// errors (bad input), 2 for anything else (store/internal failure).
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, model.ErrEmptyContent),
		errors.Is(err, model.ErrEmptyQuery),
		errors.Is(err, model.ErrAliasChain):
		return 1
	default:
		return 2
	}
}
