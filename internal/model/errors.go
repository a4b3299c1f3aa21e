package model

import "errors"

// User errors (exit code 1 at the command surface).
var (
	ErrEmptyContent = errors.New("cons: capture content is empty")
	ErrEmptyQuery   = errors.New("cons: search query is empty")
	ErrAliasChain   = errors.New("cons: alias target is itself an alias; chains are not permitted")
)

// Store/logic errors (exit code 2 at the command surface).
var (
	ErrNoteNotFound = errors.New("cons: note not found")
	ErrTagNotFound  = errors.New("cons: tag not found")
)
