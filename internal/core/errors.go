package core

import "errors"

// File-level errors abort an import run before any household is processed.
var (
	ErrEmptyFile      = errors.New("empty or malformed file")
	ErrUnreadableFile = errors.New("unreadable file")
	ErrFileTooLarge   = errors.New("file too large")
)

// Household-level errors are recorded in the tally; the run continues.
var (
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNoMembers         = errors.New("household has no members")
	ErrMultipleHeads     = errors.New("household has more than one head")
)

// Directory administration errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrHeadMember    = errors.New("head of household cannot be removed")
	ErrInvalidStatus = errors.New("invalid verification status")
)

// ErrTooManyImports is returned when the import limiter is saturated.
var ErrTooManyImports = errors.New("too many imports in progress")
