/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

package command

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedCommand indicates an empty line or an unknown keyword.
	ErrUnrecognizedCommand = errors.New("unrecognized command")
	// ErrSyntax is matched by every *SyntaxError.
	ErrSyntax = errors.New("syntax error")
	// ErrQuit asks the caller to terminate the process with exit code 0.
	ErrQuit = errors.New("quit requested")
	// ErrKeyNotFound is returned by a Store when the key does not exist.
	ErrKeyNotFound = errors.New("key not found")
	// ErrNoExpiry is returned by Store.TTL when the key has no expiry set.
	ErrNoExpiry = errors.New("key has no associated expiry")
	// ErrInvalidTTL indicates the SETEX seconds argument is not an unsigned integer.
	ErrInvalidTTL = errors.New("invalid TTL")
)

// SyntaxError reports a command invoked with the wrong arguments.
type SyntaxError struct {
	Kind Kind
	Got  int
	// Reason overrides the default argument-count message.
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("syntax error: %s, usage: %s", e.Reason, e.Kind.Usage())
	}
	return fmt.Sprintf("syntax error: %s takes %s, got %d, usage: %s",
		e.Kind, describeArity(arities[e.Kind]), e.Got, e.Kind.Usage())
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

func describeArity(a arity) string {
	switch {
	case a.max < 0:
		return fmt.Sprintf("at least %d argument(s)", a.min)
	default:
		return fmt.Sprintf("%d argument(s)", a.min)
	}
}

// LogWriteError reports that a LOG inner command succeeded but its record
// could not be written. Output holds the inner command's result.
type LogWriteError struct {
	Path   string
	Output string
	Err    error
}

func (e *LogWriteError) Error() string {
	return fmt.Sprintf("failed to write operation log %s: %v", e.Path, e.Err)
}

func (e *LogWriteError) Unwrap() error { return e.Err }
