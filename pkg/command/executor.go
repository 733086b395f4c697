/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

package command

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Store is the set of key-value operations the executor needs.
//
// Get and TTL return ErrKeyNotFound for a missing key; TTL returns
// ErrNoExpiry for a key without an expiry.
type Store interface {
	Keys(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Del(ctx context.Context, key string) error
}

// Executor runs parsed commands against a Store.
// It keeps no state between calls other than the operation log file on disk,
// and is not safe for concurrent use.
type Executor struct {
	opLog *OpLog
	log   logrus.FieldLogger
}

// NewExecutor creates an executor appending LOG records to opLog.
func NewExecutor(opLog *OpLog, logger logrus.FieldLogger) *Executor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Executor{opLog: opLog, log: logger}
}

// Execute runs cmd and returns the human-readable result.
//
// QUIT returns ErrQuit and never touches the store, so store may be nil for it.
// Wrong arity returns a *SyntaxError before any store call.
func (e *Executor) Execute(ctx context.Context, store Store, cmd Command) (string, error) {
	if err := cmd.checkArity(); err != nil {
		return "", err
	}
	e.log.WithFields(logrus.Fields{
		"cmd":  cmd.Kind.String(),
		"args": len(cmd.Args),
		"line": cmd.line(),
	}).Debug("executing command")

	switch cmd.Kind {
	case KindKeys:
		pattern := cmd.Args[0]
		keys, err := store.Keys(ctx, pattern)
		if err != nil {
			return "", fmt.Errorf("failed to find keys: %s: %w", pattern, err)
		}
		return "Matching keys: " + formatKeys(keys), nil
	case KindGet:
		key := cmd.Args[0]
		value, err := store.Get(ctx, key)
		if err != nil {
			return "", fmt.Errorf("failed to get key: %s: %w", key, err)
		}
		return fmt.Sprintf("GOT :: %s => %s", key, value), nil
	case KindSet:
		key, value := cmd.Args[0], cmd.Args[1]
		if err := store.Set(ctx, key, value); err != nil {
			return "", fmt.Errorf("failed to set key: %s -> %s: %w", key, value, err)
		}
		return fmt.Sprintf("Successfully set: %s:%s", key, value), nil
	case KindSetEx:
		key, value := cmd.Args[0], cmd.Args[1]
		seconds, err := parseSeconds(cmd.Args[2])
		if err != nil {
			return "", err
		}
		if err := store.SetEx(ctx, key, value, time.Duration(seconds)*time.Second); err != nil {
			return "", fmt.Errorf("failed to set key: %s -> %s: %w", key, value, err)
		}
		return fmt.Sprintf("Successfully set: %s:%s with TTL = %d", key, value, seconds), nil
	case KindTTL:
		key := cmd.Args[0]
		ttl, err := store.TTL(ctx, key)
		if err != nil {
			return "", fmt.Errorf("failed to retrieve TTL of %s: %w", key, err)
		}
		return fmt.Sprintf("TTL of %s ===> %d", key, int64(ttl/time.Second)), nil
	case KindDel:
		key := cmd.Args[0]
		if err := store.Del(ctx, key); err != nil {
			return "", fmt.Errorf("failed to delete key: %s: %w", key, err)
		}
		return fmt.Sprintf("Successfully deleted: %s", key), nil
	case KindQuit:
		return "", ErrQuit
	case KindLog:
		return e.executeLogged(ctx, store, strings.Join(cmd.Args, " "))
	default:
		return "", fmt.Errorf("%w: %s", ErrUnrecognizedCommand, cmd.Kind)
	}
}

// executeLogged parses and runs line, then appends a record of it to the
// operation log. Nothing is recorded when the inner command fails.
func (e *Executor) executeLogged(ctx context.Context, store Store, line string) (string, error) {
	inner, err := Parse(line)
	if err != nil {
		return "", err
	}
	if inner.Kind == KindLog || inner.Kind == KindQuit {
		return "", &SyntaxError{Kind: KindLog, Reason: "LOG cannot wrap " + inner.Kind.String()}
	}

	out, err := e.Execute(ctx, store, inner)
	if err != nil {
		return "", err
	}
	if err := e.opLog.Append(line, out); err != nil {
		return out, &LogWriteError{Path: e.opLog.Path(), Output: out, Err: err}
	}
	e.log.WithField("path", e.opLog.Path()).Debug("appended operation log record")
	return out, nil
}

// formatKeys renders keys as ["a", "b"].
func formatKeys(keys []string) string {
	quoted := make([]string, len(keys))
	for i, key := range keys {
		quoted[i] = strconv.Quote(key)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func parseSeconds(text string) (uint64, error) {
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q: not an unsigned decimal integer", ErrInvalidTTL, text)
	}
	if n > math.MaxInt64/uint64(time.Second) {
		return 0, fmt.Errorf("%w %q: too large", ErrInvalidTTL, text)
	}
	return n, nil
}
