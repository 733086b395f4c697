/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

// Package command parses CLI input lines into typed commands and executes
// them against a key-value store.
package command

import (
	"fmt"
	"strings"
)

// Kind identifies a supported CLI command.
type Kind int

const (
	KindKeys Kind = iota
	KindGet
	KindSet
	KindSetEx
	KindTTL
	KindDel
	KindQuit
	KindLog
)

var kindNames = map[string]Kind{
	"KEYS":  KindKeys,
	"GET":   KindGet,
	"SET":   KindSet,
	"SETEX": KindSetEx,
	"TTL":   KindTTL,
	"DEL":   KindDel,
	"QUIT":  KindQuit,
	"LOG":   KindLog,
}

func (k Kind) String() string {
	switch k {
	case KindKeys:
		return "KEYS"
	case KindGet:
		return "GET"
	case KindSet:
		return "SET"
	case KindSetEx:
		return "SETEX"
	case KindTTL:
		return "TTL"
	case KindDel:
		return "DEL"
	case KindQuit:
		return "QUIT"
	case KindLog:
		return "LOG"
	default:
		return "UNKNOWN"
	}
}

// arity describes how many arguments a kind accepts.
// min == max means an exact count; max < 0 means unbounded.
type arity struct {
	min, max int
	usage    string
}

var arities = map[Kind]arity{
	KindKeys:  {1, 1, "KEYS <pattern>"},
	KindGet:   {1, 1, "GET <key>"},
	KindSet:   {2, 2, "SET <key> <value>"},
	KindSetEx: {3, 3, "SETEX <key> <value> <seconds>"},
	KindTTL:   {1, 1, "TTL <key>"},
	KindDel:   {1, 1, "DEL <key>"},
	KindQuit:  {0, -1, "QUIT"},
	KindLog:   {2, -1, "LOG <command> [args...]"},
}

func (a arity) accepts(n int) bool {
	return n >= a.min && (a.max < 0 || n <= a.max)
}

// Usage returns the expected syntax of the kind.
func (k Kind) Usage() string {
	return arities[k].usage
}

// UsesStore reports whether executing the kind needs a store connection.
func (k Kind) UsesStore() bool {
	return k != KindQuit
}

// Command is one parsed input line.
type Command struct {
	Kind Kind
	Args []string
}

// Parse splits line on whitespace and maps the first token, in any case,
// to a Kind. The remaining tokens are kept verbatim. Arity is not checked.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty input", ErrUnrecognizedCommand)
	}

	kind, ok := kindNames[strings.ToUpper(fields[0])]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnrecognizedCommand, fields[0])
	}
	return Command{Kind: kind, Args: fields[1:]}, nil
}

// line renders the command back to a single input line.
func (c Command) line() string {
	return strings.Join(append([]string{c.Kind.String()}, c.Args...), " ")
}

func (c Command) checkArity() error {
	if !arities[c.Kind].accepts(len(c.Args)) {
		return &SyntaxError{Kind: c.Kind, Got: len(c.Args)}
	}
	return nil
}
