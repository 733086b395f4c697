/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

// Package repl drives the read-parse-execute-print loop of the CLI.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/crrow/redis-cli/pkg/command"
	"github.com/crrow/redis-cli/pkg/connection"
)

// Prompt is printed before every interactive read.
const Prompt = "CMD>"

// Separator follows every successful result.
var Separator = strings.Repeat("-", 43)

const maxLineLen = 1 << 20

// Conn is a store connection owned by a single loop iteration.
type Conn interface {
	command.Store
	io.Closer
}

// ConnectFunc yields a fresh store connection.
type ConnectFunc func(ctx context.Context) (Conn, error)

// FromProvider adapts a connection provider to a ConnectFunc.
func FromProvider(p *connection.Provider) ConnectFunc {
	return func(ctx context.Context) (Conn, error) {
		conn, err := p.Conn(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// REPL reads commands, executes them and prints the results.
type REPL struct {
	connect ConnectFunc
	exec    *command.Executor
	log     logrus.FieldLogger
}

// New creates a REPL requesting one connection per command from connect.
func New(connect ConnectFunc, exec *command.Executor, logger logrus.FieldLogger) *REPL {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &REPL{connect: connect, exec: exec, log: logger}
}

// Run executes one-shot or interactive mode depending on args and returns
// the process exit code. If args are empty, it enters interactive mode.
//
// QUIT makes Run return 0 immediately without printing anything else; the
// caller is expected to exit with that code.
func (r *REPL) Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	st := newStyles(out, errOut)
	if len(args) > 0 {
		return r.runOneShot(ctx, strings.Join(args, " "), st, out, errOut)
	}
	return r.runInteractive(ctx, in, st, out, errOut)
}

func (r *REPL) runOneShot(ctx context.Context, line string, st styles, out, errOut io.Writer) int {
	result, err := r.runLine(ctx, line)
	if errors.Is(err, command.ErrQuit) {
		return 0
	}
	if !r.print(st, out, errOut, result, err) {
		return 1
	}
	return 0
}

func (r *REPL) runInteractive(ctx context.Context, in io.Reader, st styles, out, errOut io.Writer) int {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLen)

	for {
		_, _ = fmt.Fprint(out, st.prompt.Render(Prompt)+" ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				_, _ = fmt.Fprintln(errOut, st.err.Render("failed to read input: "+err.Error()))
				return 1
			}
			return 0
		}

		result, err := r.runLine(ctx, scanner.Text())
		if errors.Is(err, command.ErrQuit) {
			return 0
		}
		r.print(st, out, errOut, result, err)
	}
}

// runLine parses and executes one line on a connection of its own.
func (r *REPL) runLine(ctx context.Context, line string) (string, error) {
	cmd, err := command.Parse(line)
	if err != nil {
		return "", err
	}

	var store command.Store
	if cmd.Kind.UsesStore() {
		conn, err := r.connect(ctx)
		if err != nil {
			r.log.WithError(err).Debug("connection unavailable")
			return "", err
		}
		defer func() { _ = conn.Close() }()
		store = conn
	}
	return r.exec.Execute(ctx, store, cmd)
}

// print writes a result or an error and reports whether the command succeeded.
// A failed operation log write still shows the command's own output.
func (r *REPL) print(st styles, out, errOut io.Writer, result string, err error) bool {
	var logErr *command.LogWriteError
	if err == nil || errors.As(err, &logErr) {
		_, _ = fmt.Fprintln(out, result)
		_, _ = fmt.Fprintln(out, st.separator.Render(Separator))
	}
	if err != nil {
		_, _ = fmt.Fprintln(errOut, st.err.Render(err.Error()))
		return false
	}
	return true
}

type styles struct {
	prompt    lipgloss.Style
	separator lipgloss.Style
	err       lipgloss.Style
}

// newStyles binds styles to their writers, so output that is not a terminal
// stays plain text.
func newStyles(out, errOut io.Writer) styles {
	o := lipgloss.NewRenderer(out)
	e := lipgloss.NewRenderer(errOut)
	return styles{
		prompt:    o.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		separator: o.NewStyle().Foreground(lipgloss.Color("#626262")),
		err:       e.NewStyle().Foreground(lipgloss.Color("#FF0000")),
	}
}
