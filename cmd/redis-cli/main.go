/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	rediscli "github.com/crrow/redis-cli"
	"github.com/crrow/redis-cli/pkg/command"
	"github.com/crrow/redis-cli/pkg/config"
	"github.com/crrow/redis-cli/pkg/connection"
	"github.com/crrow/redis-cli/pkg/repl"
)

type options struct {
	hostname string
	port     string
	auth     string
	opLog    string
	logLevel string
}

func main() {
	if err := config.LoadEnv(".env"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	exitCode := 0
	cmd := newRootCommand(&exitCode)
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "redis-cli error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func newRootCommand(exitCode *int) *cobra.Command {
	defaults := config.FromEnv()
	opts := options{}

	cmd := &cobra.Command{
		Use:   "redis-cli [command [args...]]",
		Short: "Interactive client for a Redis-compatible key-value store",
		Long: `redis-cli reads one command per line and runs it against the store.

Commands: KEYS <pattern>, GET <key>, SET <key> <value>,
SETEX <key> <value> <seconds>, TTL <key>, DEL <key>,
LOG <command> [args...], QUIT.

With positional arguments, runs that single command and exits.`,
		Version:       rediscli.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			*exitCode = run(opts, args)
			return nil
		},
	}

	flags := cmd.Flags()
	// Everything after the first positional argument belongs to the command,
	// so "SETEX k v -5" is not read as flags.
	flags.SetInterspersed(false)
	// -h is the hostname; help stays available as --help.
	flags.StringVarP(&opts.hostname, "hostname", "h", defaults.Hostname, "store host name")
	flags.StringVarP(&opts.port, "port", "p", defaults.Port, "store port")
	flags.StringVarP(&opts.auth, "auth", "a", defaults.Auth, "store password")
	flags.StringVar(&opts.opLog, "oplog", defaults.OpLog, "file the LOG command appends to")
	flags.StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "diagnostic log level (debug, info, warn, error)")
	return cmd
}

func run(opts options, args []string) int {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(opts.logLevel)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", opts.logLevel, err)
		return 1
	}
	logger.SetLevel(level)

	cfg, err := config.New(opts.hostname, opts.port, opts.auth)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to parse configuration. Error => %v\n", err)
		return 1
	}

	provider, err := connection.Open(cfg, logger)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize Redis Client. Error => %v\n", err)
		return 1
	}
	// No Close: the process exits as soon as the loop returns, QUIT included.
	exec := command.NewExecutor(command.NewOpLog(opts.opLog), logger)
	loop := repl.New(repl.FromProvider(provider), exec, logger)
	return loop.Run(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}
