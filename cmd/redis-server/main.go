/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	rediscli "github.com/crrow/redis-cli"
	"github.com/crrow/redis-cli/pkg/memstore"
)

func main() {
	var (
		addr        string
		requirePass string
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:           "redis-server",
		Short:         "In-memory Redis-compatible server for local development",
		Version:       rediscli.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)

			srv, err := memstore.Start(addr, memstore.Options{RequirePass: requirePass, Logger: logrus.StandardLogger()})
			if err != nil {
				return fmt.Errorf("start redis server failed: %w", err)
			}
			defer func() { _ = srv.Close() }()

			logrus.WithField("addr", srv.Addr()).Info("redis-server listening")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			if err = srv.Close(); err != nil {
				logrus.WithError(err).Warn("shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:6379", "listen address")
	cmd.Flags().StringVar(&requirePass, "requirepass", "", "password clients must AUTH with")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	if err := cmd.Execute(); err != nil {
		logrus.WithError(err).Error("redis-server failed")
		os.Exit(1)
	}
}
