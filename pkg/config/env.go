/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted for flag defaults.
const (
	EnvHostname = "REDIS_CLI_HOSTNAME"
	EnvPort     = "REDIS_CLI_PORT"
	EnvAuth     = "REDIS_CLI_AUTH"
	EnvOpLog    = "REDIS_CLI_OPLOG"
	EnvLogLevel = "REDIS_CLI_LOG_LEVEL"
)

// Built-in defaults used when neither flags nor environment say otherwise.
const (
	DefaultHostname  = "127.0.0.1"
	DefaultPort      = "6379"
	DefaultOpLogPath = "redis-op.log"
	DefaultLogLevel  = "warn"
)

// Defaults are the starting values of the CLI flags.
type Defaults struct {
	Hostname string
	Port     string
	Auth     string
	OpLog    string
	LogLevel string
}

// LoadEnv loads variables from a dotenv file into the process environment.
// Variables already set are left alone. A missing file is not an error.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// FromEnv resolves Defaults from the environment, falling back to the
// built-in values.
func FromEnv() Defaults {
	return Defaults{
		Hostname: getenv(EnvHostname, DefaultHostname),
		Port:     getenv(EnvPort, DefaultPort),
		Auth:     os.Getenv(EnvAuth),
		OpLog:    getenv(EnvOpLog, DefaultOpLogPath),
		LogLevel: getenv(EnvLogLevel, DefaultLogLevel),
	}
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
