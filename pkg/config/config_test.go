/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewParsesPort(t *testing.T) {
	cfg, err := New("127.0.0.1", "6379", "")
	require.NoError(t, err)
	require.Equal(t, Config{Host: "127.0.0.1", Port: 6379}, cfg)

	cfg, err = New("localhost", "0", "")
	require.NoError(t, err)
	require.Equal(t, uint16(0), cfg.Port)

	cfg, err = New("localhost", "65535", "")
	require.NoError(t, err)
	require.Equal(t, uint16(65535), cfg.Port)

	// Leading zeros are decimal, not octal.
	cfg, err = New("localhost", "06379", "")
	require.NoError(t, err)
	require.Equal(t, uint16(6379), cfg.Port)

	cfg, err = New("localhost", "08080", "")
	require.NoError(t, err)
	require.Equal(t, uint16(8080), cfg.Port)
}

func TestNewRejectsBadPort(t *testing.T) {
	tests := []struct {
		name string
		port string
	}{
		{name: "empty", port: ""},
		{name: "word", port: "redis"},
		{name: "negative", port: "-1"},
		{name: "too large", port: "65536"},
		{name: "trailing junk", port: "6379x"},
		{name: "hex", port: "0x18EB"},
		{name: "float", port: "6379.0"},
		{name: "signed", port: "+6379"},
		{name: "padded", port: " 6379"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("127.0.0.1", tt.port, "")
			require.ErrorIs(t, err, ErrInvalidPort)
		})
	}
}

func TestURL(t *testing.T) {
	cfg, err := New("10.0.0.5", "6380", "")
	require.NoError(t, err)
	require.Equal(t, "redis://10.0.0.5:6380/0", cfg.URL())

	cfg, err = New("10.0.0.5", "6380", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "redis://:s3cret@10.0.0.5:6380/0", cfg.URL())
}

func TestStringHidesCredential(t *testing.T) {
	cfg, err := New("db.local", "6379", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "db.local:6379", cfg.String())
	require.NotContains(t, cfg.String(), "s3cret")
}

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{EnvHostname, EnvPort, EnvAuth, EnvOpLog, EnvLogLevel} {
		t.Setenv(key, "")
	}

	got := FromEnv()
	require.Equal(t, Defaults{
		Hostname: DefaultHostname,
		Port:     DefaultPort,
		OpLog:    DefaultOpLogPath,
		LogLevel: DefaultLogLevel,
	}, got)
}

func TestLoadEnvFile(t *testing.T) {
	for _, key := range []string{EnvHostname, EnvPort} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	// An explicitly set variable wins over the file.
	t.Setenv(EnvAuth, "from-process")

	path := filepath.Join(t.TempDir(), ".env")
	content := EnvHostname + "=cache.internal\n" + EnvPort + "=7000\n" + EnvAuth + "=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, LoadEnv(path))
	got := FromEnv()
	require.Equal(t, "cache.internal", got.Hostname)
	require.Equal(t, "7000", got.Port)
	require.Equal(t, "from-process", got.Auth)
}

func TestLoadEnvMissingFile(t *testing.T) {
	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "absent.env")))
}
