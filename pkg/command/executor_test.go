/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

package command

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type entry struct {
	value  string
	expiry time.Duration
}

// fakeStore is an in-memory Store that records every call.
type fakeStore struct {
	kv    map[string]entry
	calls []string
	err   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{kv: make(map[string]entry)}
}

func (s *fakeStore) Keys(_ context.Context, pattern string) ([]string, error) {
	s.calls = append(s.calls, "KEYS "+pattern)
	if s.err != nil {
		return nil, s.err
	}
	var keys []string
	for k := range s.kv {
		if pattern == "*" || strings.HasPrefix(k, strings.TrimSuffix(pattern, "*")) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	s.calls = append(s.calls, "GET "+key)
	if s.err != nil {
		return "", s.err
	}
	e, ok := s.kv[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return e.value, nil
}

func (s *fakeStore) Set(_ context.Context, key, value string) error {
	s.calls = append(s.calls, "SET "+key)
	if s.err != nil {
		return s.err
	}
	s.kv[key] = entry{value: value}
	return nil
}

func (s *fakeStore) SetEx(_ context.Context, key, value string, ttl time.Duration) error {
	s.calls = append(s.calls, "SETEX "+key)
	if s.err != nil {
		return s.err
	}
	s.kv[key] = entry{value: value, expiry: ttl}
	return nil
}

func (s *fakeStore) TTL(_ context.Context, key string) (time.Duration, error) {
	s.calls = append(s.calls, "TTL "+key)
	if s.err != nil {
		return 0, s.err
	}
	e, ok := s.kv[key]
	if !ok {
		return 0, ErrKeyNotFound
	}
	if e.expiry == 0 {
		return 0, ErrNoExpiry
	}
	return e.expiry, nil
}

func (s *fakeStore) Del(_ context.Context, key string) error {
	s.calls = append(s.calls, "DEL "+key)
	if s.err != nil {
		return s.err
	}
	delete(s.kv, key)
	return nil
}

func newTestExecutor(t *testing.T) (*Executor, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redis-op.log")
	logger, _ := test.NewNullLogger()
	return NewExecutor(NewOpLog(path), logger), path
}

func run(t *testing.T, e *Executor, store Store, line string) (string, error) {
	t.Helper()
	cmd, err := Parse(line)
	require.NoError(t, err)
	return e.Execute(context.Background(), store, cmd)
}

func TestExecutorSetGetRoundTrip(t *testing.T) {
	e, _ := newTestExecutor(t)
	store := newFakeStore()

	out, err := run(t, e, store, "SET k v")
	require.NoError(t, err)
	require.Equal(t, "Successfully set: k:v", out)

	out, err = run(t, e, store, "GET k")
	require.NoError(t, err)
	require.Equal(t, "GOT :: k => v", out)
}

func TestExecutorDelThenGetNotFound(t *testing.T) {
	e, _ := newTestExecutor(t)
	store := newFakeStore()

	_, err := run(t, e, store, "SET k v")
	require.NoError(t, err)

	out, err := run(t, e, store, "DEL k")
	require.NoError(t, err)
	require.Equal(t, "Successfully deleted: k", out)

	_, err = run(t, e, store, "GET k")
	require.ErrorIs(t, err, ErrKeyNotFound)
	require.Equal(t, "failed to get key: k: key not found", err.Error())
}

func TestExecutorSetExAndTTL(t *testing.T) {
	e, _ := newTestExecutor(t)
	store := newFakeStore()

	out, err := run(t, e, store, "SETEX k v 5")
	require.NoError(t, err)
	require.Equal(t, "Successfully set: k:v with TTL = 5", out)
	require.Equal(t, 5*time.Second, store.kv["k"].expiry)

	out, err = run(t, e, store, "TTL k")
	require.NoError(t, err)
	require.Equal(t, "TTL of k ===> 5", out)
}

func TestExecutorTTLErrors(t *testing.T) {
	e, _ := newTestExecutor(t)
	store := newFakeStore()

	_, err := run(t, e, store, "TTL missing")
	require.ErrorIs(t, err, ErrKeyNotFound)

	_, err = run(t, e, store, "SET k v")
	require.NoError(t, err)
	_, err = run(t, e, store, "TTL k")
	require.ErrorIs(t, err, ErrNoExpiry)
	require.Contains(t, err.Error(), "failed to retrieve TTL of k")
}

func TestExecutorSetExInvalidSeconds(t *testing.T) {
	e, _ := newTestExecutor(t)
	store := newFakeStore()

	for _, line := range []string{
		"SETEX k v soon",
		"SETEX k v -5",
		"SETEX k v +5",
		"SETEX k v 0x10",
		"SETEX k v 5.0",
		"SETEX k v 99999999999999999999",
		"SETEX k v 9223372037",
	} {
		_, err := run(t, e, store, line)
		require.ErrorIs(t, err, ErrInvalidTTL, line)
	}
	require.Empty(t, store.calls)
}

func TestExecutorSetExSecondsAreDecimal(t *testing.T) {
	tests := []struct {
		seconds string
		want    time.Duration
		out     string
	}{
		{seconds: "5", want: 5 * time.Second, out: "Successfully set: k:v with TTL = 5"},
		{seconds: "010", want: 10 * time.Second, out: "Successfully set: k:v with TTL = 10"},
		{seconds: "08", want: 8 * time.Second, out: "Successfully set: k:v with TTL = 8"},
		{seconds: "0", want: 0, out: "Successfully set: k:v with TTL = 0"},
	}

	for _, tt := range tests {
		t.Run(tt.seconds, func(t *testing.T) {
			e, _ := newTestExecutor(t)
			store := newFakeStore()

			out, err := run(t, e, store, "SETEX k v "+tt.seconds)
			require.NoError(t, err)
			require.Equal(t, tt.out, out)
			require.Equal(t, tt.want, store.kv["k"].expiry)
		})
	}
}

func TestExecutorKeys(t *testing.T) {
	e, _ := newTestExecutor(t)
	store := newFakeStore()

	out, err := run(t, e, store, "KEYS *")
	require.NoError(t, err)
	require.Equal(t, "Matching keys: []", out)

	_, err = run(t, e, store, "SET user:1 a")
	require.NoError(t, err)
	out, err = run(t, e, store, "KEYS user:*")
	require.NoError(t, err)
	require.Equal(t, `Matching keys: ["user:1"]`, out)

	_, err = run(t, e, store, "SET user:2 b")
	require.NoError(t, err)
	out, err = run(t, e, store, "KEYS user:*")
	require.NoError(t, err)
	require.Contains(t, []string{
		`Matching keys: ["user:1", "user:2"]`,
		`Matching keys: ["user:2", "user:1"]`,
	}, out)
}

func TestExecutorWrapsStoreErrors(t *testing.T) {
	e, _ := newTestExecutor(t)
	store := newFakeStore()
	store.err = errors.New("connection reset by peer")

	tests := []struct {
		line string
		want string
	}{
		{line: "KEYS a*", want: "failed to find keys: a*: connection reset by peer"},
		{line: "GET k", want: "failed to get key: k: connection reset by peer"},
		{line: "SET k v", want: "failed to set key: k -> v: connection reset by peer"},
		{line: "SETEX k v 3", want: "failed to set key: k -> v: connection reset by peer"},
		{line: "TTL k", want: "failed to retrieve TTL of k: connection reset by peer"},
		{line: "DEL k", want: "failed to delete key: k: connection reset by peer"},
	}
	for _, tt := range tests {
		_, err := run(t, e, store, tt.line)
		require.EqualError(t, err, tt.want)
		require.NotContains(t, err.Error(), "\n")
	}
}

func TestExecutorWrongArityTouchesNothing(t *testing.T) {
	e, path := newTestExecutor(t)
	store := newFakeStore()

	lines := []string{
		"KEYS", "KEYS a b",
		"GET", "GET a b",
		"SET k", "SET k v extra",
		"SETEX k v", "SETEX k v 1 2",
		"TTL", "TTL a b",
		"DEL", "DEL a b",
		"LOG", "LOG GET",
	}
	for _, line := range lines {
		_, err := run(t, e, store, line)
		var syntaxErr *SyntaxError
		require.ErrorAs(t, err, &syntaxErr, line)
		require.ErrorIs(t, err, ErrSyntax)
	}
	require.Empty(t, store.calls)
	require.Empty(t, store.kv)
	require.NoFileExists(t, path)
}

func TestExecutorQuit(t *testing.T) {
	e, _ := newTestExecutor(t)

	out, err := e.Execute(context.Background(), nil, Command{Kind: KindQuit})
	require.ErrorIs(t, err, ErrQuit)
	require.Empty(t, out)
}

func TestExecutorLogAppendsRecord(t *testing.T) {
	e, path := newTestExecutor(t)
	fixed := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	e.opLog.WithClock(func() time.Time { return fixed })
	store := newFakeStore()

	direct, err := run(t, e, newFakeStore(), "SET k v")
	require.NoError(t, err)

	out, err := run(t, e, store, "log set k v")
	require.NoError(t, err)
	require.Equal(t, direct, out)
	require.Equal(t, "v", store.kv["k"].value)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[2026-10-16T09:30:00Z]\nCMD: set k v\nOUT: Successfully set: k:v\n\n", string(data))

	_, err = run(t, e, store, "LOG GET k")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(data), "CMD: "))
	require.True(t, strings.HasSuffix(string(data), "CMD: GET k\nOUT: GOT :: k => v\n\n"))
}

func TestExecutorLogInnerFailureWritesNothing(t *testing.T) {
	e, path := newTestExecutor(t)
	store := newFakeStore()

	_, err := run(t, e, store, "LOG GET missing")
	require.ErrorIs(t, err, ErrKeyNotFound)

	_, err = run(t, e, store, "LOG FLUSHALL now")
	require.ErrorIs(t, err, ErrUnrecognizedCommand)

	_, err = run(t, e, store, "LOG SET k")
	require.ErrorIs(t, err, ErrSyntax)

	require.NoFileExists(t, path)
}

func TestExecutorLogRejectsNesting(t *testing.T) {
	e, path := newTestExecutor(t)
	store := newFakeStore()

	_, err := run(t, e, store, "LOG LOG SET k v")
	require.ErrorIs(t, err, ErrSyntax)
	require.Contains(t, err.Error(), "LOG cannot wrap LOG")

	_, err = run(t, e, store, "LOG QUIT now")
	require.ErrorIs(t, err, ErrSyntax)
	require.NotErrorIs(t, err, ErrQuit)

	require.Empty(t, store.calls)
	require.NoFileExists(t, path)
}

func TestExecutorLogWriteFailure(t *testing.T) {
	dir := t.TempDir()
	logger, _ := test.NewNullLogger()
	// A directory cannot be opened for appending.
	e := NewExecutor(NewOpLog(dir), logger)
	store := newFakeStore()

	out, err := run(t, e, store, "LOG SET k v")
	var logErr *LogWriteError
	require.ErrorAs(t, err, &logErr)
	require.Equal(t, "Successfully set: k:v", out)
	require.Equal(t, out, logErr.Output)
	require.Equal(t, "v", store.kv["k"].value)
}

func TestExecutorLogsDebugFields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	e := NewExecutor(NewOpLog(filepath.Join(t.TempDir(), "op.log")), logger)

	_, err := run(t, e, newFakeStore(), "SET k v")
	require.NoError(t, err)

	last := hook.LastEntry()
	require.NotNil(t, last)
	require.Equal(t, logrus.DebugLevel, last.Level)
	require.Equal(t, "SET", last.Data["cmd"])
	require.Equal(t, 2, last.Data["args"])
	require.Equal(t, "SET k v", last.Data["line"])
}
