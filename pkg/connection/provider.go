/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

// Package connection opens the store client and hands out one verified
// connection per command.
package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/crrow/redis-cli/pkg/command"
	"github.com/crrow/redis-cli/pkg/config"
)

var (
	// ErrOpen indicates the client handle could not be constructed.
	ErrOpen = errors.New("failed to open store client")
	// ErrConnection indicates no connection could be obtained from the server.
	ErrConnection = errors.New("failed to get a connection")
)

// Provider owns the store client and yields fresh connections on demand.
type Provider struct {
	client *redis.Client
	addr   string
	log    logrus.FieldLogger
}

// Open builds the connection URL from cfg and creates a client for it.
// No network traffic happens until Conn is called.
func Open(cfg config.Config, logger logrus.FieldLogger) (*Provider, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	opts, err := redis.ParseURL(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	// Failures surface to the user as-is.
	opts.MaxRetries = -1

	p := &Provider{
		client: redis.NewClient(opts),
		addr:   cfg.String(),
		log:    logger.WithField("addr", cfg.String()),
	}
	p.log.Debug("store client opened")
	return p, nil
}

// Conn takes one connection from the client and checks it with PING.
// The caller owns the returned Conn and must Close it.
func (p *Provider) Conn(ctx context.Context) (*Conn, error) {
	c := p.client.Conn()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%w from %s: %v", ErrConnection, p.addr, err)
	}
	p.log.Debug("connection acquired")
	return &Conn{conn: c}, nil
}

// Close releases the client and its pooled connections.
func (p *Provider) Close() error {
	return p.client.Close()
}

// Conn is a single store connection. It implements command.Store.
type Conn struct {
	conn *redis.Conn
}

var _ command.Store = (*Conn)(nil)

// Keys returns the keys matching a glob-style pattern.
func (c *Conn) Keys(ctx context.Context, pattern string) ([]string, error) {
	return c.conn.Keys(ctx, pattern).Result()
}

// Get reads a string value. A missing key yields command.ErrKeyNotFound.
func (c *Conn) Get(ctx context.Context, key string) (string, error) {
	v, err := c.conn.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", command.ErrKeyNotFound
	}
	return v, err
}

// Set writes key without an expiry.
func (c *Conn) Set(ctx context.Context, key, value string) error {
	return c.conn.Set(ctx, key, value, 0).Err()
}

// SetEx writes key with an expiry.
func (c *Conn) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.conn.SetEx(ctx, key, value, ttl).Err()
}

// TTL returns the remaining time to live of key.
func (c *Conn) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := c.conn.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// The server answers -2 for a missing key and -1 for a key without expiry.
	switch ttl {
	case -2:
		return 0, command.ErrKeyNotFound
	case -1:
		return 0, command.ErrNoExpiry
	}
	return ttl, nil
}

// Del removes key. Deleting a missing key is not an error.
func (c *Conn) Del(ctx context.Context, key string) error {
	return c.conn.Del(ctx, key).Err()
}

// Close returns the connection to the client pool.
func (c *Conn) Close() error {
	return c.conn.Close()
}
