/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

// Package config holds the connection settings of the CLI and the defaults
// its flags start from.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// ErrInvalidPort indicates the port text is not an unsigned 16-bit integer.
var ErrInvalidPort = errors.New("invalid port")

// Scheme is the URL scheme understood by the store client.
const Scheme = "redis"

// Config describes where the store lives and how to authenticate.
// An empty Credential means no credential.
type Config struct {
	Host       string
	Port       uint16
	Credential string
}

// New builds a Config, parsing portText as an unsigned 16-bit decimal integer.
func New(host, portText, credential string) (Config, error) {
	n, err := strconv.ParseUint(portText, 10, 16)
	if err != nil {
		return Config{}, fmt.Errorf("%w %q: want a decimal integer in 0-65535", ErrInvalidPort, portText)
	}
	return Config{Host: host, Port: uint16(n), Credential: credential}, nil
}

// URL renders the connection URL. The trailing /0 selects logical database 0.
// Host and credential are not escaped.
func (c Config) URL() string {
	if c.Credential != "" {
		return fmt.Sprintf("%s://:%s@%s:%d/0", Scheme, c.Credential, c.Host, c.Port)
	}
	return fmt.Sprintf("%s://%s:%d/0", Scheme, c.Host, c.Port)
}

// String returns host:port. It never contains the credential.
func (c Config) String() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}
