/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

// Package memstore is a small Redis-compatible server keeping data in memory.
// It speaks RESP2 and implements the string commands the CLI needs, plus
// PING, ECHO, EXISTS, AUTH, SELECT, FLUSHDB, CLIENT and QUIT.
package memstore

import (
	"bufio"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures a Server.
type Options struct {
	// RequirePass makes clients AUTH before any other command.
	RequirePass string
	Logger      logrus.FieldLogger
}

// Server is a Redis-compatible server backed by a Store.
type Server struct {
	listener net.Listener
	store    *Store
	opts     Options
	log      logrus.FieldLogger

	clientsMu sync.Mutex
	clients   map[net.Conn]struct{}

	wg      sync.WaitGroup
	stopped atomic.Bool
}

// Start creates and runs a server bound to addr.
// Use 127.0.0.1:0 to allocate an ephemeral port.
func Start(addr string, opts Options) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{
		listener: listener,
		store:    NewStore(),
		opts:     opts,
		log:      logger.WithField("addr", listener.Addr().String()),
		clients:  make(map[net.Conn]struct{}),
	}

	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Addr returns listener address host:port.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Store returns the data set served by s.
func (s *Server) Store() *Store {
	return s.store
}

// Close stops accepting, disconnects every client and waits for their
// goroutines to exit.
func (s *Server) Close() error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	err := s.listener.Close()

	s.clientsMu.Lock()
	for c := range s.clients {
		_ = c.Close()
	}
	s.clientsMu.Unlock()

	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopped.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.WithError(err).Warn("accept failed")
			time.Sleep(10 * time.Millisecond)
			continue
		}

		s.clientsMu.Lock()
		if s.stopped.Load() {
			s.clientsMu.Unlock()
			_ = conn.Close()
			return
		}
		s.clients[conn] = struct{}{}
		s.clientsMu.Unlock()

		s.wg.Add(1)
		go s.serve(conn)
	}
}

// session is the per-connection state.
type session struct {
	authed bool
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		_ = conn.Close()
	}()

	log := s.log.WithField("client", conn.RemoteAddr().String())
	log.Debug("client connected")

	br := bufio.NewReader(conn)
	bw := bufio.NewWriter(conn)
	out := replyWriter{w: bw}
	sess := &session{authed: s.opts.RequirePass == ""}

	for {
		args, err := readCommand(br)
		if err != nil {
			var perr protocolError
			if errors.As(err, &perr) {
				out.err("ERR Protocol error: " + perr.Error())
				_ = bw.Flush()
			}
			log.WithError(err).Debug("client disconnected")
			return
		}
		if len(args) == 0 {
			continue
		}

		quit := s.execute(sess, args, out)
		// Pipelined requests are answered in one write.
		if quit || br.Buffered() == 0 {
			if err = bw.Flush(); err != nil {
				return
			}
		}
		if quit {
			return
		}
	}
}

// execute runs one command and reports whether the connection should close.
func (s *Server) execute(sess *session, parts []string, out replyWriter) bool {
	name := strings.ToUpper(parts[0])
	args := parts[1:]

	if !sess.authed && name != "AUTH" && name != "HELLO" && name != "QUIT" {
		out.err("NOAUTH Authentication required.")
		return false
	}

	switch name {
	case "PING":
		switch len(args) {
		case 0:
			out.simple("PONG")
		case 1:
			out.bulk(args[0])
		default:
			wrongArity(out, "ping")
		}
	case "ECHO":
		if len(args) != 1 {
			wrongArity(out, "echo")
			return false
		}
		out.bulk(args[0])
	case "AUTH":
		s.auth(sess, args, out)
	case "SELECT":
		if len(args) != 1 {
			wrongArity(out, "select")
			return false
		}
		if args[0] != "0" {
			out.err("ERR DB index is out of range")
			return false
		}
		out.simple("OK")
	case "CLIENT":
		if len(args) == 0 {
			wrongArity(out, "client")
			return false
		}
		switch strings.ToUpper(args[0]) {
		case "SETINFO", "SETNAME":
			out.simple("OK")
		default:
			out.err("ERR unknown subcommand '" + args[0] + "'")
		}
	case "QUIT":
		out.simple("OK")
		return true
	case "GET":
		if len(args) != 1 {
			wrongArity(out, "get")
			return false
		}
		v, ok := s.store.Get(args[0])
		if !ok {
			out.null()
			return false
		}
		out.bulk(v)
	case "SET":
		s.set(args, out)
	case "SETEX":
		if len(args) != 3 {
			wrongArity(out, "setex")
			return false
		}
		seconds, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			out.err("ERR value is not an integer or out of range")
			return false
		}
		if seconds <= 0 {
			out.err("ERR invalid expire time in 'setex' command")
			return false
		}
		s.store.Set(args[0], args[2], time.Duration(seconds)*time.Second)
		out.simple("OK")
	case "TTL":
		if len(args) != 1 {
			wrongArity(out, "ttl")
			return false
		}
		out.integer(s.store.TTL(args[0]))
	case "DEL":
		if len(args) == 0 {
			wrongArity(out, "del")
			return false
		}
		out.integer(s.store.Del(args...))
	case "EXISTS":
		if len(args) == 0 {
			wrongArity(out, "exists")
			return false
		}
		out.integer(s.store.Exists(args...))
	case "KEYS":
		if len(args) != 1 {
			wrongArity(out, "keys")
			return false
		}
		out.array(s.store.Keys(args[0]))
	case "FLUSHDB":
		s.store.Flush()
		out.simple("OK")
	default:
		out.err("ERR unknown command '" + strings.ToLower(parts[0]) + "'")
	}
	return false
}

func (s *Server) auth(sess *session, args []string, out replyWriter) {
	var user, pass string
	switch len(args) {
	case 1:
		user, pass = "default", args[0]
	case 2:
		user, pass = args[0], args[1]
	default:
		wrongArity(out, "auth")
		return
	}

	if s.opts.RequirePass == "" {
		out.err("ERR AUTH <password> called without any password configured for the default user. Are you sure your configuration is correct?")
		return
	}
	if user != "default" || pass != s.opts.RequirePass {
		out.err("WRONGPASS invalid username-password pair or user is disabled.")
		return
	}
	sess.authed = true
	out.simple("OK")
}

// set handles SET key value [EX seconds | PX milliseconds].
func (s *Server) set(args []string, out replyWriter) {
	if len(args) != 2 && len(args) != 4 {
		if len(args) < 2 {
			wrongArity(out, "set")
			return
		}
		out.err("ERR syntax error")
		return
	}

	var ttl time.Duration
	if len(args) == 4 {
		n, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			out.err("ERR value is not an integer or out of range")
			return
		}
		if n <= 0 {
			out.err("ERR invalid expire time in 'set' command")
			return
		}
		switch strings.ToUpper(args[2]) {
		case "EX":
			ttl = time.Duration(n) * time.Second
		case "PX":
			ttl = time.Duration(n) * time.Millisecond
		default:
			out.err("ERR syntax error")
			return
		}
	}
	s.store.Set(args[0], args[1], ttl)
	out.simple("OK")
}

func wrongArity(out replyWriter, cmd string) {
	out.err("ERR wrong number of arguments for '" + cmd + "' command")
}
