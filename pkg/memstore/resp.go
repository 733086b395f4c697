/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

package memstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxBulkLen = 512 << 20 // 512 MiB
const maxArrayLen = 1 << 20  // 1M elements

// protocolError is a malformed request. The server reports it and drops the
// connection since the stream can no longer be framed.
type protocolError string

func (e protocolError) Error() string { return string(e) }

// readCommand reads one request: a RESP2 array of bulk strings, or an inline
// command line. An empty inline line yields no arguments.
func readCommand(r *bufio.Reader) ([]string, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if len(line) == 0 || line[0] != '*' {
		return strings.Fields(line), nil
	}

	n, err := strconv.Atoi(line[1:])
	if err != nil || n > maxArrayLen {
		return nil, protocolError("invalid multibulk length")
	}
	if n <= 0 {
		return nil, nil
	}

	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		line, err = readLine(r)
		if err != nil {
			return nil, err
		}
		if len(line) == 0 || line[0] != '$' {
			return nil, protocolError(fmt.Sprintf("expected '$', got %q", line))
		}
		size, err := strconv.Atoi(line[1:])
		if err != nil || size < 0 || size > maxBulkLen {
			return nil, protocolError("invalid bulk length")
		}

		buf := make([]byte, size+2)
		if _, err = io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		if buf[size] != '\r' || buf[size+1] != '\n' {
			return nil, protocolError("bulk string missing CRLF terminator")
		}
		args = append(args, string(buf[:size]))
	}
	return args, nil
}

func readLine(r *bufio.Reader) (string, error) {
	raw, err := r.ReadSlice('\n')
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return "", protocolError("too big inline request")
		}
		return "", err
	}
	line := strings.TrimSuffix(string(raw), "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// replyWriter encodes RESP2 replies onto a buffered connection.
type replyWriter struct {
	w *bufio.Writer
}

func (rw replyWriter) simple(s string) {
	_, _ = rw.w.WriteString("+" + singleLine(s) + "\r\n")
}

func (rw replyWriter) err(s string) {
	_, _ = rw.w.WriteString("-" + singleLine(s) + "\r\n")
}

func (rw replyWriter) integer(n int64) {
	_, _ = rw.w.WriteString(":" + strconv.FormatInt(n, 10) + "\r\n")
}

func (rw replyWriter) bulk(s string) {
	_, _ = rw.w.WriteString("$" + strconv.Itoa(len(s)) + "\r\n" + s + "\r\n")
}

func (rw replyWriter) null() {
	_, _ = rw.w.WriteString("$-1\r\n")
}

func (rw replyWriter) array(items []string) {
	_, _ = rw.w.WriteString("*" + strconv.Itoa(len(items)) + "\r\n")
	for _, item := range items {
		rw.bulk(item)
	}
}

// singleLine keeps simple strings and errors free of CR and LF.
func singleLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
