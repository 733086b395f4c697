/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

package command

import (
	"fmt"
	"os"
	"time"
)

// OpLog is an append-only text file of LOG records. The file is opened for
// every record and closed right after; no handle is kept between commands.
type OpLog struct {
	path string
	now  func() time.Time
}

// NewOpLog returns an operation log writing to path.
func NewOpLog(path string) *OpLog {
	return &OpLog{path: path, now: time.Now}
}

// WithClock replaces the timestamp source.
func (l *OpLog) WithClock(now func() time.Time) *OpLog {
	l.now = now
	return l
}

// Path returns the log file location.
func (l *OpLog) Path() string {
	return l.path
}

// Append writes one record:
//
//	[timestamp]
//	CMD: <line>
//	OUT: <output>
//
// followed by a blank line. The file is created if absent.
func (l *OpLog) Append(line, output string) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	record := fmt.Sprintf("[%s]\nCMD: %s\nOUT: %s\n\n", l.now().Format(time.RFC3339), line, output)
	if _, err = f.WriteString(record); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
