// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the process-wide logging sink used throughout
// the VFS core and its drivers. It is deliberately small: a severity
// filter in front of a standard library *log.Logger, with the rotating
// file and asynchronous draining wired up by Init.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/jacobsa/timeutil"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Severity ranks match cfg.LogSeverity's ranking so the two packages agree
// on ordering without logger importing cfg (which would create a cycle
// once cfg needs to log its own parse errors).
type Severity int

const (
	SeverityTrace Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityOff
)

var (
	mu      sync.Mutex
	std     = log.New(os.Stderr, "", 0)
	clock   timeutil.Clock = timeutil.RealClock()
	closer  io.Closer
	current atomic.Int32
)

func init() {
	current.Store(int32(SeverityInfo))
}

// Config describes where and how the logger should write, mirroring
// cfg.LoggingConfig field for field so callers can fill it from that struct.
type Config struct {
	Severity      Severity
	FilePath      string
	MaxFileSizeMb int
	BackupCount   int
	Compress      bool
}

// Init (re)configures the package-wide logger. When cfg.FilePath is empty,
// logs continue to go to stderr; otherwise a lumberjack-rotated file is
// opened and writes are funneled through an AsyncLogger so that a slow
// disk does not block the calling goroutine's dispatch path until 1024
// writes are pending; past that, logging blocks until the disk catches up.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	current.Store(int32(cfg.Severity))

	if closer != nil {
		_ = closer.Close()
		closer = nil
	}

	var w io.Writer = os.Stderr
	if cfg.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxFileSizeMb,
			MaxBackups: cfg.BackupCount,
			Compress:   cfg.Compress,
		}
		al := NewAsyncLogger(lj, 1024)
		w = al
		closer = al
	}

	std = log.New(w, "", 0)
	return nil
}

// Close flushes and releases any file opened by Init. Safe to call even if
// Init was never called or only logged to stderr.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

func enabled(s Severity) bool {
	return int32(s) >= current.Load()
}

func logf(s Severity, tag, format string, args ...interface{}) {
	if !enabled(s) {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	ts := clock.Now().Format("2006-01-02T15:04:05.000Z07:00")
	std.Printf("%s [%s] %s", ts, tag, fmt.Sprintf(format, args...))
}

func Tracef(format string, args ...interface{})   { logf(SeverityTrace, "TRACE", format, args...) }
func Debugf(format string, args ...interface{})   { logf(SeverityDebug, "DEBUG", format, args...) }
func Infof(format string, args ...interface{})    { logf(SeverityInfo, "INFO", format, args...) }
func Warnf(format string, args ...interface{})    { logf(SeverityWarning, "WARN", format, args...) }
func Errorf(format string, args ...interface{})   { logf(SeverityError, "ERROR", format, args...) }
