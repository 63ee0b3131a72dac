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

package logger

import "io"

// AsyncLogger decouples log producers from the underlying writer (typically
// a rotating file) by buffering writes on a channel and draining them on a
// dedicated goroutine. Unlike the pipe writer it is modeled on, it never
// drops writes: Close blocks until every buffered write has reached the
// underlying writer, so a caller that shuts down right after logging an
// error can trust the line made it out.
type AsyncLogger struct {
	w    io.Writer
	ch   chan []byte
	done chan struct{}
}

// NewAsyncLogger starts a logger that writes to w from its own goroutine,
// buffering up to bufferSize pending writes before Write starts blocking
// the caller.
func NewAsyncLogger(w io.Writer, bufferSize int) *AsyncLogger {
	l := &AsyncLogger{
		w:    w,
		ch:   make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Write implements io.Writer. The slice is copied before being handed to
// the draining goroutine, since callers (fmt.Fprintln and friends) may
// reuse their buffer after Write returns.
func (l *AsyncLogger) Write(p []byte) (int, error) {
	data := make([]byte, len(p))
	copy(data, p)
	l.ch <- data
	return len(p), nil
}

func (l *AsyncLogger) run() {
	defer close(l.done)
	for data := range l.ch {
		// A write error here has nowhere further to go; the underlying
		// writer (lumberjack, a file, stderr) is the last line of defense.
		_, _ = l.w.Write(data)
	}
}

// Close stops accepting new writes and blocks until every write already
// queued has been flushed to the underlying writer.
func (l *AsyncLogger) Close() error {
	close(l.ch)
	<-l.done
	if c, ok := l.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
