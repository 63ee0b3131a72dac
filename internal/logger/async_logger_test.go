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

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestAsyncLoggerWritesReachUnderlyingWriterBeforeClose(t *testing.T) {
	buf := &syncBuffer{}
	al := NewAsyncLogger(buf, 4)

	n, err := al.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.Equal(t, 6, n)

	require.NoError(t, al.Close())
	assert.Equal(t, "hello\n", buf.String())
}

func TestAsyncLoggerClosesUnderlyingCloser(t *testing.T) {
	var closed bool
	al := NewAsyncLogger(closerFunc{syncBuffer: &syncBuffer{}, onClose: func() { closed = true }}, 1)
	require.NoError(t, al.Close())
	assert.True(t, closed)
}

type closerFunc struct {
	*syncBuffer
	onClose func()
}

func (c closerFunc) Close() error { c.onClose(); return nil }
