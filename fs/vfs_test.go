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

package fs_test

import (
	"context"
	"testing"

	"github.com/kernelkit/vfscore/fs"
	"github.com/kernelkit/vfscore/fs/vfstest"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

func newTestVFS(t *testing.T) *fs.VFS {
	t.Helper()
	v := fs.New()
	require.NoError(t, v.Mounts.Mount("/", fs.NewFilesystem(vfstest.New(true))))
	return v
}

// S1: create, write, close, re-open, read back.
func TestScenarioWriteThenReadBack(t *testing.T) {
	v := newTestVFS(t)
	ctx := context.Background()

	h, err := v.Open(ctx, "/greeting.txt", unix.O_CREAT|unix.O_RDWR, 0644)
	require.NoError(t, err)

	n, err := v.Write(h, []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, v.Close(h))

	h2, err := v.Open(ctx, "/greeting.txt", unix.O_RDONLY, 0)
	require.NoError(t, err)
	defer v.Close(h2)

	buf := make([]byte, 16)
	n, err = v.Read(h2, buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
}

// S2: mkdir, then open a file inside it.
func TestScenarioMkdirThenCreateInside(t *testing.T) {
	v := newTestVFS(t)
	ctx := context.Background()

	require.NoError(t, v.Mkdir(ctx, "/sub", 0755))

	h, err := v.Open(ctx, "/sub/file.txt", unix.O_CREAT|unix.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = v.Write(h, []byte("x"))
	require.NoError(t, err)
	require.NoError(t, v.Close(h))

	st, err := v.Stat(ctx, "/sub/file.txt")
	require.NoError(t, err)
	require.Equal(t, int64(1), st.Size)
}

// S3: unlink removes a file; subsequent open fails with ENOENT.
func TestScenarioUnlinkThenOpenFails(t *testing.T) {
	v := newTestVFS(t)
	ctx := context.Background()

	h, err := v.Open(ctx, "/doomed.txt", unix.O_CREAT|unix.O_WRONLY, 0644)
	require.NoError(t, err)
	require.NoError(t, v.Close(h))

	require.NoError(t, v.Unlink(ctx, "/doomed.txt"))

	_, err = v.Open(ctx, "/doomed.txt", unix.O_RDONLY, 0)
	require.Equal(t, fs.ENOENT, err)
}

// Property: rmdir on a non-empty directory fails.
func TestScenarioRmdirNonEmptyFails(t *testing.T) {
	v := newTestVFS(t)
	ctx := context.Background()

	require.NoError(t, v.Mkdir(ctx, "/full", 0755))
	h, err := v.Open(ctx, "/full/a.txt", unix.O_CREAT|unix.O_WRONLY, 0644)
	require.NoError(t, err)
	require.NoError(t, v.Close(h))

	err = v.Rmdir(ctx, "/full")
	require.Equal(t, fs.ENOTEMPTY, err)
}

// S5: dup shares the underlying handle and its own close is independent.
func TestScenarioDupIndependentClose(t *testing.T) {
	v := newTestVFS(t)
	ctx := context.Background()

	h, err := v.Open(ctx, "/dup.txt", unix.O_CREAT|unix.O_RDWR, 0644)
	require.NoError(t, err)

	dup, err := v.Dup(h)
	require.NoError(t, err)
	require.NoError(t, v.Close(h))

	_, err = v.Write(dup, []byte("still alive"))
	require.NoError(t, err)
	require.NoError(t, v.Close(dup))
}

// S6: getdents returns entries across multiple small-buffer calls.
func TestScenarioGetdentsResumesAcrossCalls(t *testing.T) {
	v := newTestVFS(t)
	ctx := context.Background()

	require.NoError(t, v.Mkdir(ctx, "/dir", 0755))
	for _, name := range []string{"a", "b", "c"} {
		h, err := v.Open(ctx, "/dir/"+name, unix.O_CREAT|unix.O_WRONLY, 0644)
		require.NoError(t, err)
		require.NoError(t, v.Close(h))
	}

	h, err := v.Open(ctx, "/dir", unix.O_RDONLY|unix.O_DIRECTORY, 0)
	require.NoError(t, err)
	defer v.Close(h)

	total := 0
	buf := make([]byte, 32) // too small for all three entries at once
	for {
		n, err := v.Getdents(h, buf)
		require.NoError(t, err)
		if n == 0 {
			break
		}
		total += n
	}
	require.Greater(t, total, 0)
}

// S4: O_ASYNC is rejected as invalid, O_TMPFILE as not supported.
func TestScenarioOpenRejectsAsyncAndTmpfile(t *testing.T) {
	v := newTestVFS(t)
	ctx := context.Background()

	_, err := v.Open(ctx, "/x", unix.O_ASYNC, 0)
	require.Equal(t, fs.EINVAL, err)

	_, err = v.Open(ctx, "/x", unix.O_TMPFILE|unix.O_WRONLY, 0)
	require.Equal(t, fs.EOPNOTSUPP, err)
}

// Property 5: reading a write-only handle or writing a read-only handle
// fails with EBADF rather than reaching the driver.
func TestReadWriteGatedByOpenFlags(t *testing.T) {
	v := newTestVFS(t)
	ctx := context.Background()

	wOnly, err := v.Open(ctx, "/w.txt", unix.O_CREAT|unix.O_WRONLY, 0644)
	require.NoError(t, err)
	defer v.Close(wOnly)

	_, err = v.Read(wOnly, make([]byte, 8))
	require.Equal(t, fs.EBADF, err)

	rOnly, err := v.Open(ctx, "/w.txt", unix.O_RDONLY, 0)
	require.NoError(t, err)
	defer v.Close(rOnly)

	_, err = v.Write(rOnly, []byte("nope"))
	require.Equal(t, fs.EBADF, err)
}

// Property 8: dup resets the close-on-exec descriptor flag while keeping
// open-flags identical.
func TestDupResetsCloseOnExec(t *testing.T) {
	v := newTestVFS(t)
	ctx := context.Background()

	h, err := v.Open(ctx, "/cloexec.txt", unix.O_CREAT|unix.O_RDWR|unix.O_CLOEXEC, 0644)
	require.NoError(t, err)
	defer v.Close(h)
	require.True(t, h.CloseOnExec())

	dup, err := v.Dup(h)
	require.NoError(t, err)
	defer v.Close(dup)

	require.False(t, dup.CloseOnExec())
	require.Equal(t, h.Flags(), dup.Flags())
}

// Property: dup'd handle survives the original's close (refcounting keeps
// the filesystem alive until the last handle referencing it closes).
func TestDupKeepsFilesystemRetained(t *testing.T) {
	v := newTestVFS(t)
	ctx := context.Background()

	h, err := v.Open(ctx, "/retain.txt", unix.O_CREAT|unix.O_RDWR, 0644)
	require.NoError(t, err)

	dup, err := v.Dup(h)
	require.NoError(t, err)

	require.NoError(t, v.Close(h))
	_, err = v.Stat(ctx, "/retain.txt")
	require.NoError(t, err)

	require.NoError(t, v.Close(dup))
}

// Property: Dup checks for a nil handle before touching it.
func TestDupNilHandle(t *testing.T) {
	v := newTestVFS(t)
	_, err := v.Dup(nil)
	require.Equal(t, fs.EBADF, err)
}

// Property: Stat returns the error from opening a missing path instead of
// papering over it with an unconditional success.
func TestStatPropagatesOpenError(t *testing.T) {
	v := newTestVFS(t)
	_, err := v.Stat(context.Background(), "/does/not/exist")
	require.Equal(t, fs.ENOENT, err)
}

// Property: concurrent writers to distinct files don't corrupt each
// other's data; the dispatcher's per-handle locking only ever serializes a
// single handle against itself.
func TestConcurrentWritesToDistinctFiles(t *testing.T) {
	v := newTestVFS(t)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		name := "/concurrent-" + string(rune('a'+i)) + ".txt"
		g.Go(func() error {
			h, err := v.Open(ctx, name, unix.O_CREAT|unix.O_WRONLY, 0644)
			if err != nil {
				return err
			}
			defer v.Close(h)
			_, err = v.Write(h, []byte("payload"))
			return err
		})
	}
	require.NoError(t, g.Wait())
}

// Longest-prefix mount matching: a filesystem mounted deeper than root
// shadows the root filesystem for paths under it.
func TestMountLongestPrefixMatch(t *testing.T) {
	v := fs.New()
	require.NoError(t, v.Mounts.Mount("/", fs.NewFilesystem(vfstest.New(true))))
	require.NoError(t, v.Mounts.Mount("/mnt", fs.NewFilesystem(vfstest.New(true))))

	ctx := context.Background()
	h, err := v.Open(ctx, "/mnt/inner.txt", unix.O_CREAT|unix.O_WRONLY, 0644)
	require.NoError(t, err)
	require.NoError(t, v.Close(h))

	_, err = v.Open(ctx, "/inner.txt", unix.O_RDONLY, 0)
	require.Equal(t, fs.ENOENT, err)
}
