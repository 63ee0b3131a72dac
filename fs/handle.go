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

package fs

import "sync/atomic"

// fdCloseOnExec is the only descriptor flag the core tracks itself, set
// from O_CLOEXEC at Open time and never inherited across Dup.
const fdCloseOnExec int32 = 1 << 0

// Handle is an open file description: a driver-provided FileOps together
// with the bookkeeping the VFS core itself owns on every handle,
// regardless of which driver produced it - which filesystem it belongs to
// (so Close can release that filesystem's reference) and the per-open-file
// flags passed to Open.
//
// A Handle is not safe for concurrent use by multiple callers the way a
// Go value normally would be: like a Unix file descriptor, the caller is
// expected to serialize its own use of a single Handle, and any locking
// the driver wants around individual calls is opt-in via HandleLocker.
type Handle struct {
	fs    *Filesystem
	ops   FileOps
	flags int32

	// fdFlags holds descriptor flags such as FD_CLOEXEC that, unlike
	// fl_flags (the open(2) flags), are NOT inherited across Dup.
	fdFlags int32

	// pos is the number of directory entries GetDents has already returned
	// on this handle; the next GetDents skips that many. It starts at zero
	// and advances by one per entry written out, never for an entry that
	// did not fit the buffer.
	pos atomic.Uint64
}

func newHandle(fs *Filesystem, ops FileOps, flags int) *Handle {
	h := &Handle{fs: fs, ops: ops, flags: int32(flags)}
	return h
}

// Flags returns the open(2) flags the handle was opened with.
func (h *Handle) Flags() int {
	return int(h.flags)
}

// Pos returns the handle's current directory-enumeration cursor.
func (h *Handle) Pos() uint64 {
	return h.pos.Load()
}

// CloseOnExec reports whether the handle's close-on-exec descriptor flag
// was set by Open (from O_CLOEXEC). Dup always produces a handle for which
// this reports false, regardless of the source handle.
func (h *Handle) CloseOnExec() bool {
	return h.fdFlags&fdCloseOnExec != 0
}
