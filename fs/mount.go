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

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jacobsa/syncutil"
	"github.com/kernelkit/vfscore/internal/logger"
)

// Filesystem wraps a driver's FilesystemOps with the bookkeeping the VFS
// core needs: a reference count (retained once by the mount itself, and
// once per open handle or in-flight call into it) and, optionally, the
// driver's own fs-level lock.
type Filesystem struct {
	RefCount
	Ops EntryOps

	// ID disambiguates this Filesystem from any other instance of the same
	// driver in logs and traces, e.g. when the same driver type is mounted
	// at more than one path.
	ID uuid.UUID
}

// EntryOps is the driver vtable, named at the Filesystem's field to keep
// call sites reading fs.Ops.Open(...) rather than fs.Open(...), since
// Filesystem itself is not an implementation of FilesystemOps.
type EntryOps = FilesystemOps

// NewFilesystem wraps ops as a mountable Filesystem, retained once on the
// caller's behalf (mirroring the "while a filesystem is mounted, the
// minimum ref-count it can have is 1" invariant).
func NewFilesystem(ops FilesystemOps) *Filesystem {
	fs := &Filesystem{Ops: ops, ID: uuid.New()}
	fs.RefCount.Init(1)
	return fs
}

func (fs *Filesystem) readWrite() bool {
	rw, ok := fs.Ops.(ReadWriteFs)
	return ok && rw.ReadWrite()
}

func (fs *Filesystem) exLock() {
	if l, ok := fs.Ops.(FsLocker); ok {
		l.FsExLock()
	}
}

func (fs *Filesystem) exUnlock() {
	if l, ok := fs.Ops.(FsLocker); ok {
		l.FsExUnlock()
	}
}

func (fs *Filesystem) shLock() {
	if l, ok := fs.Ops.(FsLocker); ok {
		l.FsShLock()
	}
}

func (fs *Filesystem) shUnlock() {
	if l, ok := fs.Ops.(FsLocker); ok {
		l.FsShUnlock()
	}
}

// mountPoint pairs a mounted Filesystem with the absolute path it's
// mounted at. path never ends in "/" except for the root mount "/".
type mountPoint struct {
	path string
	fs   *Filesystem
}

// MountTable is the set of currently mounted filesystems, keyed by mount
// path, with longest-prefix-match lookup. Its own bookkeeping (the mounts
// slice) is protected by an InvariantMutex, the same primitive the
// teacher's in-memory filesystem table uses for its inode/handle maps.
type MountTable struct {
	mu     syncutil.InvariantMutex
	mounts []*mountPoint // GUARDED_BY(mu)
}

// NewMountTable returns an empty mount table.
func NewMountTable() *MountTable {
	mt := &MountTable{}
	mt.mu = syncutil.NewInvariantMutex(mt.checkInvariants)
	return mt
}

// checkInvariants panics if two mountpoints share the same path. Run only
// when built with the invariant-checking build tag that syncutil gates
// its calls behind.
func (mt *MountTable) checkInvariants() {
	seen := make(map[string]bool, len(mt.mounts))
	for _, mp := range mt.mounts {
		if seen[mp.path] {
			panic("fs: duplicate mountpoint path " + mp.path)
		}
		seen[mp.path] = true
	}
}

// Mount registers fs at path, which must be an absolute, normalized path
// ("/", "/mnt", "/mnt/data", never with a trailing slash except "/").
// Mounting two filesystems at the same path is an error.
func (mt *MountTable) Mount(path string, fs *Filesystem) error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	for _, mp := range mt.mounts {
		if mp.path == path {
			return EEXIST
		}
	}

	mt.mounts = append(mt.mounts, &mountPoint{path: path, fs: fs})
	logger.Infof("mounted filesystem %s at %s", fs.ID, path)
	return nil
}

// Unmount removes the filesystem mounted at path. It does not check
// whether the filesystem still has open handles; that's the caller's
// responsibility, exactly as it is the kernel's responsibility in the
// original (busy-mount detection lives above the VFS layer).
func (mt *MountTable) Unmount(path string) error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	for i, mp := range mt.mounts {
		if mp.path == path {
			mt.mounts = append(mt.mounts[:i], mt.mounts[i+1:]...)
			logger.Infof("unmounted filesystem %s from %s", mp.fs.ID, path)
			return nil
		}
	}
	return ENOENT
}

// matchLen reports how many leading bytes of path are covered by a
// mountpoint registered at mpPath, or 0 if mpPath does not cover path at
// all. A mountpoint only ever matches whole path components: "/mnt"
// matches "/mnt" and "/mnt/x" but not "/mnt2".
func matchLen(mpPath, path string) int {
	if mpPath == "/" {
		return 1
	}
	if path == mpPath {
		return len(mpPath)
	}
	if strings.HasPrefix(path, mpPath+"/") {
		return len(mpPath) + 1
	}
	return 0
}

// Resolve finds the filesystem mounted over path by longest-prefix match,
// retains it, and returns the path remaining to resolve relative to that
// filesystem's own root (always starting with "/"). The caller must
// release the returned filesystem's reference count when done with it.
func (mt *MountTable) Resolve(path string) (*Filesystem, string, error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var best *mountPoint
	bestLen := 0

	for _, mp := range mt.mounts {
		if l := matchLen(mp.path, path); l > bestLen {
			best = mp
			bestLen = l
		}
	}

	if best == nil {
		return nil, "", ErrNoMount
	}

	best.fs.Retain()

	if bestLen < len(path) {
		return best.fs, path[bestLen-1:], nil
	}
	return best.fs, "/", nil
}
