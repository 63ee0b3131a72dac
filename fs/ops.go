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

import "time"

// Inode is an opaque handle a driver uses to identify a directory entry
// across calls. The VFS core never looks inside it; it only ever hands a
// value it previously received from GetEntry back to the same driver.
type Inode = interface{}

// EntryType classifies what a directory entry names.
type EntryType int

const (
	EntryNone EntryType = iota
	EntryFile
	EntryDir
	EntrySymlink
	EntryCharDev
	EntryBlockDev
	EntryPipe
)

// DirEntry is what a driver returns from GetEntry: the inode identifying
// the entry (nil if no such entry exists) and its type.
type DirEntry struct {
	Inode Inode
	Type  EntryType
}

// ResolvedPath is what the resolver hands to a FilesystemOps method: the
// result of walking every path component through GetEntry, plus the
// terminal component's name (which the driver method interprets - opening,
// creating, removing, ...).
type ResolvedPath struct {
	Fs *Filesystem

	// ParentDir is the inode of the directory that directly contains
	// LastComponent.
	ParentDir Inode

	// LastComponent is the final path component. An empty LastComponent
	// means the path was exactly "/": ParentDir is the root itself and
	// Entry is the root entry.
	LastComponent string

	// Entry is what GetEntry returned for LastComponent inside ParentDir.
	// Its Inode is nil when no such entry exists, which lets a driver
	// method such as Open with O_CREAT or Mkdir create it.
	Entry DirEntry
}

// Stat is the subset of file metadata the dispatcher hands back from
// Fstat/Stat, independent of any particular driver's richer attributes.
type Stat struct {
	Inode   uint64
	Size    int64
	Mode    uint32
	Type    EntryType
	ModTime time.Time
	Nlink   uint32
}

// FilesystemOps is the vtable a driver implements to back a mounted
// filesystem. Every method beyond GetEntry and Open is optional: a driver
// that doesn't implement one of the small marker interfaces below (e.g.
// Mkdirer) simply doesn't support that operation, and the dispatcher
// returns EPERM/EROFS/ENOTTY accordingly, exactly as the hook-is-nil
// checks did.
type FilesystemOps interface {
	// GetEntry resolves a single path component inside dir. dir == nil
	// requests the filesystem's root entry, in which case name is ignored.
	GetEntry(dir Inode, name string) (DirEntry, error)

	// Open opens rp, whose Entry.Inode is nil if LastComponent does not
	// exist yet, with the given flags/mode. The returned FileOps is the new
	// handle.
	Open(rp *ResolvedPath, flags int, mode uint32) (FileOps, error)
}

// ReadWriteFs is implemented by filesystems mounted read-write. A driver
// that doesn't implement it is treated as read-only: Mkdir/Rmdir/Unlink
// all fail with EROFS regardless of whether the driver also implements
// Mkdirer/Rmdirer/Unlinker.
type ReadWriteFs interface {
	FilesystemOps
	ReadWrite() bool
}

type Mkdirer interface {
	Mkdir(rp *ResolvedPath, mode uint32) error
}

type Rmdirer interface {
	Rmdir(rp *ResolvedPath) error
}

type Unlinker interface {
	Unlink(rp *ResolvedPath) error
}

// FsLocker is implemented by filesystems that need their own internal
// exclusive/shared lock held around a resolve-then-operate sequence (the
// "fs-lock", as distinct from a per-handle lock). Optional: most drivers
// either have no internal state to protect at this granularity, or protect
// it some other way.
type FsLocker interface {
	FsExLock()
	FsExUnlock()
	FsShLock()
	FsShUnlock()
}

// FileOps is the vtable a driver implements for an open handle. Close is
// the only mandatory method; every other capability is detected with a
// type assertion against the marker interfaces below, mirroring the
// hook-is-nil checks in the dispatcher this package is modeled on.
type FileOps interface {
	Close() error
}

type Reader interface {
	Read(buf []byte) (int, error)
}

type Writer interface {
	Write(buf []byte) (int, error)
}

type Seeker interface {
	Seek(offset int64, whence int) (int64, error)
}

type Duper interface {
	Dup() (FileOps, error)
}

type Ioctler interface {
	Ioctl(request uintptr, arg interface{}) (int, error)
}

type Fcntler interface {
	Fcntl(cmd int, arg int) (int, error)
}

type Stater interface {
	Fstat() (Stat, error)
}

// DirEntryFunc is called once per directory entry by a DirReader. It
// returns false to stop enumeration early (the caller's buffer is full).
type DirEntryFunc func(name string, e DirEntry) (more bool)

type DirReader interface {
	// GetDents calls cb for every entry from the first one, in an order
	// that stays the same across calls while the directory is unchanged,
	// until cb returns false. The caller skips entries it already returned
	// and advances the handle's position itself.
	GetDents(cb DirEntryFunc) error
}

// HandleLocker is implemented by handles whose driver wants exclusive/
// shared locking held around individual read/write/ioctl calls.
type HandleLocker interface {
	ExLock()
	ExUnlock()
	ShLock()
	ShUnlock()
}

// ReadinessReporter lets a handle participate in readiness polling (the
// analogue of select/poll on a file descriptor). A handle that doesn't
// implement it is always considered ready for read and write, and never
// for exceptional conditions - the same default the hook-is-nil checks
// produced.
type ReadinessReporter interface {
	ReadReady() bool
	WriteReady() bool
	ExceptReady() bool
}
