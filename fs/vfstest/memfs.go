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

// Package vfstest provides an in-memory driver implementing
// fs.FilesystemOps/fs.FileOps, for exercising the dispatch layer in tests
// without a real backing store.
package vfstest

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kernelkit/vfscore/clock"
	"github.com/kernelkit/vfscore/fs"
	"golang.org/x/sys/unix"
)

var inoCounter atomic.Uint64

func nextIno() uint64 {
	return inoCounter.Add(1)
}

// node is the inode type MemFS hands back as fs.Inode values. It is never
// interpreted by the VFS core; only MemFS's own methods look inside it.
type node struct {
	mu sync.RWMutex

	ino      uint64
	name     string
	typ      fs.EntryType
	mode     uint32
	data     []byte
	children map[string]*node
	modTime  time.Time
}

func newNode(name string, typ fs.EntryType, mode uint32, clk clock.RealClock) *node {
	n := &node{
		ino:     nextIno(),
		name:    name,
		typ:     typ,
		mode:    mode,
		modTime: clk.Now(),
	}
	if typ == fs.EntryDir {
		n.children = make(map[string]*node)
	}
	return n
}

func (n *node) entry() fs.DirEntry {
	return fs.DirEntry{Inode: n, Type: n.typ}
}

// MemFS is a driver-owned, in-memory tree of files and directories.
type MemFS struct {
	root *node
	rw   bool
	clk  clock.RealClock
}

// New returns a MemFS with a single root directory. readWrite controls
// whether Mkdir/Rmdir/Unlink/O_CREAT are permitted.
func New(readWrite bool) *MemFS {
	return &MemFS{
		root: newNode("", fs.EntryDir, 0755, clock.RealClock{}),
		rw:   readWrite,
	}
}

// ReadWrite implements fs.ReadWriteFs.
func (m *MemFS) ReadWrite() bool { return m.rw }

func asNode(i fs.Inode) *node {
	if i == nil {
		return nil
	}
	n, _ := i.(*node)
	return n
}

// GetEntry implements fs.FilesystemOps.
func (m *MemFS) GetEntry(dir fs.Inode, name string) (fs.DirEntry, error) {
	if dir == nil {
		return m.root.entry(), nil
	}

	dn := asNode(dir)
	dn.mu.RLock()
	defer dn.mu.RUnlock()

	if dn.typ != fs.EntryDir {
		return fs.DirEntry{}, nil
	}

	child, ok := dn.children[name]
	if !ok {
		return fs.DirEntry{}, nil
	}
	return child.entry(), nil
}

// Open implements fs.FilesystemOps. It understands O_CREAT, O_EXCL,
// O_TRUNC and O_DIRECTORY, the flags the dispatcher's own tests exercise.
func (m *MemFS) Open(rp *fs.ResolvedPath, flags int, mode uint32) (fs.FileOps, error) {
	parent := asNode(rp.ParentDir)
	n := asNode(rp.Entry.Inode)

	if n == nil {
		if rp.LastComponent == "" {
			// The path was "/": root always exists.
			return newMemHandle(m.root), nil
		}
		if flags&unix.O_CREAT == 0 {
			return nil, fs.ENOENT
		}
		if !m.rw {
			return nil, fs.EROFS
		}

		parent.mu.Lock()
		if existing, ok := parent.children[rp.LastComponent]; ok {
			parent.mu.Unlock()
			n = existing
		} else {
			n = newNode(rp.LastComponent, fs.EntryFile, mode, m.clk)
			parent.children[rp.LastComponent] = n
			parent.mu.Unlock()
			return newMemHandle(n), nil
		}
	} else if flags&unix.O_CREAT != 0 && flags&unix.O_EXCL != 0 {
		return nil, fs.EEXIST
	}

	if flags&unix.O_DIRECTORY != 0 && n.typ != fs.EntryDir {
		return nil, fs.ENOTDIR
	}

	if n.typ == fs.EntryDir && flags&(unix.O_WRONLY|unix.O_RDWR) != 0 {
		return nil, fs.EISDIR
	}

	if flags&unix.O_TRUNC != 0 && n.typ == fs.EntryFile {
		n.mu.Lock()
		n.data = nil
		n.mu.Unlock()
	}

	return newMemHandle(n), nil
}

// Mkdir implements fs.Mkdirer.
func (m *MemFS) Mkdir(rp *fs.ResolvedPath, mode uint32) error {
	if rp.Entry.Inode != nil {
		return fs.EEXIST
	}
	parent := asNode(rp.ParentDir)
	parent.mu.Lock()
	defer parent.mu.Unlock()
	if _, ok := parent.children[rp.LastComponent]; ok {
		return fs.EEXIST
	}
	parent.children[rp.LastComponent] = newNode(rp.LastComponent, fs.EntryDir, mode, m.clk)
	return nil
}

// Rmdir implements fs.Rmdirer.
func (m *MemFS) Rmdir(rp *fs.ResolvedPath) error {
	n := asNode(rp.Entry.Inode)
	if n == nil {
		return fs.ENOENT
	}
	if n.typ != fs.EntryDir {
		return fs.ENOTDIR
	}
	n.mu.RLock()
	empty := len(n.children) == 0
	n.mu.RUnlock()
	if !empty {
		return fs.ENOTEMPTY
	}

	parent := asNode(rp.ParentDir)
	parent.mu.Lock()
	defer parent.mu.Unlock()
	delete(parent.children, rp.LastComponent)
	return nil
}

// Unlink implements fs.Unlinker.
func (m *MemFS) Unlink(rp *fs.ResolvedPath) error {
	n := asNode(rp.Entry.Inode)
	if n == nil {
		return fs.ENOENT
	}
	if n.typ == fs.EntryDir {
		return fs.EISDIR
	}

	parent := asNode(rp.ParentDir)
	parent.mu.Lock()
	defer parent.mu.Unlock()
	delete(parent.children, rp.LastComponent)
	return nil
}

// memHandle is the FileOps MemFS.Open hands back.
type memHandle struct {
	n   *node
	pos int64

	mu      sync.Mutex // serializes Seek/Read/Write's pos manipulation
	dirIter []string   // snapshot of child names, for GetDents
}

func newMemHandle(n *node) *memHandle {
	return &memHandle{n: n}
}

func (h *memHandle) Close() error { return nil }

func (h *memHandle) Dup() (fs.FileOps, error) {
	return &memHandle{n: h.n}, nil
}

func (h *memHandle) Read(buf []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.n.mu.RLock()
	defer h.n.mu.RUnlock()

	if h.pos >= int64(len(h.n.data)) {
		return 0, nil
	}
	n := copy(buf, h.n.data[h.pos:])
	h.pos += int64(n)
	return n, nil
}

func (h *memHandle) Write(buf []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.n.mu.Lock()
	defer h.n.mu.Unlock()

	end := h.pos + int64(len(buf))
	if end > int64(len(h.n.data)) {
		grown := make([]byte, end)
		copy(grown, h.n.data)
		h.n.data = grown
	}
	n := copy(h.n.data[h.pos:end], buf)
	h.pos += int64(n)
	h.n.modTime = time.Now()
	return n, nil
}

func (h *memHandle) Seek(offset int64, whence int) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.n.mu.RLock()
	size := int64(len(h.n.data))
	h.n.mu.RUnlock()

	var newPos int64
	switch whence {
	case unix.SEEK_SET:
		newPos = offset
	case unix.SEEK_CUR:
		newPos = h.pos + offset
	case unix.SEEK_END:
		newPos = size + offset
	}
	if newPos < 0 {
		return 0, fs.EINVAL
	}
	h.pos = newPos
	return newPos, nil
}

func (h *memHandle) Fstat() (fs.Stat, error) {
	h.n.mu.RLock()
	defer h.n.mu.RUnlock()

	return fs.Stat{
		Inode:   h.n.ino,
		Size:    int64(len(h.n.data)),
		Mode:    h.n.mode,
		Type:    h.n.typ,
		ModTime: h.n.modTime,
		Nlink:   1,
	}, nil
}

// GetDents implements fs.DirReader, enumerating children in a stable,
// sorted order so that a buffer too small to hold every entry can resume
// deterministically on the next call.
func (h *memHandle) GetDents(cb fs.DirEntryFunc) error {
	if h.n.typ != fs.EntryDir {
		return fs.ENOTDIR
	}

	h.n.mu.RLock()
	if h.dirIter == nil {
		names := make([]string, 0, len(h.n.children))
		for name := range h.n.children {
			names = append(names, name)
		}
		sort.Strings(names)
		h.dirIter = names
	}
	names := h.dirIter
	children := h.n.children
	h.n.mu.RUnlock()

	for _, name := range names {
		h.n.mu.RLock()
		child, ok := children[name]
		h.n.mu.RUnlock()
		if !ok {
			continue
		}
		if !cb(name, child.entry()) {
			return nil
		}
	}
	return nil
}
