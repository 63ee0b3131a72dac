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

// Package fs implements the VFS dispatch and locking layer: a mount
// table, a path resolver, and the single public surface
// (Open/Close/Dup/Read/Write/...) that every filesystem driver is
// reached through. The package itself holds no file data and makes no
// policy decisions about any particular backing store; all of that is
// the job of whatever implements FilesystemOps/FileOps.
package fs

import (
	"context"
	"time"

	"github.com/kernelkit/vfscore/internal/metrics"
	"github.com/kernelkit/vfscore/internal/tracing"
	"golang.org/x/sys/unix"
)

// VFS is the top-level entry point: a mount table plus the observability
// plumbing every dispatched operation is wrapped in.
type VFS struct {
	Mounts *MountTable

	metrics *metrics.OpRecorder
	tracer  tracing.Tracer
	procs   ProcessTable
}

// Option configures a VFS at construction time.
type Option func(*VFS)

// WithMetrics records per-operation counters and latency through rec.
// Without this option, metrics are simply not recorded.
func WithMetrics(rec *metrics.OpRecorder) Option {
	return func(v *VFS) { v.metrics = rec }
}

// WithTracer wraps every dispatched operation in a span from t. Without
// this option, a NoopTracer is used.
func WithTracer(t tracing.Tracer) Option {
	return func(v *VFS) { v.tracer = t }
}

// WithProcessTable registers the collaborator Close calls into to drop a
// closing handle's memory mappings. Without this option, Close skips that
// step entirely (there is no process/mapping state to drop).
func WithProcessTable(pt ProcessTable) Option {
	return func(v *VFS) { v.procs = pt }
}

// New returns a VFS with an empty mount table.
func New(opts ...Option) *VFS {
	v := &VFS{
		Mounts: NewMountTable(),
		tracer: tracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *VFS) dispatch(ctx context.Context, op string) (context.Context, tracing.Span, func(*error)) {
	ctx, span := v.tracer.StartServerSpan(ctx, op)
	start := time.Now()
	return ctx, span, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		span.RecordError(err)
		span.End()
		v.metrics.Record(ctx, op, time.Since(start), err)
	}
}

// Open rejects O_ASYNC (invalid) and O_TMPFILE (not supported), then
// resolves path against the mount table and asks the owning filesystem's
// driver to open it. On success the returned Handle retains its
// filesystem for as long as it stays open, and carries the close-on-exec
// descriptor flag if O_CLOEXEC was set; on failure the filesystem is
// released before Open returns.
func (v *VFS) Open(ctx context.Context, path string, flags int, mode uint32) (h *Handle, err error) {
	_, _, end := v.dispatch(ctx, metrics.OpOpen)
	defer end(&err)

	if flags&unix.O_ASYNC != 0 {
		return nil, EINVAL
	}
	if flags&unix.O_TMPFILE == unix.O_TMPFILE {
		return nil, EOPNOTSUPP
	}

	fsys, relPath, err := v.Mounts.Resolve(path)
	if err != nil {
		return nil, err
	}

	fsys.exLock()
	var rp *ResolvedPath
	var ops FileOps
	rp, err = resolve(fsys, relPath)
	if err == nil {
		ops, err = fsys.Ops.Open(rp, flags, mode)
	}
	fsys.exUnlock()

	if err != nil {
		fsys.Release()
		return nil, err
	}

	newH := newHandle(fsys, ops, flags)
	if flags&unix.O_CLOEXEC != 0 {
		newH.fdFlags |= fdCloseOnExec
	}
	return newH, nil
}

// Close removes h's memory mappings (if a ProcessTable collaborator is
// configured), releases h's driver-level resources, then releases its
// filesystem reference.
func (v *VFS) Close(h *Handle) (err error) {
	ctx, _, end := v.dispatch(context.Background(), metrics.OpClose)
	_ = ctx
	defer end(&err)

	if h == nil {
		return EBADF
	}

	if v.procs != nil {
		v.procs.RemoveMappingsForHandle(h)
	}

	err = h.ops.Close()
	h.fs.Release()
	return err
}

// Dup creates a second Handle sharing h's driver-level state, retaining
// h's filesystem again on the new handle's behalf. The duplicate starts
// with no descriptor flags (FD_CLOEXEC and friends are never inherited),
// matching open(2)'s dup() semantics.
//
// The nil check happens before any dereference of h, unlike the
// reference this is modeled on, which dereferenced h to get at its
// filesystem before ever checking it was non-nil.
func (v *VFS) Dup(h *Handle) (dup *Handle, err error) {
	_, _, end := v.dispatch(context.Background(), metrics.OpDup)
	defer end(&err)

	if h == nil {
		return nil, EBADF
	}

	duper, ok := h.ops.(Duper)
	if !ok {
		return nil, EBADF
	}

	newOps, err := duper.Dup()
	if err != nil {
		return nil, err
	}

	h.fs.Retain()
	return newHandle(h.fs, newOps, h.Flags()), nil
}

// Read reads into buf from h, which must have been opened for reading.
func (v *VFS) Read(h *Handle, buf []byte) (n int, err error) {
	_, _, end := v.dispatch(context.Background(), metrics.OpRead)
	defer end(&err)

	if h == nil {
		return 0, EBADF
	}

	reader, ok := h.ops.(Reader)
	if !ok {
		return 0, EBADF
	}

	if h.flags&unix.O_WRONLY != 0 && h.flags&unix.O_RDWR == 0 {
		return 0, EBADF
	}

	shLock(h.ops)
	defer shUnlock(h.ops)
	return reader.Read(buf)
}

// Write writes buf to h, which must have been opened for writing.
func (v *VFS) Write(h *Handle, buf []byte) (n int, err error) {
	_, _, end := v.dispatch(context.Background(), metrics.OpWrite)
	defer end(&err)

	if h == nil {
		return 0, EBADF
	}

	writer, ok := h.ops.(Writer)
	if !ok {
		return 0, EBADF
	}

	if h.flags&(unix.O_WRONLY|unix.O_RDWR) == 0 {
		return 0, EBADF
	}

	exLock(h.ops)
	defer exUnlock(h.ops)
	return writer.Write(buf)
}

// Seek repositions h. Only SEEK_SET, SEEK_CUR and SEEK_END are supported.
func (v *VFS) Seek(h *Handle, offset int64, whence int) (pos int64, err error) {
	_, _, end := v.dispatch(context.Background(), metrics.OpSeek)
	defer end(&err)

	if h == nil {
		return 0, EBADF
	}

	if whence != unix.SEEK_SET && whence != unix.SEEK_CUR && whence != unix.SEEK_END {
		return 0, EINVAL
	}

	seeker, ok := h.ops.(Seeker)
	if !ok {
		return 0, ESPIPE
	}

	shLock(h.ops)
	defer shUnlock(h.ops)
	return seeker.Seek(offset, whence)
}

// Ioctl issues request against h with argument arg.
func (v *VFS) Ioctl(h *Handle, request uintptr, arg interface{}) (ret int, err error) {
	_, _, end := v.dispatch(context.Background(), metrics.OpIoctl)
	defer end(&err)

	if h == nil {
		return 0, EBADF
	}

	ioctler, ok := h.ops.(Ioctler)
	if !ok {
		return 0, ENOTTY
	}

	exLock(h.ops)
	defer exUnlock(h.ops)
	return ioctler.Ioctl(request, arg)
}

// Fcntl issues cmd against h with the given integer argument.
func (v *VFS) Fcntl(h *Handle, cmd int, arg int) (ret int, err error) {
	_, _, end := v.dispatch(context.Background(), metrics.OpFcntl)
	defer end(&err)

	if h == nil {
		return 0, EBADF
	}

	fcntler, ok := h.ops.(Fcntler)
	if !ok {
		return 0, EINVAL
	}

	exLock(h.ops)
	defer exUnlock(h.ops)
	return fcntler.Fcntl(cmd, arg)
}

// Fstat returns metadata for the file h refers to.
func (v *VFS) Fstat(h *Handle) (st Stat, err error) {
	_, _, end := v.dispatch(context.Background(), metrics.OpFstat)
	defer end(&err)

	if h == nil {
		return Stat{}, EBADF
	}

	stater, ok := h.ops.(Stater)
	if !ok {
		return Stat{}, EBADF
	}

	shLock(h.ops)
	defer shUnlock(h.ops)
	return stater.Fstat()
}

// Stat opens path read-only, stats it and closes it again, returning
// Fstat's result directly.
//
// The reference this is modeled on always returned 0 here regardless of
// what the underlying fstat call reported, discarding a real error code.
// This implementation propagates it instead.
func (v *VFS) Stat(ctx context.Context, path string) (st Stat, err error) {
	_, _, end := v.dispatch(ctx, metrics.OpStat)
	defer end(&err)

	h, err := v.Open(ctx, path, unix.O_RDONLY, 0)
	if err != nil {
		return Stat{}, err
	}
	defer func() { _ = v.Close(h) }()

	return v.Fstat(h)
}

// Mkdir creates a directory at path.
func (v *VFS) Mkdir(ctx context.Context, path string, mode uint32) (err error) {
	_, _, end := v.dispatch(ctx, metrics.OpMkdir)
	defer end(&err)
	return v.pathWriteOp(path, func(fsys *Filesystem, rp *ResolvedPath) error {
		mkdirer, ok := fsys.Ops.(Mkdirer)
		if !ok {
			return EPERM
		}
		return mkdirer.Mkdir(rp, mode)
	})
}

// Rmdir removes the (empty) directory at path.
func (v *VFS) Rmdir(ctx context.Context, path string) (err error) {
	_, _, end := v.dispatch(ctx, metrics.OpRmdir)
	defer end(&err)
	return v.pathWriteOp(path, func(fsys *Filesystem, rp *ResolvedPath) error {
		rmdirer, ok := fsys.Ops.(Rmdirer)
		if !ok {
			return EPERM
		}
		return rmdirer.Rmdir(rp)
	})
}

// Unlink removes the directory entry at path.
func (v *VFS) Unlink(ctx context.Context, path string) (err error) {
	_, _, end := v.dispatch(ctx, metrics.OpUnlink)
	defer end(&err)
	return v.pathWriteOp(path, func(fsys *Filesystem, rp *ResolvedPath) error {
		unlinker, ok := fsys.Ops.(Unlinker)
		if !ok {
			return EROFS
		}
		return unlinker.Unlink(rp)
	})
}

// pathWriteOp is the shared shape of Mkdir/Rmdir/Unlink: resolve the
// mount, check it's writable, resolve the path under the fs-exclusive
// lock, and release the filesystem reference before returning.
func (v *VFS) pathWriteOp(path string, fn func(*Filesystem, *ResolvedPath) error) error {
	fsys, relPath, err := v.Mounts.Resolve(path)
	if err != nil {
		return err
	}
	defer fsys.Release()

	if !fsys.readWrite() {
		return EROFS
	}

	fsys.exLock()
	defer fsys.exUnlock()

	rp, err := resolve(fsys, relPath)
	if err != nil {
		return err
	}

	return fn(fsys, rp)
}

// Getdents fills buf with directory entries from h, advancing h's cursor.
func (v *VFS) Getdents(h *Handle, buf []byte) (n int, err error) {
	_, _, end := v.dispatch(context.Background(), metrics.OpGetdent)
	defer end(&err)

	if h == nil {
		return 0, EBADF
	}

	h.fs.shLock()
	defer h.fs.shUnlock()
	return GetDents(h, buf)
}

// ReadReady, WriteReady and ExceptReady back select/poll-style readiness
// queries. A handle whose driver doesn't report readiness is always ready
// for read and write, and never for exceptional conditions.
func (v *VFS) ReadReady(h *Handle) bool {
	r, ok := h.ops.(ReadinessReporter)
	if !ok {
		return true
	}
	shLock(h.ops)
	defer shUnlock(h.ops)
	return r.ReadReady()
}

func (v *VFS) WriteReady(h *Handle) bool {
	r, ok := h.ops.(ReadinessReporter)
	if !ok {
		return true
	}
	shLock(h.ops)
	defer shUnlock(h.ops)
	return r.WriteReady()
}

func (v *VFS) ExceptReady(h *Handle) bool {
	r, ok := h.ops.(ReadinessReporter)
	if !ok {
		return false
	}
	shLock(h.ops)
	defer shUnlock(h.ops)
	return r.ExceptReady()
}
