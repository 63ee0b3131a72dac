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
	"sync/atomic"

	"github.com/kernelkit/vfscore/internal/logger"
)

// RefCount is an atomic retain/release counter embedded in every mounted
// Filesystem. A filesystem starts retained once, by the mount that created
// it; every open file handle retains it for as long as the handle is open,
// and every in-flight path lookup retains it for the duration of the call.
type RefCount struct {
	n atomic.Int32

	// debugTarget, when non-nil, receives a log line for every retain and
	// release transition. Set it with EnableDebug; leave it nil
	// (the default) to pay nothing for untraced objects.
	debugTarget atomic.Pointer[string]
}

// Init sets the starting count. Must be called before the RefCount is
// shared across goroutines; a freshly mounted filesystem calls this once
// with n=1.
func (r *RefCount) Init(n int32) {
	r.n.Store(n)
}

// Retain increments the count and returns the new value.
func (r *RefCount) Retain() int32 {
	v := r.n.Add(1)
	r.logTransition("retain", v)
	return v
}

// Release decrements the count and returns the new value. Callers that
// drive an object's count to zero are responsible for tearing it down;
// RefCount itself holds no destructor, unlike the teacher's lookup-count
// pattern; what reaching zero means is left to the object embedding it
// (in the VFS core, only Filesystem).
func (r *RefCount) Release() int32 {
	v := r.n.Add(-1)
	r.logTransition("release", v)
	if v < 0 {
		panic("fs: RefCount released past zero")
	}
	return v
}

// Count returns the current count without modifying it.
func (r *RefCount) Count() int32 {
	return r.n.Load()
}

// EnableDebug turns on transition logging for this RefCount, tagging every
// log line with name. Mirrors the debug-target facility used to trace
// individual kernel object lifetimes.
func (r *RefCount) EnableDebug(name string) {
	r.debugTarget.Store(&name)
}

func (r *RefCount) logTransition(op string, newValue int32) {
	name := r.debugTarget.Load()
	if name == nil {
		return
	}
	logger.Tracef("refcount: %s %s -> %d", op, *name, newValue)
}
