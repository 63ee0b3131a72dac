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

// Locking on a handle is entirely delegated to the driver: the dispatcher
// has no state of its own to protect at the per-call granularity that
// read/write/ioctl/seek operate at. A driver that doesn't implement
// HandleLocker is simply unlocked at this layer - it's free to serialize
// itself some other way, or not need to.

func exLock(ops FileOps) {
	if l, ok := ops.(HandleLocker); ok {
		l.ExLock()
	}
}

func exUnlock(ops FileOps) {
	if l, ok := ops.(HandleLocker); ok {
		l.ExUnlock()
	}
}

func shLock(ops FileOps) {
	if l, ok := ops.(HandleLocker); ok {
		l.ShLock()
	}
}

func shUnlock(ops FileOps) {
	if l, ok := ops.(HandleLocker); ok {
		l.ShUnlock()
	}
}
