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

// Package collaborators holds stand-ins for the external drivers the VFS
// core expects to be registered against it, rather than implement itself.
// KeyboardController is one such collaborator: a character device that
// exists entirely outside the dispatch layer and only ever touches it at
// the single point where it claims a device ID.
package collaborators

import "github.com/kernelkit/vfscore/fs"

// KeyboardController is a minimal character-device driver representing the
// kind of collaborator a real keyboard controller would be: it never
// implements FilesystemOps itself, it just owns an inode entry that a
// filesystem driver (devfs, say) can expose under a path.
type KeyboardController struct {
	device fs.DeviceID
	mode   uint32
}

// NewKeyboardController claims a fresh device ID and returns a controller
// ready to be wired into a devfs-style filesystem driver as one of its
// character-device entries.
func NewKeyboardController() *KeyboardController {
	return &KeyboardController{
		device: fs.NewDeviceID(),
		mode:   0620,
	}
}

// Device returns the ID this controller claimed at construction.
func (k *KeyboardController) Device() fs.DeviceID { return k.device }

// Entry returns the directory entry a devfs driver would hand back for
// this controller's node, e.g. from its own GetEntry implementation.
func (k *KeyboardController) Entry() fs.DirEntry {
	return fs.DirEntry{Inode: k, Type: fs.EntryCharDev}
}

// Read and Write are stubs: a real keyboard controller would pull scancodes
// off an interrupt-fed ring buffer and never block past a read timeout.
// That state machine is a separate concern from registering the device, so
// it's left unimplemented here.
func (k *KeyboardController) Read([]byte) (int, error)  { return 0, fs.EOPNOTSUPP }
func (k *KeyboardController) Write([]byte) (int, error) { return 0, fs.EOPNOTSUPP }
func (k *KeyboardController) Close() error              { return nil }
