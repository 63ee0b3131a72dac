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

// DeviceID identifies a registered device, char or block, within the VFS.
type DeviceID uint32

// deviceIDCounter hands out monotonically increasing device IDs, shared by
// every filesystem and collaborator registering a device against the VFS.
type deviceIDCounter struct {
	next atomic.Uint32
}

// NewDeviceID returns the next available device ID. IDs are never reused,
// even across unregistration, since nothing in the VFS tracks device
// lifetime beyond issuing the ID.
func (c *deviceIDCounter) NewDeviceID() DeviceID {
	return DeviceID(c.next.Add(1) - 1)
}

var globalDeviceIDs deviceIDCounter

// NewDeviceID returns the next device ID from the package-wide counter.
func NewDeviceID() DeviceID {
	return globalDeviceIDs.NewDeviceID()
}
