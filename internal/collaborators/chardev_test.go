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

package collaborators_test

import (
	"testing"

	"github.com/kernelkit/vfscore/fs"
	"github.com/kernelkit/vfscore/internal/collaborators"
	"github.com/stretchr/testify/require"
)

func TestNewKeyboardControllerClaimsDistinctDeviceIDs(t *testing.T) {
	a := collaborators.NewKeyboardController()
	b := collaborators.NewKeyboardController()
	require.NotEqual(t, a.Device(), b.Device())
}

func TestKeyboardControllerEntryIsCharDevice(t *testing.T) {
	k := collaborators.NewKeyboardController()
	entry := k.Entry()
	require.Equal(t, fs.EntryCharDev, entry.Type)
	require.Equal(t, k, entry.Inode)
}
