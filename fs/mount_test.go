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

import "testing"

func TestMatchLen(t *testing.T) {
	cases := []struct {
		mp, path string
		want     int
	}{
		{"/", "/", 1},
		{"/", "/anything/at/all", 1},
		{"/mnt", "/mnt", 4},
		{"/mnt", "/mnt/data", 5},
		{"/mnt", "/mnt2", 0},
		{"/mnt", "/other", 0},
	}
	for _, c := range cases {
		if got := matchLen(c.mp, c.path); got != c.want {
			t.Errorf("matchLen(%q, %q) = %d, want %d", c.mp, c.path, got, c.want)
		}
	}
}

func TestMountTableDuplicatePathRejected(t *testing.T) {
	mt := NewMountTable()
	a := NewFilesystem(&stubOps{})
	b := NewFilesystem(&stubOps{})

	if err := mt.Mount("/mnt", a); err != nil {
		t.Fatalf("first mount: %v", err)
	}
	if err := mt.Mount("/mnt", b); err != EEXIST {
		t.Fatalf("duplicate mount err = %v, want EEXIST", err)
	}
}

func TestMountTableResolveNoMount(t *testing.T) {
	mt := NewMountTable()
	if _, _, err := mt.Resolve("/anything"); err != ErrNoMount {
		t.Fatalf("Resolve on empty table err = %v, want ErrNoMount", err)
	}
}

func TestMountTableUnmountUnknownPath(t *testing.T) {
	mt := NewMountTable()
	if err := mt.Unmount("/nope"); err != ENOENT {
		t.Fatalf("Unmount unknown path err = %v, want ENOENT", err)
	}
}

// stubOps is the minimal FilesystemOps implementation needed to construct a
// Filesystem for table-level tests that never dispatch a real operation.
type stubOps struct{}

func (stubOps) GetEntry(dir Inode, name string) (DirEntry, error) { return DirEntry{}, nil }
func (stubOps) Open(rp *ResolvedPath, flags int, mode uint32) (FileOps, error) {
	return nil, EOPNOTSUPP
}
