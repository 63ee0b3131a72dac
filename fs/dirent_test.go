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

type fakeDirFile struct {
	entries []string
}

func (f *fakeDirFile) Close() error { return nil }

func (f *fakeDirFile) GetDents(cb DirEntryFunc) error {
	for _, name := range f.entries {
		if !cb(name, DirEntry{Inode: uint64(1), Type: EntryFile}) {
			return nil
		}
	}
	return nil
}

func TestGetDentsEINVALWhenNothingFits(t *testing.T) {
	h := newHandle(nil, &fakeDirFile{entries: []string{"a-name-too-long-to-fit"}}, 0)
	buf := make([]byte, 4) // smaller than any entry's fixed header
	_, err := GetDents(h, buf)
	if err != EINVAL {
		t.Fatalf("GetDents() err = %v, want EINVAL", err)
	}
}

func TestGetDentsPartialFitAdvancesCursor(t *testing.T) {
	h := newHandle(nil, &fakeDirFile{entries: []string{"a", "b", "c"}}, 0)
	buf := make([]byte, direntHeaderSize+2) // room for exactly one 1-byte-name entry

	n1, err := GetDents(h, buf)
	if err != nil {
		t.Fatalf("first GetDents: %v", err)
	}
	if n1 == 0 {
		t.Fatal("expected first call to return at least one entry")
	}
	if h.Pos() != 1 {
		t.Fatalf("Pos() after first call = %d, want 1", h.Pos())
	}

	n2, err := GetDents(h, buf)
	if err != nil {
		t.Fatalf("second GetDents: %v", err)
	}
	if n2 == 0 {
		t.Fatal("expected second call to return the next entry")
	}
	if h.Pos() != 2 {
		t.Fatalf("Pos() after second call = %d, want 2", h.Pos())
	}
}

func TestGetDentsNonDirReaderReturnsENOTDIR(t *testing.T) {
	h := newHandle(nil, plainCloser{}, 0)
	_, err := GetDents(h, make([]byte, 64))
	if err != ENOTDIR {
		t.Fatalf("GetDents() err = %v, want ENOTDIR", err)
	}
}

type plainCloser struct{}

func (plainCloser) Close() error { return nil }
