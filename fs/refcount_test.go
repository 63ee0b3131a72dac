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

func TestRefCountRetainRelease(t *testing.T) {
	var r RefCount
	r.Init(1)

	if v := r.Retain(); v != 2 {
		t.Fatalf("Retain() = %d, want 2", v)
	}
	if v := r.Release(); v != 1 {
		t.Fatalf("Release() = %d, want 1", v)
	}
	if v := r.Count(); v != 1 {
		t.Fatalf("Count() = %d, want 1", v)
	}
}

func TestRefCountPanicsBelowZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic releasing below zero")
		}
	}()

	var r RefCount
	r.Init(0)
	r.Release()
}

func TestRefCountDebugDoesNotAffectCount(t *testing.T) {
	var r RefCount
	r.Init(1)
	r.EnableDebug("test-object")

	r.Retain()
	r.Release()

	if v := r.Count(); v != 1 {
		t.Fatalf("Count() = %d, want 1", v)
	}
}
