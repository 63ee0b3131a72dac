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

// resolve walks path (relative to fs's own root, always starting with
// "/") component by component through fs.Ops.GetEntry, including the last
// component. Every component but the last is required to already exist;
// the last is looked up too and handed back in Entry (Entry.Inode == nil
// if it doesn't exist) so callers like Open and Mkdir can decide what to
// do about a missing terminal component themselves.
//
// Intermediate components are not required to be directories: GetEntry is
// simply called with whatever inode the previous component resolved to,
// and a driver whose inode isn't a directory is expected to report the
// lookup as not found on its own, the same way the dispatcher it's
// modeled on leaves that check to the driver.
func resolve(fs *Filesystem, path string) (*ResolvedPath, error) {
	root, err := fs.Ops.GetEntry(nil, "")
	if err != nil {
		return nil, err
	}

	if len(path) == 0 || path[0] != '/' {
		return nil, EINVAL
	}

	if len(path) == 1 {
		// The path was just "/".
		return &ResolvedPath{
			Fs:            fs,
			ParentDir:     root.Inode,
			LastComponent: "",
			Entry:         root,
		}, nil
	}

	idir := root.Inode
	pc := 1 // index of the start of the current component

	i := 1
	for i < len(path) {
		if path[i] != '/' {
			i++
			continue
		}

		// path[pc:i] is a component ending at a '/'.
		name := path[pc:i]

		e, err := fs.Ops.GetEntry(idir, name)
		if err != nil {
			return nil, err
		}

		if e.Inode == nil {
			if i+1 < len(path) {
				return nil, ENOENT // more path remains: no such entity
			}
			// No such entity, but the path ends here with a trailing
			// slash: hand back this (missing) component as the result.
			return &ResolvedPath{Fs: fs, ParentDir: idir, LastComponent: name, Entry: e}, nil
		}

		if i+1 == len(path) {
			// Trailing slash at the very end: this component must be a
			// directory for the path to make sense.
			if e.Type != EntryDir {
				return nil, ENOTDIR
			}
			return &ResolvedPath{Fs: fs, ParentDir: idir, LastComponent: name, Entry: e}, nil
		}

		idir = e.Inode
		pc = i + 1
		i++
	}

	// Reached the end of path without a trailing slash: path[pc:] is the
	// final, not-yet-resolved component.
	name := path[pc:]
	entry, err := fs.Ops.GetEntry(idir, name)
	if err != nil {
		return nil, err
	}

	return &ResolvedPath{
		Fs:            fs,
		ParentDir:     idir,
		LastComponent: name,
		Entry:         entry,
	}, nil
}
