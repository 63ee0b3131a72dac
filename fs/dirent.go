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

import "encoding/binary"

// direntHeaderSize is the fixed part of a marshalled directory entry:
// 8-byte inode number, 8-byte offset of the next entry, 2-byte record
// length, 1-byte file type. The variable part is the NUL-terminated name.
const direntHeaderSize = 19

func directoryEntryDType(t EntryType) byte {
	switch t {
	case EntryFile:
		return 8 // DT_REG
	case EntryDir:
		return 4 // DT_DIR
	case EntrySymlink:
		return 10 // DT_LNK
	case EntryCharDev:
		return 2 // DT_CHR
	case EntryBlockDev:
		return 6 // DT_BLK
	case EntryPipe:
		return 1 // DT_FIFO
	default:
		return 0 // DT_UNKNOWN
	}
}

// marshalDirent appends one entry's wire form to buf and returns the
// result, in the same fixed-header-then-name-then-NUL layout Linux's
// getdents64(2) uses: ino, off, reclen, type, name, '\0'.
func marshalDirent(buf []byte, ino uint64, nextOff uint64, e DirEntry, name string) []byte {
	recLen := direntHeaderSize + len(name) + 1
	start := len(buf)
	buf = append(buf, make([]byte, recLen)...)

	binary.LittleEndian.PutUint64(buf[start:], ino)
	binary.LittleEndian.PutUint64(buf[start+8:], nextOff)
	binary.LittleEndian.PutUint16(buf[start+16:], uint16(recLen))
	buf[start+18] = directoryEntryDType(e.Type)
	copy(buf[start+direntHeaderSize:], name)
	// buf[start+recLen-1] is already zero (the NUL terminator) from append.

	return buf
}

// GetDents fills buf with as many marshalled directory entries as fit,
// resuming from h's cursor and advancing it only past entries that were
// actually written out. It returns the number of bytes written.
//
// Mirrors vfs_getdents64/vfs_getdents_cb: if the very first entry doesn't
// fit in buf, that's EINVAL (the caller's buffer is too small to make any
// progress); otherwise a short buffer just yields a partial, resumable
// listing.
func GetDents(h *Handle, buf []byte) (int, error) {
	dr, ok := h.ops.(DirReader)
	if !ok {
		return 0, ENOTDIR
	}

	var (
		out       = buf[:0]
		curIndex  = uint64(0)
		startPos  = h.pos.Load()
		shortBuf  = false
		anyWrites = false
	)

	err := dr.GetDents(func(name string, e DirEntry) bool {
		if curIndex < startPos {
			curIndex++
			return true
		}

		recLen := direntHeaderSize + len(name) + 1
		if len(out)+recLen > len(buf) {
			shortBuf = true
			return false
		}

		var ino uint64
		if iv, ok := e.Inode.(uint64); ok {
			ino = iv
		}

		out = marshalDirent(out, ino, uint64(len(out)+recLen), e, name)
		curIndex++
		h.pos.Add(1)
		anyWrites = true
		return true
	})
	if err != nil {
		return 0, err
	}

	if shortBuf && !anyWrites {
		return 0, EINVAL
	}

	return len(out), nil
}
