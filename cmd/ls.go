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

package cmd

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

// direntHeaderSize mirrors fs/dirent.go's wire layout: 8-byte inode, 8-byte
// next-entry offset, 2-byte record length, 1-byte type, then the
// NUL-terminated name.
const direntHeaderSize = 19

var lsCmd = &cobra.Command{
	Use:   "ls <path>",
	Short: "List a directory's entries through Getdents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := vfs.Open(cmd.Context(), args[0], unix.O_RDONLY|unix.O_DIRECTORY, 0)
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer func() { _ = vfs.Close(h) }()

		buf := make([]byte, 4096)
		for {
			n, err := vfs.Getdents(h, buf)
			if err != nil {
				return fmt.Errorf("getdents %s: %w", args[0], err)
			}
			if n == 0 {
				break
			}
			for _, name := range decodeDirents(buf[:n]) {
				fmt.Println(name)
			}
		}
		return nil
	},
}

func decodeDirents(buf []byte) []string {
	var names []string
	for len(buf) >= direntHeaderSize {
		recLen := binary.LittleEndian.Uint16(buf[16:18])
		if int(recLen) > len(buf) || recLen < direntHeaderSize {
			break
		}
		nameBytes := buf[direntHeaderSize:recLen]
		if i := bytes.IndexByte(nameBytes, 0); i >= 0 {
			nameBytes = nameBytes[:i]
		}
		names = append(names, string(nameBytes))
		buf = buf[recLen:]
	}
	return names
}
