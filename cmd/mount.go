// Copyright 2024 Google LLC
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
	"fmt"

	"github.com/kernelkit/vfscore/fs"
	"github.com/kernelkit/vfscore/fs/vfstest"
	"github.com/kernelkit/vfscore/internal/logger"
	"github.com/spf13/cobra"
)

var mountReadOnly bool

// mountCmd registers an additional in-memory driver at a path under the
// already-mounted demo root, demonstrating the mount table's
// longest-prefix-match shadowing without requiring any real backing store.
var mountCmd = &cobra.Command{
	Use:   "mount <path>",
	Short: "Mount a demonstration driver at path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		driver := fs.NewFilesystem(vfstest.New(!mountReadOnly))
		if err := vfs.Mounts.Mount(path, driver); err != nil {
			return fmt.Errorf("mount %s: %w", path, err)
		}
		logger.Infof("mounted demo driver at %s (read-only=%v)", path, mountReadOnly)
		fmt.Printf("mounted %s\n", path)
		return nil
	},
}

func init() {
	mountCmd.Flags().BoolVar(&mountReadOnly, "read-only", false, "mount the demo driver read-only")
}
