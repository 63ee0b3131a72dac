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
	"fmt"

	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Print metadata for path, resolved through the dispatch layer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := vfs.Stat(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("stat %s: %w", args[0], err)
		}
		fmt.Printf("inode=%d size=%d mode=%o type=%d mtime=%s nlink=%d\n",
			st.Inode, st.Size, st.Mode, st.Type, st.ModTime.Format("2006-01-02T15:04:05Z07:00"), st.Nlink)
		return nil
	},
}
