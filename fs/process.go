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

// ProcessTable is the external collaborator responsible for a process's
// memory-map bookkeeping, mirrored after get_curr_task()->pi and
// remove_all_mappings_of_handle in the dispatcher vfs_close is modeled on.
// The VFS core holds no process or mapping state itself; it only calls out
// to this collaborator, when one is configured, on every Close.
type ProcessTable interface {
	// RemoveMappingsForHandle drops every memory mapping the calling
	// process holds against h. Called from Close before the driver's own
	// Close hook runs, exactly as vfs_close calls
	// remove_all_mappings_of_handle before fs->fsops->close.
	RemoveMappingsForHandle(h *Handle)
}
