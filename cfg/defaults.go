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

package cfg

// GetDefaultLoggingConfig returns the default configuration that is to be used
// during application startup, before any configuration file or flags have
// been parsed.
func GetDefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Severity: InfoLogSeverity,
		Format:   "text",
		LogRotate: LogRotateLoggingConfig{
			BackupFileCount: 10,
			Compress:        true,
			MaxFileSizeMb:   512,
		},
	}
}

// GetDefaultFileSystemConfig returns the permission bits and ownership
// applied to inodes whose driver does not supply its own.
func GetDefaultFileSystemConfig() FileSystemConfig {
	return FileSystemConfig{
		FileMode: DefaultFilePerm,
		DirMode:  DefaultDirPerm,
		Uid:      -1,
	}
}

// GetDefaultConfig returns the fully populated default Config.
func GetDefaultConfig() Config {
	return Config{
		Logging:    GetDefaultLoggingConfig(),
		FileSystem: GetDefaultFileSystemConfig(),
	}
}
