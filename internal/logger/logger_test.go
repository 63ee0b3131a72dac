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

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitWritesToRotatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vfscore.log")

	require.NoError(t, Init(Config{
		Severity:      SeverityInfo,
		FilePath:      path,
		MaxFileSizeMb: 1,
		BackupCount:   1,
	}))
	defer func() { require.NoError(t, Close()) }()

	Infof("hello %s", "world")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello world")
}

func TestSeverityGating(t *testing.T) {
	require.NoError(t, Init(Config{Severity: SeverityError}))
	defer func() { require.NoError(t, Close()) }()

	require.False(t, enabled(SeverityInfo))
	require.True(t, enabled(SeverityError))
}
