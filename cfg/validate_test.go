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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	c := GetDefaultConfig()
	assert.NoError(t, ValidateConfig(&c))
}

func TestValidateConfigRejectsZeroMaxFileSize(t *testing.T) {
	c := GetDefaultConfig()
	c.Logging.LogRotate.MaxFileSizeMb = 0
	assert.Error(t, ValidateConfig(&c))
}

func TestValidateConfigRejectsNegativeBackupCount(t *testing.T) {
	c := GetDefaultConfig()
	c.Logging.LogRotate.BackupFileCount = -1
	assert.Error(t, ValidateConfig(&c))
}

func TestValidateConfigAcceptsZeroBackupCount(t *testing.T) {
	c := GetDefaultConfig()
	c.Logging.LogRotate.BackupFileCount = 0
	assert.NoError(t, ValidateConfig(&c))
}
