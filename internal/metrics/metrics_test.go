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

package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewOpRecorderRecordsWithoutPanicking(t *testing.T) {
	rec, err := NewOpRecorder()
	require.NoError(t, err)

	rec.Record(context.Background(), OpRead, time.Millisecond, nil)
	rec.Record(context.Background(), OpWrite, 2*time.Millisecond, context.DeadlineExceeded)
}

func TestNilOpRecorderRecordIsANoop(t *testing.T) {
	var rec *OpRecorder
	require.NotPanics(t, func() {
		rec.Record(context.Background(), OpOpen, time.Millisecond, nil)
	})
}

func TestJoinShutdownFuncRunsAllEvenAfterError(t *testing.T) {
	var firstRan, secondRan bool
	shutdown := JoinShutdownFunc(
		func(context.Context) error { firstRan = true; return context.Canceled },
		func(context.Context) error { secondRan = true; return nil },
	)

	err := shutdown(context.Background())
	require.Error(t, err)
	require.True(t, firstRan)
	require.True(t, secondRan)
}
