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

package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopTracerNeverPanics(t *testing.T) {
	var tr Tracer = NoopTracer{}

	ctx, span := tr.StartSpan(context.Background(), "op")
	require.NotNil(t, ctx)
	span.RecordError(errors.New("boom"))
	span.End()

	ctx, span = tr.StartServerSpan(context.Background(), "op")
	require.NotNil(t, ctx)
	span.RecordError(nil)
	span.End()
}

func TestNewTracerProducesUsableSpans(t *testing.T) {
	tr := NewTracer("vfscore-test")

	_, span := tr.StartServerSpan(context.Background(), "dispatch.Open")
	require.NotNil(t, span)
	span.End()
}
