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

// Package tracing wraps go.opentelemetry.io/otel/trace so the dispatch
// layer can wrap every public operation in a span without depending on
// the tracing backend being configured.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts and ends spans for VFS operations.
type Tracer interface {
	// StartSpan begins a span named name as a child of ctx's span, if any.
	StartSpan(ctx context.Context, name string) (context.Context, Span)

	// StartServerSpan begins a root-ish span for an operation entering the
	// VFS from outside (a syscall dispatch), propagating any trace context
	// carried in ctx.
	StartServerSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span is the subset of trace.Span the dispatcher needs.
type Span interface {
	End()
	RecordError(err error)
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer wraps the global otel tracer provider under the given
// instrumentation name.
func NewTracer(name string) Tracer {
	return &otelTracer{tracer: otel.Tracer(name)}
}

func (t *otelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

func (t *otelTracer) StartServerSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() { s.span.End() }

func (s *otelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// NoopTracer discards every span. It is the zero-configuration default so
// that a dispatcher built without a tracing backend still runs.
type NoopTracer struct{}

func (NoopTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, noopSpan{}
}

func (NoopTracer) StartServerSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End()              {}
func (noopSpan) RecordError(error) {}
