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

// Package metrics records per-operation counters and latency for every
// dispatch call the VFS core makes, via the OpenTelemetry metrics API.
package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Operation-name attribute values, one per dispatch method. Trimmed down
// from a much larger FUSE op-name table to exactly the operations the
// dispatcher exposes.
const (
	OpOpen    = "Open"
	OpClose   = "Close"
	OpDup     = "Dup"
	OpRead    = "Read"
	OpWrite   = "Write"
	OpSeek    = "Seek"
	OpIoctl   = "Ioctl"
	OpFcntl   = "Fcntl"
	OpFstat   = "Fstat"
	OpStat    = "Stat"
	OpMkdir   = "Mkdir"
	OpRmdir   = "Rmdir"
	OpUnlink  = "Unlink"
	OpGetdent = "Getdents"
)

const opKey = "vfs_op"

// ShutdownFn releases whatever resources a metrics provider holds open
// (an HTTP listener, an exporter's background flush goroutine, etc.).
type ShutdownFn func(ctx context.Context) error

// JoinShutdownFunc combines shutdown functions into one, running every one
// of them even if an earlier one errors.
func JoinShutdownFunc(fns ...ShutdownFn) ShutdownFn {
	return func(ctx context.Context) error {
		var firstErr error
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if err := fn(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}

// OpRecorder is the metrics surface the dispatcher calls into for every
// public operation. A nil *OpRecorder is valid and records nothing, so
// callers that haven't wired up a meter provider still get a working
// dispatcher.
type OpRecorder struct {
	opsTotal       metric.Int64Counter
	opsErrorsTotal metric.Int64Counter
	opLatencyMs    metric.Float64Histogram

	attrSets sync.Map // op string -> metric.MeasurementOption
}

// NewOpRecorder builds an OpRecorder against the global otel meter
// provider, under the meter name "vfscore".
func NewOpRecorder() (*OpRecorder, error) {
	meter := otel.Meter("vfscore")

	opsTotal, err := meter.Int64Counter(
		"vfs_ops_total",
		metric.WithDescription("Count of VFS operations dispatched, by operation."),
	)
	if err != nil {
		return nil, err
	}

	opsErrorsTotal, err := meter.Int64Counter(
		"vfs_ops_errors_total",
		metric.WithDescription("Count of VFS operations that returned a non-nil error, by operation."),
	)
	if err != nil {
		return nil, err
	}

	opLatencyMs, err := meter.Float64Histogram(
		"vfs_op_latency_ms",
		metric.WithDescription("Latency of VFS operations in milliseconds, by operation."),
		metric.WithExplicitBucketBoundaries(
			0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048, 4096,
		),
	)
	if err != nil {
		return nil, err
	}

	return &OpRecorder{
		opsTotal:       opsTotal,
		opsErrorsTotal: opsErrorsTotal,
		opLatencyMs:    opLatencyMs,
	}, nil
}

func (r *OpRecorder) attrFor(op string) metric.MeasurementOption {
	if v, ok := r.attrSets.Load(op); ok {
		return v.(metric.MeasurementOption)
	}
	opt := metric.WithAttributeSet(attribute.NewSet(attribute.String(opKey, op)))
	v, _ := r.attrSets.LoadOrStore(op, opt)
	return v.(metric.MeasurementOption)
}

// Record increments vfs_ops_total (and vfs_ops_errors_total if err != nil)
// and observes the op's latency. Call via defer, timing from a captured
// start time:
//
//	start := time.Now()
//	defer func() { rec.Record(ctx, metrics.OpRead, time.Since(start), err) }()
func (r *OpRecorder) Record(ctx context.Context, op string, latency time.Duration, err error) {
	if r == nil {
		return
	}
	attr := r.attrFor(op)
	r.opsTotal.Add(ctx, 1, attr)
	r.opLatencyMs.Record(ctx, float64(latency.Microseconds())/1000.0, attr)
	if err != nil {
		r.opsErrorsTotal.Add(ctx, 1, attr)
	}
}
