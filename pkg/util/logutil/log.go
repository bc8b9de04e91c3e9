// Copyright 2026 PingCAP, Inc.
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

package logutil

import (
	"context"

	"github.com/opentracing/opentracing-go"
	tlog "github.com/opentracing/opentracing-go/log"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultLogMaxSize is the default size of log files in MB.
	DefaultLogMaxSize = 300
	// DefaultLogFormat is the default format of the log.
	DefaultLogFormat = "text"
)

// Common log fields.
const (
	LogFieldCategory = "category"
	LogFieldQueryID  = "query_id"
)

// FileLogConfig is the toml/json form of the file log settings.
type FileLogConfig struct {
	log.FileLogConfig
}

// NewFileLogConfig creates a FileLogConfig rotating at maxSize MB.
func NewFileLogConfig(maxSize uint) FileLogConfig {
	var c FileLogConfig
	c.MaxSize = int(maxSize)
	return c
}

// LogConfig is the toml/json form of the log settings.
type LogConfig struct {
	log.Config
}

// NewLogConfig creates a LogConfig.
func NewLogConfig(level, format string, file FileLogConfig, disableTimestamp bool) *LogConfig {
	c := &LogConfig{}
	c.Level, c.Format = level, format
	c.DisableTimestamp = disableTimestamp
	c.File = file.FileLogConfig
	return c
}

// InitLogger builds the global logger from cfg. Stack traces are only
// attached to fatal entries.
func InitLogger(cfg *LogConfig, opts ...zap.Option) error {
	opts = append(opts, zap.AddStacktrace(zapcore.FatalLevel))
	lg, props, err := log.InitLogger(&cfg.Config, opts...)
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(lg, props)
	return nil
}

// SetLevel changes the level of the global logger.
func SetLevel(level string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return errors.Trace(err)
	}
	log.SetLevel(lvl)
	return nil
}

type ctxLoggerKey struct{}

// Logger returns the logger attached to ctx, or the global one.
func Logger(ctx context.Context) *zap.Logger {
	if lg, ok := ctx.Value(ctxLoggerKey{}).(*zap.Logger); ok {
		return lg
	}
	return log.L()
}

// WithLogger attaches lg to ctx.
func WithLogger(ctx context.Context, lg *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, lg)
}

// WithFields attaches a logger carrying fields to ctx.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	return WithLogger(ctx, Logger(ctx).With(fields...))
}

// WithCategory attaches a category to the logger of ctx.
func WithCategory(ctx context.Context, category string) context.Context {
	return WithFields(ctx, zap.String(LogFieldCategory, category))
}

// WithQueryID attaches the id of the query being planned.
func WithQueryID(ctx context.Context, id uint64) context.Context {
	return WithFields(ctx, zap.Uint64(LogFieldQueryID, id))
}

// WithKeyValue attaches key/value to the logger of ctx.
func WithKeyValue(ctx context.Context, key, value string) context.Context {
	return WithFields(ctx, zap.String(key, value))
}

// TraceEventKey is the span log field holding events.
const TraceEventKey = "event"

func activeSpan(ctx context.Context) opentracing.Span {
	span := opentracing.SpanFromContext(ctx)
	if span == nil || span.Tracer() == nil {
		return nil
	}
	return span
}

// Event logs event on the tracing span of ctx, if any.
func Event(ctx context.Context, event string) {
	if span := activeSpan(ctx); span != nil {
		span.LogFields(tlog.String(TraceEventKey, event))
	}
}

// SetTag sets a tag on the tracing span of ctx, if any.
func SetTag(ctx context.Context, key string, value any) {
	if span := activeSpan(ctx); span != nil {
		span.SetTag(key, value)
	}
}
