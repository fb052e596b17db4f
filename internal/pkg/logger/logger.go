// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var base zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	base = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// Init 设置全局日志器的服务名和日志级别。在服务启动时调用一次。
func Init(serviceName, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	base = zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Logger 返回全局日志器（不带追踪上下文）。
func Logger() *zerolog.Logger {
	return &base
}

// Ctx 返回一个绑定了当前追踪上下文的日志器。
// 如果 ctx 中存在有效的 Span，日志会自动带上 trace_id 和 span_id，
// 方便在 Jaeger 和日志系统之间互相跳转。
func Ctx(ctx context.Context) *zerolog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return &base
	}
	l := base.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
	return &l
}
