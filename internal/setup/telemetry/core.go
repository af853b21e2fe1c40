package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"
)

// Core implements zapcore.Core to record error logs as OpenTelemetry spans.
type Core struct {
	zapcore.LevelEnabler
	tracer trace.Tracer
	fields []zapcore.Field
}

// NewCore creates a new core that records error entries as spans.
func NewCore(enab zapcore.LevelEnabler) zapcore.Core {
	return &Core{
		LevelEnabler: enab,
		tracer:       otel.Tracer("github.com/robalyx/stylist/logs"),
	}
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(clone.fields[:len(clone.fields):len(clone.fields)], fields...)
	return &clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) && ent.Level >= zapcore.ErrorLevel {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	_, span := c.tracer.Start(context.Background(), "error."+errorCategory(ent))
	defer span.End()

	// Encode fields through a map encoder so non-string values survive
	enc := zapcore.NewMapObjectEncoder()
	for _, field := range append(c.fields, fields...) {
		field.AddTo(enc)
	}

	attrs := make([]attribute.KeyValue, 0, len(enc.Fields)+4)
	attrs = append(attrs,
		attribute.String("log.message", ent.Message),
		attribute.String("log.level", ent.Level.String()),
		attribute.String("log.logger", ent.LoggerName),
		attribute.String("log.caller", ent.Caller.TrimmedPath()),
	)
	for key, value := range enc.Fields {
		attrs = append(attrs, attribute.String(key, toString(value)))
	}

	span.SetAttributes(attrs...)
	span.SetStatus(codes.Error, ent.Message)
	return nil
}

func (c *Core) Sync() error {
	return nil
}

// errorCategory determines the error category from the caller package.
func errorCategory(ent zapcore.Entry) string {
	switch fn := ent.Caller.Function; {
	case strings.Contains(fn, "/internal/ai"):
		return "ai"
	case strings.Contains(fn, "/internal/weather"):
		return "weather"
	case strings.Contains(fn, "/internal/session"):
		return "session"
	case strings.Contains(fn, "/internal/history"):
		return "history"
	case strings.Contains(fn, "/internal/server"):
		return "server"
	case strings.Contains(fn, "/internal/setup"):
		return "setup"
	default:
		return "application"
	}
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
