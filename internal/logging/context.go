package logging

import (
	"context"
	"log/slog"

	"vogsdemo/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSceneID is the standardized structured logging key for manifest scene identifiers.
	FieldSceneID = "scene_id"
	// FieldLoadCycle is the standardized structured logging key for load sequencer cycle ids.
	FieldLoadCycle = "load_cycle"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldErrorCode carries the load error taxonomy code.
	FieldErrorCode = "error_code"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.SceneIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSceneID, id))
	}
	if cycle, ok := services.LoadCycleFromContext(ctx); ok {
		fields = append(fields, slog.Uint64(FieldLoadCycle, cycle))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
