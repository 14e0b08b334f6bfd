package services

import "context"

type contextKey string

const (
	sceneIDKey   contextKey = "scene_id"
	loadCycleKey contextKey = "load_cycle"
	requestIDKey contextKey = "request_id"
)

// WithSceneID annotates context with the manifest scene identifier.
func WithSceneID(ctx context.Context, sceneID string) context.Context {
	if sceneID == "" {
		return ctx
	}
	return context.WithValue(ctx, sceneIDKey, sceneID)
}

// SceneIDFromContext returns the scene identifier if present.
func SceneIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sceneIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithLoadCycle annotates context with the load sequencer cycle id.
func WithLoadCycle(ctx context.Context, cycle uint64) context.Context {
	return context.WithValue(ctx, loadCycleKey, cycle)
}

// LoadCycleFromContext extracts the load cycle id if present.
func LoadCycleFromContext(ctx context.Context) (uint64, bool) {
	v := ctx.Value(loadCycleKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case uint64:
		return val, true
	case int:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	default:
		return 0, false
	}
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
