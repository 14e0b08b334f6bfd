package diagnostics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vogsdemo/internal/logging"
	"vogsdemo/internal/manifest"
)

const sinkTimeout = 2 * time.Second

// Sink persists telemetry events.
type Sink interface {
	Record(ctx context.Context, event Event) error
}

// Service is the fire-and-forget telemetry front end.
type Service struct {
	logger  *slog.Logger
	sink    Sink
	now     func() time.Time
	enabled bool
}

// Option customizes the service.
type Option func(*Service)

// WithSink sets the persistent sink. A nil sink keeps log-only behavior.
func WithSink(sink Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithClock overrides the timestamp source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEnabled toggles event emission.
func WithEnabled(enabled bool) Option {
	return func(s *Service) {
		s.enabled = enabled
	}
}

// NewService constructs a telemetry service.
func NewService(logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		logger:  logging.NewComponentLogger(logger, "diagnostics"),
		now:     time.Now,
		enabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) LogAssetLoadStart(sceneID string) {
	s.emit(Event{Event: EventAssetLoadStart, SceneID: sceneID})
}

func (s *Service) LogAssetLoadSuccess(sceneID string, duration time.Duration) {
	s.emit(Event{Event: EventAssetLoadSuccess, SceneID: sceneID, DurationMs: durationMs(duration)})
}

func (s *Service) LogAssetLoadFailed(sceneID string, duration time.Duration, errorCode string) {
	s.emit(Event{Event: EventAssetLoadFailed, SceneID: sceneID, DurationMs: durationMs(duration), ErrorCode: errorCode})
}

func (s *Service) LogFusionModeChanged(sceneID string, mode manifest.FusionMode) {
	s.emit(Event{Event: EventFusionModeChanged, SceneID: sceneID, Mode: string(mode)})
}

func (s *Service) LogRepresentationChanged(sceneID string, mode manifest.RepresentationMode) {
	s.emit(Event{Event: EventRepresentationChanged, SceneID: sceneID, Mode: string(mode)})
}

func (s *Service) emit(event Event) {
	if s == nil || !s.enabled {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("diagnostics emit panicked", logging.String("panic", fmt.Sprint(r)))
		}
	}()

	event.ID = uuid.NewString()
	event.Timestamp = s.now().UTC()

	attrs := []logging.Attr{
		logging.String("event", string(event.Event)),
		logging.String("timestamp", event.TimestampString()),
		logging.SceneID(event.SceneID),
	}
	if event.Mode != "" {
		attrs = append(attrs, logging.String("mode", event.Mode))
	}
	if event.DurationMs != nil {
		attrs = append(attrs, logging.Int64("duration_ms", *event.DurationMs))
	}
	if event.ErrorCode != "" {
		attrs = append(attrs, logging.ErrorCode(event.ErrorCode))
	}
	s.logger.Info("diagnostics", logging.Args(attrs...)...)

	if s.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := s.sink.Record(ctx, event); err != nil {
		s.logger.Debug("diagnostics sink write failed", logging.Error(err))
	}
}
