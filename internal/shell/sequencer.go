package shell

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vogsdemo/internal/fusion"
	"vogsdemo/internal/logging"
	"vogsdemo/internal/manifest"
	"vogsdemo/internal/sceneasset"
	"vogsdemo/internal/services"
)

// Loader produces load event streams.
type Loader interface {
	LoadScene(ctx context.Context, entry manifest.Entry) <-chan sceneasset.LoadEvent
	RetryLast(ctx context.Context) <-chan sceneasset.LoadEvent
}

// Renderer receives parsed payloads.
type Renderer interface {
	Load(ctx context.Context, payload *sceneasset.ParsedScenePayload) error
	Dispose()
}

// Telemetry receives load lifecycle reports. Implementations must not block
// for long and must swallow their own failures.
type Telemetry interface {
	LogAssetLoadStart(sceneID string)
	LogAssetLoadSuccess(sceneID string, duration time.Duration)
	LogAssetLoadFailed(sceneID string, duration time.Duration, errorCode string)
}

// StateWriter receives scene load state transitions.
type StateWriter interface {
	SetLoadState(state fusion.SceneLoadState)
}

// Sequencer serializes load attempts against the shared load state.
type Sequencer struct {
	loader    Loader
	renderer  Renderer
	telemetry Telemetry
	state     StateWriter
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.Mutex
	cycle     uint64
	terminal  bool
	sceneID   string
	startedAt time.Time
	stop      context.CancelFunc
	closed    bool

	disposeOnce sync.Once
	observers   sync.WaitGroup
}

// Option customizes the sequencer.
type Option func(*Sequencer)

// WithTelemetry sets the telemetry collaborator.
func WithTelemetry(telemetry Telemetry) Option {
	return func(s *Sequencer) {
		s.telemetry = telemetry
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for load durations.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSequencer wires the sequencer to its collaborators.
func NewSequencer(loader Loader, renderer Renderer, state StateWriter, opts ...Option) *Sequencer {
	s := &Sequencer{
		loader:    loader,
		renderer:  renderer,
		state:     state,
		telemetry: nopTelemetry{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.telemetry == nil {
		s.telemetry = nopTelemetry{}
	}
	s.logger = logging.NewComponentLogger(s.logger, "shell")
	return s
}

// Start begins a load attempt for entry and returns its cycle id. The
// previous attempt stops being observed and its in-flight request is
// cancelled. ctx should outlive the attempt; cancelling it abandons the
// attempt without a terminal transition. Start returns 0 once the sequencer
// is closed.
func (s *Sequencer) Start(ctx context.Context, entry manifest.Entry) uint64 {
	cycle, observeCtx, ok := s.begin(ctx, entry.SceneID)
	if !ok {
		return 0
	}
	s.telemetry.LogAssetLoadStart(entry.SceneID)
	s.observe(observeCtx, cycle, s.loader.LoadScene(observeCtx, entry))
	return cycle
}

// Retry replays the loader's last attempted entry as a new attempt.
func (s *Sequencer) Retry(ctx context.Context) uint64 {
	cycle, observeCtx, ok := s.begin(ctx, "")
	if !ok {
		return 0
	}
	s.telemetry.LogAssetLoadStart(s.SceneID())
	s.observe(observeCtx, cycle, s.loader.RetryLast(observeCtx))
	return cycle
}

// Close stops observing the current attempt and disposes the renderer.
// Calling Close more than once has no further effect.
func (s *Sequencer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopLocked()
	s.cycle++
	s.mu.Unlock()

	s.disposeOnce.Do(func() {
		if s.renderer != nil {
			s.renderer.Dispose()
		}
	})
}

// Wait blocks until every started attempt has been fully observed or
// abandoned.
func (s *Sequencer) Wait() {
	s.observers.Wait()
}

// Cycle returns the current cycle id.
func (s *Sequencer) Cycle() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycle
}

// SceneID returns the scene of the current attempt.
func (s *Sequencer) SceneID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sceneID
}

func (s *Sequencer) begin(ctx context.Context, sceneID string) (uint64, context.Context, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil, false
	}
	s.stopLocked()
	s.cycle++
	s.terminal = false
	if sceneID != "" {
		s.sceneID = sceneID
	}
	s.startedAt = s.now()

	observeCtx, stop := context.WithCancel(services.WithLoadCycle(services.WithSceneID(ctx, s.sceneID), s.cycle))
	s.stop = stop
	logging.WithContext(observeCtx, s.logger).Debug("load attempt started")
	return s.cycle, observeCtx, true
}

func (s *Sequencer) stopLocked() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

func (s *Sequencer) observe(ctx context.Context, cycle uint64, events <-chan sceneasset.LoadEvent) {
	s.observers.Add(1)
	go func() {
		defer s.observers.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				s.handle(ctx, cycle, event)
				if event.Kind.Terminal() {
					return
				}
			}
		}
	}()
}

func (s *Sequencer) handle(ctx context.Context, cycle uint64, event sceneasset.LoadEvent) {
	switch event.Kind {
	case sceneasset.EventLoading:
		s.mu.Lock()
		if cycle == s.cycle {
			s.state.SetLoadState(fusion.SceneLoadState{Status: fusion.LoadLoading})
		}
		s.mu.Unlock()
	case sceneasset.EventFailed:
		loadErr := event.Err
		if loadErr == nil {
			loadErr = sceneasset.AsLoadError(nil, false)
		}
		s.finish(ctx, cycle, loadErr)
	case sceneasset.EventReady:
		if !s.current(cycle) {
			return
		}
		if err := s.renderer.Load(ctx, event.Payload); err != nil {
			s.finish(ctx, cycle, sceneasset.AsLoadError(err, true))
			return
		}
		s.finish(ctx, cycle, nil)
	default:
		s.logger.Warn("ignoring unknown load event", logging.String("kind", string(event.Kind)))
	}
}

// current reports whether cycle is live and has not reached a terminal state.
func (s *Sequencer) current(cycle uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cycle == s.cycle && !s.terminal
}

// finish applies the terminal transition for cycle unless it is stale.
func (s *Sequencer) finish(ctx context.Context, cycle uint64, loadErr sceneasset.LoadError) {
	s.mu.Lock()
	if cycle != s.cycle || s.terminal {
		s.mu.Unlock()
		return
	}
	s.terminal = true
	sceneID := s.sceneID
	duration := max(s.now().Sub(s.startedAt), 0)
	if loadErr == nil {
		s.state.SetLoadState(fusion.SceneLoadState{Status: fusion.LoadReady})
	} else {
		s.state.SetLoadState(fusion.SceneLoadState{
			Status: fusion.LoadFailed,
			Error:  &fusion.LoadStateError{Code: loadErr.Code(), Message: loadErr.Error()},
		})
	}
	s.mu.Unlock()

	logger := logging.WithContext(ctx, s.logger)
	if loadErr == nil {
		logger.Info("scene ready", logging.Duration("duration", duration))
		s.telemetry.LogAssetLoadSuccess(sceneID, duration)
		return
	}
	logger.Warn("scene load failed",
		logging.ErrorCode(loadErr.Code()),
		logging.Duration("duration", duration),
		logging.Error(loadErr),
	)
	s.telemetry.LogAssetLoadFailed(sceneID, duration, loadErr.Code())
}

type nopTelemetry struct{}

func (nopTelemetry) LogAssetLoadStart(string)                         {}
func (nopTelemetry) LogAssetLoadSuccess(string, time.Duration)        {}
func (nopTelemetry) LogAssetLoadFailed(string, time.Duration, string) {}
