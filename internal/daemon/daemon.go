package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"vogsdemo/internal/config"
	"vogsdemo/internal/diagnostics"
	"vogsdemo/internal/fusion"
	"vogsdemo/internal/logging"
	"vogsdemo/internal/manifest"
	"vogsdemo/internal/renderer"
	"vogsdemo/internal/sceneasset"
	"vogsdemo/internal/scenedata"
	"vogsdemo/internal/services"
	"vogsdemo/internal/shell"
)

// Daemon owns the load sequencer and shared state and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	manifest  *manifest.Manifest
	state     *fusion.Store
	loader    *sceneasset.Service
	renderer  *renderer.Adapter
	sequencer *shell.Sequencer
	telemetry *diagnostics.Service
	events    *diagnostics.Store
	sceneData *scenedata.Loader
	api       *apiServer

	visMu      sync.Mutex
	visibility *scenedata.Visibility

	lockPath string
	lock     *flock.Flock

	// lifetime bounds every load attempt. Request contexts end with the
	// request, so attempts are never tied to them.
	lifetime context.Context
	shutdown context.CancelFunc

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool              `json:"running"`
	PID          int               `json:"pid"`
	SceneID      string            `json:"sceneId,omitempty"`
	Cycle        uint64            `json:"cycle"`
	State        fusion.State      `json:"state"`
	Renderer     renderer.Stats    `json:"renderer"`
	Loaded       *renderer.Summary `json:"loaded,omitempty"`
	ManifestPath string            `json:"manifestPath"`
	EventsDBPath string            `json:"eventsDbPath,omitempty"`
	LockFilePath string            `json:"lockFilePath"`
}

// ModeChange carries an optional fusion and representation mode update.
type ModeChange struct {
	Fusion         *manifest.FusionMode         `json:"fusion,omitempty"`
	Representation *manifest.RepresentationMode `json:"representation,omitempty"`
}

// Option customizes daemon construction.
type Option func(*options)

type options struct {
	client services.HTTPDoer
}

// WithHTTPClient overrides the client used to fetch scene assets.
func WithHTTPClient(client services.HTTPDoer) Option {
	return func(o *options) {
		o.client = client
	}
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger = logging.NewComponentLogger(logger, "daemon")

	m, err := manifest.Load(cfg.Paths.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	if errs := manifest.Validate(m); len(errs) > 0 {
		return nil, fmt.Errorf("invalid manifest: %s", strings.Join(errs, "; "))
	}

	var events *diagnostics.Store
	telemetryOpts := []diagnostics.Option{diagnostics.WithEnabled(cfg.Diagnostics.Enabled)}
	if cfg.Diagnostics.Enabled && cfg.Diagnostics.Persist {
		events, err = diagnostics.Open(cfg.DiagnosticsDBPath())
		if err != nil {
			return nil, fmt.Errorf("open diagnostics store: %w", err)
		}
		telemetryOpts = append(telemetryOpts, diagnostics.WithSink(events))
	}
	telemetry := diagnostics.NewService(logger, telemetryOpts...)

	state := fusion.NewStore(logger)
	adapter := renderer.NewAdapter(logger)
	initial := state.State()
	adapter.ApplyFusionMode(initial.FusionMode)
	adapter.ApplyRepresentationMode(initial.RepresentationMode)
	loader := sceneasset.NewService(
		sceneasset.WithHTTPClient(o.client),
		sceneasset.WithBaseURL(cfg.Assets.BaseURL),
		sceneasset.WithUserAgent(cfg.Assets.UserAgent),
		sceneasset.WithLogger(logger),
	)
	sequencer := shell.NewSequencer(loader, adapter, state,
		shell.WithTelemetry(telemetry),
		shell.WithLogger(logger),
	)

	lifetime, shutdown := context.WithCancel(context.Background())
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:       cfg,
		logger:    logger,
		manifest:  m,
		state:     state,
		loader:    loader,
		renderer:  adapter,
		sequencer: sequencer,
		telemetry: telemetry,
		events:    events,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
		lifetime:  lifetime,
		shutdown:  shutdown,
	}
	d.sceneData = newSceneDataLoader(d, o.client)
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another vogsdemo daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start api: %w", err)
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("vogsdemo daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("scenes", len(d.manifest.Scenes)),
	)
	return nil
}

// Stop stops serving and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("vogsdemo daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	d.shutdown()
	d.sequencer.Close()
	d.sequencer.Wait()
	if d.events != nil {
		return d.events.Close()
	}
	return nil
}

// Addr returns the API listen address once started.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Scenes returns every manifest scene in declaration order.
func (d *Daemon) Scenes() []manifest.Entry {
	return d.manifest.Scenes
}

// LoadScene starts loading the named scene and applies its default modes.
// It returns the load cycle id; progress is observed through State.
func (d *Daemon) LoadScene(sceneID string) (uint64, error) {
	entry, ok := d.manifest.Find(strings.TrimSpace(sceneID))
	if !ok {
		return 0, services.Wrap(services.ErrNotFound, "daemon", "load scene",
			fmt.Sprintf("scene %q is not in the manifest", sceneID), nil)
	}

	d.state.SetFusionMode(entry.DefaultFusionMode)
	d.renderer.ApplyFusionMode(entry.DefaultFusionMode)
	if d.state.SetRepresentationMode(entry.DefaultRepresentationMode) {
		d.renderer.ApplyRepresentationMode(entry.DefaultRepresentationMode)
	}

	cycle := d.sequencer.Start(d.loadContext(), entry)
	if cycle == 0 {
		return 0, errors.New("daemon is shutting down")
	}
	d.logger.Info("scene load requested",
		logging.SceneID(entry.SceneID),
		logging.LoadCycle(cycle),
	)
	return cycle, nil
}

// Retry replays the last attempted scene.
func (d *Daemon) Retry() (uint64, error) {
	cycle := d.sequencer.Retry(d.loadContext())
	if cycle == 0 {
		return 0, errors.New("daemon is shutting down")
	}
	d.logger.Info("scene retry requested", logging.LoadCycle(cycle))
	return cycle, nil
}

// SetModes applies the requested mode changes. Representation changes are
// ignored while ground truth is shown.
func (d *Daemon) SetModes(change ModeChange) (fusion.State, error) {
	if change.Fusion != nil && !change.Fusion.Valid() {
		return fusion.State{}, services.Wrap(services.ErrValidation, "daemon", "set modes",
			fmt.Sprintf("unknown fusion mode %q", *change.Fusion), nil)
	}
	if change.Representation != nil && !change.Representation.Valid() {
		return fusion.State{}, services.Wrap(services.ErrValidation, "daemon", "set modes",
			fmt.Sprintf("unknown representation mode %q", *change.Representation), nil)
	}

	sceneID := d.sequencer.SceneID()
	if change.Fusion != nil && d.state.State().FusionMode != *change.Fusion {
		d.state.SetFusionMode(*change.Fusion)
		d.renderer.ApplyFusionMode(*change.Fusion)
		d.telemetry.LogFusionModeChanged(sceneID, *change.Fusion)
	}
	if change.Representation != nil && d.state.State().RepresentationMode != *change.Representation {
		if d.state.SetRepresentationMode(*change.Representation) {
			d.renderer.ApplyRepresentationMode(*change.Representation)
			d.telemetry.LogRepresentationChanged(sceneID, *change.Representation)
		}
	}
	return d.state.State(), nil
}

// State returns the shared demo state.
func (d *Daemon) State() fusion.State {
	return d.state.State()
}

// Events returns the most recent telemetry events, newest first.
func (d *Daemon) Events(ctx context.Context, limit int) ([]diagnostics.Event, error) {
	if d.events == nil {
		return nil, nil
	}
	return d.events.Recent(ctx, limit)
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		SceneID:      d.sequencer.SceneID(),
		Cycle:        d.sequencer.Cycle(),
		State:        d.state.State(),
		Renderer:     d.renderer.Stats(),
		ManifestPath: d.cfg.Paths.ManifestPath,
		LockFilePath: d.lockPath,
	}
	if summary, ok := d.renderer.Summary(); ok {
		status.Loaded = &summary
	}
	if d.events != nil {
		status.EventsDBPath = d.events.Path()
	}
	return status
}

func (d *Daemon) loadContext() context.Context {
	return services.WithRequestID(d.lifetime, uuid.NewString())
}
