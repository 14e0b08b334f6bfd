package sceneasset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"vogsdemo/internal/logging"
	"vogsdemo/internal/manifest"
	"vogsdemo/internal/services"
)

const (
	// DefaultTimeout bounds a single fetch-and-parse attempt.
	DefaultTimeout = 12 * time.Second
	// BudgetBytes is the largest primary asset the loader will fetch.
	BudgetBytes int64 = manifest.DefaultBudgetBytes
	// RetryCount is the number of extra attempts made after a transient failure.
	RetryCount = 1
)

// Service loads scene assets and reports progress as LoadEvent streams.
type Service struct {
	client    services.HTTPDoer
	baseURL   *url.URL
	userAgent string
	timeout   time.Duration
	after     func(time.Duration) <-chan time.Time
	logger    *slog.Logger

	mu   sync.Mutex
	last *manifest.Entry
}

// Option customizes the service.
type Option func(*Service)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client services.HTTPDoer) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// WithBaseURL resolves relative asset URLs against base.
func WithBaseURL(base string) Option {
	return func(s *Service) {
		base = strings.TrimSpace(base)
		if base == "" {
			return
		}
		if parsed, err := url.Parse(strings.TrimRight(base, "/") + "/"); err == nil {
			s.baseURL = parsed
		}
	}
}

// WithUserAgent sets the User-Agent header on asset requests.
func WithUserAgent(agent string) Option {
	return func(s *Service) {
		s.userAgent = strings.TrimSpace(agent)
	}
}

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithTimer overrides how attempt timeouts are scheduled (useful for tests).
func WithTimer(after func(time.Duration) <-chan time.Time) Option {
	return func(s *Service) {
		if after != nil {
			s.after = after
		}
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs a scene asset loader.
func NewService(opts ...Option) *Service {
	s := &Service{
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		after:   time.After,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "sceneasset")
	return s
}

// LoadScene records entry as the last attempted scene and starts loading it.
// The returned channel yields one loading event, then one ready or failed
// event, and is then closed.
func (s *Service) LoadScene(ctx context.Context, entry manifest.Entry) <-chan LoadEvent {
	entry.Assets = slices.Clone(entry.Assets)
	s.mu.Lock()
	s.last = &entry
	s.mu.Unlock()
	return s.run(ctx, entry)
}

// RetryLast replays the most recently attempted entry. Without a prior
// attempt it yields a single failed event and no loading event.
func (s *Service) RetryLast(ctx context.Context) <-chan LoadEvent {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last == nil {
		events := make(chan LoadEvent, 1)
		events <- failedEvent(newParseError(nil, "No scene has been loaded yet."))
		close(events)
		return events
	}
	return s.run(ctx, *last)
}

// LastEntry returns the most recently attempted entry, if any.
func (s *Service) LastEntry() (manifest.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return manifest.Entry{}, false
	}
	return *s.last, true
}

func (s *Service) run(ctx context.Context, entry manifest.Entry) <-chan LoadEvent {
	if ctx == nil {
		ctx = context.Background()
	}
	events := make(chan LoadEvent, 2)
	events <- loadingEvent()
	go func() {
		defer close(events)
		payload, err := s.load(ctx, entry)
		if err != nil {
			events <- failedEvent(AsLoadError(err, false))
			return
		}
		events <- readyEvent(payload)
	}()
	return events
}

func (s *Service) load(ctx context.Context, entry manifest.Entry) (*ParsedScenePayload, error) {
	logger := logging.WithContext(services.WithSceneID(ctx, entry.SceneID), s.logger)

	asset, ok := entry.PrimaryAsset()
	if !ok {
		err := newParseError(nil, "Scene %s is missing asset metadata.", entry.SceneID)
		s.logFailure(logger, err, 0)
		return nil, err
	}
	if asset.SizeBytes > BudgetBytes {
		err := &BudgetError{
			Message:   fmt.Sprintf("Scene asset %s exceeds budget (%d > %d).", asset.ID, asset.SizeBytes, BudgetBytes),
			SizeBytes: asset.SizeBytes,
		}
		s.logFailure(logger, err, 0)
		return nil, err
	}
	format, err := ResolveFormat(asset.URL)
	if err != nil {
		s.logFailure(logger, err, 0)
		return nil, err
	}

	logger.Debug("fetching scene asset",
		logging.String("asset_id", asset.ID),
		logging.String("asset_url", asset.URL),
		logging.String("format", string(format)),
		logging.SizeBytes(asset.SizeBytes),
	)

	attempts := 1 + RetryCount
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := s.attempt(ctx, asset.URL, format)
		if err == nil {
			logger.Info("scene asset loaded",
				logging.String("asset_id", asset.ID),
				logging.String("format", string(format)),
				logging.Int("attempt", attempt),
			)
			return &ParsedScenePayload{
				SceneID:   entry.SceneID,
				AssetURL:  asset.URL,
				Format:    format,
				SizeBytes: asset.SizeBytes,
				Data:      data,
			}, nil
		}
		lastErr = err
		if attempt >= attempts || ctx.Err() != nil || !IsTransient(err) {
			break
		}
		logger.Warn("transient scene asset failure; retrying",
			logging.String("asset_id", asset.ID),
			logging.Int("attempt", attempt),
			logging.Error(err),
		)
	}
	s.logFailure(logger, lastErr, attempts)
	return nil, lastErr
}

// attempt runs one fetch-and-parse step bounded by the service timeout. The
// request is cancelled when the timeout fires.
func (s *Service) attempt(ctx context.Context, assetURL string, format Format) (any, error) {
	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		data any
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := s.fetchAndParse(attemptCtx, assetURL, format)
		done <- result{data: data, err: err}
	}()

	select {
	case res := <-done:
		return res.data, res.err
	case <-s.after(s.timeout):
		cancel()
		return nil, newTimeoutError(s.timeout.Milliseconds())
	case <-ctx.Done():
		return nil, newFetchError(0, ctx.Err(), "Asset request was cancelled.")
	}
}

func (s *Service) fetchAndParse(ctx context.Context, assetURL string, format Format) (any, error) {
	target, err := s.resolveURL(assetURL)
	if err != nil {
		return nil, newFetchError(0, err, "Asset request failed: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, newFetchError(0, err, "Asset request failed: %v", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, newFetchError(0, err, "Asset request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, newFetchError(resp.StatusCode, nil, "Asset request returned %d.", resp.StatusCode)
	}
	return decodeBody(resp.Body, format)
}

func (s *Service) resolveURL(assetURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(assetURL))
	if err != nil {
		return "", err
	}
	if parsed.IsAbs() || s.baseURL == nil {
		return parsed.String(), nil
	}
	return s.baseURL.ResolveReference(parsed).String(), nil
}

func (s *Service) logFailure(logger *slog.Logger, err error, attempts int) {
	loadErr := AsLoadError(err, false)
	logger.Warn("scene asset load failed",
		logging.ErrorCode(loadErr.Code()),
		logging.Int("attempts", attempts),
		logging.Error(err),
	)
}
