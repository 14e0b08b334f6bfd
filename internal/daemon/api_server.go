package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"vogsdemo/internal/config"
	"vogsdemo/internal/diagnostics"
	"vogsdemo/internal/fusion"
	"vogsdemo/internal/logging"
	"vogsdemo/internal/manifest"
	"vogsdemo/internal/services"
)

const (
	defaultEventLimit = 50
	maxModeBodyBytes  = 4 << 10
)

// SceneSummary describes one manifest scene in API responses.
type SceneSummary struct {
	SceneID                   string                      `json:"sceneId"`
	DisplayName               string                      `json:"displayName"`
	DefaultFusionMode         manifest.FusionMode         `json:"defaultFusionMode"`
	DefaultRepresentationMode manifest.RepresentationMode `json:"defaultRepresentationMode"`
	Assets                    int                         `json:"assets"`
	TotalBytes                int64                       `json:"totalBytes"`
	OverBudget                bool                        `json:"overBudget"`
}

// SceneListResponse is returned by GET /api/scenes.
type SceneListResponse struct {
	Scenes []SceneSummary `json:"scenes"`
}

// LoadResponse is returned when a load attempt is accepted.
type LoadResponse struct {
	SceneID string `json:"sceneId,omitempty"`
	Cycle   uint64 `json:"cycle"`
}

// EventListResponse is returned by GET /api/events.
type EventListResponse struct {
	Events []diagnostics.Event `json:"events"`
}

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	if cfg == nil || d == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}
	srv.server = &http.Server{
		Handler:           srv.routes(cfg.Paths.APIToken),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes(token string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", authMiddleware(token, s.handleState))
	mux.HandleFunc("/api/scenes", authMiddleware(token, s.handleScenes))
	mux.HandleFunc("/api/scenes/", authMiddleware(token, s.handleSceneAction))
	mux.HandleFunc("/api/retry", authMiddleware(token, s.handleRetry))
	mux.HandleFunc("/api/modes", authMiddleware(token, s.handleModes))
	mux.HandleFunc("/api/events", authMiddleware(token, s.handleEvents))
	mux.HandleFunc("/api/metrics", authMiddleware(token, s.handleMetrics))
	mux.HandleFunc("/api/detections", authMiddleware(token, s.handleDetections))
	return mux
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleScenes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	scenes := s.daemon.Scenes()
	resp := SceneListResponse{Scenes: make([]SceneSummary, 0, len(scenes))}
	for _, scene := range scenes {
		total := scene.TotalBytes()
		resp.Scenes = append(resp.Scenes, SceneSummary{
			SceneID:                   scene.SceneID,
			DisplayName:               scene.DisplayName,
			DefaultFusionMode:         scene.DefaultFusionMode,
			DefaultRepresentationMode: scene.DefaultRepresentationMode,
			Assets:                    len(scene.Assets),
			TotalBytes:                total,
			OverBudget:                total > manifest.DefaultBudgetBytes,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleSceneAction serves POST /api/scenes/{id}/load.
func (s *apiServer) handleSceneAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/scenes/")
	sceneID, action, ok := strings.Cut(rest, "/")
	if !ok || sceneID == "" || action != "load" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cycle, err := s.daemon.LoadScene(sceneID)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, LoadResponse{SceneID: sceneID, Cycle: cycle})
}

func (s *apiServer) handleRetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cycle, err := s.daemon.Retry()
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, LoadResponse{Cycle: cycle})
}

func (s *apiServer) handleModes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.daemon.State())
		return
	case http.MethodPost:
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var change ModeChange
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxModeBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&change); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	state, err := s.daemon.SetModes(change)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *apiServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := defaultEventLimit
	if value := strings.TrimSpace(r.URL.Query().Get("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	events, err := s.daemon.Events(r.Context(), limit)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if events == nil {
		events = []diagnostics.Event{}
	}
	s.writeJSON(w, http.StatusOK, EventListResponse{Events: events})
}

func (s *apiServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, fusion.DemoMetrics())
}

func (s *apiServer) handleDetections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	frame, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("frame")))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "frame query parameter is required")
		return
	}
	report, err := s.daemon.Detections(frame)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) writeFailure(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log().Warn("api request failed", logging.Error(err))
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
