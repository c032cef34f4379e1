// Package server exposes the scan results over HTTP: a JSON/XML/HTML/YAML/
// text report endpoint, a single-aircraft lookup and a websocket feed that
// pushes every watch cycle.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/unklstewy/cyberairpatrol/internal/watch"
	"github.com/unklstewy/cyberairpatrol/pkg/adsb"
	"github.com/unklstewy/cyberairpatrol/pkg/alerts"
	"github.com/unklstewy/cyberairpatrol/pkg/logger"
	"github.com/unklstewy/cyberairpatrol/pkg/render"
	"github.com/unklstewy/cyberairpatrol/pkg/tracking"
)

var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

var contentTypes = map[render.Format]string{
	render.Text: "text/plain; charset=utf-8",
	render.JSON: "application/json",
	render.XML:  "application/xml",
	render.HTML: "text/html; charset=utf-8",
	render.YAML: "application/yaml",
}

// Options configures a Server.
type Options struct {
	Runner      *watch.Runner
	Source      adsb.DataSource
	Thresholds  alerts.Thresholds
	CORSOrigins []string
	Logger      *logger.Logger
}

// Server holds the HTTP router and its dependencies.
type Server struct {
	router   *chi.Mux
	runner   *watch.Runner
	source   adsb.DataSource
	renderer *render.Renderer
	hub      *Hub
	th       alerts.Thresholds
	log      *logger.Logger
	started  time.Time
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	th := opts.Thresholds
	if th == (alerts.Thresholds{}) {
		th = alerts.DefaultThresholds()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		router:   chi.NewRouter(),
		runner:   opts.Runner,
		source:   opts.Source,
		renderer: render.New(opts.Runner.Classifier()),
		hub:      NewHub(log, originChecker(origins)),
		th:       th,
		log:      log.Named("http").With(logger.Any("cors_origins", origins)),
		started:  time.Now(),
	}
	s.hub.onRequest = s.latestMessage
	s.setupRoutes(origins)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(origins []string) {
	r := s.router

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.hub.HandleConnection)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Get("/aircraft", s.handleGetAircraft)
		r.Get("/aircraft/{hex}", s.handleGetAircraftByHex)
	})
}

// Run starts the watch loop, the websocket hub and the HTTP listener, and
// shuts everything down gracefully when ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.Run(ctx)

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		s.runner.Run(ctx, func(snap *watch.Snapshot) {
			if err := s.hub.Broadcast(ctx, &Message{Type: MessageTypeSnapshot, Data: snap}); err != nil && ctx.Err() == nil {
				s.log.Warn("Broadcast failed", logger.Error(err))
			}
		}, func(err error) {
			s.hub.Broadcast(ctx, &Message{Type: MessageTypeError, Data: err.Error()})
		})
	}()

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", logger.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	s.log.Info("Shutting down server")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("server forced to shutdown: %w", err)
	}
	<-watchDone

	s.log.Info("Server stopped")
	return runErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"clients": s.hub.ClientCount(),
	}
	if snap := s.runner.Latest(); snap != nil {
		resp["last_scan"] = snap.Time.UTC()
		resp["aircraft"] = len(snap.Entries)
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleGetAircraft returns the latest snapshot. Without a format parameter
// the snapshot is returned as JSON with classification and alerts; with one
// the aircraft list is rendered as that report format, with unknown
// formats rendered as text.
func (s *Server) handleGetAircraft(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	name := r.URL.Query().Get("format")
	if name == "" {
		respondJSON(w, http.StatusOK, snap)
		return
	}

	format := render.ParseFormat(name)
	if string(format) != strings.ToLower(strings.TrimSpace(name)) {
		s.log.Debug("Unknown format, using text", logger.String("format", name))
	}

	obs := snap.Observer
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.renderer.Render(snap.Aircraft, format, obs.Lat, obs.Lon)))
}

// handleGetAircraftByHex returns one aircraft, from the latest snapshot if
// it is there and from the feed otherwise.
func (s *Server) handleGetAircraftByHex(w http.ResponseWriter, r *http.Request) {
	hex := chi.URLParam(r, "hex")
	if !hexPattern.MatchString(hex) {
		respondError(w, http.StatusBadRequest, "hex must be 6 hexadecimal digits")
		return
	}
	hex = strings.ToLower(hex)

	if snap := s.runner.Latest(); snap != nil {
		for _, e := range snap.Entries {
			if e.Hex == hex {
				respondJSON(w, http.StatusOK, e)
				return
			}
		}
	}

	ac, err := s.source.GetAircraftByHex(r.Context(), hex)
	if err != nil {
		if errors.Is(err, adsb.ErrUnauthorized) {
			respondError(w, http.StatusBadGateway, err.Error())
			return
		}
		if rle, ok := adsb.IsRateLimitError(err); ok {
			if rle.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rle.RetryAfter.Seconds()))
			}
			respondError(w, http.StatusTooManyRequests, rle.Error())
			return
		}
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	if ac == nil {
		respondError(w, http.StatusNotFound, "aircraft not found")
		return
	}

	obs := s.runner.Observer()
	entry := watch.NewEntry(tracking.Enrich(*ac, &obs), s.runner.Classifier(), s.th)
	respondJSON(w, http.StatusOK, entry)
}

// snapshot returns the latest snapshot, scanning once if none exists yet.
func (s *Server) snapshot(ctx context.Context) (*watch.Snapshot, error) {
	if snap := s.runner.Latest(); snap != nil {
		return snap, nil
	}
	return s.runner.Scan(ctx)
}

func (s *Server) latestMessage() *Message {
	snap := s.runner.Latest()
	if snap == nil {
		return nil
	}
	return &Message{Type: MessageTypeSnapshot, Data: snap}
}

// requestLogger logs each request through the structured logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("Request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Int("bytes", ww.BytesWritten()),
			logger.Duration("took", time.Since(start)),
			logger.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func originChecker(origins []string) func(*http.Request) bool {
	for _, o := range origins {
		if o == "*" {
			return nil
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
