// Package server provides the HTTP server for the Abhinaya scene controller.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/abhinaya/internal/controller"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/server/api"
	"github.com/ayusman/abhinaya/internal/store"
)

// Controller is the controller surface the server exposes.
type Controller interface {
	api.Controller
	Submit(f landmark.Frame)
	Preview() *controller.Preview
}

// Config holds the server configuration.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Controller Controller
	// Replay plays a recorded session back into the controller.
	Replay func(id string) error
}

// Server represents the HTTP server for the Abhinaya application.
type Server struct {
	config    Config
	mux       *http.ServeMux
	start     time.Time
	landmarks *LandmarksHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if ctl := s.config.Controller; ctl != nil {
		s.landmarks = NewLandmarksHandler(ctl)
		s.mux.Handle("/api/landmarks", s.landmarks)
		s.mux.Handle("/api/scene", api.NewSceneHandler(ctl))
		s.mux.Handle("/api/stream", NewStreamHandler(ctl.Preview()))

		input := api.NewInputHandler(ctl)
		s.mux.Handle("/api/input/key", input)
		s.mux.Handle("/api/input/resize", input)
	}

	// Register session API handler if Store is configured
	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		sessions.Replay = s.config.Replay
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.landmarks != nil {
		response["producers"] = s.landmarks.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Close disconnects every landmark producer.
func (s *Server) Close() {
	if s.landmarks != nil {
		s.landmarks.Close()
	}
}
