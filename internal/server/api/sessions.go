package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/abhinaya/internal/store"
)

// SessionHandler handles HTTP requests for recorded sessions.
type SessionHandler struct {
	store *store.Store
	// Replay, when set, plays a session back into the controller.
	Replay func(id string) error
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

type sessionResponse struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
	Frames    int    `json:"frames"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type framesResponse struct {
	Frames []store.RecordedFrame `json:"frames"`
}

func toResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID,
		Label:     s.Label,
		StartedAt: s.StartedAt.Format(timeFormat),
		Frames:    s.Frames,
	}
	if s.EndedAt != nil {
		resp.EndedAt = s.EndedAt.Format(timeFormat)
	}
	return resp
}

// ServeHTTP routes /api/sessions, /api/sessions/{id},
// /api/sessions/{id}/frames and /api/sessions/{id}/replay.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		h.delete(w, r, id)
	case sub == "frames" && r.Method == http.MethodGet:
		h.frames(w, r, id)
	case sub == "replay" && r.Method == http.MethodPost:
		h.replay(w, r, id)
	case sub == "" || sub == "frames" || sub == "replay":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// list handles GET /api/sessions.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, ok := h.lookup(w, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toResponse(sess))
}

// frames handles GET /api/sessions/{id}/frames.
func (h *SessionHandler) frames(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := h.lookup(w, id); !ok {
		return
	}
	frames, err := h.store.Frames().List(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list frames")
		return
	}
	if frames == nil {
		frames = []store.RecordedFrame{}
	}
	writeJSON(w, http.StatusOK, framesResponse{Frames: frames})
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Sessions().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// replay handles POST /api/sessions/{id}/replay.
func (h *SessionHandler) replay(w http.ResponseWriter, r *http.Request, id string) {
	if h.Replay == nil {
		writeError(w, http.StatusNotImplemented, "Replay not available")
		return
	}
	if _, ok := h.lookup(w, id); !ok {
		return
	}
	if err := h.Replay(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start replay")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *SessionHandler) lookup(w http.ResponseWriter, id string) (*store.Session, bool) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return nil, false
	}
	return sess, true
}
