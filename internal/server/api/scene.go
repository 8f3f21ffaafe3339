package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/abhinaya/internal/controller"
	"github.com/ayusman/abhinaya/internal/scene"
)

// Controller is the part of the controller the API drives.
type Controller interface {
	Status() controller.Status
	RequestScene(id scene.ID) error
	Key(code string) error
	Resize(width, height int) error
}

// SceneHandler serves /api/scene: GET reports the loop status, POST
// requests a scene switch.
type SceneHandler struct {
	ctl Controller
}

// NewSceneHandler creates a new SceneHandler.
func NewSceneHandler(c Controller) *SceneHandler {
	return &SceneHandler{ctl: c}
}

type switchRequest struct {
	Scene string `json:"scene"`
}

// ServeHTTP implements the http.Handler interface.
func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctl.Status())
	case http.MethodPost:
		h.request(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SceneHandler) request(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Scene == "" {
		writeError(w, http.StatusBadRequest, "Scene is required")
		return
	}

	err := h.ctl.RequestScene(scene.ID(req.Scene))
	switch {
	case errors.Is(err, scene.ErrUnknownScene):
		writeError(w, http.StatusNotFound, "Unknown scene")
	case errors.Is(err, controller.ErrQueueFull):
		writeError(w, http.StatusServiceUnavailable, "Controller busy")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to request scene")
	default:
		writeJSON(w, http.StatusAccepted, switchRequest{Scene: req.Scene})
	}
}

// InputHandler serves /api/input/key and /api/input/resize, the keyboard
// and window-size inputs of a display client.
type InputHandler struct {
	ctl Controller
}

// NewInputHandler creates a new InputHandler.
func NewInputHandler(c Controller) *InputHandler {
	return &InputHandler{ctl: c}
}

type keyRequest struct {
	Code string `json:"code"`
}

type resizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ServeHTTP implements the http.Handler interface.
func (h *InputHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/api/input/key":
		h.key(w, r)
	case "/api/input/resize":
		h.resize(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *InputHandler) key(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "Key code is required")
		return
	}
	if err := h.ctl.Key(req.Code); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InputHandler) resize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	err := h.ctl.Resize(req.Width, req.Height)
	switch {
	case errors.Is(err, controller.ErrInvalidSize):
		writeError(w, http.StatusBadRequest, "Width and height must be positive")
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
