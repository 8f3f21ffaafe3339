package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/abhinaya/internal/controller"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/scene"
	"github.com/ayusman/abhinaya/internal/store"
)

// stubController records submitted frames and reports a fixed status.
type stubController struct {
	mu      sync.Mutex
	frames  []landmark.Frame
	preview *controller.Preview
}

func newStubController() *stubController {
	return &stubController{preview: controller.NewPreview()}
}

func (c *stubController) Status() controller.Status {
	return controller.Status{Scene: scene.Scene1}
}

func (c *stubController) RequestScene(scene.ID) error { return nil }
func (c *stubController) Key(string) error            { return nil }
func (c *stubController) Resize(int, int) error       { return nil }

func (c *stubController) Preview() *controller.Preview { return c.preview }

func (c *stubController) Submit(f landmark.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
}

func (c *stubController) submitted() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func getHealth(t *testing.T, s *Server) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	return body
}

func waitProducers(t *testing.T, s *Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, _ := getHealth(t, s)["producers"].(float64)
		if int(got) == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("producers = %v, want %d", got, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServer_Health(t *testing.T) {
	t.Run("without controller", func(t *testing.T) {
		body := getHealth(t, New(Config{}))
		if body["status"] != "ok" {
			t.Errorf("status = %v, want ok", body["status"])
		}
		if _, ok := body["uptime"]; !ok {
			t.Error("missing uptime")
		}
		if _, ok := body["producers"]; ok {
			t.Error("producers reported without a landmarks endpoint")
		}
	})

	t.Run("with controller", func(t *testing.T) {
		body := getHealth(t, New(Config{Controller: newStubController()}))
		if got, ok := body["producers"].(float64); !ok || got != 0 {
			t.Errorf("producers = %v, want 0", body["producers"])
		}
	})

	t.Run("rejects other methods", func(t *testing.T) {
		s := New(Config{})
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(method, "/api/health", nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("%s status = %d, want %d", method, rec.Code, http.StatusMethodNotAllowed)
			}
		}
	})
}

func TestServer_RoutesFollowConfig(t *testing.T) {
	db, err := store.New(filepath.Join(t.TempDir(), "routes.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer db.Close()

	tests := []struct {
		name   string
		config Config
		path   string
		want   int
	}{
		{"scene without controller", Config{}, "/api/scene", http.StatusNotFound},
		{"scene with controller", Config{Controller: newStubController()}, "/api/scene", http.StatusOK},
		{"sessions without store", Config{}, "/api/sessions", http.StatusNotFound},
		{"sessions with store", Config{Store: db}, "/api/sessions", http.StatusOK},
		{"unknown api path", Config{Controller: newStubController(), Store: db}, "/api/nonexistent", http.StatusNotFound},
		{"root without static dir", Config{}, "/", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(tt.config).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestServer_ProducersAndClose(t *testing.T) {
	ctl := newStubController()
	srv := New(Config{Controller: ctl})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/landmarks"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	waitProducers(t, srv, 1)

	msg := `{"hands":[{"type":"Left","x":10,"y":20,"z":0}],"gesture":"Open_Palm"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for ctl.submitted() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("frame never reached the controller")
		}
		time.Sleep(5 * time.Millisecond)
	}

	srv.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() after Close error = %v, want going away", err)
	}
	waitProducers(t, srv, 0)
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	index := "<html><body>preview</body></html>"
	script := "console.log('abhinaya')"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte(script), 0644); err != nil {
		t.Fatal(err)
	}

	s := New(Config{StaticDir: dir, Controller: newStubController()})

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/", http.StatusOK, index},
		{"/app.js", http.StatusOK, script},
		{"/missing.html", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}

	// API routes take precedence over the file server.
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scene", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/scene status = %d, want %d", rec.Code, http.StatusOK)
	}
}
