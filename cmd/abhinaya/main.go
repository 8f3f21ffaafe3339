package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/abhinaya/internal/bridge"
	"github.com/ayusman/abhinaya/internal/config"
	"github.com/ayusman/abhinaya/internal/controller"
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/scene"
	"github.com/ayusman/abhinaya/internal/scene/bloom"
	"github.com/ayusman/abhinaya/internal/scene/glitch"
	"github.com/ayusman/abhinaya/internal/server"
	"github.com/ayusman/abhinaya/internal/source"
	"github.com/ayusman/abhinaya/internal/store"
	"github.com/ayusman/abhinaya/internal/tray"
)

func main() {
	fmt.Println("Abhinaya - Gesture Scene Controller")

	dir := config.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := store.New(cfg.Record.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	var rec *store.Recorder
	if cfg.Record.Enabled && cfg.Source.Replay == "" {
		rec, err = store.NewRecorder(st, cfg.Record.Label)
		if err != nil {
			log.Fatalf("Failed to start recording: %v", err)
		}
		defer rec.Close()
		log.Printf("Recording session %s", rec.Session().ID)
	}

	reg := scene.NewRegistry()
	bloom.Register(reg)
	glitch.Register(reg)

	initial := scene.ID(cfg.InitialScene)
	if initial == "" {
		if last, err := st.Settings().Get(store.SettingLastScene); err == nil && reg.Has(scene.ID(last)) {
			initial = scene.ID(last)
		}
	}

	t := tray.New()
	ctlCfg := controller.Config{
		Registry:       reg,
		Bridge:         bridgeConfig(cfg.Tracking),
		Width:          cfg.Display.Width,
		Height:         cfg.Display.Height,
		InitialScene:   initial,
		FPS:            cfg.TickFPS,
		PreviewQuality: cfg.PreviewQuality,
		PreviewEvery:   cfg.PreviewEvery,
		OnSwitch: func(id scene.ID) {
			if err := st.Settings().Set(store.SettingLastScene, string(id)); err != nil {
				log.Printf("save last scene: %v", err)
			}
			t.SetActive(id)
		},
	}
	if rec != nil {
		ctlCfg.Recorder = rec
	}

	ctl := controller.New(ctlCfg)
	if err := ctl.Start(); err != nil {
		log.Fatalf("Failed to start controller: %v", err)
	}
	defer ctl.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go runSource(ctx, cfg.Source, st, ctl)

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		fmt.Printf("Serving static files from: %s\n", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir:  staticDir,
		Store:      st,
		Controller: ctl,
		Replay: func(id string) error {
			if _, err := st.Sessions().GetByID(id); err != nil {
				return err
			}
			go func() {
				r := &source.Replay{Store: st, SessionID: id}
				if err := r.Run(ctx, ctl); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("replay %s: %v", id, err)
				}
			}()
			return nil
		},
	})

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Listen)
		if err := srv.ListenAndServe(cfg.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()
	defer srv.Close()

	if !cfg.Tray {
		<-ctx.Done()
		return
	}

	t.OnScene(func(id scene.ID) {
		if err := ctl.RequestScene(id); err != nil {
			log.Printf("tray scene %s: %v", id, err)
		}
	})
	t.OnPreview(func() {
		log.Printf("Preview stream at http://localhost%s/api/stream", cfg.Listen)
	})
	t.OnQuit(cancel)
	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

// runSource feeds the controller from a recorded session or the tracking
// backend. Without either, frames only arrive on /api/landmarks.
func runSource(ctx context.Context, cfg config.Source, st *store.Store, ctl *controller.Controller) {
	var err error
	switch {
	case cfg.Replay != "":
		r := &source.Replay{Store: st, SessionID: cfg.Replay, Loop: true}
		err = r.Run(ctx, ctl)
	case cfg.URL != "":
		c := source.NewClient(cfg.URL)
		c.Reconnect = time.Duration(cfg.ReconnectMs) * time.Millisecond
		err = c.Run(ctx, ctl)
	default:
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("landmark source stopped: %v", err)
	}
}

func bridgeConfig(t config.Tracking) bridge.Config {
	bc := bridge.DefaultConfig()
	bc.SourceWidth = t.SourceWidth
	bc.SourceHeight = t.SourceHeight
	bc.HandScale = engine.V3(t.HandScale[0], t.HandScale[1], t.HandScale[2])
	bc.FaceScale = engine.V3(t.FaceScale[0], t.FaceScale[1], t.FaceScale[2])
	bc.FaceCapacity = t.FaceCapacity
	bc.HandCapacity = t.HandCapacity
	return bc
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.abhinaya/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(config.Dir(), "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
