// Package controller runs the single event loop that owns the active
// scene, the gesture state and the landmark buffers.
package controller

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ayusman/abhinaya/internal/animation"
	"github.com/ayusman/abhinaya/internal/bridge"
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/scene"
)

// Defaults applied by New.
const (
	DefaultWidth          = 1280
	DefaultHeight         = 720
	DefaultPreviewQuality = 70
	DefaultPreviewEvery   = 4

	eventQueueSize = 32
)

// Input errors.
var (
	ErrQueueFull   = errors.New("input queue full")
	ErrInvalidSize = errors.New("size must be positive")
	ErrStopped     = errors.New("controller stopped")
)

// Recorder receives every submitted frame before it reaches the loop.
type Recorder interface {
	Record(f landmark.Frame) error
}

// Config holds configuration options for the controller.
type Config struct {
	Registry *scene.Registry
	Bridge   bridge.Config

	// Width and Height are the initial display surface size.
	Width  int
	Height int
	// InitialScene is installed by Start. Empty starts on the idle view.
	InitialScene scene.ID

	// Ticker paces rendering. Nil means a real ticker at FPS.
	Ticker animation.Ticker
	FPS    int

	Recorder Recorder
	// OnSwitch runs on the loop after each scene install.
	OnSwitch func(id scene.ID)

	PreviewQuality int
	PreviewEvery   int
}

// State is everything the loop goroutine owns. Nothing else touches it.
type State struct {
	Window     *engine.Window
	Switcher   *scene.Switcher
	Dispatcher *gesture.Dispatcher
	Bridge     *bridge.Bridge
	Driver     *animation.Driver
	Idle       *IdleView

	// Switches counts installed pipelines.
	Switches uint64
	ticks    uint64
	handled  uint64
}

// Controller serializes frames, input events, scene switches and ticks
// onto one goroutine.
type Controller struct {
	config  Config
	state   State
	preview *Preview

	frames   chan landmark.Frame
	events   chan engine.Event
	requests chan scene.ID

	received atomic.Uint64
	dropped  atomic.Uint64

	statusMu sync.RWMutex
	status   Status

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

// New creates a controller. Call Start or Run to begin processing.
func New(config Config) *Controller {
	if config.Registry == nil {
		config.Registry = scene.NewRegistry()
	}
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = DefaultWidth, DefaultHeight
	}
	if config.PreviewQuality <= 0 {
		config.PreviewQuality = DefaultPreviewQuality
	}
	if config.PreviewEvery <= 0 {
		config.PreviewEvery = DefaultPreviewEvery
	}
	if config.Bridge.FaceCapacity <= 0 && config.Bridge.HandCapacity <= 0 {
		config.Bridge = bridge.DefaultConfig()
	}
	if config.Bridge.SourceWidth <= 0 || config.Bridge.SourceHeight <= 0 {
		def := bridge.DefaultConfig()
		config.Bridge.SourceWidth, config.Bridge.SourceHeight = def.SourceWidth, def.SourceHeight
	}

	w := engine.NewWindow(config.Width, config.Height)
	c := &Controller{
		config:   config,
		preview:  NewPreview(),
		frames:   make(chan landmark.Frame, 1),
		events:   make(chan engine.Event, eventQueueSize),
		requests: make(chan scene.ID, eventQueueSize),
	}
	c.state = State{
		Window:     w,
		Switcher:   scene.NewSwitcher(config.Registry, w),
		Dispatcher: gesture.NewDispatcher(),
		Driver:     animation.NewDriver(),
		Idle:       NewIdleView(config.Width, config.Height),
	}
	c.state.Bridge = bridge.New(config.Bridge, c.state.Idle.Graph)
	c.state.Switcher.OnInstall = c.onInstall
	c.state.Idle.Activate(w)
	c.publishStatus()
	return c
}

// Preview returns the published preview frames.
func (c *Controller) Preview() *Preview { return c.preview }

// Submit hands a frame to the loop. Only the latest frame is kept: a frame
// still waiting when the next one arrives is dropped.
func (c *Controller) Submit(f landmark.Frame) {
	c.received.Add(1)
	if c.config.Recorder != nil {
		if err := c.config.Recorder.Record(f); err != nil {
			log.Printf("record frame: %v", err)
		}
	}
	for {
		select {
		case c.frames <- f:
			return
		default:
		}
		select {
		case <-c.frames:
			c.dropped.Add(1)
		default:
		}
	}
}

// Key delivers a keydown with the given code, e.g. "Digit1".
func (c *Controller) Key(code string) error {
	return c.Input(engine.Event{Type: engine.EventKeyDown, Code: code})
}

// Resize changes the display surface size.
func (c *Controller) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}
	return c.Input(engine.Event{Type: engine.EventResize, Width: width, Height: height})
}

// Input queues a window event for the loop.
func (c *Controller) Input(ev engine.Event) error {
	select {
	case c.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// RequestScene asks the loop to build and install id.
func (c *Controller) RequestScene(id scene.ID) error {
	if !c.config.Registry.Has(id) {
		return scene.ErrUnknownScene
	}
	select {
	case c.requests <- id:
		return nil
	default:
		return ErrQueueFull
	}
}

// Scenes lists the registered scene IDs.
func (c *Controller) Scenes() []scene.ID { return c.config.Registry.IDs() }

// Start runs the loop in a goroutine. It installs the initial scene first,
// so a failed initial build is reported here. A stopped controller cannot
// be started again.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Don't start if already running
	if c.cancel != nil {
		return nil
	}
	if c.stopped {
		return ErrStopped
	}

	ctx, cancel := context.WithCancel(context.Background())
	if id := c.config.InitialScene; id != "" {
		if err := c.state.Switcher.SwitchTo(ctx, id); err != nil {
			cancel()
			return err
		}
	}

	c.cancel = cancel
	c.done = make(chan struct{})
	go func() {
		defer close(c.done)
		c.Run(ctx)
	}()

	log.Println("controller started")
	return nil
}

// Stop halts the loop and disposes the active scene.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel = nil
	c.stopped = true

	log.Println("controller stopped")
}

// Running reports whether the loop goroutine is alive.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}
