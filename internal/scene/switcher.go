package scene

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ayusman/abhinaya/internal/engine"
)

// Result is the outcome of one background construction.
type Result struct {
	ID       ID
	Token    uint64
	Pipeline Pipeline
	Err      error
}

// Switcher owns the active pipeline. Request, Complete and SwitchTo must be
// called from a single goroutine; only construction runs elsewhere.
//
// Every request takes a new token. A finished construction is installed
// only if its token is still the latest, so overlapping requests can never
// leave two pipelines registered on the window.
type Switcher struct {
	// OnInstall runs after a new pipeline has been activated.
	OnInstall func(old, p Pipeline)

	registry *Registry
	window   *engine.Window
	results  chan Result
	builds   sync.WaitGroup
	token    uint64
	pending  ID
	active   Pipeline
}

// NewSwitcher returns a switcher installing pipelines onto w.
func NewSwitcher(reg *Registry, w *engine.Window) *Switcher {
	return &Switcher{
		registry: reg,
		window:   w,
		results:  make(chan Result, 4),
	}
}

// Results delivers finished constructions. Pass each to Complete.
func (s *Switcher) Results() <-chan Result { return s.results }

// Active returns the installed pipeline, or nil.
func (s *Switcher) Active() Pipeline { return s.active }

// ActiveID returns the installed scene ID, or "" when none is active.
func (s *Switcher) ActiveID() ID {
	if s.active == nil {
		return ""
	}
	return s.active.ID()
}

// Pending returns the scene being built, if any.
func (s *Switcher) Pending() (ID, bool) {
	return s.pending, s.pending != ""
}

// Request starts building id in the background and returns its token.
// A request for the scene already being built is coalesced into it.
func (s *Switcher) Request(ctx context.Context, id ID) uint64 {
	if s.pending == id {
		return s.token
	}
	s.token++
	s.pending = id
	token := s.token

	w, h := s.window.Size()
	opts := Options{Width: w, Height: h}
	s.builds.Add(1)
	go func() {
		defer s.builds.Done()
		p, err := s.registry.Build(ctx, id, opts)
		if ctx.Err() == nil {
			select {
			case s.results <- Result{ID: id, Token: token, Pipeline: p, Err: err}:
				return
			case <-ctx.Done():
			}
		}
		if p != nil {
			p.Disable()
		}
	}()
	return token
}

// Complete installs a finished construction. Superseded results are
// disposed and reported with ErrSuperseded. A failed construction leaves
// the active pipeline in place and returns an error wrapping ErrSceneLoad.
func (s *Switcher) Complete(r Result) error {
	if r.Token != s.token {
		discard(r)
		return fmt.Errorf("%w: %s (token %d, latest %d)", ErrSuperseded, r.ID, r.Token, s.token)
	}
	s.pending = ""

	if r.Err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSceneLoad, r.ID, r.Err)
	}
	if r.Pipeline == nil {
		return fmt.Errorf("%w: %s: factory returned no pipeline", ErrSceneLoad, r.ID)
	}

	old := s.active
	if old != nil {
		old.Disable()
	}
	r.Pipeline.Activate(s.window)
	s.active = r.Pipeline
	log.Printf("scene %s active", r.ID)

	if s.OnInstall != nil {
		s.OnInstall(old, r.Pipeline)
	}
	return nil
}

// SwitchTo requests id and blocks until that request is installed or fails.
// Results of older requests that arrive first are completed along the way.
func (s *Switcher) SwitchTo(ctx context.Context, id ID) error {
	token := s.Request(ctx, id)
	for {
		select {
		case r := <-s.results:
			err := s.Complete(r)
			if r.Token == token {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close disables the active pipeline, waits for constructions still in
// flight and disposes every result nobody completed. Cancel the context
// passed to Request first, or Close waits for those builds to finish.
func (s *Switcher) Close() {
	if s.active != nil {
		s.active.Disable()
		s.active = nil
	}
	s.token++
	s.pending = ""

	idle := make(chan struct{})
	go func() {
		s.builds.Wait()
		close(idle)
	}()
	for {
		select {
		case r := <-s.results:
			discard(r)
		case <-idle:
			for {
				select {
				case r := <-s.results:
					discard(r)
				default:
					return
				}
			}
		}
	}
}

func discard(r Result) {
	if r.Pipeline != nil {
		r.Pipeline.Disable()
	}
}
