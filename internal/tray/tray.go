// Package tray provides a system tray menu for switching scenes.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/abhinaya/internal/scene"
)

// Tray is the system tray application. Its scene items are the
// tray equivalent of the Digit1 and Digit2 keys.
type Tray struct {
	onScene   func(id scene.ID)
	onPreview func()
	onQuit    func()
	active    scene.ID
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuActive *systray.MenuItem
}

// New creates a new Tray.
func New() *Tray {
	return &Tray{}
}

// OnScene sets the callback called when a scene item is clicked.
func (t *Tray) OnScene(fn func(id scene.ID)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onScene = fn
}

// OnPreview sets the callback called when the preview item is clicked.
func (t *Tray) OnPreview(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPreview = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Abhinaya")
	systray.SetTooltip("Abhinaya gesture scenes")

	t.mu.Lock()
	t.menuActive = systray.AddMenuItem(activeTitle(t.active), "Active scene")
	t.menuActive.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuScene1 := systray.AddMenuItem("Scene 1: Bloom", "Switch to the bloom field")
	menuScene2 := systray.AddMenuItem("Scene 2: Glitch", "Switch to the glitch lines")
	systray.AddSeparator()

	menuPreview := systray.AddMenuItem("Open Preview...", "Open the preview in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Abhinaya")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuScene1.ClickedCh:
				t.handleScene(scene.Scene1)
			case <-menuScene2.ClickedCh:
				t.handleScene(scene.Scene2)
			case <-menuPreview.ClickedCh:
				t.handlePreview()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleScene(id scene.ID) {
	t.mu.RLock()
	callback := t.onScene
	t.mu.RUnlock()

	if callback != nil {
		callback(id)
	}
}

func (t *Tray) handlePreview() {
	t.mu.RLock()
	callback := t.onPreview
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetActive updates the active scene display in the menu.
func (t *Tray) SetActive(id scene.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = id
	if t.menuActive != nil {
		t.menuActive.SetTitle(activeTitle(id))
	}
}

// Active returns the scene last reported through SetActive.
func (t *Tray) Active() scene.ID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

func activeTitle(id scene.ID) string {
	if id == "" {
		return "Active: idle"
	}
	return "Active: " + string(id)
}

// Quit stops Run from another goroutine.
func (t *Tray) Quit() {
	systray.Quit()
}
