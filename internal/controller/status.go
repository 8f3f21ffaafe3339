package controller

import (
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/scene"
)

// Status is a snapshot of the loop state for the HTTP surface.
type Status struct {
	Scene         scene.ID   `json:"scene"`
	Pending       scene.ID   `json:"pending,omitempty"`
	Scenes        []scene.ID `json:"scenes"`
	Frames        uint64     `json:"frames"`
	Dropped       uint64     `json:"dropped"`
	Handled       uint64     `json:"handled"`
	Ticks         uint64     `json:"ticks"`
	Rendered      uint64     `json:"rendered"`
	Switches      uint64     `json:"switches"`
	Listeners     int        `json:"listeners"`
	LightsOn      bool       `json:"lightsOn"`
	Drawing       bool       `json:"drawing"`
	CameraStopped bool       `json:"cameraStopped"`
	Glitch        string     `json:"glitch"`
}

// Status returns the snapshot published after the last loop event.
func (c *Controller) Status() Status {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	st := c.status
	st.Frames = c.received.Load()
	st.Dropped = c.dropped.Load()
	return st
}

func (c *Controller) publishStatus() {
	gs := c.state.Dispatcher.State()
	pending, _ := c.state.Switcher.Pending()
	st := Status{
		Scene:         c.state.Switcher.ActiveID(),
		Pending:       pending,
		Scenes:        c.config.Registry.IDs(),
		Handled:       c.state.handled,
		Ticks:         c.state.ticks,
		Rendered:      c.state.Driver.Ticks(),
		Switches:      c.state.Switches,
		Listeners:     c.state.Window.ListenerCount(""),
		LightsOn:      gs.IsLightOn,
		Drawing:       gs.IsDrawing,
		CameraStopped: gs.CameraStopped,
		Glitch:        glitchName(gs.Glitch),
	}

	c.statusMu.Lock()
	c.status = st
	c.statusMu.Unlock()
}

func glitchName(l gesture.GlitchLevel) string {
	switch l {
	case gesture.GlitchNormal:
		return "normal"
	case gesture.GlitchWild:
		return "wild"
	default:
		return "none"
	}
}
