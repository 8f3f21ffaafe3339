// Package gesture maps classified hand poses onto scene actions. The
// dispatcher is a small state machine: it keeps the drawing, lighting,
// camera and glitch latches of the current scene and decides which
// commands a gesture turns into.
package gesture

import (
	"slices"

	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/scene"
)

// Kind is the type of an action.
type Kind int

const (
	ClearMarkers Kind = iota + 1
	LightsOff
	LightsOn
	// BloomOff and BloomOn cast a ray through Action.Point.
	BloomOff
	BloomOn
	ZoomIn
	ZoomOut
	// DrawAppend adds Action.Point to the polyline being drawn.
	DrawAppend
	// DrawEnd finishes the polyline; Action.Polyline holds its points.
	DrawEnd
	CameraStop
	CameraResume
	WildGlitch
	NormalGlitch
	// SwitchScene requests Action.Scene.
	SwitchScene
)

var kindNames = map[Kind]string{
	ClearMarkers: "clear_markers",
	LightsOff:    "lights_off",
	LightsOn:     "lights_on",
	BloomOff:     "bloom_off",
	BloomOn:      "bloom_on",
	ZoomIn:       "zoom_in",
	ZoomOut:      "zoom_out",
	DrawAppend:   "draw_append",
	DrawEnd:      "draw_end",
	CameraStop:   "camera_stop",
	CameraResume: "camera_resume",
	WildGlitch:   "wild_glitch",
	NormalGlitch: "normal_glitch",
	SwitchScene:  "switch_scene",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Action is one command produced by a gesture.
type Action struct {
	Kind     Kind
	Point    engine.Vec3
	Scene    scene.ID
	Polyline []engine.Vec3
}

// Input is one gesture observation.
type Input struct {
	Scene scene.ID
	// Pending is the scene being built, if any. Switch rules compare
	// against it before the active scene.
	Pending scene.ID
	Hand    landmark.Handedness
	Gesture landmark.Label
	// Fingertip is the projected index fingertip, nil when the hand was lost.
	Fingertip *engine.Vec3
}

// GlitchLevel is the intensity of the glitch effect.
type GlitchLevel int

const (
	GlitchNone GlitchLevel = iota
	GlitchNormal
	GlitchWild
)

// State holds the interaction latches of the active scene.
type State struct {
	IsDrawing     bool
	IsLightOn     bool
	CameraStopped bool
	Glitch        GlitchLevel
	Polyline      []engine.Vec3
}

// DefaultState is the state of a freshly installed scene.
func DefaultState() State {
	return State{IsLightOn: true}
}

type ruleKey struct {
	scene scene.ID
	hand  landmark.Handedness
	label landmark.Label
}

// rule turns an input into actions, updating the state it owns.
type rule func(st *State, in Input) []Action

// anyScene keys rules that apply whichever scene is active.
const anyScene scene.ID = ""

var rules = map[ruleKey]rule{
	{scene.Scene1, landmark.Left, landmark.Victory}:    emit(ClearMarkers),
	{scene.Scene1, landmark.Left, landmark.ClosedFist}: lightsOff,
	{scene.Scene1, landmark.Left, landmark.OpenPalm}:   lightsOn,
	{scene.Scene1, landmark.Left, landmark.PointingUp}: toggleBloom,
	{scene.Scene1, landmark.Left, landmark.ThumbUp}:    emit(ZoomIn),
	{scene.Scene1, landmark.Left, landmark.ThumbDown}:  emit(ZoomOut),

	{scene.Scene2, landmark.Left, landmark.PointingUp}: draw,
	{scene.Scene2, landmark.Left, landmark.ThumbUp}:    emit(ZoomIn),
	{scene.Scene2, landmark.Left, landmark.ThumbDown}:  emit(ZoomOut),
	{scene.Scene2, landmark.Left, landmark.OpenPalm}:   cameraResume,
	{scene.Scene2, landmark.Left, landmark.ClosedFist}: cameraStop,
	{scene.Scene2, landmark.Left, landmark.Victory}:    glitch(GlitchWild, WildGlitch),
	{scene.Scene2, landmark.Left, landmark.ILoveYou}:   glitch(GlitchNormal, NormalGlitch),

	{anyScene, landmark.Right, landmark.Victory}:  switchTo(scene.Scene1),
	{anyScene, landmark.Right, landmark.ILoveYou}: switchTo(scene.Scene2),
}

// Dispatcher evaluates gestures against the rule table.
type Dispatcher struct {
	state State
}

// NewDispatcher returns a dispatcher in the default state.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{state: DefaultState()}
}

// Reset restores the default state, dropping any polyline in progress.
func (d *Dispatcher) Reset() {
	d.state = DefaultState()
}

// State returns a copy of the current latches.
func (d *Dispatcher) State() State {
	st := d.state
	st.Polyline = slices.Clone(d.state.Polyline)
	return st
}

// Dispatch returns the actions for in, in the order they should run.
func (d *Dispatcher) Dispatch(in Input) []Action {
	var actions []Action

	// In scene2 every left-hand pose other than pointing ends the stroke.
	if in.Scene == scene.Scene2 && in.Hand == landmark.Left && in.Gesture != landmark.PointingUp {
		actions = append(actions, d.endDrawing()...)
	}

	r, ok := rules[ruleKey{in.Scene, in.Hand, in.Gesture}]
	if !ok {
		r, ok = rules[ruleKey{anyScene, in.Hand, in.Gesture}]
	}
	if ok {
		actions = append(actions, r(&d.state, in)...)
	}
	return actions
}

func (d *Dispatcher) endDrawing() []Action {
	if !d.state.IsDrawing {
		return nil
	}
	a := Action{Kind: DrawEnd, Polyline: d.state.Polyline}
	d.state.IsDrawing = false
	d.state.Polyline = nil
	return []Action{a}
}

func emit(k Kind) rule {
	return func(*State, Input) []Action {
		return []Action{{Kind: k}}
	}
}

func lightsOff(st *State, _ Input) []Action {
	if !st.IsLightOn {
		return nil
	}
	st.IsLightOn = false
	return []Action{{Kind: LightsOff}}
}

func lightsOn(st *State, _ Input) []Action {
	if st.IsLightOn {
		return nil
	}
	st.IsLightOn = true
	return []Action{{Kind: LightsOn}}
}

// toggleBloom removes glow along the finger ray while the lights are on
// and adds it while they are off.
func toggleBloom(st *State, in Input) []Action {
	if in.Fingertip == nil {
		return nil
	}
	k := BloomOn
	if st.IsLightOn {
		k = BloomOff
	}
	return []Action{{Kind: k, Point: *in.Fingertip}}
}

func draw(st *State, in Input) []Action {
	if in.Fingertip == nil {
		return nil
	}
	st.IsDrawing = true
	st.Polyline = append(st.Polyline, *in.Fingertip)
	return []Action{{Kind: DrawAppend, Point: *in.Fingertip}}
}

func cameraStop(st *State, _ Input) []Action {
	if st.CameraStopped {
		return nil
	}
	st.CameraStopped = true
	st.Glitch = GlitchNone
	return []Action{{Kind: CameraStop}}
}

func cameraResume(st *State, _ Input) []Action {
	if !st.CameraStopped {
		return nil
	}
	st.CameraStopped = false
	return []Action{{Kind: CameraResume}}
}

func glitch(level GlitchLevel, k Kind) rule {
	return func(st *State, _ Input) []Action {
		st.Glitch = level
		return []Action{{Kind: k}}
	}
}

func switchTo(id scene.ID) rule {
	return func(_ *State, in Input) []Action {
		target := in.Scene
		if in.Pending != "" {
			target = in.Pending
		}
		if target == id {
			return nil
		}
		return []Action{{Kind: SwitchScene, Scene: id}}
	}
}

// Apply runs a on p and reports whether a was a pipeline command.
// DrawAppend, DrawEnd and SwitchScene are left to the caller.
func Apply(p scene.Actions, a Action) bool {
	switch a.Kind {
	case ClearMarkers:
		p.RemoveAllArrowHelpers()
	case LightsOff:
		p.LightsOff()
	case LightsOn:
		p.LightsOn()
	case BloomOff:
		p.TurnIntersectsOff(a.Point.X, a.Point.Y, a.Point.Z)
	case BloomOn:
		p.TurnIntersectsOn(a.Point.X, a.Point.Y, a.Point.Z)
	case ZoomIn:
		p.ZoomIn()
	case ZoomOut:
		p.ZoomOut()
	case CameraStop:
		p.CameraStop()
	case CameraResume:
		p.CameraResume()
	case WildGlitch:
		p.WildGlitch()
	case NormalGlitch:
		p.NormalGlitch()
	default:
		return false
	}
	return true
}
