package landmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EventName is the message name used by the tracking backend.
const EventName = "landmarks_data"

// ErrUnknownEvent is returned for envelopes carrying a different event.
var ErrUnknownEvent = errors.New("unknown event")

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// wireHand accepts both the structured form {type, landmarks} and the
// flat per-point form {type, x, y, z} the backend emits.
type wireHand struct {
	Type      Handedness `json:"type"`
	Landmarks []Point3D  `json:"landmarks,omitempty"`
	X         *float64   `json:"x,omitempty"`
	Y         *float64   `json:"y,omitempty"`
	Z         *float64   `json:"z,omitempty"`
}

type wireFrame struct {
	Face      []Point3D  `json:"face,omitempty"`
	Hands     []wireHand `json:"hands,omitempty"`
	Gesture   Label      `json:"gesture,omitempty"`
	Mouth     Mouth      `json:"mouth,omitempty"`
	Timestamp int64      `json:"timestamp,omitempty"`
}

// Decode parses a landmarks_data message, either bare or wrapped in an
// {"event", "data"} envelope.
func Decode(data []byte) (Frame, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Frame{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Event != "" {
		if env.Event != EventName {
			return Frame{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
		}
		data = env.Data
	}

	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}

	f := Frame{
		Face:    w.Face,
		Gesture: w.Gesture,
		Mouth:   w.Mouth,
	}
	if w.Timestamp > 0 {
		f.Timestamp = time.UnixMilli(w.Timestamp)
	} else {
		f.Timestamp = time.Now()
	}
	f.Hands = groupHands(w.Hands)
	return f, nil
}

// groupHands merges flat per-point entries into one observation per side,
// keeping the order in which sides first appear.
func groupHands(in []wireHand) []HandObservation {
	if len(in) == 0 {
		return nil
	}

	var out []HandObservation
	index := make(map[Handedness]int, 2)
	for _, h := range in {
		if h.Type != Left && h.Type != Right {
			continue
		}
		if h.X == nil && h.Y == nil {
			if len(h.Landmarks) == 0 {
				continue
			}
			out = append(out, HandObservation{Type: h.Type, Landmarks: h.Landmarks})
			continue
		}

		p := Point3D{}
		if h.X != nil {
			p.X = *h.X
		}
		if h.Y != nil {
			p.Y = *h.Y
		}
		if h.Z != nil {
			p.Z = *h.Z
		}
		i, ok := index[h.Type]
		if !ok {
			out = append(out, HandObservation{Type: h.Type})
			i = len(out) - 1
			index[h.Type] = i
		}
		out[i].Landmarks = append(out[i].Landmarks, p)
	}
	return out
}

// Encode serializes a frame in the structured wire form.
func Encode(f Frame) ([]byte, error) {
	w := wireFrame{
		Face:    f.Face,
		Gesture: f.Gesture,
		Mouth:   f.Mouth,
	}
	if !f.Timestamp.IsZero() {
		w.Timestamp = f.Timestamp.UnixMilli()
	}
	for _, h := range f.Hands {
		w.Hands = append(w.Hands, wireHand{Type: h.Type, Landmarks: h.Landmarks})
	}
	return json.Marshal(w)
}
