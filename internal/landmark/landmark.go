// Package landmark defines the frame types delivered by the tracking backend.
package landmark

import "time"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// MaxFaceLandmarks is the size of the MediaPipe face mesh.
const MaxFaceLandmarks = 468

// MaxHandLandmarks is the per-hand buffer capacity. The backend has been
// observed to repeat a hand's points, so this leaves room for six copies.
const MaxHandLandmarks = NumLandmarks * 6

// Point3D is a single tracked point in source pixel space with a
// normalized depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Handedness identifies which hand an observation belongs to.
type Handedness string

const (
	Left  Handedness = "Left"
	Right Handedness = "Right"
)

// Label is a classified hand pose.
type Label string

// Labels produced by the MediaPipe gesture recognizer.
const (
	None       Label = "None"
	ClosedFist Label = "Closed_Fist"
	OpenPalm   Label = "Open_Palm"
	PointingUp Label = "Pointing_Up"
	ThumbDown  Label = "Thumb_Down"
	ThumbUp    Label = "Thumb_Up"
	Victory    Label = "Victory"
	ILoveYou   Label = "ILoveYou"
)

// Mouth is the open/closed state the backend derives from the face mesh.
type Mouth string

const (
	MouthOpen   Mouth = "Open"
	MouthClosed Mouth = "Closed"
)

// HandObservation is one tracked hand.
type HandObservation struct {
	Type      Handedness `json:"type"`
	Landmarks []Point3D  `json:"landmarks"`
}

// Frame is one inbound batch of landmarks for a time instant.
// A missing category is represented by an empty slice.
type Frame struct {
	Face      []Point3D         `json:"face,omitempty"`
	Hands     []HandObservation `json:"hands,omitempty"`
	Gesture   Label             `json:"gesture,omitempty"`
	Mouth     Mouth             `json:"mouth,omitempty"`
	Timestamp time.Time         `json:"-"`
}

// Hand returns the landmarks of the first hand of the given side, or nil.
func (f *Frame) Hand(side Handedness) []Point3D {
	for i := range f.Hands {
		if f.Hands[i].Type == side && len(f.Hands[i].Landmarks) > 0 {
			return f.Hands[i].Landmarks
		}
	}
	return nil
}

// GestureHand reports which hand the frame's gesture label belongs to.
// The recognizer classifies only the first listed hand.
func (f *Frame) GestureHand() (Handedness, bool) {
	if len(f.Hands) == 0 || f.Gesture == "" {
		return "", false
	}
	return f.Hands[0].Type, true
}
