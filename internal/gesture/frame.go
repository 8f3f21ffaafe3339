package gesture

import (
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/scene"
)

// Inputs derives the gesture inputs carried by f for the active scene.
// leftTip and rightTip are the projected fingertips, nil when unknown.
//
// The recognizer labels only the first listed hand. A left hand that is
// present but unlabelled is reported as None so scene2 can end a stroke.
// Right-hand inputs come first.
func Inputs(f *landmark.Frame, active scene.ID, leftTip, rightTip *engine.Vec3) []Input {
	labelled, ok := f.GestureHand()
	if len(f.Hands) == 0 {
		return nil
	}

	var in []Input
	if ok && labelled == landmark.Right {
		in = append(in, Input{Scene: active, Hand: landmark.Right, Gesture: f.Gesture, Fingertip: rightTip})
	}
	if f.Hand(landmark.Left) != nil {
		switch {
		case labelled == landmark.Left && ok:
			in = append(in, Input{Scene: active, Hand: landmark.Left, Gesture: f.Gesture, Fingertip: leftTip})
		case f.Hands[0].Type != landmark.Left:
			in = append(in, Input{Scene: active, Hand: landmark.Left, Gesture: landmark.None, Fingertip: leftTip})
		}
	}
	return in
}
