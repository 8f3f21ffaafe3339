package source

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/store"
)

// Replay plays a recorded session back with its original pacing.
type Replay struct {
	Store     *store.Store
	SessionID string
	// Speed scales playback; 2 plays twice as fast. Zero means 1.
	Speed float64
	// Loop restarts the session when it ends.
	Loop bool
}

// Run submits the session's frames to sink. Frames are restamped with the
// time they are replayed.
func (r *Replay) Run(ctx context.Context, sink Sink) error {
	frames, err := r.Store.Frames().List(r.SessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", r.SessionID, err)
	}
	if len(frames) == 0 {
		return fmt.Errorf("session %s: %w", r.SessionID, store.ErrNotFound)
	}

	speed := r.Speed
	if speed <= 0 {
		speed = 1
	}

	for {
		if err := r.play(ctx, frames, speed, sink); err != nil {
			return err
		}
		if !r.Loop {
			return nil
		}
	}
}

func (r *Replay) play(ctx context.Context, frames []store.RecordedFrame, speed float64, sink Sink) error {
	start := time.Now()
	for _, rf := range frames {
		due := start.Add(time.Duration(float64(rf.OffsetMs)/speed) * time.Millisecond)
		if d := time.Until(due); d > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		f, err := landmark.Decode(rf.Payload)
		if err != nil {
			log.Printf("replay %s: skipping frame %d: %v", r.SessionID, rf.Seq, err)
			continue
		}
		f.Timestamp = time.Now()
		sink.Submit(f)
	}
	return nil
}
