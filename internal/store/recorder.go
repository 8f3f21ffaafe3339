package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// Recorder appends every frame it is given to a new session.
// It is safe for concurrent use.
type Recorder struct {
	store   *Store
	session *Session

	mu     sync.Mutex
	seq    int
	closed bool
}

// NewRecorder starts a session labelled label.
func NewRecorder(s *Store, label string) (*Recorder, error) {
	sess := &Session{Label: label}
	if err := s.Sessions().Create(sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &Recorder{store: s, session: sess}, nil
}

// Session returns the session being recorded.
func (r *Recorder) Session() *Session { return r.session }

// Record stores f. Frames without a timestamp are stamped on arrival.
func (r *Recorder) Record(f landmark.Frame) error {
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now()
	}
	payload, err := landmark.Encode(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}

	offset := max(f.Timestamp.Sub(r.session.StartedAt).Milliseconds(), 0)
	err = r.store.Frames().Append(RecordedFrame{
		SessionID: r.session.ID,
		Seq:       r.seq,
		OffsetMs:  offset,
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("append frame %d: %w", r.seq, err)
	}
	r.seq++
	return nil
}

// Close ends the session. Later Record calls are ignored.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.store.Sessions().Finish(r.session.ID, r.seq)
}
