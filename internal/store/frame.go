package store

import (
	"database/sql"
	"encoding/json"
)

// RecordedFrame is one encoded landmark frame of a session.
type RecordedFrame struct {
	SessionID string          `json:"session_id"`
	Seq       int             `json:"seq"`
	OffsetMs  int64           `json:"offset_ms"`
	Payload   json.RawMessage `json:"payload"`
}

// FrameRepository stores session frames.
type FrameRepository struct {
	db *sql.DB
}

// Frames returns the frame repository for this store.
func (s *Store) Frames() *FrameRepository {
	return &FrameRepository{db: s.db}
}

// Append inserts one frame.
func (r *FrameRepository) Append(f RecordedFrame) error {
	_, err := r.db.Exec(
		`INSERT INTO frames (session_id, seq, offset_ms, payload) VALUES (?, ?, ?, ?)`,
		f.SessionID, f.Seq, f.OffsetMs, string(f.Payload),
	)
	return err
}

// List retrieves the frames of a session in sequence order.
func (r *FrameRepository) List(sessionID string) ([]RecordedFrame, error) {
	rows, err := r.db.Query(
		`SELECT session_id, seq, offset_ms, payload
		 FROM frames
		 WHERE session_id = ?
		 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []RecordedFrame
	for rows.Next() {
		var f RecordedFrame
		var payload string
		if err := rows.Scan(&f.SessionID, &f.Seq, &f.OffsetMs, &payload); err != nil {
			return nil, err
		}
		f.Payload = json.RawMessage(payload)
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

// Count returns the number of frames stored for a session.
func (r *FrameRepository) Count(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM frames WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}
