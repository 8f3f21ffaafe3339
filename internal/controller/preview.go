package controller

import (
	"bytes"
	"context"
	"sync"

	"github.com/ayusman/abhinaya/internal/engine"
)

// Preview holds the latest JPEG of the visible canvas. It is the only
// rendering output read off the loop goroutine.
type Preview struct {
	mu      sync.Mutex
	jpeg    []byte
	seq     uint64
	changed chan struct{}
}

// NewPreview returns an empty preview.
func NewPreview() *Preview {
	return &Preview{changed: make(chan struct{})}
}

// Capture encodes r and publishes the result.
func (p *Preview) Capture(r *engine.Renderer, quality int) error {
	var buf bytes.Buffer
	if err := r.EncodeJPEG(&buf, quality); err != nil {
		return err
	}
	p.Publish(buf.Bytes())
	return nil
}

// Publish replaces the current frame and wakes waiting readers.
func (p *Preview) Publish(jpeg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jpeg = jpeg
	p.seq++
	close(p.changed)
	p.changed = make(chan struct{})
}

// Latest returns the current frame and its sequence number. The frame is
// nil before the first publish. Callers must not modify it.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jpeg, p.seq
}

// Next blocks until a frame newer than after is published.
func (p *Preview) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		p.mu.Lock()
		if p.seq > after {
			jpeg, seq := p.jpeg, p.seq
			p.mu.Unlock()
			return jpeg, seq, nil
		}
		changed := p.changed
		p.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, after, ctx.Err()
		}
	}
}
