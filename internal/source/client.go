// Package source feeds landmark frames into the controller from a remote
// tracking backend or from a recorded session.
package source

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// DefaultReconnect is the pause between connection attempts.
const DefaultReconnect = 2 * time.Second

// Sink accepts decoded frames.
type Sink interface {
	Submit(f landmark.Frame)
}

// Client dials a tracking backend over WebSocket and forwards every
// landmarks_data message. It reconnects until its context is cancelled.
type Client struct {
	URL       string
	Reconnect time.Duration
	Dialer    *websocket.Dialer
}

// NewClient returns a client for url.
func NewClient(url string) *Client {
	return &Client{URL: url, Reconnect: DefaultReconnect, Dialer: websocket.DefaultDialer}
}

// Run connects and forwards frames to sink. It returns ctx.Err() once ctx
// is cancelled.
func (c *Client) Run(ctx context.Context, sink Sink) error {
	wait := c.Reconnect
	if wait <= 0 {
		wait = DefaultReconnect
	}

	for {
		err := c.session(ctx, sink)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("landmark source %s: %v; retrying in %s", c.URL, err, wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// session runs one connection until it fails.
func (c *Client) session(ctx context.Context, sink Sink) error {
	dialer := c.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("landmark source %s connected", c.URL)

	stop := context.AfterFunc(ctx, func() {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		f, err := landmark.Decode(msg)
		if err != nil {
			if !errors.Is(err, landmark.ErrUnknownEvent) {
				log.Printf("dropping landmark message: %v", err)
			}
			continue
		}
		sink.Submit(f)
	}
}
