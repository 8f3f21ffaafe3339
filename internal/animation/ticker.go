package animation

import "time"

// Ticker paces the render loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

// NewTicker returns a ticker firing fps times per second. A non-positive
// fps defaults to 60.
func NewTicker(fps int) Ticker {
	if fps <= 0 {
		fps = 60
	}
	return &realTicker{t: time.NewTicker(time.Second / time.Duration(fps))}
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// ManualTicker fires only when Tick is called.
type ManualTicker struct {
	c chan time.Time
}

// NewManualTicker returns a ticker for tests.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{c: make(chan time.Time)}
}

func (m *ManualTicker) C() <-chan time.Time { return m.c }
func (m *ManualTicker) Stop()               {}

// Tick delivers one tick and blocks until the loop receives it.
func (m *ManualTicker) Tick() {
	m.c <- time.Now()
}
