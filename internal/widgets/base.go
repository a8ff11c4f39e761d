// Package widgets implements the dashboard widgets. Each widget owns an
// independent refresh controller and publishes its latest dataset as a
// Snapshot, served over HTTP and pushed to websocket subscribers on every
// render.
package widgets

import (
	"context"
	"sync"
	"time"

	"github.com/edboard/edboard/internal/platform/refresh"
)

// Snapshot is the last dataset a widget computed. Synthetic marks datasets
// produced by the fallback path when the widget's data source was
// unavailable.
type Snapshot struct {
	Widget     string      `json:"widget"`
	Data       interface{} `json:"data"`
	Synthetic  bool        `json:"synthetic"`
	LastUpdate time.Time   `json:"last_update"`
}

// Publisher pushes a widget snapshot to live subscribers.
type Publisher interface {
	Publish(topic string, payload interface{})
}

// Widget is the surface the HTTP layer works against.
type Widget interface {
	Name() string
	Snapshot() Snapshot
	Start(ctx context.Context)
	Pause()
	Resume()
	Toggle() bool
	Active() bool
	RefreshNow()
	Redraw()
	LastUpdate() time.Time
	Dispose()
}

// base carries the controller plumbing shared by every widget.
type base struct {
	name string
	pub  Publisher
	ctrl *refresh.Controller

	mu   sync.RWMutex
	snap Snapshot
}

func newBase(name string, pub Publisher, opts refresh.Options) *base {
	b := &base{name: name, pub: pub}
	opts.Render = b.render
	b.ctrl = refresh.New(name, opts)
	return b
}

func (b *base) Name() string { return b.name }

func (b *base) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}

func (b *base) Start(ctx context.Context) { b.ctrl.Start(ctx) }
func (b *base) Pause()                    { b.ctrl.Pause() }
func (b *base) Resume()                   { b.ctrl.Resume() }
func (b *base) Toggle() bool              { return b.ctrl.Toggle() }
func (b *base) Active() bool              { return b.ctrl.Active() }
func (b *base) RefreshNow()               { b.ctrl.RefreshNow() }
func (b *base) Redraw()                   { b.ctrl.Redraw() }
func (b *base) LastUpdate() time.Time     { return b.ctrl.LastUpdate() }
func (b *base) Dispose()                  { b.ctrl.Dispose() }

func (b *base) render(data interface{}, synthetic bool, at time.Time) {
	b.mu.Lock()
	b.snap = Snapshot{Widget: b.name, Data: data, Synthetic: synthetic, LastUpdate: at}
	snap := b.snap
	b.mu.Unlock()

	if b.pub != nil {
		b.pub.Publish("widget:"+b.name, snap)
	}
}
