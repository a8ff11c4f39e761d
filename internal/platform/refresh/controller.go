// Package refresh implements the polling pattern shared by all dashboard
// widgets: a controller that is either active (polling on a fixed period)
// or paused, and that drives each widget through repeated
// fetch-transform-render cycles. A cycle that fails is degraded to a
// synthetic fallback dataset instead of leaving the widget blank.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDebounce collapses bursts of redraw signals into one rebuild.
const DefaultDebounce = 25 * time.Millisecond

// LoadFunc fetches and transforms the widget's data for one cycle.
type LoadFunc func(ctx context.Context) (interface{}, error)

// FallbackFunc produces the synthetic dataset rendered when LoadFunc fails.
type FallbackFunc func(now time.Time) interface{}

// RenderFunc publishes a computed dataset. synthetic is true when the data
// came from the fallback path rather than the real source.
type RenderFunc func(data interface{}, synthetic bool, at time.Time)

// Options configures a Controller.
type Options struct {
	Period    time.Duration
	Debounce  time.Duration // zero means DefaultDebounce
	MaxPoints int
	Load      LoadFunc
	Fallback  FallbackFunc
	Render    RenderFunc
	Logger    zerolog.Logger
}

// Controller owns the refresh state of a single widget: the enabled flag,
// the polling timer, the debounced redraw timer and the last computed
// dataset. Controllers are independent; no state is shared between widgets.
type Controller struct {
	name     string
	period   time.Duration
	debounce time.Duration
	maxPts   int
	load     LoadFunc
	fallback FallbackFunc
	render   RenderFunc
	logger   zerolog.Logger

	ctx context.Context

	mu            sync.Mutex
	active        bool
	disposed      bool
	inCycle       bool
	stop          chan struct{}
	redrawTimer   *time.Timer
	lastData      interface{}
	lastSynthetic bool
	lastUpdate    time.Time
}

// New builds a controller for the named widget. The controller starts
// paused; call Start to activate it.
func New(name string, opts Options) *Controller {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Controller{
		name:     name,
		period:   opts.Period,
		debounce: debounce,
		maxPts:   opts.MaxPoints,
		load:     opts.Load,
		fallback: opts.Fallback,
		render:   opts.Render,
		logger:   opts.Logger.With().Str("widget", name).Logger(),
		ctx:      context.Background(),
	}
}

// Start activates the controller. The activation itself triggers one
// immediate refresh cycle, then polling continues on the configured period.
func (c *Controller) Start(ctx context.Context) {
	c.ctx = ctx
	c.Resume()
}

// Resume re-enters the active state. It is a no-op when already active or
// disposed. Re-activation triggers exactly one immediate cycle.
func (c *Controller) Resume() {
	c.mu.Lock()
	if c.active || c.disposed {
		c.mu.Unlock()
		return
	}
	c.active = true
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	go c.run(stop)
}

// Pause cancels the polling timer. No cycles fire while paused; the last
// rendered dataset stays on display.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.active = false
	close(c.stop)
	c.stop = nil
}

// Toggle flips between active and paused and reports the new active state.
func (c *Controller) Toggle() bool {
	if c.Active() {
		c.Pause()
		return false
	}
	c.Resume()
	return c.Active()
}

// Active reports whether the controller is currently polling.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// LastUpdate returns when the last cycle completed.
func (c *Controller) LastUpdate() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUpdate
}

// MaxPoints returns the display window cap for this widget.
func (c *Controller) MaxPoints() int { return c.maxPts }

// RefreshNow runs one refresh cycle immediately, independent of the polling
// timer. If a cycle is already in flight the request is dropped.
func (c *Controller) RefreshNow() {
	c.cycle()
}

// Redraw schedules a re-render of the last computed dataset without
// re-fetching. Bursts of calls within the debounce window collapse into a
// single render.
func (c *Controller) Redraw() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	if c.redrawTimer == nil {
		c.redrawTimer = time.AfterFunc(c.debounce, c.redrawLast)
		return
	}
	c.redrawTimer.Reset(c.debounce)
}

// Dispose permanently tears the controller down: the polling timer and the
// redraw timer are released and no further cycles or renders fire. Results
// of cycles already in flight are discarded. Dispose is idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	if c.active {
		c.active = false
		close(c.stop)
		c.stop = nil
	}
	if c.redrawTimer != nil {
		c.redrawTimer.Stop()
		c.redrawTimer = nil
	}
}

func (c *Controller) run(stop chan struct{}) {
	c.cycle()

	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.cycle()
		}
	}
}

// cycle performs one fetch-transform-render pass. Cycles never overlap
// within one widget: a tick or manual refresh arriving while a cycle is
// still in flight is dropped and logged.
func (c *Controller) cycle() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	if c.inCycle {
		c.mu.Unlock()
		c.logger.Warn().Msg("refresh cycle still in flight, dropping tick")
		return
	}
	c.inCycle = true
	ctx := c.ctx
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inCycle = false
		c.mu.Unlock()
	}()

	data, err := c.load(ctx)
	synthetic := false
	if err != nil {
		c.logger.Error().Err(err).Msg("refresh cycle failed, rendering synthetic fallback")
		data = c.fallback(time.Now())
		synthetic = true
	}

	now := time.Now()
	c.mu.Lock()
	if c.disposed {
		// Widget torn down while the fetch was in flight; discard.
		c.mu.Unlock()
		return
	}
	c.lastData = data
	c.lastSynthetic = synthetic
	c.lastUpdate = now
	c.mu.Unlock()

	c.render(data, synthetic, now)
}

func (c *Controller) redrawLast() {
	c.mu.Lock()
	if c.disposed || c.lastData == nil {
		c.mu.Unlock()
		return
	}
	data, synthetic, at := c.lastData, c.lastSynthetic, c.lastUpdate
	c.mu.Unlock()

	c.render(data, synthetic, at)
}

// Window caps a series at max points, keeping the most recent values in
// their original order. A non-positive max returns the series unchanged.
func Window[T any](points []T, max int) []T {
	if max <= 0 || len(points) <= max {
		return points
	}
	return points[len(points)-max:]
}
