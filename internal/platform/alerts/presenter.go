package alerts

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Presenter shows at most one alert at a time. A new message replaces the
// one on display and restarts the dismissal countdown; when the countdown
// expires the popup hides but the message content is retained.
type Presenter struct {
	dismiss time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	current string
	visible bool
	timer   *time.Timer
	stopped bool
	sub     *Subscription
}

// NewPresenter creates a presenter with the given auto-dismiss duration.
func NewPresenter(dismiss time.Duration, logger zerolog.Logger) *Presenter {
	return &Presenter{
		dismiss: dismiss,
		logger:  logger.With().Str("component", "alert-presenter").Logger(),
	}
}

// Attach consumes messages from the subscription until it is closed or the
// presenter is stopped.
func (p *Presenter) Attach(sub *Subscription) {
	p.mu.Lock()
	p.sub = sub
	p.mu.Unlock()

	go func() {
		for msg := range sub.C {
			p.Show(msg)
		}
	}()
}

// Show displays a message, replacing any message currently visible and
// restarting the dismissal timer.
func (p *Presenter) Show(msg Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}

	p.current = msg.Text
	p.visible = true

	if p.timer == nil {
		p.timer = time.AfterFunc(p.dismiss, p.hide)
	} else {
		p.timer.Reset(p.dismiss)
	}
	p.logger.Debug().Uint64("seq", msg.Seq).Msg("alert shown")
}

func (p *Presenter) hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
}

// Current returns the latest message and whether it is currently visible.
func (p *Presenter) Current() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.visible
}

// Stop releases the dismissal timer and the subscription. No further
// messages are shown after Stop returns.
func (p *Presenter) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.visible = false
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	sub := p.sub
	p.sub = nil
	p.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}
