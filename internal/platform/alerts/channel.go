// Package alerts maintains the standing connection to the alert source and
// fans inbound messages out to the dashboard. Messages are ephemeral: they
// carry only an opaque text payload and their arrival order, are delivered
// at most once to the listeners subscribed at arrival time, and are never
// redelivered.
package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Message is one alert as received from the source.
type Message struct {
	Seq  uint64    `json:"seq"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Conn abstracts the websocket connection to the alert source for
// testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// DialFunc establishes a connection to the alert source.
type DialFunc func(ctx context.Context, url string) (Conn, error)

func gorillaDial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Subscription is one listener's handle on the broadcast stream. Release it
// with Unsubscribe; the receive channel is closed when the subscription
// ends or the channel shuts down.
type Subscription struct {
	C  <-chan Message
	ch chan Message
	c  *Channel
}

// Unsubscribe detaches the listener. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.c.unsubscribe(s)
}

// Channel owns the single connection to the alert source. It reconnects
// with capped exponential backoff when the connection drops; subscriptions
// survive reconnects.
type Channel struct {
	url    string
	dial   DialFunc
	logger zerolog.Logger

	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	conn   Conn
	seq    uint64
	closed bool
	done   chan struct{}
}

// New creates an alert channel for the given source URL. Run must be called
// to start receiving.
func New(url string, logger zerolog.Logger) *Channel {
	return NewWithDialer(url, gorillaDial, logger)
}

// NewWithDialer is New with an injectable dialer.
func NewWithDialer(url string, dial DialFunc, logger zerolog.Logger) *Channel {
	return &Channel{
		url:    url,
		dial:   dial,
		logger: logger.With().Str("component", "alert-channel").Logger(),
		subs:   make(map[*Subscription]struct{}),
		done:   make(chan struct{}),
	}
}

// Subscribe registers a listener. Late subscribers only see messages that
// arrive after the subscription is made.
func (c *Channel) Subscribe() *Subscription {
	ch := make(chan Message, 16)
	sub := &Subscription{C: ch, ch: ch, c: c}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return sub
	}
	c.subs[sub] = struct{}{}
	return sub
}

func (c *Channel) unsubscribe(s *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.subs[s]; !ok {
		return
	}
	delete(c.subs, s)
	close(s.ch)
}

// Inject publishes a message locally, bypassing the source connection.
// Used by the test-alert endpoint.
func (c *Channel) Inject(text string) {
	c.publish(text)
}

func (c *Channel) publish(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.seq++
	msg := Message{Seq: c.seq, Text: text, At: time.Now()}
	for sub := range c.subs {
		select {
		case sub.ch <- msg:
		default:
			// Listener buffer full; skip to keep delivery at-most-once
			// without blocking the read loop.
		}
	}
}

// Run connects to the alert source and keeps reading until the context is
// cancelled or Close is called. Connection drops are logged and retried
// with capped exponential backoff.
func (c *Channel) Run(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0 // retry forever

	for {
		if c.isClosed() || ctx.Err() != nil {
			return
		}

		conn, err := c.dial(ctx, c.url)
		if err != nil {
			wait := bo.NextBackOff()
			c.logger.Warn().Err(err).Dur("retry_in", wait).Msg("alert source connect failed")
			select {
			case <-ctx.Done():
				return
			case <-c.done:
				return
			case <-time.After(wait):
			}
			continue
		}

		bo.Reset()
		c.setConn(conn)
		c.logger.Info().Str("url", c.url).Msg("connected to alert source")

		c.readLoop(conn)
		conn.Close()
		c.setConn(nil)

		if c.isClosed() || ctx.Err() != nil {
			return
		}
		c.logger.Warn().Msg("alert source disconnected")
	}
}

func (c *Channel) readLoop(conn Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		c.publish(string(payload))
	}
}

func (c *Channel) setConn(conn Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close shuts the channel down: the source connection is closed, the
// reconnect loop stops and every subscription's receive channel is closed.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	for sub := range c.subs {
		delete(c.subs, sub)
		close(sub.ch)
	}
	c.mu.Unlock()
}
