package alerts

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeConn feeds scripted messages to the channel's read loop.
type fakeConn struct {
	mu       sync.Mutex
	messages chan []byte
	closed   bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{messages: make(chan []byte, 16)}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	msg, ok := <-f.messages
	if !ok {
		return 0, nil, fmt.Errorf("connection closed")
	}
	return 1, msg, nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.messages)
	}
	return nil
}

func (f *fakeConn) push(text string) {
	f.messages <- []byte(text)
}

func startChannel(t *testing.T, conns ...*fakeConn) (*Channel, context.CancelFunc) {
	t.Helper()
	var mu sync.Mutex
	next := 0
	dial := func(ctx context.Context, url string) (Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(conns) {
			return nil, fmt.Errorf("no more connections")
		}
		conn := conns[next]
		next++
		return conn, nil
	}

	ch := NewWithDialer("ws://test/ws/alerts", dial, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go ch.Run(ctx)
	return ch, cancel
}

func recvMessage(t *testing.T, sub *Subscription) Message {
	t.Helper()
	select {
	case msg, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for alert")
	}
	return Message{}
}

func TestChannel_FanOutInArrivalOrder(t *testing.T) {
	conn := newFakeConn()
	ch, cancel := startChannel(t, conn)
	defer cancel()
	defer ch.Close()

	sub1 := ch.Subscribe()
	sub2 := ch.Subscribe()

	conn.push("first")
	conn.push("second")

	for _, sub := range []*Subscription{sub1, sub2} {
		m1 := recvMessage(t, sub)
		m2 := recvMessage(t, sub)
		if m1.Text != "first" || m2.Text != "second" {
			t.Fatalf("messages out of order: %q, %q", m1.Text, m2.Text)
		}
		if m2.Seq <= m1.Seq {
			t.Fatalf("sequence not increasing: %d then %d", m1.Seq, m2.Seq)
		}
	}
}

func TestChannel_LateSubscriberSeesOnlyFutureMessages(t *testing.T) {
	conn := newFakeConn()
	ch, cancel := startChannel(t, conn)
	defer cancel()
	defer ch.Close()

	early := ch.Subscribe()
	conn.push("old news")
	recvMessage(t, early) // make sure the message was dispatched

	late := ch.Subscribe()
	conn.push("fresh")

	if msg := recvMessage(t, late); msg.Text != "fresh" {
		t.Fatalf("late subscriber got %q, want only the future message", msg.Text)
	}
}

func TestChannel_UnsubscribeStopsDelivery(t *testing.T) {
	conn := newFakeConn()
	ch, cancel := startChannel(t, conn)
	defer cancel()
	defer ch.Close()

	sub := ch.Subscribe()
	keep := ch.Subscribe()
	sub.Unsubscribe()
	sub.Unsubscribe() // safe to repeat

	conn.push("after unsubscribe")
	recvMessage(t, keep)

	select {
	case _, ok := <-sub.C:
		if ok {
			t.Fatal("unsubscribed listener received a message")
		}
	default:
		t.Fatal("unsubscribed listener's channel should be closed")
	}
}

func TestChannel_ReconnectsAfterDrop(t *testing.T) {
	first := newFakeConn()
	second := newFakeConn()
	ch, cancel := startChannel(t, first, second)
	defer cancel()
	defer ch.Close()

	sub := ch.Subscribe()

	first.push("before drop")
	recvMessage(t, sub)
	first.Close()

	// Subscription survives the reconnect; the buffered fake holds the
	// message until the read loop comes back up.
	second.push("after reconnect")

	if msg := recvMessage(t, sub); msg.Text != "after reconnect" {
		t.Fatalf("got %q after reconnect", msg.Text)
	}
}

func TestChannel_CloseReleasesSubscribers(t *testing.T) {
	conn := newFakeConn()
	ch, cancel := startChannel(t, conn)
	defer cancel()

	sub := ch.Subscribe()
	ch.Close()
	ch.Close() // idempotent

	select {
	case _, ok := <-sub.C:
		if ok {
			t.Fatal("received message after close")
		}
	case <-time.After(time.Second):
		t.Fatal("subscription channel not closed on shutdown")
	}
}

func TestChannel_Inject(t *testing.T) {
	ch := NewWithDialer("ws://unused", func(context.Context, string) (Conn, error) {
		return nil, fmt.Errorf("offline")
	}, zerolog.Nop())
	defer ch.Close()

	sub := ch.Subscribe()
	ch.Inject("manual test alert")

	if msg := recvMessage(t, sub); msg.Text != "manual test alert" {
		t.Fatalf("got %q", msg.Text)
	}
}
