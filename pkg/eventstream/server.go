package eventstream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// This server implementation is a refactor of the chat server example
// from
// https://github.com/coder/websocket/blob/master/internal/examples/chat/chat.go

// EventStream binds all the components of the event streaming server.
type EventStream struct {
	l   hclog.Logger
	clk clock.Clock
	run string

	maxUndelivered int

	subscribersMutex sync.Mutex
	subscribers      map[*subscriber]struct{}

	lastMutex sync.Mutex
	lastState []byte
}

// Option configures the EventStream.
type Option func(*EventStream)

// WithMaxUndelivered sets how many messages may queue for a single
// subscriber before it is disconnected as too slow.
func WithMaxUndelivered(n int) Option { return func(es *EventStream) { es.maxUndelivered = n } }

// WithClock sets the clock used to timestamp events.
func WithClock(c clock.Clock) Option { return func(es *EventStream) { es.clk = c } }

// WithRunID sets the ID carried by all events.  By default a random
// one is generated.
func WithRunID(id string) Option { return func(es *EventStream) { es.run = id } }

// subscriber represents a subscriber.
// Messages are sent on the msgs channel and if the client
// cannot keep up with the messages, closeSlow is called.
type subscriber struct {
	msgs      chan []byte
	closeSlow func()
}

// New returns an event stream with no subscribers.
func New(l hclog.Logger, opts ...Option) *EventStream {
	es := &EventStream{
		l:              l.Named("eventstream"),
		clk:            clock.New(),
		run:            uuid.New().String(),
		maxUndelivered: 16,
		subscribers:    make(map[*subscriber]struct{}),
	}
	for _, o := range opts {
		o(es)
	}
	return es
}

// RunID returns the ID that tags every event from this process.
func (es *EventStream) RunID() string {
	return es.run
}

// LastState returns the most recent state change event, or nil if
// none has been published.
func (es *EventStream) LastState() []byte {
	es.lastMutex.Lock()
	defer es.lastMutex.Unlock()
	return es.lastState
}

// Handler implements the http.Handler interface so that the
// eventstream can be plugged into a webserver.
func (es *EventStream) Handler(w http.ResponseWriter, r *http.Request) {
	err := es.subscribe(w, r)
	if errors.Is(err, context.Canceled) {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		es.l.Warn("Error handling subscription request", "error", err)
		return
	}
}

// subscribe subscribes the given WebSocket to all broadcast messages.
// The last known state is queued first, then everything published
// after the subscriber was registered.
func (es *EventStream) subscribe(w http.ResponseWriter, r *http.Request) error {
	var mu sync.Mutex
	var c *websocket.Conn
	var closed bool
	s := &subscriber{
		msgs: make(chan []byte, es.maxUndelivered+1),
		closeSlow: func() {
			mu.Lock()
			defer mu.Unlock()
			closed = true
			if c != nil {
				c.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
			}
		},
	}
	if last := es.LastState(); last != nil {
		s.msgs <- last
	}
	es.addSubscriber(s)
	defer es.deleteSubscriber(s)

	c2, err := websocket.Accept(w, r, nil)
	if err != nil {
		return err
	}
	mu.Lock()
	if closed {
		mu.Unlock()
		return net.ErrClosed
	}
	c = c2
	mu.Unlock()
	defer c.CloseNow()

	ctx := c.CloseRead(r.Context())

	for {
		select {
		case msg := <-s.msgs:
			err := writeTimeout(ctx, time.Second*5, c, msg)
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// publish publishes the msg to all subscribers.
// It never blocks and so messages to slow subscribers
// are dropped.
func (es *EventStream) publish(msg []byte) {
	es.subscribersMutex.Lock()
	defer es.subscribersMutex.Unlock()

	for s := range es.subscribers {
		select {
		case s.msgs <- msg:
		default:
			go s.closeSlow()
		}
	}
}

func (es *EventStream) addSubscriber(s *subscriber) {
	es.subscribersMutex.Lock()
	es.subscribers[s] = struct{}{}
	es.subscribersMutex.Unlock()
}

func (es *EventStream) deleteSubscriber(s *subscriber) {
	es.subscribersMutex.Lock()
	delete(es.subscribers, s)
	es.subscribersMutex.Unlock()
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return c.Write(ctx, websocket.MessageText, msg)
}
