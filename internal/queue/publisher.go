package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrReconnecting is returned while another goroutine is dialing the broker.
var ErrReconnecting = errors.New("rabbitmq: reconnect in progress")

// DefaultDialTimeout bounds the TCP connect and AMQP handshake.
const DefaultDialTimeout = 2 * time.Second

// Publisher sends booking events to BookingQueue. The connection is opened
// lazily and reopened after a failure, so a broker outage at startup does
// not keep the API down. Dialing happens outside the lock and at most one
// dial runs at a time; other publishers fail fast until it finishes.
type Publisher struct {
	url         string
	dialTimeout time.Duration

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	dialing bool
	closed  bool
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, dialTimeout: DefaultDialTimeout}
}

// connect opens a connection and a channel with BookingQueue declared. The
// handshake deadline is the smaller of the dial timeout and ctx's deadline.
func (p *Publisher) connect(ctx context.Context) (*amqp.Connection, *amqp.Channel, error) {
	timeout := p.dialTimeout
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			return nil, nil, ctx.Err()
		}
		timeout = min(timeout, left)
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(BookingQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("queue declare: %w", err)
	}
	return conn, ch, nil
}

// channel returns the open channel, dialing when there is none. It is called
// with mu held and returns with mu held; the lock is released while dialing.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.closed {
		return nil, errors.New("rabbitmq: publisher closed")
	}
	if p.dialing {
		return nil, ErrReconnecting
	}
	p.closeLocked()
	p.dialing = true
	p.mu.Unlock()
	conn, ch, err := p.connect(ctx)
	p.mu.Lock()
	p.dialing = false
	if err != nil {
		return nil, err
	}
	if p.closed {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.New("rabbitmq: publisher closed")
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

// Publish sends ev as a persistent JSON message. Errors are logged and
// returned; callers treat publishing as best effort.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		log.Printf("rabbitmq: %v", err)
		return err
	}
	err = ch.PublishWithContext(ctx, "", BookingQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	})
	if err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		p.closeLocked()
	}
	return err
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.closeLocked()
	return nil
}

func (p *Publisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
