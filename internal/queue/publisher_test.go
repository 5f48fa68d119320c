package queue

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

// silentBroker accepts TCP connections and never answers the AMQP handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestPublishHonoursContextDeadline(t *testing.T) {
	p := NewPublisher(silentBroker(t))
	p.dialTimeout = 10 * time.Second
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := p.Publish(ctx, sampleEvent()); err == nil {
		t.Fatal("publish to a silent broker succeeded")
	}
	if took := time.Since(start); took > 2*time.Second {
		t.Fatalf("publish blocked for %s", took)
	}
}

func TestPublishFailsFastWhileDialing(t *testing.T) {
	p := NewPublisher(silentBroker(t))
	p.dialTimeout = time.Second
	defer p.Close()

	first := make(chan error, 1)
	go func() { first <- p.Publish(context.Background(), sampleEvent()) }()

	deadline := time.Now().Add(time.Second)
	for {
		p.mu.Lock()
		dialing := p.dialing
		p.mu.Unlock()
		if dialing {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first publish never started dialing")
		}
		time.Sleep(5 * time.Millisecond)
	}

	start := time.Now()
	err := p.Publish(context.Background(), sampleEvent())
	if !errors.Is(err, ErrReconnecting) {
		t.Fatalf("second publish err = %v, want ErrReconnecting", err)
	}
	if took := time.Since(start); took > 200*time.Millisecond {
		t.Fatalf("second publish waited %s for the dial", took)
	}

	select {
	case err := <-first:
		if err == nil {
			t.Fatal("first publish succeeded against a silent broker")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("first publish ignored the dial timeout")
	}
}

func TestPublishAfterClose(t *testing.T) {
	p := NewPublisher(silentBroker(t))
	_ = p.Close()
	if err := p.Publish(context.Background(), sampleEvent()); err == nil {
		t.Fatal("publish after Close succeeded")
	}
}
