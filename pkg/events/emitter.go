// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"fmt"
	"sync"

	"carvel.dev/clip/pkg/version"
	"github.com/google/uuid"
)

const (
	// AllFiles subscribes to events of every file.
	AllFiles = "*"
)

type Handler func(Event)

type SubscribeOpts struct {
	// Protocol is a version constraint the emitted event format must satisfy.
	Protocol string
}

type SubscribeOpt func(*SubscribeOpts)

func WithProtocol(constraint string) SubscribeOpt {
	return func(opts *SubscribeOpts) { opts.Protocol = constraint }
}

// Emitter pushes published events to subscribers. Each subscriber has
// its own unbounded queue drained by a dedicated goroutine, so Publish
// never waits on a handler. Past events are not replayed.
type Emitter struct {
	lock   sync.Mutex
	subs   []*Subscription
	closed bool
}

func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscription delivers events for one file (or AllFiles) to a handler.
type Subscription struct {
	ID       string
	FilePath string

	handler Handler
	queue   *queue
	done    chan struct{}
}

func (e *Emitter) Subscribe(filePath string, handler Handler, opts ...SubscribeOpt) (*Subscription, error) {
	if len(filePath) == 0 {
		return nil, fmt.Errorf("Expected subscription file path to be non-empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("Expected subscription handler to be non-nil")
	}

	subOpts := SubscribeOpts{}
	for _, opt := range opts {
		opt(&subOpts)
	}

	err := version.CheckProtocol(subOpts.Protocol)
	if err != nil {
		return nil, err
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	if e.closed {
		return nil, fmt.Errorf("Expected emitter to be open, but it was closed")
	}

	sub := &Subscription{
		ID:       uuid.NewString(),
		FilePath: filePath,
		handler:  handler,
		queue:    newQueue(),
		done:     make(chan struct{}),
	}
	e.subs = append(e.subs, sub)

	go sub.drain()

	return sub, nil
}

// Publish enqueues event for every matching subscriber.
func (e *Emitter) Publish(event Event) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.closed {
		return
	}

	for _, sub := range e.subs {
		if sub.matches(event.GetFilePath()) {
			sub.queue.push(event)
		}
	}
}

// Unsubscribe stops sub after already queued events are delivered.
// It returns false if sub was not subscribed. It must not be called
// from sub's own handler.
func (e *Emitter) Unsubscribe(sub *Subscription) bool {
	e.lock.Lock()

	found := false
	for i, s := range e.subs {
		if s == sub {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			found = true
			break
		}
	}
	e.lock.Unlock()

	if found {
		sub.queue.close()
		<-sub.done
	}
	return found
}

// Flush waits until every event published so far has been handled.
func (e *Emitter) Flush() {
	e.lock.Lock()
	subs := append([]*Subscription{}, e.subs...)
	e.lock.Unlock()

	for _, sub := range subs {
		sub.queue.waitEmpty()
	}
}

// Close delivers queued events and stops all subscriptions.
func (e *Emitter) Close() {
	e.lock.Lock()
	subs := e.subs
	e.subs = nil
	e.closed = true
	e.lock.Unlock()

	for _, sub := range subs {
		sub.queue.close()
	}
	for _, sub := range subs {
		<-sub.done
	}
}

// Len returns the number of active subscriptions.
func (e *Emitter) Len() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return len(e.subs)
}

func (s *Subscription) matches(filePath string) bool {
	return s.FilePath == AllFiles || s.FilePath == filePath
}

func (s *Subscription) drain() {
	defer close(s.done)

	for {
		event, ok := s.queue.pop()
		if !ok {
			return
		}
		s.handler(event)
		s.queue.handled()
	}
}

// queue is an unbounded FIFO of events.
type queue struct {
	lock    sync.Mutex
	cond    *sync.Cond
	items   []Event
	pending int
	closed  bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.lock)
	return q
}

func (q *queue) push(event Event) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.closed {
		return
	}
	q.items = append(q.items, event)
	q.pending++
	q.cond.Broadcast()
}

// pop blocks until an event is available. It returns false once the
// queue is closed and empty.
func (q *queue) pop() (Event, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}

	event := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return event, true
}

func (q *queue) handled() {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.pending--
	q.cond.Broadcast()
}

func (q *queue) waitEmpty() {
	q.lock.Lock()
	defer q.lock.Unlock()

	for q.pending > 0 {
		q.cond.Wait()
	}
}

func (q *queue) close() {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.closed = true
	q.cond.Broadcast()
}
