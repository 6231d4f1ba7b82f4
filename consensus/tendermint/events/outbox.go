// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package events implements the SMR's dual egress streams: one to the
// consensus driver, one to the timer subsystem, both carrying the identical
// event sequence in emission order (spec.md §4.2, §5).
package events

import (
	"errors"
	"sync"

	gethevent "github.com/ethereum/go-ethereum/event"

	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

// ErrClosed is returned by Publish when the destination stream has been
// closed — in a correct deployment this only happens on shutdown, per
// spec.md §4.2.
var ErrClosed = errors.New("event stream closed")

// stream is an unbounded, single-producer, FIFO event queue. go-ethereum's
// event.Feed is synchronous (Send blocks until every subscriber has
// received, and panics on a feed type mismatch); neither property fits a
// stream that must never block the SMR's caller and must keep every event
// even when nobody is reading yet, so this is a small hand-rolled queue
// instead. It exists purely to decouple push (enqueue) from pop (a
// consumer's next): a mutex-guarded slice plus a condition variable is the
// correct, idiomatic implementation for this and has no third-party
// equivalent in the corpus (see DESIGN.md).
type stream struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []message.Event
	closed bool
}

func newStream() *stream {
	s := &stream{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// push enqueues e. It never blocks.
func (s *stream) push(e message.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.queue = append(s.queue, e)
	s.cond.Signal()
	return nil
}

// next blocks until an event is queued, the stream closes or quit is closed,
// for use as the producer function behind an event.Subscription.
func (s *stream) next(quit <-chan struct{}) (message.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) == 0 && !s.closed {
		select {
		case <-quit:
			return message.Event{}, false
		default:
		}
		s.cond.Wait()
	}
	if len(s.queue) == 0 {
		return message.Event{}, false
	}
	e := s.queue[0]
	s.queue = s.queue[1:]
	return e, true
}

func (s *stream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
}

// subscribe drains s onto ch until the returned subscription is
// unsubscribed or s is closed, using go-ethereum/event's generic
// Subscription (the same handle type the teacher's core exposes as
// messageEventSub/timeoutEventSub/committedSub).
func subscribe(s *stream, ch chan<- message.Event) gethevent.Subscription {
	return gethevent.NewSubscription(func(quit <-chan struct{}) error {
		// wake a waiting next() on unsubscribe so it observes quit;
		// next() itself also wakes on stream.close().
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-quit:
				s.mu.Lock()
				s.cond.Broadcast()
				s.mu.Unlock()
			case <-done:
			}
		}()
		for {
			e, ok := s.next(quit)
			if !ok {
				return nil
			}
			select {
			case ch <- e:
			case <-quit:
				return nil
			}
		}
	})
}

// Outbox is the SMR's pair of outbound event streams.
type Outbox struct {
	driver *stream
	timer  *stream
}

// NewOutbox creates an Outbox with both streams open.
func NewOutbox() *Outbox {
	return &Outbox{driver: newStream(), timer: newStream()}
}

// Publish posts e to the driver stream, then the timer stream, in that
// order (spec.md §4.2: "driver first, then timer"). A failure on either
// aborts further emission for the current trigger; emission is explicitly
// not transactional across the two streams.
func (o *Outbox) Publish(e message.Event) error {
	if err := o.driver.push(e); err != nil {
		return err
	}
	if err := o.timer.push(e); err != nil {
		return err
	}
	return nil
}

// SubscribeDriver returns a channel fed every event Publish sends, in
// emission order, plus a Subscription to later unsubscribe. This is the
// stream the consensus driver consumes.
func (o *Outbox) SubscribeDriver(ch chan<- message.Event) gethevent.Subscription {
	return subscribe(o.driver, ch)
}

// SubscribeTimer returns the equivalent channel for the timer subsystem.
func (o *Outbox) SubscribeTimer(ch chan<- message.Event) gethevent.Subscription {
	return subscribe(o.timer, ch)
}

// Close closes both streams. Any blocked Subscribe producer returns; any
// subsequent Publish returns ErrClosed. Consumers of the SMR must tolerate
// this: spec.md §4.2 treats a closed stream as indicating shutdown.
func (o *Outbox) Close() {
	o.driver.close()
	o.timer.close()
}
