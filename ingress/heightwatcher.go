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

// Package ingress adapts external notifications into the Trigger envelopes
// core.Machine.Process consumes, and flags repeated triggers (Dedup) without
// filtering them out.
package ingress

import (
	"github.com/ethereum/go-ethereum/event"

	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

// HeightSource is whatever upstream component decides a new height has
// started (block finalization, a height-change gossip message, ...). It is
// out of the core's scope (spec.md §1 Non-goals); HeightWatcher only
// reshapes its notifications into NewHeight triggers.
type HeightSource interface {
	SubscribeNewHeight(ch chan<- message.NewHeightStatus) event.Subscription
}

// HeightWatcher runs the same small run-loop shape as the teacher's
// CommitteeWatcher: a goroutine selecting between an inbound notification
// channel and its subscription's error channel, translating each
// notification into a Trigger and forwarding it to Triggers.
type HeightWatcher struct {
	source   HeightSource
	triggers chan<- message.Trigger
	quit     chan struct{}
}

// NewHeightWatcher creates a watcher forwarding source's notifications, as
// NewHeight triggers, onto triggers.
func NewHeightWatcher(source HeightSource, triggers chan<- message.Trigger) *HeightWatcher {
	return &HeightWatcher{source: source, triggers: triggers, quit: make(chan struct{})}
}

// Run starts the watcher's background loop.
func (w *HeightWatcher) Run() {
	statusCh := make(chan message.NewHeightStatus, 10)
	sub := w.source.SubscribeNewHeight(statusCh)

	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case status := <-statusCh:
				trigger := message.Trigger{
					Type:   message.NewHeight,
					Source: message.State,
					Height: status.Height,
					Status: status,
				}
				select {
				case w.triggers <- trigger:
				case <-w.quit:
					return
				}
			case <-sub.Err():
				return
			case <-w.quit:
				return
			}
		}
	}()
}

// Stop terminates the watcher's background loop.
func (w *HeightWatcher) Stop() { close(w.quit) }
