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

package main

import (
	"github.com/ethereum/go-ethereum/event"

	"github.com/autonity/tendermint-smr/config"
	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

// bootstrapHeightSource satisfies ingress.HeightSource by emitting a single
// NewHeight status for height 1 at startup. Real height detection —
// watching block finalization or a height-change gossip message — is
// networking, out of this core's scope; a real deployment replaces this
// with whatever feeds it validated NewHeight notifications.
type bootstrapHeightSource struct {
	interval message.DurationConfig
}

func newBootstrapHeightSource(cfg config.Config) *bootstrapHeightSource {
	return &bootstrapHeightSource{interval: cfg.Interval}
}

func (b *bootstrapHeightSource) SubscribeNewHeight(ch chan<- message.NewHeightStatus) event.Subscription {
	return event.NewSubscription(func(quit <-chan struct{}) error {
		select {
		case ch <- message.NewHeightStatus{Height: 1, NewInterval: &b.interval}:
		case <-quit:
		}
		return nil
	})
}
