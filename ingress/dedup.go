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

package ingress

import (
	"fmt"
	"sync"

	"github.com/zfjagann/golang-ring"

	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

// Dedup is a small bounded cache of recently seen trigger fingerprints. The
// core itself is required to be idempotent on stale/repeat triggers (spec.md
// §8), so Dedup is strictly a diagnostic: it lets the ingress log a repeat
// before handing it to Process rather than silently re-processing it.
type Dedup struct {
	mu     sync.Mutex
	recent ring.Ring
}

// NewDedup creates a Dedup remembering the last capacity fingerprints.
func NewDedup(capacity int) *Dedup {
	d := &Dedup{}
	d.recent.SetCapacity(capacity)
	return d
}

// Seen reports whether an identical trigger was already recorded, then
// records t regardless.
func (d *Dedup) Seen(t message.Trigger) bool {
	fp := fingerprint(t)

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, v := range d.recent.Values() {
		if s, ok := v.(string); ok && s == fp {
			return true
		}
	}
	d.recent.Enqueue(fp)
	return false
}

func fingerprint(t message.Trigger) string {
	return fmt.Sprintf("%d:%d:%d:%d:%s:%s", t.Type, t.Source, t.Height, t.Round, t.Hash.Hex(), t.LockRound)
}
