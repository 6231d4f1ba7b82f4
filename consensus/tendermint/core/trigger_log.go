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

package core

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

// triggerLogHeights bounds how many distinct heights TriggerLog retains
// evidence for. A replica runs indefinitely, so an unbounded map keyed by
// height is a slow memory leak; the least recently touched height is evicted
// once the log holds evidence for more heights than this.
const triggerLogHeights = 256

type roundIndex = map[uint64]map[message.TriggerType][]message.Trigger

// TriggerLog records every trigger passed to Machine.Process, including the
// ones its handlers then drop or reject, keyed the way the teacher's MsgStore
// keys consensus messages: height -> round -> type. It is not consulted by the
// handlers themselves (the SMR has no internal queue or memory beyond
// State) — it exists for accountability to gather the evidence trail behind
// a Fork or self-check violation.
type TriggerLog struct {
	mu    sync.RWMutex
	cache *lru.Cache[uint64, roundIndex]
}

// NewTriggerLog creates an empty trigger log retaining the most recently
// touched triggerLogHeights heights.
func NewTriggerLog() *TriggerLog {
	cache, err := lru.New[uint64, roundIndex](triggerLogHeights)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// triggerLogHeights never is.
		panic(err)
	}
	return &TriggerLog{cache: cache}
}

// Record appends t to the log.
func (l *TriggerLog) Record(t message.Trigger) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rounds, ok := l.cache.Get(t.Height)
	if !ok {
		rounds = make(roundIndex)
	}
	typeMap, ok := rounds[t.Round]
	if !ok {
		typeMap = make(map[message.TriggerType][]message.Trigger)
		rounds[t.Round] = typeMap
	}
	typeMap[t.Type] = append(typeMap[t.Type], t)
	l.cache.Add(t.Height, rounds)
}

// Get returns every recorded trigger at height satisfying query.
func (l *TriggerLog) Get(height uint64, query func(message.Trigger) bool) []message.Trigger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []message.Trigger
	rounds, ok := l.cache.Peek(height)
	if !ok {
		return result
	}
	for _, typeMap := range rounds {
		for _, triggers := range typeMap {
			for _, t := range triggers {
				if query(t) {
					result = append(result, t)
				}
			}
		}
	}
	return result
}
