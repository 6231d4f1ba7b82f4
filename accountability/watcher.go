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

package accountability

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/autonity/tendermint-smr/consensus/tendermint/core"
	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

// Detection pairs a trigger with the error Machine.Process returned for it.
type Detection struct {
	Trigger message.Trigger
	Err     error
}

// Watcher turns fatal detections into Proofs, the same small run-loop shape
// as the teacher's CommitteeWatcher: a goroutine selecting between inbound
// events and a quit signal.
type Watcher struct {
	machine    *core.Machine
	detections <-chan Detection
	proofs     chan *Proof
	quit       chan struct{}
}

// NewWatcher creates a Watcher over machine, consuming detections until Stop
// is called.
func NewWatcher(machine *core.Machine, detections <-chan Detection) *Watcher {
	return &Watcher{
		machine:    machine,
		detections: detections,
		proofs:     make(chan *Proof, 16),
		quit:       make(chan struct{}),
	}
}

// Run starts the watcher's background loop.
func (w *Watcher) Run() {
	go func() {
		for {
			select {
			case d, ok := <-w.detections:
				if !ok {
					return
				}
				if proof := w.buildProof(d); proof != nil {
					log.Warn("accountability proof raised", "proof", proof)
					select {
					case w.proofs <- proof:
					case <-w.quit:
						return
					}
				}
			case <-w.quit:
				return
			}
		}
	}()
}

// Proofs returns the channel proofs are delivered on.
func (w *Watcher) Proofs() <-chan *Proof { return w.proofs }

// Stop terminates the watcher's background loop.
func (w *Watcher) Stop() { close(w.quit) }

func (w *Watcher) buildProof(d Detection) *Proof {
	cerr, ok := d.Err.(*core.ConsensusError)
	if !ok || !cerr.Fatal() {
		return nil
	}

	var kind FaultKind
	switch cerr.Kind() {
	case core.KindCorrectness:
		kind = FaultFork
	case core.KindSelfCheck:
		kind = FaultSelfCheck
	default:
		return nil
	}

	// A Fork is raised when a proposal's claimed lock_round matches the
	// replica's current lock but its hash doesn't: the evidence is the
	// PrevoteQC that actually installed that lock, for a different hash
	// than the one the accused proposal now claims.
	evidence := w.machine.Evidence(d.Trigger.Height, func(t message.Trigger) bool {
		return t.Type == message.PrevoteQC &&
			t.Source == message.State &&
			d.Trigger.LockRound.Valid &&
			t.Round == d.Trigger.LockRound.Round &&
			t.Hash != d.Trigger.Hash
	})

	return &Proof{
		Kind:     kind,
		Height:   d.Trigger.Height,
		Round:    d.Trigger.Round,
		Accused:  d.Trigger,
		Evidence: evidence,
		Reason:   cerr.Error(),
	}
}
