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

// Package core implements the SMR proper: a single Machine consuming one
// Trigger at a time and applying the Tendermint-style upon-conditions that
// move a replica through Propose -> Prevote -> Precommit -> Commit.
package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

// Outbox is the subset of *events.Outbox the Machine depends on, narrowed so
// tests can substitute a recording fake without pulling in the full
// subscription machinery.
type Outbox interface {
	Publish(message.Event) error
}

// Machine is the SMR: it owns one replica's State exclusively and applies
// triggers to it one at a time, synchronously, never re-entrantly. Callers
// must serialize calls to Process themselves — the Machine has no internal
// queue or lock, mirroring the "single-threaded-logical" scheduling model.
type Machine struct {
	state  State
	strict bool
	outbox Outbox
	log    *TriggerLog
}

// New creates a Machine at (InitHeight, InitRound, Propose, no lock),
// publishing to outbox. strict enables the full self-check invariant set
// (see selfcheck.go); production deployments should leave it false.
func New(outbox Outbox, strict bool) *Machine {
	return &Machine{
		state:  newState(),
		strict: strict,
		outbox: outbox,
		log:    NewTriggerLog(),
	}
}

// State returns a copy of the replica's current aggregate, for inspection by
// tests and by the embedding process's restart/persistence hook.
func (m *Machine) State() State { return m.state }

// Evidence returns every trigger recorded at height for which query
// reports true. It is how accountability gathers the trail behind a Fork
// or self-check violation once Process has returned a fatal error.
func (m *Machine) Evidence(height uint64, query func(message.Trigger) bool) []message.Trigger {
	return m.log.Get(height, query)
}

// Process is the SMR's single entry point: it applies t to the current
// state, publishing zero or more events, and returns either nil (including
// on every semantic no-op) or a *ConsensusError.
func (m *Machine) Process(t message.Trigger) error {
	m.log.Record(t)

	// NewHeight is the one trigger type exempt from the generic
	// height-match preamble below: it is precisely the trigger that moves
	// self.height forward, so it is compared against status.height instead.
	if t.Type == message.NewHeight {
		return m.handleNewHeight(t)
	}

	// All handlers share this preamble: triggers for a different height
	// than the one currently being decided are dropped silently. Late
	// triggers from a previous height must not perturb current state.
	if t.Height != m.state.Height {
		return nil
	}

	switch t.Type {
	case message.Proposal:
		return m.handleProposal(t)
	case message.PrevoteQC:
		return m.handlePrevoteQC(t)
	case message.PrecommitQC:
		return m.handlePrecommitQC(t)
	case message.ContinueRound:
		return m.handleContinueRound(t)
	default:
		return Other("unknown trigger type")
	}
}

func (m *Machine) publish(e message.Event) error {
	if err := m.outbox.Publish(e); err != nil {
		return ThrowEventErr(e.String(), err)
	}
	return nil
}

// handleNewHeight implements spec §4.1.1.
func (m *Machine) handleNewHeight(t message.Trigger) error {
	if t.Source != message.State {
		return Other("Rich status source error")
	}
	if t.Status.Height <= m.state.Height {
		return Other("Delayed status")
	}

	m.state.gotoNewHeight(t.Status.Height)

	log.Info("entering new height", "height", m.state.Height)

	if err := m.publish(message.NewRoundInfoEvent(
		m.state.Height, m.state.Round,
		message.NoneRound(), common.Hash{}, false,
		t.Status.NewInterval, t.Status.NewConfig,
		message.FromWhere{Kind: message.FromPrecommitQC, Round: message.NoRound},
	)); err != nil {
		return err
	}
	m.state.gotoStep(message.Propose)
	return nil
}

// handleProposal implements spec §4.1.2.
func (m *Machine) handleProposal(t message.Trigger) error {
	if t.Round != m.state.Round || m.state.Step > message.Propose {
		return nil
	}

	if t.Source == message.Timer {
		hash, lockRound := common.Hash{}, message.NoneRound()
		if m.state.Lock != nil {
			hash, lockRound = m.state.Lock.Hash, message.SomeRound(m.state.Lock.Round)
		}
		if err := m.publish(message.PrevoteVoteEvent(m.state.Height, m.state.Round, hash, lockRound)); err != nil {
			return err
		}
		m.state.gotoStep(message.Prevote)
		return nil
	}

	if t.Hash == (common.Hash{}) {
		return ProposalErr("Empty proposal")
	}

	if err := m.state.selfCheck(m.strict); err != nil {
		return err
	}

	if err := m.reconcileProposal(t); err != nil {
		return err
	}

	if err := m.publish(message.PrevoteVoteEvent(m.state.Height, m.state.Round, m.state.BlockHash, m.state.lockRound())); err != nil {
		return err
	}
	m.state.gotoStep(message.Prevote)
	return nil
}

// reconcileProposal applies the PoLC-reconciliation rules of §4.1.2 step 2.
// The proposal path never installs a lock — it only clears one (on proof of
// a newer PoLC) or adopts a proposal hash; only PrevoteQC locks.
func (m *Machine) reconcileProposal(t message.Trigger) error {
	if !t.LockRound.Valid {
		if m.state.Lock == nil {
			m.state.setProposal(t.Hash)
		}
		// else: keep lock, do not adopt the unlocked proposal.
		return nil
	}

	r := t.LockRound.Round
	if m.state.Lock == nil {
		m.state.setProposal(t.Hash)
		return nil
	}

	l := m.state.Lock.Round
	switch {
	case r > l:
		m.state.removePoLC()
		m.state.setProposal(t.Hash)
	case r == l:
		if t.Hash != m.state.Lock.Hash {
			return CorrectnessErr("Fork")
		}
		// equal hash: keep lock, no change.
	default:
		// r < l: ignore, keep current lock and block_hash.
	}
	return nil
}

// handlePrevoteQC implements spec §4.1.3.
func (m *Machine) handlePrevoteQC(t message.Trigger) error {
	if t.Round == m.state.Round && m.state.Step > message.Prevote {
		return nil
	}

	if t.Source == message.Timer {
		if t.Round != m.state.Round {
			return nil
		}
		if m.state.Lock == nil {
			m.state.setProposal(common.Hash{})
		}
		if err := m.publish(message.PrecommitVoteEvent(m.state.Height, m.state.Round, common.Hash{}, m.state.lockRound())); err != nil {
			return err
		}
		m.state.gotoStep(message.Precommit)
		return nil
	}

	if err := m.state.selfCheck(m.strict); err != nil {
		return err
	}
	if t.Round < m.state.Round {
		return nil
	}

	m.state.updatePoLC(t.Hash, t.Round)

	if t.Round > m.state.Round {
		// self.round is assigned the QC's round *before* the NewRoundInfo is
		// built, so the event's round (self.round+1) already equals the
		// round goto_next_round's subsequent increment will leave self.round
		// at. Reproduce this exact sequence, not just its end state.
		m.state.Round = t.Round
		lockRound := m.state.lockRound()
		lockProposal, lockIsSet := m.state.lockProposal()
		if err := m.publish(message.NewRoundInfoEvent(
			m.state.Height, m.state.Round+1,
			lockRound, lockProposal, lockIsSet,
			nil, nil,
			message.FromWhere{Kind: message.FromPrevoteQC, Round: t.Round},
		)); err != nil {
			return err
		}
		m.state.gotoNextRound()
	}

	if err := m.publish(message.PrecommitVoteEvent(m.state.Height, m.state.Round, m.state.BlockHash, m.state.lockRound())); err != nil {
		return err
	}
	m.state.gotoStep(message.Precommit)
	return nil
}

// handlePrecommitQC implements spec §4.1.4.
func (m *Machine) handlePrecommitQC(t message.Trigger) error {
	if m.state.Step == message.Commit {
		return nil
	}

	lockRound := m.state.lockRound()
	lockProposal, lockIsSet := m.state.lockProposal()

	if t.Hash == (common.Hash{}) {
		if t.Round < m.state.Round {
			return nil
		}
		m.state.Round = t.Round
		if err := m.publish(message.NewRoundInfoEvent(
			m.state.Height, m.state.Round+1,
			lockRound, lockProposal, lockIsSet,
			nil, nil,
			message.FromWhere{Kind: message.FromPrecommitQC, Round: t.Round},
		)); err != nil {
			return err
		}
		m.state.gotoNextRound()
		return nil
	}

	if err := m.state.selfCheck(m.strict); err != nil {
		return err
	}
	if err := m.publish(message.CommitEvent(t.Hash)); err != nil {
		return err
	}
	m.state.gotoStep(message.Commit)
	log.Info("committed", "height", m.state.Height, "round", m.state.Round, "hash", t.Hash)
	return nil
}

// handleContinueRound implements spec §4.1.5. ContinueTo is the single
// round parameter the original's choke/brake recovery signal carries.
func (m *Machine) handleContinueRound(t message.Trigger) error {
	if t.ContinueTo <= m.state.Round {
		return nil
	}

	lockRound := m.state.lockRound()
	lockProposal, lockIsSet := m.state.lockProposal()

	m.state.Round = t.ContinueTo - 1
	if err := m.publish(message.NewRoundInfoEvent(
		m.state.Height, m.state.Round+1,
		lockRound, lockProposal, lockIsSet,
		nil, nil,
		message.FromWhere{Kind: message.FromChokeQC, Round: m.state.Round},
	)); err != nil {
		return err
	}
	m.state.gotoNextRound()
	return nil
}
