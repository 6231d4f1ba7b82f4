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

// Package message defines the trigger envelope the SMR core consumes and the
// event union it emits, along with their RLP wire encoding.
package message

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// NoRound is the sentinel carried on FromWhere to mean "no preceding round
// within this height". It is emitted only on the NewRoundInfo thrown by a
// NewHeight trigger.
const NoRound uint64 = ^uint64(0)

// Step is the replica's position within a round. Steps only move forward
// within a round and reset to Propose on any round or height advance.
type Step uint8

const (
	Propose Step = iota
	Prevote
	Precommit
	Commit
)

func (s Step) String() string {
	switch s {
	case Propose:
		return "Propose"
	case Prevote:
		return "Prevote"
	case Precommit:
		return "Precommit"
	case Commit:
		return "Commit"
	default:
		return fmt.Sprintf("Step(%d)", uint8(s))
	}
}

// Source distinguishes a network-validated trigger from a locally generated
// timeout. The two are handled asymmetrically at Propose and Prevote.
type Source uint8

const (
	// State triggers have been validated by the network (a proposal, a QC).
	State Source = iota
	// Timer triggers are raised locally when a step's timeout fires.
	Timer
)

func (s Source) String() string {
	if s == State {
		return "State"
	}
	return "Timer"
}

// TriggerType is the kind of input the SMR can process.
type TriggerType uint8

const (
	NewHeight TriggerType = iota
	Proposal
	PrevoteQC
	PrecommitQC
	ContinueRound
)

func (t TriggerType) String() string {
	switch t {
	case NewHeight:
		return "NewHeight"
	case Proposal:
		return "Proposal"
	case PrevoteQC:
		return "PrevoteQC"
	case PrecommitQC:
		return "PrecommitQC"
	case ContinueRound:
		return "ContinueRound"
	default:
		return fmt.Sprintf("TriggerType(%d)", uint8(t))
	}
}

// OptRound is an optional round number. RLP has no native notion of
// Option<T>, so this mirrors the isValidRoundNil trick the teacher uses to
// encode Proposal.ValidRound == -1: a presence flag alongside the value.
type OptRound struct {
	Valid bool
	Round uint64
}

// NoneRound is the absent OptRound.
func NoneRound() OptRound { return OptRound{} }

// SomeRound wraps a present round value.
func SomeRound(r uint64) OptRound { return OptRound{Valid: true, Round: r} }

func (o OptRound) String() string {
	if !o.Valid {
		return "none"
	}
	return fmt.Sprintf("%d", o.Round)
}

// NewHeightStatus is the payload of a NewHeight trigger.
type NewHeightStatus struct {
	Height      uint64
	NewInterval *DurationConfig `rlp:"nil"`
	NewConfig   []byte // opaque validator-config blob; validator set wiring is out of scope. Nil round-trips natively.
}

// DurationConfig is the per-step timeout ratio configuration carried by a
// NewHeight status, mirroring the original's propose/prevote/precommit/brake
// ratios.
type DurationConfig struct {
	ProposeRatio   uint64
	PrevoteRatio   uint64
	PrecommitRatio uint64
	BrakeRatio     uint64
}

// Trigger is the single typed envelope accepted by the core's entry point.
type Trigger struct {
	Type      TriggerType
	Source    Source
	Height    uint64
	Round     uint64
	Hash      common.Hash
	LockRound OptRound

	// Status is only meaningful when Type == NewHeight.
	Status NewHeightStatus

	// ContinueTo is only meaningful when Type == ContinueRound: the target
	// round to jump forward to.
	ContinueTo uint64
}

func (t Trigger) String() string {
	return fmt.Sprintf("Trigger{%s source=%s height=%d round=%d hash=%s lock_round=%s}",
		t.Type, t.Source, t.Height, t.Round, t.Hash.Hex(), t.LockRound)
}

// FromWhereKind identifies which QC type caused a round to be entered.
type FromWhereKind uint8

const (
	FromPrecommitQC FromWhereKind = iota
	FromPrevoteQC
	FromChokeQC
)

func (k FromWhereKind) String() string {
	switch k {
	case FromPrecommitQC:
		return "PrecommitQC"
	case FromPrevoteQC:
		return "PrevoteQC"
	case FromChokeQC:
		return "ChokeQC"
	default:
		return fmt.Sprintf("FromWhereKind(%d)", uint8(k))
	}
}

// FromWhere annotates a NewRoundInfo event with the round that caused the
// round entry and which QC family produced it.
type FromWhere struct {
	Kind  FromWhereKind
	Round uint64
}

func (f FromWhere) String() string {
	return fmt.Sprintf("%s(%d)", f.Kind, f.Round)
}

// EventKind tags the Event union.
type EventKind uint8

const (
	EventNewRoundInfo EventKind = iota
	EventPrevoteVote
	EventPrecommitVote
	EventCommit
)

func (k EventKind) String() string {
	switch k {
	case EventNewRoundInfo:
		return "NewRoundInfo"
	case EventPrevoteVote:
		return "PrevoteVote"
	case EventPrecommitVote:
		return "PrecommitVote"
	case EventCommit:
		return "Commit"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is the tagged union the SMR core emits on both egress streams.
type Event struct {
	Kind EventKind

	Height uint64
	Round  uint64

	// NewRoundInfo fields.
	LockRound    OptRound
	LockProposal common.Hash
	LockIsSet    bool
	NewInterval  *DurationConfig `rlp:"nil"`
	NewConfig    []byte
	FromWhere    FromWhere

	// PrevoteVote / PrecommitVote fields.
	BlockHash common.Hash

	// Commit field.
	CommitHash common.Hash
}

func (e Event) String() string {
	switch e.Kind {
	case EventNewRoundInfo:
		return fmt.Sprintf("NewRoundInfo{height=%d round=%d lock_round=%s from=%s}",
			e.Height, e.Round, e.LockRound, e.FromWhere)
	case EventPrevoteVote:
		return fmt.Sprintf("PrevoteVote{height=%d round=%d hash=%s lock_round=%s}",
			e.Height, e.Round, e.BlockHash.Hex(), e.LockRound)
	case EventPrecommitVote:
		return fmt.Sprintf("PrecommitVote{height=%d round=%d hash=%s lock_round=%s}",
			e.Height, e.Round, e.BlockHash.Hex(), e.LockRound)
	case EventCommit:
		return fmt.Sprintf("Commit(%s)", e.CommitHash.Hex())
	default:
		return "Event(?)"
	}
}

// NewRoundInfoEvent builds a NewRoundInfo event.
func NewRoundInfoEvent(height, round uint64, lockRound OptRound, lockProposal common.Hash, lockIsSet bool,
	newInterval *DurationConfig, newConfig []byte, from FromWhere) Event {
	return Event{
		Kind:         EventNewRoundInfo,
		Height:       height,
		Round:        round,
		LockRound:    lockRound,
		LockProposal: lockProposal,
		LockIsSet:    lockIsSet,
		NewInterval:  newInterval,
		NewConfig:    newConfig,
		FromWhere:    from,
	}
}

// PrevoteVoteEvent builds a PrevoteVote event.
func PrevoteVoteEvent(height, round uint64, hash common.Hash, lockRound OptRound) Event {
	return Event{Kind: EventPrevoteVote, Height: height, Round: round, BlockHash: hash, LockRound: lockRound}
}

// PrecommitVoteEvent builds a PrecommitVote event.
func PrecommitVoteEvent(height, round uint64, hash common.Hash, lockRound OptRound) Event {
	return Event{Kind: EventPrecommitVote, Height: height, Round: round, BlockHash: hash, LockRound: lockRound}
}

// CommitEvent builds a Commit event.
func CommitEvent(hash common.Hash) Event {
	return Event{Kind: EventCommit, CommitHash: hash}
}
