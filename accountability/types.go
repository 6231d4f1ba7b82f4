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

// Package accountability turns a fatal *core.ConsensusError into a durable
// Proof record: the trigger that tripped it plus the prior triggers that
// establish why. It is the evidence trail a node operator (or a peer, once
// the surrounding system gossips proofs) inspects to decide whether to halt
// or quarantine a replica.
package accountability

import (
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

var errUnknownFaultKind = errors.New("unknown fault kind")

// FaultKind classifies the safety or liveness violation a Proof documents.
type FaultKind uint8

const (
	// FaultFork: two distinct proposals observed at the same lock round.
	FaultFork FaultKind = iota
	// FaultSelfCheck: a lock/block_hash invariant was violated pre-transition.
	FaultSelfCheck
)

func (k FaultKind) String() string {
	switch k {
	case FaultFork:
		return "Fork"
	case FaultSelfCheck:
		return "SelfCheck"
	default:
		return fmt.Sprintf("FaultKind(%d)", uint8(k))
	}
}

// Proof is the evidence record for a fatal consensus error: the accused
// trigger (the one whose processing raised the error), the prior triggers
// that make the violation provable to a third party, and the reason text
// the core reported.
//
// Unlike the teacher's Proof, whose Message/Evidences fields hold one of
// three distinct wire message types and so need a tagged-union codec
// (typedMessage), every entry here is the same concrete message.Trigger
// type — Trigger already self-describes its Type, so no tag wrapper is
// needed. See DESIGN.md.
type Proof struct {
	Kind     FaultKind
	Height   uint64
	Round    uint64
	Accused  message.Trigger
	Evidence []message.Trigger
	Reason   string
}

type rlpProof struct {
	Kind     uint8
	Height   uint64
	Round    uint64
	Accused  message.Trigger
	Evidence []message.Trigger
	Reason   string
}

// EncodeRLP implements rlp.Encoder.
func (p *Proof) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &rlpProof{
		Kind:     uint8(p.Kind),
		Height:   p.Height,
		Round:    p.Round,
		Accused:  p.Accused,
		Evidence: p.Evidence,
		Reason:   p.Reason,
	})
}

// DecodeRLP implements rlp.Decoder.
func (p *Proof) DecodeRLP(s *rlp.Stream) error {
	var raw rlpProof
	if err := s.Decode(&raw); err != nil {
		return err
	}
	if raw.Kind > uint8(FaultSelfCheck) {
		return errUnknownFaultKind
	}
	p.Kind = FaultKind(raw.Kind)
	p.Height = raw.Height
	p.Round = raw.Round
	p.Accused = raw.Accused
	p.Evidence = raw.Evidence
	p.Reason = raw.Reason
	return nil
}

func (p *Proof) String() string {
	return fmt.Sprintf("Proof{%s height=%d round=%d accused=%s evidence=%d reason=%q}",
		p.Kind, p.Height, p.Round, p.Accused, len(p.Evidence), p.Reason)
}
