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

package message

import (
	"errors"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

var errInvalidMessage = errors.New("invalid message")

// RLP encoding doesn't support an absent value, so OptRound is carried as a
// round plus an explicit "isNil" flag. We stay as close as possible to the
// teacher's Proposal.ValidRound encoding for the same reason.
type rlpOptRound struct {
	Round  uint64
	IsNone bool
}

func toRLPOptRound(o OptRound) rlpOptRound {
	if !o.Valid {
		return rlpOptRound{IsNone: true}
	}
	return rlpOptRound{Round: o.Round}
}

func fromRLPOptRound(r rlpOptRound) OptRound {
	if r.IsNone {
		return NoneRound()
	}
	return SomeRound(r.Round)
}

type rlpTrigger struct {
	Type       uint8
	Source     uint8
	Height     uint64
	Round      uint64
	Hash       common.Hash
	LockRound  rlpOptRound
	Status     NewHeightStatus
	ContinueTo uint64
}

// EncodeRLP implements rlp.Encoder.
func (t *Trigger) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &rlpTrigger{
		Type:       uint8(t.Type),
		Source:     uint8(t.Source),
		Height:     t.Height,
		Round:      t.Round,
		Hash:       t.Hash,
		LockRound:  toRLPOptRound(t.LockRound),
		Status:     t.Status,
		ContinueTo: t.ContinueTo,
	})
}

// DecodeRLP implements rlp.Decoder.
func (t *Trigger) DecodeRLP(s *rlp.Stream) error {
	var raw rlpTrigger
	if err := s.Decode(&raw); err != nil {
		return err
	}
	if raw.Type > uint8(ContinueRound) {
		return errInvalidMessage
	}
	t.Type = TriggerType(raw.Type)
	t.Source = Source(raw.Source)
	t.Height = raw.Height
	t.Round = raw.Round
	t.Hash = raw.Hash
	t.LockRound = fromRLPOptRound(raw.LockRound)
	t.Status = raw.Status
	t.ContinueTo = raw.ContinueTo
	return nil
}

type rlpEvent struct {
	Kind         uint8
	Height       uint64
	Round        uint64
	LockRound    rlpOptRound
	LockProposal common.Hash
	LockIsSet    bool
	NewInterval  *DurationConfig `rlp:"nil"`
	NewConfig    []byte
	FromWhereKnd uint8
	FromWhereRnd uint64
	BlockHash    common.Hash
	CommitHash   common.Hash
}

// EncodeRLP implements rlp.Encoder.
func (e *Event) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &rlpEvent{
		Kind:         uint8(e.Kind),
		Height:       e.Height,
		Round:        e.Round,
		LockRound:    toRLPOptRound(e.LockRound),
		LockProposal: e.LockProposal,
		LockIsSet:    e.LockIsSet,
		NewInterval:  e.NewInterval,
		NewConfig:    e.NewConfig,
		FromWhereKnd: uint8(e.FromWhere.Kind),
		FromWhereRnd: e.FromWhere.Round,
		BlockHash:    e.BlockHash,
		CommitHash:   e.CommitHash,
	})
}

// DecodeRLP implements rlp.Decoder.
func (e *Event) DecodeRLP(s *rlp.Stream) error {
	var raw rlpEvent
	if err := s.Decode(&raw); err != nil {
		return err
	}
	if raw.Kind > uint8(EventCommit) {
		return errInvalidMessage
	}
	e.Kind = EventKind(raw.Kind)
	e.Height = raw.Height
	e.Round = raw.Round
	e.LockRound = fromRLPOptRound(raw.LockRound)
	e.LockProposal = raw.LockProposal
	e.LockIsSet = raw.LockIsSet
	e.NewInterval = raw.NewInterval
	e.NewConfig = raw.NewConfig
	e.FromWhere = FromWhere{Kind: FromWhereKind(raw.FromWhereKnd), Round: raw.FromWhereRnd}
	e.BlockHash = raw.BlockHash
	e.CommitHash = raw.CommitHash
	return nil
}
