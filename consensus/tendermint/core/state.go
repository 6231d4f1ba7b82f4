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
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

// InitHeight and InitRound are the replica's state at process startup.
const (
	InitHeight uint64 = 0
	InitRound  uint64 = 0
)

// Lock is the proof-of-lock-change a replica holds on a proposal: evidence
// (a prevote QC at Round for Hash) that justifies voting for Hash at every
// subsequent round of the height until a higher-round PoLC supersedes it.
type Lock struct {
	Round uint64
	Hash  common.Hash
}

// State is the SMR's replica aggregate: (height, round, step, block_hash,
// lock). It is never shared between goroutines; it is owned exclusively by
// the Machine that drives the ingress.
type State struct {
	Height    uint64
	Round     uint64
	Step      message.Step
	BlockHash common.Hash
	Lock      *Lock
}

func newState() State {
	return State{Height: InitHeight, Round: InitRound, Step: message.Propose}
}

func (s State) String() string {
	lock := "none"
	if s.Lock != nil {
		lock = fmt.Sprintf("(%d,%s)", s.Lock.Round, s.Lock.Hash.Hex())
	}
	return fmt.Sprintf("State{height=%d round=%d step=%s hash=%s lock=%s}",
		s.Height, s.Round, s.Step, s.BlockHash.Hex(), lock)
}

// lockRound reports the lock's round as an OptRound, used to populate the
// lock_round field of emitted votes and NewRoundInfo events.
func (s State) lockRound() message.OptRound {
	if s.Lock == nil {
		return message.NoneRound()
	}
	return message.SomeRound(s.Lock.Round)
}

// lockProposal reports the lock's hash, used to populate NewRoundInfo's
// lock_proposal field.
func (s State) lockProposal() (common.Hash, bool) {
	if s.Lock == nil {
		return common.Hash{}, false
	}
	return s.Lock.Hash, true
}

func (s *State) gotoNewHeight(height uint64) {
	s.Height = height
	s.Round = InitRound
	s.BlockHash = common.Hash{}
	s.Lock = nil
}

func (s *State) gotoNextRound() {
	s.Round++
	s.gotoStep(message.Propose)
}

func (s *State) gotoStep(step message.Step) {
	s.Step = step
}

func (s *State) setProposal(hash common.Hash) {
	s.BlockHash = hash
}

func (s *State) removePoLC() {
	s.Lock = nil
}

// updatePoLC sets the proposal to hash and, unless hash is empty, locks on
// (round, hash); an empty hash clears the lock instead.
func (s *State) updatePoLC(hash common.Hash, round uint64) {
	s.setProposal(hash)
	if hash == (common.Hash{}) {
		s.removePoLC()
		return
	}
	s.Lock = &Lock{Round: round, Hash: hash}
}
