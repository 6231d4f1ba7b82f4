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

// Package e2e_test drives a Machine end to end through its public surface
// (Process + Outbox + accountability.Watcher) the way the teacher's
// byzantine e2e suite drives a full node through its Backend, simulating a
// misbehaving proposer rather than unit-testing a single handler.
package e2e_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/autonity/tendermint-smr/accountability"
	"github.com/autonity/tendermint-smr/consensus/tendermint/core"
	"github.com/autonity/tendermint-smr/consensus/tendermint/events"
	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

// randomHash produces a pseudo-random, non-empty hash for fuzzing proposal
// content; gofuzz is seeded per call so repeated invocations in the same
// test still yield distinct values.
func randomHash(seed int64) common.Hash {
	f := fuzz.NewWithSeed(seed)
	var h common.Hash
	f.Fuzz(&h)
	if h == (common.Hash{}) {
		h[31] = 1
	}
	return h
}

// simulateForkingProposer drives a Machine through a locked round 0 and a nil
// precommit QC into round 1, then injects a round-1 proposal carrying the
// same lock_round but a distinct, fuzzed hash — the off-chain double-propose
// a Byzantine leader would attempt. The watcher is expected to raise a Fork
// proof.
func simulateForkingProposer(t *testing.T, seed int64) *accountability.Proof {
	t.Helper()

	outbox := events.NewOutbox()
	defer outbox.Close()

	machine := core.New(outbox, true)
	detections := make(chan accountability.Detection, 4)
	watcher := accountability.NewWatcher(machine, detections)
	watcher.Run()
	defer watcher.Stop()

	require.NoError(t, machine.Process(message.Trigger{
		Type: message.NewHeight, Source: message.State,
		Status: message.NewHeightStatus{Height: 1},
	}))

	honestHash := randomHash(seed)
	require.NoError(t, machine.Process(message.Trigger{
		Type: message.Proposal, Source: message.State,
		Height: 1, Round: 0, Hash: honestHash, LockRound: message.NoneRound(),
	}))
	require.NoError(t, machine.Process(message.Trigger{
		Type: message.PrevoteQC, Source: message.State,
		Height: 1, Round: 0, Hash: honestHash,
	}))
	require.NoError(t, machine.Process(message.Trigger{
		Type: message.PrecommitQC, Source: message.State,
		Height: 1, Round: 0, Hash: common.Hash{},
	}))

	forkedHash := randomHash(seed + 1)
	for forkedHash == honestHash {
		forkedHash = randomHash(seed + 2)
	}

	forkTrigger := message.Trigger{
		Type: message.Proposal, Source: message.State,
		Height: 1, Round: 1, Hash: forkedHash, LockRound: message.SomeRound(0),
	}
	err := machine.Process(forkTrigger)
	require.Error(t, err)
	cerr, ok := err.(*core.ConsensusError)
	require.True(t, ok)
	require.Equal(t, core.KindCorrectness, cerr.Kind())

	select {
	case detections <- accountability.Detection{Trigger: forkTrigger, Err: err}:
	case <-time.After(time.Second):
		t.Fatal("timed out feeding detection to watcher")
	}

	select {
	case proof := <-watcher.Proofs():
		return proof
	case <-time.After(time.Second):
		t.Fatal("watcher did not raise a proof")
		return nil
	}
}

func TestForkAccusationRaisesProof(t *testing.T) {
	seed := rand.New(rand.NewSource(1)).Int63()
	proof := simulateForkingProposer(t, seed)

	require.Equal(t, accountability.FaultFork, proof.Kind)
	require.Equal(t, uint64(1), proof.Height)
	require.Len(t, proof.Evidence, 1)
	require.Equal(t, message.PrevoteQC, proof.Evidence[0].Type)
	require.Equal(t, uint64(0), proof.Evidence[0].Round)
}

// Run the scenario across several fuzzed hash pairs to make sure Fork
// detection doesn't depend on any particular byte pattern.
func TestForkAccusationFuzzed(t *testing.T) {
	for i := int64(0); i < 10; i++ {
		proof := simulateForkingProposer(t, 100+i)
		require.Equal(t, accountability.FaultFork, proof.Kind)
	}
}
