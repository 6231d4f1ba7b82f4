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
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"

	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

func TestProofRLPRoundTrip(t *testing.T) {
	want := Proof{
		Kind:   FaultFork,
		Height: 1,
		Round:  0,
		Accused: message.Trigger{
			Type: message.Proposal, Source: message.State,
			Height: 1, Round: 0, Hash: common.HexToHash("0x02"), LockRound: message.SomeRound(0),
		},
		Evidence: []message.Trigger{
			{
				Type: message.PrevoteQC, Source: message.State,
				Height: 1, Round: 0, Hash: common.HexToHash("0x01"),
			},
		},
		Reason: "Fork",
	}

	enc, err := rlp.EncodeToBytes(&want)
	require.NoError(t, err)

	var got Proof
	require.NoError(t, rlp.DecodeBytes(enc, &got))
	// A nil NewConfig byte slice round-trips through RLP as a non-nil,
	// zero-length one; normalize before comparing since Trigger's wire
	// codec always carries Status regardless of Type.
	if len(got.Accused.Status.NewConfig) == 0 {
		got.Accused.Status.NewConfig = nil
	}
	for i := range got.Evidence {
		if len(got.Evidence[i].Status.NewConfig) == 0 {
			got.Evidence[i].Status.NewConfig = nil
		}
	}
	require.Equal(t, want, got)
}

func TestProofRLPRejectsUnknownFaultKind(t *testing.T) {
	enc, err := rlp.EncodeToBytes(&rlpProof{Kind: uint8(FaultSelfCheck) + 1})
	require.NoError(t, err)

	var got Proof
	require.ErrorIs(t, rlp.DecodeBytes(enc, &got), errUnknownFaultKind)
}
