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
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"
)

func TestTriggerRLPRoundTrip(t *testing.T) {
	cases := []Trigger{
		{
			Type: NewHeight, Source: State, Height: 7,
			Status: NewHeightStatus{Height: 7},
		},
		{
			Type: NewHeight, Source: State, Height: 7,
			Status: NewHeightStatus{
				Height:      7,
				NewInterval: &DurationConfig{ProposeRatio: 3000, PrevoteRatio: 1000, PrecommitRatio: 1000, BrakeRatio: 1000},
				NewConfig:   []byte("validator-set-blob"),
			},
		},
		{
			Type: Proposal, Source: State, Height: 3, Round: 1,
			Hash: common.HexToHash("0x01"), LockRound: NoneRound(),
		},
		{
			Type: Proposal, Source: State, Height: 3, Round: 1,
			Hash: common.HexToHash("0x02"), LockRound: SomeRound(0),
		},
		{
			Type: PrevoteQC, Source: Timer, Height: 3, Round: 1,
		},
		{
			Type: ContinueRound, Source: State, Height: 3, Round: 1, ContinueTo: 4,
		},
	}

	for _, want := range cases {
		enc, err := rlp.EncodeToBytes(&want)
		require.NoError(t, err)

		var got Trigger
		require.NoError(t, rlp.DecodeBytes(enc, &got))
		if len(got.Status.NewConfig) == 0 {
			got.Status.NewConfig = nil
		}
		require.Equal(t, want, got)
	}
}

func TestTriggerRLPRejectsUnknownType(t *testing.T) {
	enc, err := rlp.EncodeToBytes(&rlpTrigger{Type: uint8(ContinueRound) + 1})
	require.NoError(t, err)

	var got Trigger
	require.ErrorIs(t, rlp.DecodeBytes(enc, &got), errInvalidMessage)
}

func TestEventRLPRoundTrip(t *testing.T) {
	cases := []Event{
		NewRoundInfoEvent(5, 2, NoneRound(), common.Hash{}, false, nil, nil, FromWhere{Kind: FromPrecommitQC, Round: NoRound}),
		NewRoundInfoEvent(5, 2, SomeRound(1), common.HexToHash("0x03"), true,
			&DurationConfig{ProposeRatio: 3000, PrevoteRatio: 1000, PrecommitRatio: 1000, BrakeRatio: 1000},
			[]byte("config"), FromWhere{Kind: FromPrevoteQC, Round: 1}),
		PrevoteVoteEvent(5, 2, common.HexToHash("0x04"), SomeRound(1)),
		PrecommitVoteEvent(5, 2, common.Hash{}, NoneRound()),
		CommitEvent(common.HexToHash("0x05")),
	}

	for _, want := range cases {
		enc, err := rlp.EncodeToBytes(&want)
		require.NoError(t, err)

		var got Event
		require.NoError(t, rlp.DecodeBytes(enc, &got))
		if len(got.NewConfig) == 0 {
			got.NewConfig = nil
		}
		require.Equal(t, want, got)
	}
}

func TestEventRLPRejectsUnknownKind(t *testing.T) {
	enc, err := rlp.EncodeToBytes(&rlpEvent{Kind: uint8(EventCommit) + 1})
	require.NoError(t, err)

	var got Event
	require.ErrorIs(t, rlp.DecodeBytes(enc, &got), errInvalidMessage)
}
