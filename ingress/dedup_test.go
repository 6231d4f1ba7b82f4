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

package ingress

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

func TestDedupFlagsRepeats(t *testing.T) {
	d := NewDedup(4)
	trigger := message.Trigger{
		Type: message.Proposal, Source: message.State,
		Height: 1, Round: 0, Hash: common.HexToHash("0x01"),
	}

	require.False(t, d.Seen(trigger))
	require.True(t, d.Seen(trigger))
}

func TestDedupDistinguishesTriggers(t *testing.T) {
	d := NewDedup(4)
	a := message.Trigger{Type: message.Proposal, Source: message.State, Height: 1, Round: 0, Hash: common.HexToHash("0x01")}
	b := message.Trigger{Type: message.Proposal, Source: message.State, Height: 1, Round: 0, Hash: common.HexToHash("0x02")}

	require.False(t, d.Seen(a))
	require.False(t, d.Seen(b))
	require.True(t, d.Seen(a))
	require.True(t, d.Seen(b))
}

func TestDedupEvictsOldestPastCapacity(t *testing.T) {
	d := NewDedup(2)
	a := message.Trigger{Type: message.Proposal, Height: 1, Round: 0, Hash: common.HexToHash("0x01")}
	b := message.Trigger{Type: message.Proposal, Height: 1, Round: 0, Hash: common.HexToHash("0x02")}
	c := message.Trigger{Type: message.Proposal, Height: 1, Round: 0, Hash: common.HexToHash("0x03")}

	require.False(t, d.Seen(a))
	require.False(t, d.Seen(b))
	require.False(t, d.Seen(c)) // evicts a's fingerprint
	require.False(t, d.Seen(a)) // a no longer remembered
}
