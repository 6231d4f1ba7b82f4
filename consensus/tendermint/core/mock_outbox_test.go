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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
)

// A publish failure surfaces as a ThrowEventErr wrapping the outbox's error,
// and aborts the trigger's processing with no further state mutation beyond
// what already happened before the failed publish.
func TestPublishFailureWrapsThrowEventErr(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOutbox := NewMockOutbox(ctrl)
	wantErr := errors.New("stream closed")
	mockOutbox.EXPECT().Publish(gomock.Any()).Return(wantErr)

	m := New(mockOutbox, true)

	err := m.Process(message.Trigger{
		Type:   message.NewHeight,
		Source: message.State,
		Status: message.NewHeightStatus{Height: 1},
	})

	require.Error(t, err)
	cerr, ok := err.(*ConsensusError)
	require.True(t, ok)
	require.Equal(t, KindThrowEvent, cerr.Kind())
	require.ErrorIs(t, cerr, wantErr)
}
