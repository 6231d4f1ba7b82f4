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

	"github.com/pkg/errors"
)

// Kind classifies a ConsensusError for callers that need to decide whether a
// trigger failure is recoverable or should halt the node.
type Kind uint8

const (
	// KindProposal: empty proposal from a state source. Non-fatal.
	KindProposal Kind = iota
	// KindCorrectness: a safety violation (Fork). Fatal.
	KindCorrectness
	// KindSelfCheck: an invariant violation caught pre-transition. Fatal.
	KindSelfCheck
	// KindThrowEvent: an outbound enqueue failed. Terminal for the trigger.
	KindThrowEvent
	// KindOther: miscellaneous structural errors (wrong source, delayed status, unknown trigger).
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindProposal:
		return "ProposalErr"
	case KindCorrectness:
		return "CorrectnessErr"
	case KindSelfCheck:
		return "SelfCheckErr"
	case KindThrowEvent:
		return "ThrowEventErr"
	default:
		return "Other"
	}
}

// Fatal reports whether this error kind should trigger a node halt in
// production, per spec.md §7's propagation policy.
func (k Kind) Fatal() bool {
	return k == KindCorrectness || k == KindSelfCheck
}

// ConsensusError is the error taxonomy returned by the core's single entry
// point. It is always one of the five kinds above; handlers return success
// (nil) on semantic no-ops (wrong height, stale round, step-already-past)
// and an error only on structural problems.
type ConsensusError struct {
	kind    Kind
	message string
	cause   error
}

func newErr(kind Kind, message string) *ConsensusError {
	return &ConsensusError{kind: kind, message: message}
}

// ProposalErr reports an empty proposal received from a state source.
func ProposalErr(message string) *ConsensusError { return newErr(KindProposal, message) }

// CorrectnessErr reports a detected safety violation, e.g. "Fork".
func CorrectnessErr(message string) *ConsensusError { return newErr(KindCorrectness, message) }

// SelfCheckErr reports an invariant violated by self-check before a
// transition is applied.
func SelfCheckErr(message string) *ConsensusError { return newErr(KindSelfCheck, message) }

// ThrowEventErr wraps an egress enqueue failure. cause is typically the
// error returned by the Outbox.
func ThrowEventErr(detail string, cause error) *ConsensusError {
	return &ConsensusError{kind: KindThrowEvent, message: detail, cause: errors.Wrap(cause, "publish event")}
}

// Other reports miscellaneous structural errors: wrong source for
// NewHeight, delayed status, unknown trigger type.
func Other(message string) *ConsensusError { return newErr(KindOther, message) }

func (e *ConsensusError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

// Unwrap allows errors.Is/errors.As to see through to the underlying cause.
func (e *ConsensusError) Unwrap() error { return e.cause }

// Kind returns the error's taxonomy kind.
func (e *ConsensusError) Kind() Kind { return e.kind }

// Fatal reports whether this error should halt or quarantine the node.
func (e *ConsensusError) Fatal() bool { return e.kind.Fatal() }
