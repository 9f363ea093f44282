// Copyright 2024 The celo Authors
// This file is part of the celo library.
//
// The celo library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The celo library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the celo library. If not, see <http://www.gnu.org/licenses/>.

package spacemesh

import (
	"errors"
	"fmt"
)

// ErrorKind names the account invariant a ValidationError reports on.
type ErrorKind int

const (
	DuplicateIndex ErrorKind = iota + 1
	MissingIndex
	InvalidPubkeySize
	ParticipantMismatch
	ApproversZero
	ApproversExceedParticipants
	TooManyParticipants
	AmountOverflow
	VestingOverflow
	UnlockExceedsTotal
	VestingRangeInverted
	InvalidOwnerType
	InvalidDescriptor
)

var kindNames = map[ErrorKind]string{
	DuplicateIndex:              "duplicate index",
	MissingIndex:                "missing index",
	InvalidPubkeySize:           "invalid pubkey size",
	ParticipantMismatch:         "participant mismatch",
	ApproversZero:               "approvers zero",
	ApproversExceedParticipants: "approvers exceed participants",
	TooManyParticipants:         "too many participants",
	AmountOverflow:              "amount overflow",
	VestingOverflow:             "vesting overflow",
	UnlockExceedsTotal:          "unlock exceeds total",
	VestingRangeInverted:        "vesting range inverted",
	InvalidOwnerType:            "invalid owner type",
	InvalidDescriptor:           "invalid descriptor",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ValidationError is returned by the sanity checks when an account can not be
// safely serialized. Index and Value carry the offending slot or quantity
// where one applies.
type ValidationError struct {
	Kind    ErrorKind
	Index   uint8
	Value   uint64
	Message string
}

func (e *ValidationError) Error() string {
	return "spacemesh: " + e.Message
}

func validationError(kind ErrorKind, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is, or wraps, a ValidationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	return verr.Kind == kind
}
