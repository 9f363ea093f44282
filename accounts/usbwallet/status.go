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

package usbwallet

import (
	"errors"
	"fmt"
	"strings"
)

// StatusWord is the two byte trailer of every device reply.
type StatusWord uint16

const (
	StatusOK                     StatusWord = 0x9000
	StatusExecutionError         StatusWord = 0x6400
	StatusWrongLength            StatusWord = 0x6700
	StatusEmptyBuffer            StatusWord = 0x6982
	StatusOutputBufferTooSmall   StatusWord = 0x6983
	StatusDataInvalid            StatusWord = 0x6984
	StatusConditionsNotSatisfied StatusWord = 0x6985
	StatusTransactionRejected    StatusWord = 0x6986
	StatusBadKeyHandle           StatusWord = 0x6a80
	StatusInvalidP1P2            StatusWord = 0x6b00
	StatusInsNotSupported        StatusWord = 0x6d00
	StatusClaNotSupported        StatusWord = 0x6e00
	StatusUnknownError           StatusWord = 0x6f00
	StatusSignVerifyError        StatusWord = 0x6f01
	StatusDeviceBusy             StatusWord = 0x9001

	// StatusTransportError is never sent by a device. It tags failures of
	// the link itself.
	StatusTransportError StatusWord = 0xffff
)

var statusDescriptions = map[StatusWord]string{
	StatusOK:                     "No errors",
	StatusExecutionError:         "Execution error",
	StatusWrongLength:            "Wrong length",
	StatusEmptyBuffer:            "Empty buffer",
	StatusOutputBufferTooSmall:   "Output buffer too small",
	StatusDataInvalid:            "Data is invalid",
	StatusConditionsNotSatisfied: "Conditions not satisfied",
	StatusTransactionRejected:    "Transaction rejected",
	StatusBadKeyHandle:           "Bad key handle",
	StatusInvalidP1P2:            "Invalid P1/P2",
	StatusInsNotSupported:        "Instruction not supported",
	StatusClaNotSupported:        "App does not seem to be open",
	StatusUnknownError:           "Unknown error",
	StatusSignVerifyError:        "Sign/verify error",
	StatusDeviceBusy:             "Device is busy",
	StatusTransportError:         "Transport error",
}

func (s StatusWord) String() string {
	if desc, ok := statusDescriptions[s]; ok {
		return fmt.Sprintf("%s (0x%04x)", desc, uint16(s))
	}
	return fmt.Sprintf("Unknown status (0x%04x)", uint16(s))
}

// Category groups status words by how callers are expected to react.
type Category int

const (
	CategorySuccess         Category = iota
	CategoryUserRejected             // The user declined on the device
	CategoryDataInvalid              // The device refused the request contents
	CategoryUnexpectedValue          // A field carried a value the device doesn't know
	CategoryTransport                // The link to the device failed
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategorySuccess:
		return "success"
	case CategoryUserRejected:
		return "user-rejected"
	case CategoryDataInvalid:
		return "data-invalid"
	case CategoryUnexpectedValue:
		return "unexpected-value"
	case CategoryTransport:
		return "transport"
	}
	return "other"
}

// Category classifies the status word on its own.
func (s StatusWord) Category() Category {
	switch s {
	case StatusOK:
		return CategorySuccess
	case StatusTransactionRejected:
		return CategoryUserRejected
	case StatusDataInvalid:
		return CategoryDataInvalid
	case StatusBadKeyHandle:
		return CategoryUnexpectedValue
	case StatusTransportError:
		return CategoryTransport
	}
	return CategoryOther
}

// unexpectedValueMessage is the detail the app attaches to a data invalid
// status when a tag (a signing domain for example) is out of range.
const unexpectedValueMessage = "unexpected value"

// ProtocolError is returned when a frame of an exchange fails, either because
// the device answered with a non success status or the link broke down. No
// frame after the failing one has been sent.
type ProtocolError struct {
	Status      StatusWord
	Instruction Instruction
	Frame       int    // 1-based index of the failing frame
	Count       int    // Number of frames in the sequence
	Message     string // Detail text returned by the device, if any
	Err         error  // Underlying transport failure, if any
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("ledger: %v frame %d/%d failed: %v", e.Instruction, e.Frame, e.Count, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Category classifies the failure, refining data invalid replies by the
// device supplied detail.
func (e *ProtocolError) Category() Category {
	category := e.Status.Category()
	if category == CategoryDataInvalid && strings.Contains(strings.ToLower(e.Message), unexpectedValueMessage) {
		return CategoryUnexpectedValue
	}
	return category
}

// IsUserRejected reports whether err stems from the user declining a request
// on the device.
func IsUserRejected(err error) bool {
	var perr *ProtocolError
	return errors.As(err, &perr) && perr.Category() == CategoryUserRejected
}

// IsDataInvalid reports whether err stems from the device refusing the
// contents of a request.
func IsDataInvalid(err error) bool {
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		return false
	}
	category := perr.Category()
	return category == CategoryDataInvalid || category == CategoryUnexpectedValue
}

// StatusOf extracts the status word carried by err.
func StatusOf(err error) (StatusWord, bool) {
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		return 0, false
	}
	return perr.Status, true
}

// deviceMessage extracts the printable detail text a device may return along
// with a failure status.
func deviceMessage(body []byte) string {
	msg := strings.TrimRight(string(body), "\x00")
	for _, r := range msg {
		if r < 0x20 || r > 0x7e {
			return ""
		}
	}
	return strings.TrimSpace(msg)
}
