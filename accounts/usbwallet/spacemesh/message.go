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

import "fmt"

// Domain namespaces the protocol messages the device is willing to sign.
type Domain byte

const (
	ATX               Domain = 0
	Proposal          Domain = 1
	Ballot            Domain = 2
	Hare              Domain = 3
	PoET              Domain = 4
	BeaconFirstMsg    Domain = 10
	BeaconFollowupMsg Domain = 11
)

// Valid reports whether the device recognises the domain tag.
func (d Domain) Valid() bool {
	switch d {
	case ATX, Proposal, Ballot, Hare, PoET, BeaconFirstMsg, BeaconFollowupMsg:
		return true
	}
	return false
}

func (d Domain) String() string {
	switch d {
	case ATX:
		return "ATX"
	case Proposal:
		return "PROPOSAL"
	case Ballot:
		return "BALLOT"
	case Hare:
		return "HARE"
	case PoET:
		return "POET"
	case BeaconFirstMsg:
		return "BEACON FIRST MSG"
	case BeaconFollowupMsg:
		return "BEACON FOLLOWUP MSG"
	}
	return fmt.Sprintf("Domain(%d)", byte(d))
}

// SigningRequest is a raw protocol message to be signed by the device key.
type SigningRequest struct {
	Prefix  []byte
	Domain  Domain
	Message []byte
}

// SerializeSigningPayload concatenates prefix, domain tag and message. No
// lengths are encoded; the boundaries are only known to the caller.
func SerializeSigningPayload(req SigningRequest) []byte {
	out := make([]byte, 0, len(req.Prefix)+1+len(req.Message))
	out = append(out, req.Prefix...)
	out = append(out, byte(req.Domain))
	return append(out, req.Message...)
}
