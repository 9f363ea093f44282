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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/celo-org/spacemesh-ledger/accounts"
	"github.com/celo-org/spacemesh-ledger/accounts/usbwallet/spacemesh"
)

// SignatureLength is the size of the ed25519 signatures produced by the app.
const SignatureLength = 64

// versionReplyLength is the size of the version reply.
const versionReplyLength = 12

var (
	// ErrMalformedResponse is returned when a successful reply is too short to
	// hold the fields it is expected to carry.
	ErrMalformedResponse = errors.New("ledger: malformed response")

	// ErrAddressNetwork is returned when an address doesn't carry the bech32
	// prefix of the requested network.
	ErrAddressNetwork = errors.New("ledger: address of wrong network")
)

// AddressResponse is the reply of the address instructions.
type AddressResponse struct {
	Pubkey  [spacemesh.PubkeyLength]byte
	Address string // bech32 text, exactly as sent by the device
}

// DecodeAddress splits an address reply into its parts:
//
//	Description        | Length
//	-------------------+----------
//	Public key         | 32 bytes
//	Address (bech32)   | remainder, ASCII
func DecodeAddress(reply []byte) (AddressResponse, error) {
	if len(reply) < spacemesh.PubkeyLength {
		return AddressResponse{}, fmt.Errorf("%w: address reply of %d bytes lacks public key", ErrMalformedResponse, len(reply))
	}
	var resp AddressResponse
	copy(resp.Pubkey[:], reply[:spacemesh.PubkeyLength])
	resp.Address = string(reply[spacemesh.PubkeyLength:])
	return resp, nil
}

// DecodeSignature extracts the signature from a sign reply. The whole reply
// is the signature.
func DecodeSignature(reply []byte) ([]byte, error) {
	if len(reply) < SignatureLength {
		return nil, fmt.Errorf("%w: reply lacks signature", ErrMalformedResponse)
	}
	return append([]byte(nil), reply...), nil
}

// Version describes the app running on the device.
type Version struct {
	TestMode bool
	Major    uint16
	Minor    uint16
	Patch    uint16
	Locked   bool
	TargetID uint32
}

func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// DecodeVersion parses a version reply:
//
//	Description                | Length
//	---------------------------+---------
//	Test mode flag             | 1 byte
//	Major version (big endian) | 2 bytes
//	Minor version (big endian) | 2 bytes
//	Patch version (big endian) | 2 bytes
//	Device locked flag         | 1 byte
//	Target id (big endian)     | 4 bytes
func DecodeVersion(reply []byte) (Version, error) {
	if len(reply) < versionReplyLength {
		return Version{}, fmt.Errorf("%w: version reply of %d bytes", ErrMalformedResponse, len(reply))
	}
	return Version{
		TestMode: reply[0] != 0,
		Major:    binary.BigEndian.Uint16(reply[1:]),
		Minor:    binary.BigEndian.Uint16(reply[3:]),
		Patch:    binary.BigEndian.Uint16(reply[5:]),
		Locked:   reply[7] == 1,
		TargetID: binary.BigEndian.Uint32(reply[8:]),
	}, nil
}

// checkAddressNetwork verifies that a bech32 address belongs to the network
// of the derivation path. Paths of unknown networks are not checked.
func checkAddressNetwork(address string, network accounts.Network) error {
	if network == accounts.UnknownNetwork {
		return nil
	}
	hrp, _, err := bech32.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if hrp != network.HRP() {
		return fmt.Errorf("%w: have prefix %q, want %q", ErrAddressNetwork, hrp, network.HRP())
	}
	return nil
}
