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

// Package accounts implements the BIP-32 derivation paths used to address keys
// held by the Spacemesh Ledger application.
package accounts

import (
	"encoding/binary"
	"errors"
	"fmt"

	ethaccounts "github.com/ethereum/go-ethereum/accounts"
)

// PathLength is the number of derivation levels the device accepts.
const PathLength = 5

// HardenedOffset marks a hardened derivation level.
const HardenedOffset = 0x80000000

const (
	purposeBIP44    = HardenedOffset | 44
	coinTypeMainnet = HardenedOffset | 540
	coinTypeTestnet = HardenedOffset | 1
)

// ErrPathLength is returned when a derivation path does not have exactly
// PathLength levels.
var ErrPathLength = fmt.Errorf("accounts: derivation path must have %d levels", PathLength)

// DerivationPath is a fixed depth BIP-32 path, m / purpose' / coin_type' /
// account' / change / address_index, as used by the Spacemesh app.
type DerivationPath [PathLength]uint32

var (
	// DefaultMainnetPath is the first mainnet key: m/44'/540'/0'/0'/0'.
	DefaultMainnetPath = DerivationPath{purposeBIP44, coinTypeMainnet, HardenedOffset, HardenedOffset, HardenedOffset}

	// DefaultTestnetPath is the first testnet key: m/44'/1'/0'/0'/0'.
	DefaultTestnetPath = DerivationPath{purposeBIP44, coinTypeTestnet, HardenedOffset, HardenedOffset, HardenedOffset}
)

// ParseDerivationPath converts a user specified derivation path string into
// its fixed depth representation. Hardened levels are marked with a trailing
// apostrophe.
func ParseDerivationPath(path string) (DerivationPath, error) {
	parsed, err := ethaccounts.ParseDerivationPath(path)
	if err != nil {
		return DerivationPath{}, err
	}
	if len(parsed) != PathLength {
		return DerivationPath{}, fmt.Errorf("%w, have %d in %q", ErrPathLength, len(parsed), path)
	}
	var dp DerivationPath
	copy(dp[:], parsed)
	return dp, nil
}

// String implements the stringer interface, converting the path into its
// canonical textual form.
func (path DerivationPath) String() string {
	return ethaccounts.DerivationPath(path[:]).String()
}

// Serialize flattens the path into the device request layout, each level as a
// little endian uint32.
func (path DerivationPath) Serialize() []byte {
	out := make([]byte, 4*PathLength)
	for i, component := range path {
		binary.LittleEndian.PutUint32(out[4*i:], component)
	}
	return out
}

// Network returns the network selected by the path's coin type. The device
// refuses paths that are neither mainnet nor testnet.
func (path DerivationPath) Network() Network {
	if path[0] != purposeBIP44 {
		return UnknownNetwork
	}
	switch path[1] {
	case coinTypeMainnet:
		return Mainnet
	case coinTypeTestnet:
		return Testnet
	}
	return UnknownNetwork
}

// Network identifies the Spacemesh network an address belongs to.
type Network int

const (
	UnknownNetwork Network = iota
	Mainnet
	Testnet
)

var errUnknownNetwork = errors.New("accounts: unknown network")

// ParseNetwork resolves a network by its name.
func ParseNetwork(name string) (Network, error) {
	switch name {
	case "mainnet":
		return Mainnet, nil
	case "testnet":
		return Testnet, nil
	}
	return UnknownNetwork, fmt.Errorf("%w %q", errUnknownNetwork, name)
}

func (n Network) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	}
	return "unknown"
}

// HRP returns the human readable prefix of the network's bech32 addresses.
func (n Network) HRP() string {
	switch n {
	case Mainnet:
		return "sm"
	case Testnet:
		return "stest"
	}
	return ""
}

// DefaultPath returns the first key path of the network.
func (n Network) DefaultPath() (DerivationPath, error) {
	switch n {
	case Mainnet:
		return DefaultMainnetPath, nil
	case Testnet:
		return DefaultTestnetPath, nil
	}
	return DerivationPath{}, errUnknownNetwork
}
