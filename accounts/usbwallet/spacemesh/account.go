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

// Package spacemesh contains the account model understood by the Spacemesh
// Ledger application, the client-side sanity checks run on it and the exact
// binary layout the device expects for address derivation and signing.
package spacemesh

import (
	"fmt"
	"math"
)

// AccountType is an enumeration of the account templates the Ledger app can
// derive addresses for. The numeric values match the device firmware.
type AccountType byte

const (
	Wallet   AccountType = 1 // Single signer account owned by the device key
	Multisig AccountType = 2 // M-of-N account, the device holds one slot
	Vesting  AccountType = 3 // Multisig account subject to a vesting schedule
	Vault    AccountType = 4 // Vesting vault owned by a Wallet or Vesting account
)

func (t AccountType) String() string {
	switch t {
	case Wallet:
		return "wallet"
	case Multisig:
		return "multisig"
	case Vesting:
		return "vesting"
	case Vault:
		return "vault"
	}
	return fmt.Sprintf("AccountType(%d)", byte(t))
}

const (
	// PubkeyLength is the size of an ed25519 public key.
	PubkeyLength = 32

	// PubkeyItemLength is the serialized size of an index and its public key.
	PubkeyItemLength = 1 + PubkeyLength

	// MaxParticipants is the largest account the device will derive an address
	// for (MAX_MULTISIG_PUB_KEY in the firmware).
	MaxParticipants = 10
)

// Upper bounds of the fixed-width fields carried by a vault.
const (
	MaxUint8  uint8  = math.MaxUint8
	MaxUint32 uint32 = math.MaxUint32
	MaxUint64 uint64 = math.MaxUint64
)

// PubkeyItem is a participant public key together with its slot in the account.
type PubkeyItem struct {
	Index  uint8
	Pubkey []byte
}

// Account is the shared description of every account template. Pubkeys holds
// the keys of all participants except the one held by the device, which is
// identified separately by its internal index. Wallet accounts list all of
// their keys.
type Account struct {
	Type         AccountType
	Approvers    uint8
	Participants uint8
	Pubkeys      []PubkeyItem
}

// VaultAccount locks TotalAmount behind a linear vesting schedule owned by
// Owner, which must be a Vesting or Wallet account.
type VaultAccount struct {
	Owner               Account
	TotalAmount         uint64
	InitialUnlockAmount uint64
	VestingStart        uint32
	VestingEnd          uint32
}

// Descriptor is the closed set of account shapes an address can be derived
// for. Kind selects which of Account or Vault is populated; the other is nil.
type Descriptor struct {
	Kind    AccountType
	Account *Account
	Vault   *VaultAccount
}

// AccountDescriptor wraps a wallet, multisig or vesting account, keyed by the
// account's own type.
func AccountDescriptor(acc Account) Descriptor {
	return Descriptor{Kind: acc.Type, Account: &acc}
}

// VaultDescriptor wraps a vault account.
func VaultDescriptor(vault VaultAccount) Descriptor {
	return Descriptor{Kind: Vault, Vault: &vault}
}

// clone returns a deep copy of the account so that canonicalisation never
// touches caller owned memory.
func (acc Account) clone() Account {
	cpy := acc
	cpy.Pubkeys = make([]PubkeyItem, len(acc.Pubkeys))
	for i, item := range acc.Pubkeys {
		cpy.Pubkeys[i] = PubkeyItem{
			Index:  item.Index,
			Pubkey: append([]byte(nil), item.Pubkey...),
		}
	}
	return cpy
}
