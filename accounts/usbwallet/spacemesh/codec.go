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

import "encoding/binary"

// vaultTermsLength is the size of the amounts and vesting bounds preceding the
// owner in a serialized vault.
const vaultTermsLength = 8 + 8 + 4 + 4

// SerializeAccount flattens an account into the layout read by the device:
//
//	Description                  | Length
//	-----------------------------+---------
//	Approvers                    | 1 byte
//	Participants                 | 1 byte
//	Pubkey index                 | 1 byte
//	Pubkey                       | 32 bytes
//	...                          |
//
// Pubkeys are written in the order held by the account, callers are expected
// to pass an account returned by CheckSanity.
func SerializeAccount(acc Account) []byte {
	out := make([]byte, 2, 2+PubkeyItemLength*len(acc.Pubkeys))
	out[0] = acc.Approvers
	out[1] = acc.Participants

	for _, item := range acc.Pubkeys {
		out = append(out, item.Index)
		out = append(out, item.Pubkey...)
	}
	return out
}

// SerializeAddressPayload builds the multisig and vesting address request,
// the internal index followed by the serialized account.
func SerializeAddressPayload(internalIndex uint8, acc Account) []byte {
	return append([]byte{internalIndex}, SerializeAccount(acc)...)
}

// SerializeVaultAccount flattens a vault into the layout read by the device:
//
//	Description                  | Length
//	-----------------------------+---------
//	Total amount (little endian) | 8 bytes
//	Initial unlock amount        | 8 bytes
//	Vesting start                | 4 bytes
//	Vesting end                  | 4 bytes
//	Internal index               | 1 byte
//	Owner account                | arbitrary
func SerializeVaultAccount(internalIndex uint8, vault VaultAccount) []byte {
	owner := SerializeAccount(vault.Owner)

	out := make([]byte, vaultTermsLength+1, vaultTermsLength+1+len(owner))
	binary.LittleEndian.PutUint64(out[0:], vault.TotalAmount)
	binary.LittleEndian.PutUint64(out[8:], vault.InitialUnlockAmount)
	binary.LittleEndian.PutUint32(out[16:], vault.VestingStart)
	binary.LittleEndian.PutUint32(out[20:], vault.VestingEnd)
	out[vaultTermsLength] = internalIndex

	return append(out, owner...)
}

// EncodeDescriptor validates the descriptor and returns the address request
// payload for its kind. Wallet addresses are derived from the derivation path
// alone and carry no payload.
func EncodeDescriptor(internalIndex uint8, d Descriptor) ([]byte, error) {
	canonical, err := Validate(internalIndex, d)
	if err != nil {
		return nil, err
	}
	switch canonical.Kind {
	case Multisig, Vesting:
		return SerializeAddressPayload(internalIndex, *canonical.Account), nil
	case Vault:
		return SerializeVaultAccount(internalIndex, *canonical.Vault), nil
	}
	return nil, nil
}
