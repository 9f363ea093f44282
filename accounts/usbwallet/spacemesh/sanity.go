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

import "sort"

// CheckSanity verifies that the account describes a complete set of
// participants once the device's own slot (internalIndex) is accounted for,
// and returns a copy with the pubkeys in canonical (ascending index) order.
// The input account is left untouched.
//
// A standalone wallet account lists every key of the account itself, so the
// internal index does not occupy a slot for it. Its address request carries no
// account data.
//
// Note, an internal index outside [0, participants) is recorded like any other
// slot: it surfaces as a MissingIndex for the slot it left empty or as a
// ParticipantMismatch if every required slot is otherwise filled.
func CheckSanity(internalIndex uint8, acc Account) (Account, error) {
	return checkAccount(internalIndex, acc, acc.Type != Wallet)
}

// checkAccount implements CheckSanity. With seedInternal set the internal index
// counts as a filled slot, as the device fills it with its own key.
func checkAccount(internalIndex uint8, acc Account, seedInternal bool) (Account, error) {
	seen := make(map[uint8]struct{}, len(acc.Pubkeys)+1)
	if seedInternal {
		seen[internalIndex] = struct{}{}
	}
	for _, item := range acc.Pubkeys {
		if _, ok := seen[item.Index]; ok {
			err := validationError(DuplicateIndex, "duplicate index %d found in pubkeys", item.Index)
			err.Index = item.Index
			return Account{}, err
		}
		seen[item.Index] = struct{}{}

		if len(item.Pubkey) != PubkeyLength {
			err := validationError(InvalidPubkeySize, "invalid pubkey size %d for index %d, want %d", len(item.Pubkey), item.Index, PubkeyLength)
			err.Index, err.Value = item.Index, uint64(len(item.Pubkey))
			return Account{}, err
		}
	}
	for i := 0; i < int(acc.Participants); i++ {
		if _, ok := seen[uint8(i)]; !ok {
			err := validationError(MissingIndex, "missing index %d in pubkeys", i)
			err.Index = uint8(i)
			return Account{}, err
		}
	}
	if len(seen) != int(acc.Participants) {
		err := validationError(ParticipantMismatch, "%d keys do not match %d participants", len(seen), acc.Participants)
		err.Value = uint64(len(seen))
		return Account{}, err
	}
	if acc.Approvers == 0 {
		return Account{}, validationError(ApproversZero, "approvers cannot be 0")
	}
	if acc.Participants < acc.Approvers {
		err := validationError(ApproversExceedParticipants, "%d approvers exceed %d participants", acc.Approvers, acc.Participants)
		err.Value = uint64(acc.Approvers)
		return Account{}, err
	}
	if acc.Participants > MaxParticipants {
		err := validationError(TooManyParticipants, "%d participants exceed the device limit of %d", acc.Participants, MaxParticipants)
		err.Value = uint64(acc.Participants)
		return Account{}, err
	}
	canonical := acc.clone()
	sort.Slice(canonical.Pubkeys, func(i, j int) bool {
		return canonical.Pubkeys[i].Index < canonical.Pubkeys[j].Index
	})
	return canonical, nil
}

// CheckVaultSanity verifies the vault owner like CheckSanity and then the
// vault's amount and vesting schedule. The returned vault carries the
// canonical owner.
//
// The device fills the owner's internal index slot with its own key whatever
// the owner type, so a wallet owner lists every key but its own.
func CheckVaultSanity(internalIndex uint8, vault VaultAccount) (VaultAccount, error) {
	if vault.Owner.Type != Vesting && vault.Owner.Type != Wallet {
		err := validationError(InvalidOwnerType, "vault owner must be a vesting or wallet account, have %v", vault.Owner.Type)
		err.Value = uint64(vault.Owner.Type)
		return VaultAccount{}, err
	}
	owner, err := checkAccount(internalIndex, vault.Owner, true)
	if err != nil {
		return VaultAccount{}, err
	}
	// The field types already hold these bounds, the checks only mirror the
	// device's own and cannot fail here.
	if vault.TotalAmount > MaxUint64 || vault.InitialUnlockAmount > MaxUint64 {
		return VaultAccount{}, validationError(AmountOverflow, "amount exceeds the maximum allowed value for uint64")
	}
	if vault.VestingStart > MaxUint32 || vault.VestingEnd > MaxUint32 {
		return VaultAccount{}, validationError(VestingOverflow, "vesting exceeds the maximum allowed value for uint32")
	}
	if vault.InitialUnlockAmount > vault.TotalAmount {
		verr := validationError(UnlockExceedsTotal, "initial unlock amount %d exceeds total amount %d", vault.InitialUnlockAmount, vault.TotalAmount)
		verr.Value = vault.InitialUnlockAmount
		return VaultAccount{}, verr
	}
	if vault.VestingStart > vault.VestingEnd {
		verr := validationError(VestingRangeInverted, "vesting start %d is after vesting end %d", vault.VestingStart, vault.VestingEnd)
		verr.Value = uint64(vault.VestingStart)
		return VaultAccount{}, verr
	}
	vault.Owner = owner
	return vault, nil
}

// Validate runs the sanity checks matching the descriptor's kind and returns
// the canonical descriptor.
func Validate(internalIndex uint8, d Descriptor) (Descriptor, error) {
	switch d.Kind {
	case Wallet, Multisig, Vesting:
		if d.Account == nil || d.Account.Type != d.Kind {
			return Descriptor{}, validationError(InvalidDescriptor, "%v descriptor lacks a matching account", d.Kind)
		}
		acc, err := CheckSanity(internalIndex, *d.Account)
		if err != nil {
			return Descriptor{}, err
		}
		return AccountDescriptor(acc), nil

	case Vault:
		if d.Vault == nil {
			return Descriptor{}, validationError(InvalidDescriptor, "vault descriptor lacks a vault account")
		}
		vault, err := CheckVaultSanity(internalIndex, *d.Vault)
		if err != nil {
			return Descriptor{}, err
		}
		return VaultDescriptor(vault), nil
	}
	err := validationError(InvalidDescriptor, "unknown account kind %v", d.Kind)
	err.Value = uint64(d.Kind)
	return Descriptor{}, err
}
