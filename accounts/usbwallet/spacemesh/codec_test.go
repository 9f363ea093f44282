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
	"encoding/hex"
	"testing"

	. "github.com/onsi/gomega"
)

func TestSerializeAccountLayout(t *testing.T) {
	RegisterTestingT(t)

	acc, err := CheckSanity(0, Account{Type: Multisig, Approvers: 2, Participants: 4, Pubkeys: testItems(3, 1, 2)})
	Ω(err).ShouldNot(HaveOccurred())

	raw := SerializeAccount(acc)
	Ω(raw).To(HaveLen(2 + PubkeyItemLength*len(acc.Pubkeys)))
	Ω(raw[0]).To(Equal(byte(2)))
	Ω(raw[1]).To(Equal(byte(4)))

	for i, index := range []byte{1, 2, 3} {
		offset := 2 + i*PubkeyItemLength
		Ω(raw[offset]).To(Equal(index))
		Ω(raw[offset+1 : offset+PubkeyItemLength]).To(Equal(testKey(0xa0 + index)))
	}
}

func TestSerializeWalletAccountLength(t *testing.T) {
	RegisterTestingT(t)

	for participants := uint8(1); participants <= MaxParticipants; participants++ {
		indices := make([]uint8, 0, participants)
		for i := participants; i > 0; i-- {
			indices = append(indices, i-1)
		}
		acc, err := CheckSanity(0, Account{Type: Wallet, Approvers: 1, Participants: participants, Pubkeys: testItems(indices...)})
		Ω(err).ShouldNot(HaveOccurred())
		Ω(SerializeAccount(acc)).To(HaveLen(2 + PubkeyItemLength*int(participants)))
		Ω(acc.Pubkeys[0].Index).To(Equal(uint8(0)))
	}
}

func TestSerializeAddressPayload(t *testing.T) {
	RegisterTestingT(t)

	acc := Account{Type: Vesting, Approvers: 1, Participants: 2, Pubkeys: testItems(0)}
	payload := SerializeAddressPayload(1, acc)

	Ω(payload[0]).To(Equal(byte(1)))
	Ω(payload[1:]).To(Equal(SerializeAccount(acc)))
}

func TestSerializeVaultAccountLayout(t *testing.T) {
	RegisterTestingT(t)

	vault, err := CheckVaultSanity(1, testVault())
	Ω(err).ShouldNot(HaveOccurred())

	raw := SerializeVaultAccount(1, vault)
	Ω(hex.EncodeToString(raw[:25])).To(Equal(
		"e803000000000000" + // total amount 1000
			"db03000000000000" + // initial unlock 987
			"37020000" + // vesting start 567
			"9f860100" + // vesting end 99999
			"01", // internal index
	))
	Ω(raw[25:]).To(Equal(SerializeAccount(vault.Owner)))
	Ω(raw).To(HaveLen(24 + 1 + 2 + PubkeyItemLength))
}

func TestSerializeVaultAccountLength(t *testing.T) {
	RegisterTestingT(t)

	vault := testVault()
	vault.Owner = Account{Type: Wallet, Approvers: 2, Participants: 4, Pubkeys: testItems(3, 0, 1)}

	canonical, err := CheckVaultSanity(2, vault)
	Ω(err).ShouldNot(HaveOccurred())
	Ω(SerializeVaultAccount(2, canonical)).To(HaveLen(24 + 1 + (2 + 33*3)))
}

func TestEncodeDescriptor(t *testing.T) {
	RegisterTestingT(t)

	wallet := Account{Type: Wallet, Approvers: 1, Participants: 1, Pubkeys: testItems(0)}
	payload, err := EncodeDescriptor(0, AccountDescriptor(wallet))
	Ω(err).ShouldNot(HaveOccurred())
	Ω(payload).To(BeEmpty())

	multisig := Account{Type: Multisig, Approvers: 2, Participants: 3, Pubkeys: testItems(2, 0)}
	payload, err = EncodeDescriptor(1, AccountDescriptor(multisig))
	Ω(err).ShouldNot(HaveOccurred())
	Ω(payload[0]).To(Equal(byte(1)))
	Ω(payload[3]).To(Equal(byte(0)))
	Ω(payload[3+PubkeyItemLength]).To(Equal(byte(2)))

	payload, err = EncodeDescriptor(1, VaultDescriptor(testVault()))
	Ω(err).ShouldNot(HaveOccurred())
	Ω(payload).To(HaveLen(24 + 1 + 2 + PubkeyItemLength))

	multisig.Approvers = 0
	_, err = EncodeDescriptor(1, AccountDescriptor(multisig))
	Ω(IsKind(err, ApproversZero)).To(BeTrue())
}

func TestSerializeSigningPayload(t *testing.T) {
	RegisterTestingT(t)

	req := SigningRequest{Prefix: []byte("prefix"), Domain: Hare, Message: []byte("This is our test payload!")}
	want := append([]byte("prefix"), 0x03)
	want = append(want, []byte("This is our test payload!")...)
	Ω(SerializeSigningPayload(req)).To(Equal(want))

	Ω(SerializeSigningPayload(SigningRequest{Domain: BeaconFollowupMsg})).To(Equal([]byte{0x0b}))
}

func TestDomainValid(t *testing.T) {
	RegisterTestingT(t)

	for _, d := range []Domain{ATX, Proposal, Ballot, Hare, PoET, BeaconFirstMsg, BeaconFollowupMsg} {
		Ω(d.Valid()).To(BeTrue(), d.String())
	}
	for _, d := range []Domain{5, 9, 12, 0xff} {
		Ω(d.Valid()).To(BeFalse(), d.String())
	}
	Ω(Domain(5).String()).To(Equal("Domain(5)"))
	Ω(Vault.String()).To(Equal("vault"))
}
