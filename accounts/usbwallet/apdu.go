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

	"github.com/celo-org/spacemesh-ledger/accounts/usbwallet/spacemesh"
	"github.com/celo-org/spacemesh-ledger/config"
)

// ledgerCLA is the APDU class byte of the Spacemesh app.
const ledgerCLA = 0x45

// Instruction is an enumeration encoding the supported Ledger opcodes.
type Instruction byte

const (
	InsGetVersion      Instruction = 0x00 // Returns the app version and device state
	InsGetAddr         Instruction = 0x01 // Returns the public key and wallet address for a BIP 32 path
	InsSign            Instruction = 0x02 // Signs a message after having the user validate it
	InsGetMultisigAddr Instruction = 0x03 // Returns the public key and multisig account address
	InsGetVestingAddr  Instruction = 0x04 // Returns the public key and vesting account address
	InsGetVaultAddr    Instruction = 0x05 // Returns the public key and vault account address
)

func (ins Instruction) String() string {
	switch ins {
	case InsGetVersion:
		return "GET_VERSION"
	case InsGetAddr:
		return "GET_ADDR"
	case InsSign:
		return "SIGN"
	case InsGetMultisigAddr:
		return "GET_MULTISIG_ADDR"
	case InsGetVestingAddr:
		return "GET_VESTING_ADDR"
	case InsGetVaultAddr:
		return "GET_VAULT_ADDR"
	}
	return fmt.Sprintf("INS(0x%02x)", byte(ins))
}

// instructionFor maps an account kind to the opcode deriving its address.
func instructionFor(kind spacemesh.AccountType) (Instruction, error) {
	switch kind {
	case spacemesh.Wallet:
		return InsGetAddr, nil
	case spacemesh.Multisig:
		return InsGetMultisigAddr, nil
	case spacemesh.Vesting:
		return InsGetVestingAddr, nil
	case spacemesh.Vault:
		return InsGetVaultAddr, nil
	}
	return 0, fmt.Errorf("ledger: no instruction for account type %v", kind)
}

// P1 values of the chunked instructions, telling the device where the frame
// sits in the sequence.
const (
	ledgerP1Init byte = 0x00 // First frame, resets the device accumulator
	ledgerP1Add  byte = 0x01 // Continuation frame
	ledgerP1Last byte = 0x02 // Final frame, triggers processing
)

// P1 values of the plain address request.
const (
	ledgerP1OnlyRetrieve byte = 0x00 // Return address directly from the wallet
	ledgerP1ShowAddress  byte = 0x01 // Return address from the wallet after showing it
)

var errCommandTooLarge = errors.New("ledger: command data exceeds 255 bytes")

// Command is a single APDU request.
type Command struct {
	Instruction Instruction
	P1          byte
	P2          byte
	Data        []byte
}

// MarshalBinary encodes the command as a short APDU:
//
//	CLA | INS | P1 | P2 | Lc  | Data
//	----+-----+----+----+-----+---------
//	 45 | ins | p1 | p2 | len | variable
func (c Command) MarshalBinary() ([]byte, error) {
	if len(c.Data) > config.MaxChunkSize {
		return nil, errCommandTooLarge
	}
	apdu := make([]byte, 5, 5+len(c.Data))
	apdu[0] = ledgerCLA
	apdu[1] = byte(c.Instruction)
	apdu[2] = c.P1
	apdu[3] = c.P2
	apdu[4] = byte(len(c.Data))

	return append(apdu, c.Data...), nil
}

// Frame is one step of a chunked exchange. Index is 1-based.
type Frame struct {
	Instruction Instruction
	Index       int
	Count       int
	Data        []byte
}

// Command converts the frame into its APDU, deriving P1 from the frame's
// position: the first frame initialises, the last one finalises and a lone
// frame is final.
func (f Frame) Command() Command {
	p1 := ledgerP1Add
	if f.Index == 1 {
		p1 = ledgerP1Init
	}
	if f.Index == f.Count {
		p1 = ledgerP1Last
	}
	return Command{Instruction: f.Instruction, P1: p1, Data: f.Data}
}

// Framing selects where the derivation path is placed in a chunked exchange.
type Framing int

const (
	// FramingConcatenated splits path || payload into frames of equal size.
	FramingConcatenated Framing = iota

	// FramingPathFirst sends the path alone in an INIT frame, followed by
	// the payload split into frames. An empty payload is sent as a single
	// empty LAST frame.
	FramingPathFirst
)

// ParseFraming resolves a framing mode by its configuration name.
func ParseFraming(name string) (Framing, error) {
	switch name {
	case config.FramingConcatenated:
		return FramingConcatenated, nil
	case config.FramingPathFirst:
		return FramingPathFirst, nil
	}
	return 0, fmt.Errorf("ledger: unknown framing %q", name)
}

func (f Framing) String() string {
	if f == FramingPathFirst {
		return config.FramingPathFirst
	}
	return config.FramingConcatenated
}

// Chunk splits the serialized path and payload into frames of at most size
// bytes. A data length that is an exact multiple of size never produces a
// trailing empty frame, and at least one frame is always returned. With path
// first framing an empty payload still gets its own empty LAST frame, since
// the app only accepts the path in an INIT frame. Chunk panics if size is not
// positive.
func Chunk(ins Instruction, path, payload []byte, size int, framing Framing) []Frame {
	if size <= 0 {
		panic(fmt.Sprintf("ledger: invalid chunk size %d", size))
	}
	var blocks [][]byte
	switch framing {
	case FramingPathFirst:
		blocks = append(blocks, path)
		if len(payload) == 0 {
			blocks = append(blocks, nil)
		}
		blocks = append(blocks, split(payload, size)...)
	default:
		data := make([]byte, 0, len(path)+len(payload))
		data = append(data, path...)
		data = append(data, payload...)
		blocks = split(data, size)
	}
	if len(blocks) == 0 {
		blocks = [][]byte{nil}
	}
	frames := make([]Frame, len(blocks))
	for i, block := range blocks {
		frames[i] = Frame{Instruction: ins, Index: i + 1, Count: len(blocks), Data: block}
	}
	return frames
}

// split cuts data into consecutive blocks of at most size bytes.
func split(data []byte, size int) [][]byte {
	var blocks [][]byte
	for len(data) > 0 {
		chunk := size
		if chunk > len(data) {
			chunk = len(data)
		}
		blocks = append(blocks, data[:chunk])
		data = data[chunk:]
	}
	return blocks
}
