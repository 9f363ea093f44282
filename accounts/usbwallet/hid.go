// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package usbwallet

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
)

// hidHeaderLength is the size of the transport header of every packet.
const hidHeaderLength = 5

// ErrInvalidReplyHeader is the error message returned by a Ledger data exchange
// if the device replies with a mismatching header. This usually means the device
// is in browser mode.
var ErrInvalidReplyHeader = errors.New("ledger: invalid reply header")

// hidDevice carries APDUs over the HID transport of Ledger devices.
//
// The common transport header is defined as follows:
//
//	Description                           | Length
//	--------------------------------------+----------
//	Communication channel ID (big endian) | 2 bytes
//	Command tag                           | 1 byte
//	Packet sequence index (big endian)    | 2 bytes
//	Payload                               | arbitrary
//
// The Communication channel ID allows commands multiplexing over the same
// physical link. It is not used for the time being, and should be set to 0101
// to avoid compatibility issues with implementations ignoring a leading 00 byte.
//
// The Command tag describes the message content. Use TAG_APDU (0x05) for standard
// APDU payloads, or TAG_PING (0x02) for a simple link test.
//
// The Packet sequence index describes the current sequence for fragmented payloads.
// The first fragment index is 0x00, and its payload starts with the length of the
// whole APDU as a big endian uint16.
type hidDevice struct {
	device     io.ReadWriter // USB device connection to communicate through
	packetSize int           // Size of a single HID report
	log        log.Logger
}

func newHIDDevice(device io.ReadWriter, packetSize int, logger log.Logger) *hidDevice {
	return &hidDevice{device: device, packetSize: packetSize, log: logger}
}

// Exchange implements Device, streaming the APDU to the device and collecting
// the reply packets.
func (d *hidDevice) Exchange(apdu []byte) ([]byte, error) {
	for _, packet := range hidPackets(apdu, d.packetSize) {
		d.log.Trace("Data chunk sent to the Ledger", "chunk", hexutil.Bytes(packet))
		if _, err := d.device.Write(packet); err != nil {
			return nil, err
		}
	}
	// Stream the reply back from the wallet in packet sized chunks
	var (
		reply []byte
		chunk = make([]byte, d.packetSize)
	)
	for seq := 0; ; seq++ {
		if _, err := io.ReadFull(d.device, chunk); err != nil {
			return nil, err
		}
		d.log.Trace("Data chunk received from the Ledger", "chunk", hexutil.Bytes(chunk))

		// Make sure the transport header matches
		if chunk[0] != 0x01 || chunk[1] != 0x01 || chunk[2] != 0x05 {
			return nil, ErrInvalidReplyHeader
		}
		if int(binary.BigEndian.Uint16(chunk[3:5])) != seq {
			return nil, ErrInvalidReplyHeader
		}
		// If it's the first chunk, retrieve the total message length
		var payload []byte

		if seq == 0 {
			reply = make([]byte, 0, int(binary.BigEndian.Uint16(chunk[5:7])))
			payload = chunk[7:]
		} else {
			payload = chunk[5:]
		}
		// Append to the reply and stop when filled up
		if left := cap(reply) - len(reply); left > len(payload) {
			reply = append(reply, payload...)
		} else {
			reply = append(reply, payload[:left]...)
			break
		}
	}
	return reply, nil
}

// hidPackets splits a message into transport packets of at most size bytes,
// prefixing it with its length.
func hidPackets(message []byte, size int) [][]byte {
	data := make([]byte, 2, 2+len(message))
	binary.BigEndian.PutUint16(data, uint16(len(message)))
	data = append(data, message...)

	space := size - hidHeaderLength

	var packets [][]byte
	for i := 0; len(data) > 0; i++ {
		packet := make([]byte, hidHeaderLength, size)
		packet[0], packet[1], packet[2] = 0x01, 0x01, 0x05 // Channel ID and command tag
		binary.BigEndian.PutUint16(packet[3:], uint16(i))

		if len(data) > space {
			packet = append(packet, data[:space]...)
			data = data[space:]
		} else {
			packet = append(packet, data...)
			data = nil
		}
		packets = append(packets, packet)
	}
	return packets
}
