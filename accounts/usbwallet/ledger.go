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

// This file contains the client for the Spacemesh app on Ledger hardware
// wallets. The app protocol is the Zondax APDU dialect: every request carrying
// a derivation path is streamed in frames, the first one marked INIT, the
// last one LAST and the ones between ADD.

package usbwallet

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"

	"github.com/celo-org/spacemesh-ledger/accounts"
	"github.com/celo-org/spacemesh-ledger/accounts/usbwallet/spacemesh"
	"github.com/celo-org/spacemesh-ledger/config"
)

var (
	// ErrShortReply is returned when a device reply doesn't even hold the two
	// byte status word.
	ErrShortReply = errors.New("ledger: reply lacks status word")

	// ErrUnknownDomain is returned when a message is to be signed under a
	// domain the app doesn't know.
	ErrUnknownDomain = errors.New("ledger: unknown signing domain")
)

// Device is a connection able to carry one APDU exchange at a time. The
// returned reply includes the trailing status word.
type Device interface {
	Exchange(apdu []byte) ([]byte, error)
}

// Client implements the request/response protocol of the Spacemesh app over a
// Device. All methods are safe for concurrent use. Exchanges are serialized,
// so frames of concurrent requests never interleave on the wire.
type Client struct {
	device      Device
	chunkSize   int
	framing     Framing
	checkHRP    bool
	defaultPath accounts.DerivationPath // Path used when callers pass the zero path

	commsLock chan struct{} // Mutex (buf=1) for the device comms, acquirable with a context
	log       log.Logger    // Contextual logger to tag the ledger with its id
}

// NewClient creates a protocol client on top of device. A nil cfg selects the
// default settings and a nil logger the root logger.
func NewClient(device Device, cfg *config.Config, logger log.Logger) (*Client, error) {
	if cfg == nil {
		cfg = config.Defaults.Copy()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	framing, err := ParseFraming(cfg.Framing)
	if err != nil {
		return nil, err
	}
	defaultPath, err := cfg.DefaultPath()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Root()
	}
	c := &Client{
		device:      device,
		chunkSize:   cfg.ChunkSize,
		framing:     framing,
		checkHRP:    cfg.CheckAddressPrefix,
		defaultPath: defaultPath,
		commsLock:   make(chan struct{}, 1),
		log:         logger,
	}
	c.commsLock <- struct{}{}
	return c, nil
}

// acquire takes the comms lock, giving up if ctx ends first.
func (c *Client) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-c.commsLock:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	c.commsLock <- struct{}{}
}

// DefaultPath returns the path used in place of the zero path.
func (c *Client) DefaultPath() accounts.DerivationPath {
	return c.defaultPath
}

// resolvePath substitutes the configured default for the zero path.
func (c *Client) resolvePath(path accounts.DerivationPath) accounts.DerivationPath {
	if path == (accounts.DerivationPath{}) {
		return c.defaultPath
	}
	return path
}

// Status returns a textual status of the app running on the device.
func (c *Client) Status(ctx context.Context) (string, error) {
	version, err := c.Version(ctx)
	if err != nil {
		if status, ok := StatusOf(err); ok && status == StatusClaNotSupported {
			return "Spacemesh app offline", nil
		}
		return fmt.Sprintf("Failed: %v", err), err
	}
	if version.Locked {
		return fmt.Sprintf("Spacemesh app %v locked", version), nil
	}
	return fmt.Sprintf("Spacemesh app %v online", version), nil
}

// Version retrieves the version of the Spacemesh app.
//
// The version retrieval protocol is defined as follows:
//
//	CLA | INS | P1 | P2 | Lc
//	----+-----+----+----+----
//	 45 | 00  | 00 | 00 | 00
//
// With no input data, the output data is described at DecodeVersion.
func (c *Client) Version(ctx context.Context) (Version, error) {
	reply, err := c.command(ctx, Command{Instruction: InsGetVersion})
	if err != nil {
		return Version{}, err
	}
	return DecodeVersion(reply)
}

// Address retrieves the public key and wallet address at the given path,
// optionally having the user confirm the address on the device first.
//
// The address retrieval protocol is defined as follows:
//
//	CLA | INS | P1 | P2 | Lc
//	----+-----+----+----+----
//	 45 | 01  | 00 return address
//	            01 display address and confirm before returning
//	               | 00 | 14
//
// Where the input data is the path, each of the five levels serialized as a
// little endian uint32. The output data is described at DecodeAddress. The
// zero path selects the configured default path.
func (c *Client) Address(ctx context.Context, path accounts.DerivationPath, show bool) (AddressResponse, error) {
	path = c.resolvePath(path)
	p1 := ledgerP1OnlyRetrieve
	if show {
		p1 = ledgerP1ShowAddress
	}
	reply, err := c.command(ctx, Command{Instruction: InsGetAddr, P1: p1, Data: path.Serialize()})
	if err != nil {
		return AddressResponse{}, err
	}
	return c.decodeAddress(path, reply)
}

// DeriveAddress validates an account descriptor and has the device derive the
// address of the account, the key at path taking the internalIndex slot.
// Validation failures are returned before anything is sent to the device.
//
// The account address protocol is defined as follows:
//
//	CLA | INS | P1 | P2 | Lc
//	----+-----+----+----+---------
//	 45 | 03 multisig
//	      04 vesting
//	      05 vault
//	          | 00 first frame
//	            01 subsequent frame
//	            02 last frame
//	               | 00 | variable
//
// Where the frames carry the serialized path followed by the encoded account,
// see spacemesh.EncodeDescriptor. Wallet descriptors carry no account data and
// are sent as a plain address request. The output data is described at
// DecodeAddress.
func (c *Client) DeriveAddress(ctx context.Context, path accounts.DerivationPath, internalIndex uint8, d spacemesh.Descriptor) (AddressResponse, error) {
	payload, err := spacemesh.EncodeDescriptor(internalIndex, d)
	if err != nil {
		validationFailedMeter.Mark(1)
		return AddressResponse{}, err
	}
	path = c.resolvePath(path)
	if d.Kind == spacemesh.Wallet {
		return c.Address(ctx, path, false)
	}
	ins, err := instructionFor(d.Kind)
	if err != nil {
		return AddressResponse{}, err
	}
	reply, err := c.Send(ctx, path, ins, payload)
	if err != nil {
		return AddressResponse{}, err
	}
	return c.decodeAddress(path, reply)
}

// Sign streams a raw message to the device and waits for the user to confirm
// or deny signing it.
//
// The signing protocol is defined as follows:
//
//	CLA | INS | P1 | P2 | Lc
//	----+-----+----+----+---------
//	 45 | 02  | 00 first frame
//	            01 subsequent frame
//	            02 last frame
//	               | 00 | variable
//
// Where the frames carry the serialized path followed by the message. The
// output data is the signature.
func (c *Client) Sign(ctx context.Context, path accounts.DerivationPath, blob []byte) ([]byte, error) {
	reply, err := c.Send(ctx, path, InsSign, blob)
	if err != nil {
		return nil, err
	}
	return DecodeSignature(reply)
}

// SignMessage signs a message under one of the app's signing domains.
func (c *Client) SignMessage(ctx context.Context, path accounts.DerivationPath, req spacemesh.SigningRequest) ([]byte, error) {
	if !req.Domain.Valid() {
		validationFailedMeter.Mark(1)
		return nil, fmt.Errorf("%w: %v", ErrUnknownDomain, req.Domain)
	}
	c.log.Debug("Signing message on Ledger", "domain", req.Domain, "size", len(req.Message))
	return c.Sign(ctx, path, spacemesh.SerializeSigningPayload(req))
}

// Send streams path || payload to the device under ins and returns the reply
// of the last frame. The first failing frame aborts the sequence, the error is
// then a *ProtocolError naming the frame.
//
// The context is only consulted while waiting for the device. Once the first
// frame is out the sequence runs to completion or failure. The zero path
// selects the configured default path.
func (c *Client) Send(ctx context.Context, path accounts.DerivationPath, ins Instruction, payload []byte) ([]byte, error) {
	path = c.resolvePath(path)
	frames := Chunk(ins, path.Serialize(), payload, c.chunkSize, c.framing)

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	c.log.Debug("Streaming request to Ledger", "ins", ins, "path", path, "frames", len(frames), "framing", c.framing)

	var reply []byte
	for _, frame := range frames {
		var err error
		if reply, err = c.exchange(frame.Command()); err != nil {
			err = annotate(err, frame.Index, frame.Count)
			c.log.Warn("Ledger request failed", "ins", ins, "frame", frame.Index, "frames", frame.Count, "err", err)
			recordOutcome(err)
			return nil, err
		}
	}
	c.log.Debug("Ledger request completed", "ins", ins, "reply", len(reply))
	recordOutcome(nil)
	return reply, nil
}

// command performs a single frame exchange.
func (c *Client) command(ctx context.Context, cmd Command) ([]byte, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	reply, err := c.exchange(cmd)
	if err != nil {
		err = annotate(err, 1, 1)
	}
	recordOutcome(err)
	return reply, err
}

// exchange sends a single command and splits the status word off the reply.
// Non success statuses and link failures are turned into a *ProtocolError.
func (c *Client) exchange(cmd Command) ([]byte, error) {
	apdu, err := cmd.MarshalBinary()
	if err != nil {
		return nil, err
	}
	c.log.Trace("APDU sent to the Ledger", "apdu", hexutil.Bytes(apdu))
	framesSentCounter.Inc(1)

	reply, err := c.device.Exchange(apdu)
	if err != nil {
		return nil, &ProtocolError{Status: StatusTransportError, Instruction: cmd.Instruction, Err: err}
	}
	c.log.Trace("APDU reply received from the Ledger", "reply", hexutil.Bytes(reply))

	if len(reply) < 2 {
		return nil, ErrShortReply
	}
	status := StatusWord(binary.BigEndian.Uint16(reply[len(reply)-2:]))
	body := reply[:len(reply)-2]
	if status != StatusOK {
		return nil, &ProtocolError{Status: status, Instruction: cmd.Instruction, Message: deviceMessage(body)}
	}
	return body, nil
}

// decodeAddress decodes an address reply, checking its network if requested.
func (c *Client) decodeAddress(path accounts.DerivationPath, reply []byte) (AddressResponse, error) {
	resp, err := DecodeAddress(reply)
	if err != nil {
		return AddressResponse{}, err
	}
	if c.checkHRP {
		if err := checkAddressNetwork(resp.Address, path.Network()); err != nil {
			return AddressResponse{}, err
		}
	}
	return resp, nil
}

// annotate tags a frame failure with its position in the sequence.
func annotate(err error, index, count int) error {
	var perr *ProtocolError
	if errors.As(err, &perr) {
		perr.Frame, perr.Count = index, count
		return perr
	}
	return fmt.Errorf("ledger: frame %d/%d: %w", index, count, err)
}

func recordOutcome(err error) {
	switch {
	case err == nil:
		sequenceCompletedMeter.Mark(1)
	case IsUserRejected(err):
		sequenceRejectedMeter.Mark(1)
	default:
		sequenceFailedMeter.Mark(1)
	}
}
