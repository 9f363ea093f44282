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

// Package config holds the tunables of the Ledger client and loads them from
// TOML files.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"

	"github.com/celo-org/spacemesh-ledger/accounts"
)

// Framing modes of the chunked exchange.
const (
	// FramingConcatenated splits path || payload into equally sized frames.
	FramingConcatenated = "concatenated"

	// FramingPathFirst sends the derivation path alone in the first frame and
	// the payload in the following ones.
	FramingPathFirst = "path-first"
)

// MaxChunkSize is the largest data field a short APDU can carry.
const MaxChunkSize = 255

// HID describes how Ledger devices are recognised on the USB bus.
type HID struct {
	VendorID   uint16   // USB vendor id of Ledger devices
	ProductIDs []uint16 // Product ids (or WebUSB product id prefixes) to accept
	UsagePage  uint16   // HID usage page of the APDU interface (Windows, macOS)
	Interface  int      // USB interface of the APDU endpoint (Linux)
	PacketSize int      // Size of a single HID report
}

// Config contains the client settings.
type Config struct {
	// ChunkSize is the maximum data size of a single APDU frame.
	ChunkSize int

	// Framing selects how the derivation path is placed into the frames.
	Framing string

	// Network is the network ("mainnet" or "testnet") whose default path is
	// used when callers don't supply one.
	Network string

	// CheckAddressPrefix makes the client reject returned addresses whose
	// bech32 prefix doesn't belong to the path's network.
	CheckAddressPrefix bool

	HID HID
}

// Defaults contains the default settings for talking to a Ledger running the
// Spacemesh app.
var Defaults = Config{
	ChunkSize: 250,
	Framing:   FramingConcatenated,
	Network:   "mainnet",
	HID: HID{
		VendorID: 0x2c97,
		ProductIDs: []uint16{
			0x0001, // Ledger Nano S (legacy firmware)
			0x0004, // Ledger Nano X (legacy firmware)
			0x0005, // Ledger Nano S Plus (legacy firmware)
			0x1000, // Ledger Nano S
			0x4000, // Ledger Nano X
			0x5000, // Ledger Nano S Plus
			0x6000, // Ledger Stax
			0x7000, // Ledger Flex
		},
		UsagePage:  0xffa0,
		Interface:  0,
		PacketSize: 64,
	},
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// Load reads a TOML file on top of the default settings.
func Load(file string) (*Config, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Defaults.Copy()
	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return cfg, nil
}

// Copy returns a deep copy of the settings.
func (c Config) Copy() *Config {
	cpy := c
	cpy.HID.ProductIDs = append([]uint16(nil), c.HID.ProductIDs...)
	return &cpy
}

// Validate checks that the settings can drive a device.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 || c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("config: chunk size %d out of range (1-%d)", c.ChunkSize, MaxChunkSize)
	}
	switch c.Framing {
	case FramingConcatenated, FramingPathFirst:
	default:
		return fmt.Errorf("config: unknown framing %q", c.Framing)
	}
	if _, err := accounts.ParseNetwork(c.Network); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	// The first packet carries a 7 byte header and must fit one data byte.
	if c.HID.PacketSize < 8 {
		return fmt.Errorf("config: HID packet size %d too small", c.HID.PacketSize)
	}
	return nil
}

// DefaultPath returns the first key path of the configured network.
func (c *Config) DefaultPath() (accounts.DerivationPath, error) {
	network, err := accounts.ParseNetwork(c.Network)
	if err != nil {
		return accounts.DerivationPath{}, err
	}
	return network.DefaultPath()
}
