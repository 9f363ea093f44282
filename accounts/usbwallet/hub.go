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

// Package usbwallet implements the client for the Spacemesh app on Ledger
// hardware wallets.
package usbwallet

import (
	"context"
	"errors"
	"sync"

	ethaccounts "github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/log"
	"github.com/karalabe/usb"

	"github.com/celo-org/spacemesh-ledger/config"
)

// LedgerScheme is the protocol scheme prefixing account and wallet URLs.
const LedgerScheme = "ledger"

// ErrUSBUnsupported is returned when the platform has no USB support compiled
// in.
var ErrUSBUnsupported = errors.New("ledger: USB devices unsupported on this platform")

// Hub finds Ledger devices on the USB bus and opens wallets on them.
type Hub struct {
	cfg *config.Config
	log log.Logger
}

// NewHub creates a hub for the devices described by cfg.
func NewHub(cfg *config.Config) (*Hub, error) {
	if !usb.Supported() {
		return nil, ErrUSBUnsupported
	}
	if cfg == nil {
		cfg = config.Defaults.Copy()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Hub{cfg: cfg, log: log.New("scheme", LedgerScheme)}, nil
}

// Devices lists the Ledger devices currently plugged in.
func (hub *Hub) Devices() ([]usb.DeviceInfo, error) {
	infos, err := usb.Enumerate(hub.cfg.HID.VendorID, 0)
	if err != nil {
		return nil, err
	}
	var devices []usb.DeviceInfo
	for _, info := range infos {
		if hub.matches(info) {
			devices = append(devices, info)
		}
	}
	return devices, nil
}

// matches reports whether info describes the APDU endpoint of a supported
// device. Windows and macOS use usage page matching, Linux uses interface
// matching. Current firmwares encode the model in the upper product id byte.
func (hub *Hub) matches(info usb.DeviceInfo) bool {
	if info.UsagePage != hub.cfg.HID.UsagePage && info.Interface != hub.cfg.HID.Interface {
		return false
	}
	for _, id := range hub.cfg.HID.ProductIDs {
		if info.ProductID == id {
			return true
		}
		if id&0x00ff == 0 && info.ProductID&0xff00 == id {
			return true
		}
	}
	return false
}

// Open connects to the device and wraps it in a wallet.
func (hub *Hub) Open(info usb.DeviceInfo) (*Wallet, error) {
	device, err := info.Open()
	if err != nil {
		return nil, err
	}
	url := ethaccounts.URL{Scheme: LedgerScheme, Path: info.Path}
	logger := hub.log.New("url", url)

	client, err := NewClient(newHIDDevice(device, hub.cfg.HID.PacketSize, logger), hub.cfg, logger)
	if err != nil {
		device.Close()
		return nil, err
	}
	logger.Debug("Ledger opened", "product", info.ProductID)
	return &Wallet{Client: client, url: url, device: device}, nil
}

// Wallet is a client bound to a USB connection.
type Wallet struct {
	*Client

	url       ethaccounts.URL
	device    usb.Device
	closeOnce sync.Once
}

// URL returns the URL identifying the device.
func (w *Wallet) URL() ethaccounts.URL {
	return w.url
}

// Close waits for the exchange in flight to finish and closes the USB
// connection. Later requests fail with accounts.ErrWalletClosed.
func (w *Wallet) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.acquire(context.Background())
		defer w.release()

		w.Client.device = closedDevice{}
		err = w.device.Close()
	})
	return err
}

// closedDevice stands in for a device whose connection was closed.
type closedDevice struct{}

func (closedDevice) Exchange([]byte) ([]byte, error) {
	return nil, ethaccounts.ErrWalletClosed
}
