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
	"context"
	"testing"

	ethaccounts "github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/log"
	"github.com/karalabe/usb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celo-org/spacemesh-ledger/accounts"
	"github.com/celo-org/spacemesh-ledger/config"
)

func TestHubMatches(t *testing.T) {
	hub := &Hub{cfg: config.Defaults.Copy(), log: log.Root()}

	tests := []struct {
		info usb.DeviceInfo
		want bool
	}{
		{usb.DeviceInfo{ProductID: 0x0001, UsagePage: 0xffa0}, true},
		{usb.DeviceInfo{ProductID: 0x4011, UsagePage: 0xffa0}, true},
		{usb.DeviceInfo{ProductID: 0x5011, Interface: 0, UsagePage: 0x0001}, true},
		{usb.DeviceInfo{ProductID: 0x4011, Interface: 2, UsagePage: 0x0001}, false},
		{usb.DeviceInfo{ProductID: 0x0002, UsagePage: 0xffa0}, false},
		{usb.DeviceInfo{ProductID: 0x2011, UsagePage: 0xffa0}, false},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.want, hub.matches(tt.info), "test %d: product %#x", i, tt.info.ProductID)
	}
}

// fakeUSB is a usb.Device that records whether it was closed.
type fakeUSB struct {
	hidLoopback
	closed int
}

func (f *fakeUSB) Close() error {
	f.closed++
	return nil
}

func TestWalletClose(t *testing.T) {
	dev := new(fakeUSB)
	client := newTestClient(t, newHIDDevice(dev, 64, log.Root()), nil)
	wallet := &Wallet{Client: client, url: ethaccounts.URL{Scheme: LedgerScheme, Path: "test"}, device: dev}

	assert.Equal(t, "ledger://test", wallet.URL().String())

	require.NoError(t, wallet.Close())
	require.NoError(t, wallet.Close())
	assert.Equal(t, 1, dev.closed)

	_, err := wallet.Sign(context.Background(), accounts.DefaultMainnetPath, []byte("tx"))
	assert.ErrorIs(t, err, ethaccounts.ErrWalletClosed)
	assert.Empty(t, dev.written)
}
