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

package accounts

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDerivationPath(t *testing.T) {
	tests := []struct {
		input  string
		output DerivationPath
	}{
		{"m/44'/540'/0'/0'/0'", DefaultMainnetPath},
		{"m/44'/1'/0'/0'/0'", DefaultTestnetPath},
		{"m/44'/540'/2'/0/7", DerivationPath{0x80000000 + 44, 0x80000000 + 540, 0x80000000 + 2, 0, 7}},
	}
	for i, tt := range tests {
		path, err := ParseDerivationPath(tt.input)
		if err != nil {
			t.Fatalf("test %d: failed to parse %q: %v", i, tt.input, err)
		}
		if path != tt.output {
			t.Errorf("test %d: parse mismatch: have %v, want %v", i, path, tt.output)
		}
		if path.String() != tt.input {
			t.Errorf("test %d: string mismatch: have %s, want %s", i, path.String(), tt.input)
		}
	}
}

func TestParseDerivationPathLength(t *testing.T) {
	for _, input := range []string{"m/44'/540'/0'/0'", "m/44'/540'/0'/0'/0'/0"} {
		_, err := ParseDerivationPath(input)
		if !errors.Is(err, ErrPathLength) {
			t.Errorf("%q: error mismatch: have %v, want %v", input, err, ErrPathLength)
		}
	}
	if _, err := ParseDerivationPath("m/44'/540'/x/0'/0'"); err == nil {
		t.Error("malformed component accepted")
	}
}

func TestSerializePath(t *testing.T) {
	raw := DefaultMainnetPath.Serialize()
	require.Len(t, raw, 20)
	require.Equal(t, "2c000080"+"1c020080"+"00000080"+"00000080"+"00000080", hex.EncodeToString(raw))
}

func TestPathNetwork(t *testing.T) {
	require.Equal(t, Mainnet, DefaultMainnetPath.Network())
	require.Equal(t, Testnet, DefaultTestnetPath.Network())

	path, err := ParseDerivationPath("m/44'/60'/0'/0/0")
	require.NoError(t, err)
	require.Equal(t, UnknownNetwork, path.Network())
	require.Equal(t, "", path.Network().HRP())

	require.Equal(t, "sm", Mainnet.HRP())
	require.Equal(t, "stest", Testnet.HRP())
}

func TestParseNetwork(t *testing.T) {
	n, err := ParseNetwork("testnet")
	require.NoError(t, err)
	require.Equal(t, Testnet, n)

	path, err := n.DefaultPath()
	require.NoError(t, err)
	require.Equal(t, DefaultTestnetPath, path)

	_, err = ParseNetwork("devnet")
	require.Error(t, err)
	_, err = UnknownNetwork.DefaultPath()
	require.Error(t, err)
}
