// Copyright (C) 2018-2025 Qora Developers.
// This file is part of go-qora
//
// go-qora is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-qora is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-qora.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadLocalMissingFile(t *testing.T) {
	cfg, err := LoadLocal(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, DefaultLocal, cfg)
	require.Equal(t, Mainnet, cfg.Consensus())
}

func TestLoadLocalFile(t *testing.T) {
	dir := t.TempDir()
	content := "listen_address = \":7777\"\ntestnet = true\nseeds = [\"peer.example.com:9084\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFilename), []byte(content), 0600))

	cfg, err := LoadLocal(dir)
	require.NoError(t, err)
	require.Equal(t, ":7777", cfg.ListenAddress)
	require.True(t, cfg.Testnet)
	require.Equal(t, []string{"peer.example.com:9084"}, cfg.Seeds)

	// Unset fields keep their defaults.
	require.Equal(t, DefaultLocal.MaxPeers, cfg.MaxPeers)
	require.Equal(t, DefaultLocal.LogLevel, cfg.LogLevel)

	require.Equal(t, Testnet, cfg.Consensus())
}

func TestLoadLocalMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFilename), []byte("listen_address = ["), 0600))
	_, err := LoadLocal(dir)
	require.Error(t, err)
}
