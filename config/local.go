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
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFilename is the per-node configuration file, looked up under the
// data directory.
const ConfigFilename = "config.toml"

// Local holds the per-node, non-consensus configuration. Missing fields keep
// their defaults from DefaultLocal.
type Local struct {
	// ListenAddress is the TCP address the node accepts peers on.
	ListenAddress string `toml:"listen_address"`

	// Seeds are the peers dialed at startup, host:port.
	Seeds []string `toml:"seeds"`

	// MaxPeers caps simultaneous connections, inbound plus outbound.
	MaxPeers int `toml:"max_peers"`

	// Testnet selects the test chain rules.
	Testnet bool `toml:"testnet"`

	LogLevel string `toml:"log_level"`
	LogJSON  bool   `toml:"log_json"`
}

// DefaultLocal is the configuration a node runs with absent any file.
var DefaultLocal = Local{
	ListenAddress: ":9084",
	MaxPeers:      20,
	LogLevel:      "info",
}

// LoadLocal reads the node configuration from dataDir. A missing file is not
// an error; a malformed one is.
func LoadLocal(dataDir string) (Local, error) {
	cfg := DefaultLocal
	path := filepath.Join(dataDir, ConfigFilename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: loading %s: %w", path, err)
	}
	return cfg, nil
}

// Consensus returns the chain rules this node should enforce.
func (cfg Local) Consensus() ConsensusParams {
	if cfg.Testnet {
		return Testnet
	}
	return Mainnet
}
