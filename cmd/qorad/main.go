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

// qorad runs a full node.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/logging"
	"github.com/qoranode/go-qora/node"
)

var (
	dataDir string
	testnet bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "qorad",
		Short: "qorad runs a Qora full node",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run()
		},
	}
	rootCmd.Flags().StringVarP(&dataDir, "data-dir", "d", "data", "node data directory")
	rootCmd.Flags().BoolVar(&testnet, "testnet", false, "join the test network")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	cfg, err := config.LoadLocal(dataDir)
	if err != nil {
		return err
	}
	if testnet {
		cfg.Testnet = true
	}

	log := logging.Base()
	log.SetLevel(parseLevel(cfg.LogLevel))
	if cfg.LogJSON {
		log.SetJSONFormatter()
	}

	n, err := node.MakeNode(dataDir, cfg, log)
	if err != nil {
		return err
	}
	if err := n.Start(); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	n.Stop()
	return nil
}

func parseLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.Debug
	case "warn":
		return logging.Warn
	case "error":
		return logging.Error
	default:
		return logging.Info
	}
}
