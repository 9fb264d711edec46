// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/kindelia/kindelia/repo"
)

func main() {
	// Configure the command line parser.
	var emptyCfg repo.Config
	parser := flags.NewNamedParser("kindelia", flags.Default)
	parser.AddGroup("Node Options", "Configuration options for the node", &emptyCfg)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	// Load the config file. There are three steps to this:
	// 1. Start with a config populated with default values.
	// 2. Override the default values with any provided config file options.
	// 3. Override the first two with any provided command line options.
	cfg, err := repo.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	node, err := BuildNode(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// Listen for an exit signal and close.
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	for sig := range c {
		if sig == syscall.SIGINT || sig == syscall.SIGTERM {
			log.Info("kindelia gracefully shutting down")
			if err := node.Close(); err != nil {
				log.Errorf("Shutdown error: %s", err)
				os.Exit(1)
			}
			os.Exit(0)
		}
	}
}
