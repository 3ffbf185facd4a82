// Copyright 2024-2026 Aiku AI

// Command steam-relay runs many independent Steam accounts from one
// process, keeps each logged in through transient disconnects, and relays
// friend chat messages between managed accounts and WebSocket observers.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.mau.fi/util/exerrors"

	"github.com/aiku/steam-relay/pkg/relay"
	"github.com/aiku/steam-relay/pkg/relay/control"
	"github.com/aiku/steam-relay/pkg/relay/network/steamnet"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	writeExample := flag.Bool("example-config", false, "print the example config and exit")
	flag.Parse()

	if *writeExample {
		fmt.Print(relay.ExampleConfig)
		return
	}

	cfg := exerrors.Must(relay.LoadConfig(*configPath))
	log := exerrors.Must(cfg.Logging.Compile())

	store := relay.NewStore(cfg.AccountsFile)
	srv := control.NewServer(*log)
	mgr := relay.NewManager(store, steamnet.NewFactory(*log), srv, *log)
	defer mgr.Close()
	srv.SetService(mgr)

	go mgr.AutoLoginAll()

	if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
		log.Error().Err(err).Msg("Control channel server stopped")
		os.Exit(1)
	}
}
