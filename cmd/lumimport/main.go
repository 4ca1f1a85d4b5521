package main

import (
	"os"

	"github.com/lumitools/lumimport/internal/cli"
)

// Overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
