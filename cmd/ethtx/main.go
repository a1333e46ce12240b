// Command ethtx decodes, encodes, hashes, signs, recovers, and checksums
// Ethereum-compatible transactions from the command line. It is a thin,
// local wrapper around package ethtx: no network I/O, no persisted state.
package main

import (
	"fmt"
	"os"

	"github.com/ModChain/ethtx/cmd/ethtx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
