// Command qtumnode runs the supervised query facade in front of a
// qtumd/bitcoind-style daemon: it spawns and health-probes the daemon,
// ingests its ZMQ feed, tracks the chain tip, and answers address/block/
// transaction queries over a cached, retrying RPC pool.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
