// Command cartctl inspects and edits the cart persisted on this device.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
