// ABOUTME: Entry point for the smartwallet CLI
// ABOUTME: Command-line companion to the SmartWalletFX backend

package main

import (
	"fmt"
	"os"

	"github.com/0x5chn0uf/SmartWalletFX-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
