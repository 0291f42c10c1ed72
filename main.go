// ABOUTME: Entry point for the wholesale storefront CLI
// ABOUTME: Session, cart, and checkout from the terminal

package main

import (
	"fmt"
	"os"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
