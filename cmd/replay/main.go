// cmd/replay/main.go
package main

import (
	"fmt"
	"os"

	"github.com/btb36/escpos-emulator/cmd/replay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
}
