// cmd/pmfx/main.go
//
// This is the entry point for the pmfx CLI. It reads and writes PMF COMBINE
// archives of predictive microbiology models.
//
// Flow:
// 1. Resolve the project directory and load .pmfx/config.yaml
// 2. Build the logger and the history logbook from that config
// 3. Run the requested subcommand against the archive

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
