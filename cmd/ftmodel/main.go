// Package main provides the entry point for the ftmodel CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/ftmodel/cmd/ftmodel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
