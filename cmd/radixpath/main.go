package main

import (
	"os"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		os.Exit(1)
	}
}
