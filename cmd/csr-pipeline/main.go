package main

import (
	"fmt"
	"os"

	"csr-pipeline/cmd/csr-pipeline/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
