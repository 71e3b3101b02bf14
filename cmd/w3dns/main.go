package main

import (
	"fmt"
	"os"

	"github.com/evername/w3dns/cmd/w3dns/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
