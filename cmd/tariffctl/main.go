// Package main is the entry point for the tariffctl operator CLI.
package main

import (
	"os"

	"tariff-backend/cmd/tariffctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
