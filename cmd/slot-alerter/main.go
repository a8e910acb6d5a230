// Package main is the entry point for slot-alerter.
package main

import (
	"os"

	"github.com/globalentry/slot-alerter/cmd/slot-alerter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
