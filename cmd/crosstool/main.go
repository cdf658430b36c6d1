// Package main is the crosstool command-line entrypoint.
package main

import (
	"os"

	"github.com/meisterT/crosstool/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
