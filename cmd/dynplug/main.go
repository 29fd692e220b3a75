package main

import (
	"os"

	"github.com/dynplug-dev/dynplug-sdk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
