package main

import (
	"os"

	"github.com/scarabhk/releasetools/pkg/cli"
)

func main() {
	if err := cli.ExecuteFeed(); err != nil {
		os.Exit(1)
	}
}
