package main

import (
	"os"

	"github.com/scarabhk/releasetools/pkg/cli"
)

func main() {
	if err := cli.ExecuteBundle(); err != nil {
		os.Exit(1)
	}
}
