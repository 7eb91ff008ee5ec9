package main

import (
	"os"

	"github.com/execution-hub/wifictl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
