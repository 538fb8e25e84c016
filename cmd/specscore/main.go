package main

import (
	"os"

	"github.com/specscore/specscore/cmd/specscore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
