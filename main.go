package main

import (
	"os"

	"github.com/neetwise/listing/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
