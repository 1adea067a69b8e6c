package main

import (
	"os"

	"github.com/petbrain/amw/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
