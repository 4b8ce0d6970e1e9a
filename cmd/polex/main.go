package main

import (
	"os"

	"github.com/funvibe/polex/cmd/polex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
