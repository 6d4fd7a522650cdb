package main

import (
	"os"

	"github.com/emitrack/emitrack/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
