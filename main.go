package main

import (
	"os"

	"github.com/soireehq/soiree/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
