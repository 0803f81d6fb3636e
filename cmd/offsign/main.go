package main

import (
	"os"

	"github.com/bitfsorg/walletsdk-go/cmd/offsign/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
