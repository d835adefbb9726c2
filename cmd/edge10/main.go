package main

import (
	"fmt"
	"os"

	"github.com/wonny/edge10/backend/cmd/edge10/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
