package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/streed/exo/cmd"
)

// Version is set via ldflags during build
var Version = "dev"

func main() {
	// Set version for the cmd package
	cmd.Version = Version

	if err := cmd.Execute(context.Background()); err != nil {
		if !errors.Is(err, cmd.ErrCommandFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
