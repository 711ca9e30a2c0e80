// Package main provides a command-line interface for the iavtools tool layer.
// It invokes the workspace tools directly and inspects their declarations
// and audit history.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
