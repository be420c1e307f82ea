// Package main provides the entry point for the ipopulse CLI tool.
package main

import (
	"os"

	"github.com/ipomoney/ipopulse/cmd/ipopulse/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application, err := app.New(version, commit, date)
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, cancel := app.Context()
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		application.Close()
		app.ExitOnError(err)
	}
	application.Close()
}
