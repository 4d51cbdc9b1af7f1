// Package main provides the mkmarkov CLI tool.
//
// Usage:
//
//	mkmarkov [flags] <command> [args]
//
// Commands:
//
//	fetch     - Collect a Misskey user's notes into the corpus
//	import    - Load JSON/JSONL note dumps into the corpus
//	build     - Build a Markov model from the corpus
//	generate  - Sample notes from a model
//	inspect   - Show the successors of one token
//	stats     - Model statistics
//	models    - List saved models
//	corpus    - Corpus maintenance
//	config    - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.mkmarkov/
//	Use 'mkmarkov config' commands to manage contexts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/White-Green/MkMarkov/cmd/mkmarkov/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
