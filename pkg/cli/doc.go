// Package cli provides common utilities for the mkmarkov command.
//
// This package includes:
//   - Configuration management (named contexts)
//   - Output formatting (JSON, YAML, raw)
//   - Request file loading (YAML/JSON)
//   - A bordered panel renderer for terminal reports
//
// Configuration is stored in ~/.mkmarkov/config.yaml, supporting
// multiple contexts similar to kubectl.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("")
//	ctx, err := cfg.ResolveContext(name)
//
//	cli.Output(stats, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    Writer: cmd.OutOrStdout(),
//	})
package cli
