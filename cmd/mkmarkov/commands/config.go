package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/White-Green/MkMarkov/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

A context names where notes come from (Misskey host and user), where they
are kept (corpus), where models are saved (storage) and how models are built.

Configuration is stored in ~/.mkmarkov/config.yaml`,
}

// contextFlags maps add-context flags to context keys.
var contextFlags = map[string]string{
	"host":      "misskey_host",
	"api-key":   "api_key",
	"username":  "username",
	"corpus":    "corpus",
	"storage":   "storage",
	"max-depth": "max_depth",
	"workers":   "workers",
	"segmenter": "segmenter",
	"format":    "format",
	"compress":  "compress",
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add or replace a context",
	Long: `Add a context with the specified name. The first context added
becomes the current context.

Example:
  mkmarkov config add-context voskey --username alice --api-key TOKEN
  mkmarkov config add-context archive --corpus badger:///data/corpus --storage s3://models/mkmarkov`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := &cli.Context{}
		for flag, key := range contextFlags {
			f := cmd.Flags().Lookup(flag)
			if f == nil || !f.Changed {
				continue
			}
			if err := ctx.Set(key, f.Value.String()); err != nil {
				return fmt.Errorf("--%s: %w", flag, err)
			}
		}

		if err := getConfig().AddContext(args[0], ctx); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "Context %q added", args[0])
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting of the current context",
	Long: `Change one setting of the current context, or of the context named
with -c. Keys: misskey_host, api_key, username, corpus, storage, max_depth,
workers, segmenter, format, compress.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		ctx, err := cfg.ResolveContext(contextName)
		if err != nil {
			return err
		}
		if ctx.Name == "" {
			return fmt.Errorf("no context selected; use -c or 'mkmarkov config use-context'")
		}
		if err := ctx.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "Set %s in context %q", args[0], ctx.Name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getConfig().DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "Context %q deleted", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getConfig().UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "Switched to context %q", args[0])
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context",
	Short: "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if cfg.CurrentContext == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No current context set")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.CurrentContext)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"get-contexts"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if len(cfg.Contexts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No contexts configured")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tHOST\tUSERNAME\tCORPUS")
		for _, name := range cfg.ListContexts() {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, name,
				orDefault(ctx.MisskeyHost), orDefault(ctx.Username), orDefault(ctx.Corpus))
		}
		return w.Flush()
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Config file: %s\n", cfg.Path())
		fmt.Fprintf(out, "Current context: %s\n", cfg.CurrentContext)
		fmt.Fprintf(out, "Contexts: %d\n", len(cfg.Contexts))

		for _, name := range cfg.ListContexts() {
			ctx := cfg.Contexts[name].WithDefaults(globalPaths)
			fmt.Fprintf(out, "\n  %s:\n", name)
			fmt.Fprintf(out, "    Host: %s\n", orDefault(ctx.MisskeyHost))
			fmt.Fprintf(out, "    Username: %s\n", orDefault(ctx.Username))
			fmt.Fprintf(out, "    API Key: %s\n", cli.MaskAPIKey(ctx.APIKey))
			fmt.Fprintf(out, "    Corpus: %s\n", ctx.Corpus)
			fmt.Fprintf(out, "    Storage: %s\n", ctx.Storage)
			fmt.Fprintf(out, "    Max depth: %d\n", ctx.MaxDepth)
			fmt.Fprintf(out, "    Segmenter: %s\n", ctx.Segmenter)
			fmt.Fprintf(out, "    Format: %s (compress: %t)\n", ctx.Format, ctx.Compress)
		}
		return nil
	},
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

func init() {
	flags := configAddContextCmd.Flags()
	flags.String("host", "", "Misskey instance host")
	flags.String("api-key", "", "Misskey access token")
	flags.String("username", "", "account whose notes are fetched")
	flags.String("corpus", "", "corpus store URL (badger:///dir or memory://)")
	flags.String("storage", "", "model storage URL (file:///dir or s3://bucket/prefix)")
	flags.Int("max-depth", 0, "function nesting bound for generation")
	flags.Int("workers", 0, "parallel workers for build (0: one per CPU)")
	flags.String("segmenter", "", "word segmenter (ipa, space, rune)")
	flags.String("format", "", "model file format (msgpack, json)")
	flags.Bool("compress", false, "zstd-compress model files")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}
