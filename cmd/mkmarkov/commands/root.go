package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/White-Green/MkMarkov/pkg/cli"
	"github.com/White-Green/MkMarkov/pkg/misskey"
)

// Environment variables that override the context's Misskey settings.
const (
	envAPIKey = "MISSKEY_API_KEY"
	envHost   = "MISSKEY_INSTANCE_HOST"
)

var (
	// Global flags
	cfgFile      string
	contextName  string
	outputFormat string
	verbose      bool

	// Global configuration
	globalConfig *cli.Config
	globalPaths  *cli.Paths
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mkmarkov",
	Short: "Markov chain note generator for Misskey",
	Long: `mkmarkov - learn from Misskey notes and generate new ones.

Notes are collected into a corpus store, a Markov model is built from the
corpus, and new notes are sampled from the model. MFM emoji (:name:) and
function calls ($[name.args body]) are modeled structurally, so generated
notes keep their markup balanced.

Configuration is stored in ~/.mkmarkov/ and supports multiple contexts,
similar to kubectl's context management.

Examples:
  # Set up a context
  mkmarkov config add-context voskey --username alice --api-key TOKEN

  # Collect notes, build the model and sample from it
  mkmarkov fetch
  mkmarkov build
  mkmarkov generate --count 5
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.mkmarkov/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "yaml", "output format for reports (yaml, json, raw)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(corpusCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	globalConfig, err = cli.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Default stores live next to the config file.
	globalPaths = &cli.Paths{Base: globalConfig.Dir()}
	return nil
}

// getConfig returns the global configuration
func getConfig() *cli.Config {
	return globalConfig
}

// getContext returns the context to use with defaults and environment
// overrides applied.
func getContext() (cli.Context, error) {
	cfg := getConfig()
	if cfg == nil {
		return cli.Context{}, fmt.Errorf("configuration not initialized")
	}

	ctx, err := cfg.ResolveContext(contextName)
	if err != nil {
		return cli.Context{}, err
	}
	out := ctx.WithDefaults(globalPaths)
	if v := os.Getenv(envAPIKey); v != "" {
		out.APIKey = v
	}
	if v := os.Getenv(envHost); v != "" {
		out.MisskeyHost = v
	}
	if out.MisskeyHost == "" {
		out.MisskeyHost = misskey.DefaultHost
	}
	return out, nil
}

// outputResult writes a report in the --output format
func outputResult(cmd *cobra.Command, result any) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		Writer: cmd.OutOrStdout(),
	})
}
